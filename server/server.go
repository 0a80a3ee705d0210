// Package server exposes the unified view, the insights and the query
// agent over HTTP. Handlers hold no state beyond their collaborators:
// every request triggers a fresh fetch-and-recompute cycle downstream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	unifyiq "github.com/ferrary7/unifyiq-aryan"
	"github.com/ferrary7/unifyiq-aryan/agent"
	"github.com/ferrary7/unifyiq-aryan/date"
)

// Server routes the UnifyIQ API.
type Server struct {
	svc   *unifyiq.Service
	agent *agent.Agent
	mux   *http.ServeMux
}

// New builds the Server and its routes.
func New(svc *unifyiq.Service, a *agent.Agent) *Server {
	s := &Server{svc: svc, agent: a, mux: http.NewServeMux()}

	s.mux.HandleFunc("GET /{$}", s.root)
	s.mux.HandleFunc("GET /health", s.health)
	s.mux.HandleFunc("GET /mcp/accounts", s.accounts)
	s.mux.HandleFunc("GET /mcp/accounts/{id}", s.account)
	s.mux.HandleFunc("GET /insights/top-revenue", s.topRevenue)
	s.mux.HandleFunc("GET /insights/renewals-with", s.renewals)
	s.mux.HandleFunc("GET /insights/accounts-with-critical", s.critical)
	s.mux.HandleFunc("GET /insights/summary", s.summary)
	s.mux.HandleFunc("GET /insights/group-by", s.groupBy)
	s.mux.HandleFunc("POST /agent/query", s.agentQuery)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

// ListenAndServe runs the API on addr until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	log.Printf("listening on %s", addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "UnifyIQ API is live"})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) accounts(w http.ResponseWriter, r *http.Request) {
	page, err := s.svc.Accounts(r.Context(), queryInt(r, "limit", 100), queryInt(r, "offset", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) account(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.Account(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) topRevenue(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.TopRevenue(r.Context(), queryString(r, "priority", "P1"), queryInt(r, "limit", 10), queryFilters(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) renewals(w http.ResponseWriter, r *http.Request) {
	var asOf date.Date
	if today := queryString(r, "today", ""); today != "" {
		if d, err := date.Parse(today); err == nil {
			asOf = d
		}
	}
	resp, err := s.svc.Renewals(r.Context(),
		queryString(r, "priority", "P1"),
		queryInt(r, "days", 60),
		asOf,
		queryInt(r, "limit", 100),
		queryFilters(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) critical(w http.ResponseWriter, r *http.Request) {
	var max *int
	if v := queryString(r, "max", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			max = &n
		}
	}
	resp, err := s.svc.Critical(r.Context(),
		queryString(r, "priority", "P1"),
		queryInt(r, "min", 3),
		max,
		queryInt(r, "limit", 10),
		queryFilters(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.Summary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) groupBy(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.GroupBy(r.Context(),
		queryString(r, "priority", "P1"),
		queryString(r, "group_by", "region"),
		queryString(r, "issue_type", ""),
		queryFilters(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// agentRequest is the body of POST /agent/query.
type agentRequest struct {
	Q      string `json:"q"`
	Format string `json:"format,omitempty"` // json or csv
}

func (s *Server) agentQuery(w http.ResponseWriter, r *http.Request) {
	var body agentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
		return
	}
	resp, err := s.agent.Query(r.Context(), body.Q, body.Format)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writing response: %v", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, unifyiq.ErrPlanShape), errors.Is(err, unifyiq.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, unifyiq.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, unifyiq.ErrUpstream):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}

func queryString(r *http.Request, key, def string) string {
	if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
		return v
	}
	return def
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func queryFilters(r *http.Request) unifyiq.Filters {
	f := unifyiq.Filters{
		Region:       queryString(r, "region", ""),
		Stage:        queryString(r, "stage", ""),
		Industry:     queryString(r, "industry", ""),
		NameContains: queryString(r, "account_name_contains", ""),
	}
	if v := r.URL.Query().Get("arr_min"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.ARRMin = &n
		}
	}
	if v := r.URL.Query().Get("arr_max"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.ARRMax = &n
		}
	}
	return f
}
