package unifyiq

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSourceListAccounts(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"items": [{"AccountID": "A1"}, {"AccountID": "A2"}]}`))
	}))
	defer srv.Close()

	src := NewSource(srv.URL, 0)
	records, err := src.ListAccounts(context.Background(), 1000, 0)
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/salesforce" {
		t.Errorf("path = %q, want /salesforce", gotPath)
	}
	if gotQuery != "limit=1000&offset=0" {
		t.Errorf("query = %q, want limit=1000&offset=0", gotQuery)
	}
	if len(records) != 2 || records[0]["AccountID"] != "A1" {
		t.Errorf("records = %v, want 2 records starting with A1", records)
	}
}

func TestSourceListIssuesBareList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jira" {
			http.NotFound(w, r)
			return
		}
		// No items envelope, just the list.
		w.Write([]byte(`[{"IssueID": "J-1"}]`))
	}))
	defer srv.Close()

	records, err := NewSource(srv.URL, 0).ListIssues(context.Background(), 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0]["IssueID"] != "J-1" {
		t.Errorf("records = %v, want single J-1", records)
	}
}

func TestSourceErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"http error", `oops`, http.StatusInternalServerError},
		{"non json", `not json at all`, http.StatusOK},
		{"no items", `{"rows": []}`, http.StatusOK},
		{"items not a list", `{"items": 42}`, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewSource(srv.URL, 0).ListAccounts(context.Background(), 10, 0)
			if !errors.Is(err, ErrUpstream) {
				t.Errorf("error = %v, want ErrUpstream", err)
			}
		})
	}
}

func TestSourceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewSource(srv.URL, 0).ListAccounts(context.Background(), 10, 0)
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("error = %v, want ErrUpstream", err)
	}
}

func TestSourceSkipsNonObjectRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [{"AccountID": "A1"}, "noise", 42]}`))
	}))
	defer srv.Close()

	records, err := NewSource(srv.URL, 0).ListAccounts(context.Background(), 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1 (non-objects skipped)", len(records))
	}
}
