// Package renderer turns unified accounts and insight responses into
// markdown strings. Templates are embedded so the binary is self
// contained.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	unifyiq "github.com/ferrary7/unifyiq-aryan"
)

//go:embed *.md
var templates embed.FS

// RenderAccounts renders a page of unified accounts to a markdown string.
func RenderAccounts(page *unifyiq.AccountsPage) string {
	return renderTemplate("accounts", "accounts.md", page)
}

// RenderAccount renders a single unified account, issues included.
func RenderAccount(a *unifyiq.UnifiedAccount) string {
	return renderTemplate("account", "account.md", a)
}

// RenderSummary renders the portfolio-wide issue summary.
func RenderSummary(s *unifyiq.SummaryResponse) string {
	return renderTemplate("summary", "summary.md", s)
}

// RenderGroups renders a group-by insight response.
func RenderGroups(g *unifyiq.GroupByResponse) string {
	return renderTemplate("groups", "groups.md", g)
}

// renderTemplate is a generic utility to render one of the embedded templates.
func renderTemplate(templateName, file string, data any) string {
	content, err := fs.ReadFile(templates, file)
	if err != nil {
		return fmt.Sprintf("error reading template %q: %v", file, err)
	}

	tmpl, err := template.New(templateName).Funcs(helpers).Parse(string(content))
	if err != nil {
		return fmt.Sprintf("error parsing template %q: %v", file, err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
