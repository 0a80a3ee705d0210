package renderer

import (
	"text/template"

	"github.com/Rhymond/go-money"
)

// helpers are the functions available inside the embedded templates.
var helpers = template.FuncMap{
	"usd": USD,
}

// USD formats an annual recurring revenue figure as a display amount,
// "$1,250,000.00" style. Values are whole dollars upstream.
func USD(amount int) string {
	return money.New(int64(amount)*100, money.USD).Display()
}
