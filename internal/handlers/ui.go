package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"shophub/internal/flash"
	"shophub/internal/middleware"
	"shophub/internal/pricing"
)

func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"money":  pricing.FormatMoney,
		"price":  func(v float64) string { return pricing.FormatMoney(decimal.NewFromFloat(v)) },
		"qty":    pricing.FormatQuantity,
		"imgsrc": func(uri string) template.URL {
			if strings.HasPrefix(uri, "data:image/") {
				return template.URL(uri)
			}
			return ""
		},
	}
}

func LoadTemplates(r *gin.Engine, glob string) {
	r.SetFuncMap(TemplateFuncs())
	r.LoadHTMLGlob(glob)
}

// render adds queued flash notices and the signed-in account to data.
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	notices := flash.Pop(c)
	data["successes"] = flash.Messages(notices, flash.Success)
	data["errors"] = flash.Messages(notices, flash.Error)
	if account, ok := middleware.CurrentAccount(c); ok {
		data["account"] = account.Summary()
	}
	c.HTML(status, name, data)
}

// Home renders the landing page with the login and register forms.
func Home() gin.HandlerFunc {
	return func(c *gin.Context) {
		render(c, http.StatusOK, "index.html", gin.H{"title": "Welcome to ShopHub"})
	}
}

func LoginPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		render(c, http.StatusOK, "index.html", gin.H{"title": "Login", "login": true})
	}
}
