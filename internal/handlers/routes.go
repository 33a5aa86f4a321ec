package handlers

import (
	"github.com/gin-gonic/gin"

	"shophub/internal/flash"
	"shophub/internal/middleware"
)

type RouterConfig struct {
	TemplatesGlob      string
	LoginRatePerMinute int
}

// NewRouter wires every route onto a fresh engine.
func NewRouter(env *Env, cfg RouterConfig) *gin.Engine {
	httpLog := env.logger("http")

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(httpLog), middleware.Recovery(httpLog), flash.Secure(env.Cookies.Secure))
	LoadTemplates(r, cfg.TemplatesGlob)

	session := middleware.Session{
		Accounts: env.Store,
		Tokens:   env.Tokens,
		Cookies:  env.Cookies,
		Log:      env.logger("session"),
	}
	throttle := middleware.RateLimit(middleware.NewRateLimiter(cfg.LoginRatePerMinute), httpLog)

	r.GET("/healthz", Health(env.Store))
	r.GET("/", Home())
	r.GET("/login", LoginPage())

	r.POST("/users/register", throttle, Register(env))
	r.POST("/users/login", throttle, Login(env))
	r.GET("/users/logout", Logout(env))
	r.POST("/owners/create", throttle, CreateOwner(env))

	shopper := r.Group("/", middleware.IsLoggedIn(session))
	{
		shopper.GET("/shop", Shop(env))
		shopper.GET("/cart", CartPage(env))
		shopper.GET("/addtoCart/:productId", AddToCart(env))
		shopper.GET("/removeFromCart/:productId", RemoveFromCart(env))
	}

	owner := r.Group("/", middleware.IsLoggedIn(session), middleware.OwnerOnly())
	{
		owner.GET("/owners/admin", AdminPage(env))
		owner.POST("/products/create", CreateProduct(env))
		owner.POST("/products/:id/update", UpdateProduct(env))
		owner.POST("/products/:id/delete", DeleteProduct(env))
	}

	api := r.Group("/api", middleware.JSONOnly(), middleware.APIAuth(session))
	{
		api.GET("/cart", GetCart(env))
		api.POST("/cart/update-quantity", UpdateCartQuantity(env))
		api.GET("/products", ListProducts(env))
		api.GET("/categories", GetCategories(env))
	}

	apiOwner := api.Group("", middleware.APIOwnerOnly())
	{
		apiOwner.POST("/products", CreateProduct(env))
		apiOwner.PUT("/products/:id", UpdateProduct(env))
		apiOwner.DELETE("/products/:id", DeleteProduct(env))
	}

	return r
}
