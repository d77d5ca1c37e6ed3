// Package api wires the HTTP routes of the apps and subscriptions service.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/router-for-me/AppSubscriptions/internal/http/api/handlers"
	"github.com/router-for-me/AppSubscriptions/internal/metrics"
	"github.com/router-for-me/AppSubscriptions/internal/ratelimit"
	"github.com/router-for-me/AppSubscriptions/internal/store"
)

// Dependencies are the collaborators behind the HTTP routes.
type Dependencies struct {
	DB          handlers.Pinger         // Database handle used by /healthz.
	Stores      *store.Stores           // Entity repositories.
	Accounts    handlers.AccountService // Signup, login and email confirmation.
	RateLimiter *ratelimit.Manager      // Throttles /signup and /login; nil disables throttling.
	Metrics     bool                    // Serve /metrics and instrument requests.
}

// NewRouter builds a gin engine with the default middleware and every route registered.
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	if deps.Metrics {
		r.Use(metrics.Middleware())
		r.GET(metrics.Path, gin.WrapH(metrics.Handler()))
	}
	RegisterRoutes(r, deps)
	return r
}

// RegisterRoutes registers the account, app, subscription, plan and health routes.
func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	if r == nil || deps.Stores == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(deps.DB)
	r.GET("/healthz", healthHandler.Healthz)

	throttled := r.Group("")
	throttled.Use(ratelimit.Middleware(deps.RateLimiter))

	signupHandler := handlers.NewSignupHandler(deps.Accounts)
	throttled.POST("/signup", signupHandler.Create)
	r.POST("/confirm-email", signupHandler.ConfirmEmail)

	loginHandler := handlers.NewLoginHandler(deps.Accounts)
	throttled.POST("/login", loginHandler.Create)

	planHandler := handlers.NewPlanHandler(deps.Stores.Plans)
	r.GET("/plans", planHandler.List)
	r.GET("/plans/:id", planHandler.Get)

	authed := r.Group("")
	authed.Use(tokenAuthMiddleware(deps.Stores.Tokens))

	appHandler := handlers.NewAppHandler(deps.Stores.Apps)
	authed.GET("/app", appHandler.List)
	authed.POST("/app", appHandler.Create)
	authed.GET("/app/:id", appHandler.Get)
	authed.PUT("/app/:id", appHandler.Update)
	authed.DELETE("/app/:id", appHandler.Delete)

	subscriptionHandler := handlers.NewSubscriptionHandler(deps.Stores.Subscriptions, deps.Stores.Apps, deps.Stores.Plans)
	authed.GET("/subscriptions", subscriptionHandler.List)
	authed.POST("/subscriptions", subscriptionHandler.Create)
	authed.GET("/subscriptions/:id", subscriptionHandler.GetByApp)
	authed.PUT("/subscriptions/:id", subscriptionHandler.Update)
	authed.PATCH("/subscriptions/:id", subscriptionHandler.PartialUpdate)
}
