package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"                       // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware"     // Echo's stock middleware (CORS, recover, request logging)

	"github.com/finovai/finovai-backend/internal/handler"    // import the handlers that implement business logic
	"github.com/finovai/finovai-backend/internal/middleware" // import middleware for session authentication and rate limiting
	"github.com/finovai/finovai-backend/internal/repository" // session repository backing the auth middleware
)

// Deps bundles everything route registration needs.  Handlers are built in
// main and passed here so the router stays a pure wiring layer.
type Deps struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Conversations *handler.ConversationHandler
	Legacy        *handler.LegacyHandler
	Sessions      *repository.SessionRepo

	// RateLimit is applied to every /api route when non-nil.  It is nil
	// when Redis is unavailable; the API then runs unthrottled.
	RateLimit echo.MiddlewareFunc
}

// Register wires all routes on the provided Echo instance.  Public endpoints
// (health, OTP flow, landing-page chat and signup) take no session; the rest
// sit behind the bearer-session middleware.
func Register(e *echo.Echo, d Deps) {
	// Recovery and permissive CORS apply globally.  The API is consumed by
	// a browser frontend on a different origin, so CORS is not optional.
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowMethods: []string{echo.GET, echo.POST, echo.PATCH, echo.DELETE, echo.OPTIONS},
	}))

	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")
	if d.RateLimit != nil {
		api.Use(d.RateLimit)
	}
	api.GET("/health", handler.Health)

	// Phone/OTP authentication.  Logout is registered publicly on purpose:
	// it reads the bearer token itself and deleting an unknown session is a
	// success, so an expired client can always log out cleanly.
	api.POST("/auth/send-otp", d.Auth.SendOTP)
	api.POST("/auth/verify-otp", d.Auth.VerifyOTP)
	api.POST("/auth/logout", d.Auth.Logout)

	// Landing-page endpoints predating the session flow.
	api.POST("/chat", d.Legacy.Chat)
	api.POST("/signup", d.Legacy.Signup)

	// Everything below requires a live session.
	auth := api.Group("")
	auth.Use(middleware.SessionAuth(d.Sessions))
	auth.GET("/auth/me", d.Auth.Me)
	auth.PATCH("/users/me", d.Users.UpdateMe)

	auth.GET("/conversations", d.Conversations.List)
	auth.POST("/conversations", d.Conversations.Create)
	auth.GET("/conversations/:id", d.Conversations.Get)
	auth.GET("/conversations/:id/messages", d.Conversations.ListMessages)
	auth.POST("/conversations/:id/messages", d.Conversations.SendMessage)
	auth.DELETE("/conversations/:id/messages/:messageId", d.Conversations.DeleteMessage)
}
