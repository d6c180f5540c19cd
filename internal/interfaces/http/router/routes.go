package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/marvelstore/backend/internal/interfaces/http/dto"
	"github.com/marvelstore/backend/internal/interfaces/http/handler"
	"github.com/marvelstore/backend/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers behind the route table
type Handlers struct {
	Health   *handler.HealthHandler
	Products *handler.ProductHandler
	Users    *handler.UserHandler
	Orders   *handler.OrderHandler
}

// Gates are the per-route access checks. Session loads the user from the
// bearer token; Admin additionally requires the admin role.
type Gates struct {
	Session gin.HandlerFunc
	Admin   gin.HandlerFunc
}

// NewGates builds the gates from an authenticator
func NewGates(authenticator middleware.Authenticator) Gates {
	return Gates{
		Session: middleware.Protect(authenticator),
		Admin:   middleware.Admin(),
	}
}

// Options configures Mount
type Options struct {
	// UploadsDir, when set, is served at UploadsPrefix (local media driver)
	UploadsDir    string
	UploadsPrefix string
}

// Mount registers the whole API on engine, plus static uploads and the
// JSON 404 for unknown routes
func Mount(engine *gin.Engine, h Handlers, g Gates, opts Options) {
	NewRouter(engine).
		Register(
			HealthRoutes(h.Health),
			ProductRoutes(h.Products, g),
			UserRoutes(h.Users, g),
			OrderRoutes(h.Orders, g),
		).
		Setup()

	if opts.UploadsDir != "" {
		prefix := opts.UploadsPrefix
		if prefix == "" {
			prefix = "/uploads"
		}
		engine.Static(strings.TrimRight(prefix, "/"), opts.UploadsDir)
	}

	engine.NoRoute(notFound)
}

// HealthRoutes are the liveness and readiness probes
func HealthRoutes(h *handler.HealthHandler) *DomainGroup {
	return NewDomainGroup("health", "/health").
		GET("", h.Health).
		GET("/ready", h.Ready)
}

// ProductRoutes are the public catalog and the admin product management
func ProductRoutes(h *handler.ProductHandler, g Gates) *DomainGroup {
	return NewDomainGroup("products", "/products").
		GET("", h.List).
		GET("/featured", h.Featured).
		GET("/category/:category", h.ByCategory).
		GET("/:id", h.Get).
		POST("", g.Session, g.Admin, h.Create).
		PUT("/:id", g.Session, g.Admin, h.Update).
		DELETE("/:id", g.Session, g.Admin, h.Delete).
		DELETE("/:id/images/:imageId", g.Session, g.Admin, h.DeleteImage)
}

// UserRoutes are registration, login and the account endpoints
func UserRoutes(h *handler.UserHandler, g Gates) *DomainGroup {
	users := NewDomainGroup("users", "/users").
		POST("/register", h.Register).
		POST("/login", h.Login).
		GET("", g.Session, g.Admin, h.ListUsers)

	users.Group("session", "").
		Use(g.Session).
		POST("/logout", h.Logout).
		GET("/profile", h.GetProfile).
		PUT("/profile", h.UpdateProfile).
		POST("/cart", h.AddToCart).
		POST("/cart/merge", h.MergeCart).
		PUT("/cart/:productId", h.UpdateCartItem).
		DELETE("/cart/:productId", h.RemoveCartItem).
		POST("/wishlist", h.AddToWishlist).
		DELETE("/wishlist/:productId", h.RemoveFromWishlist).
		POST("/addresses", h.AddAddress)

	return users
}

// OrderRoutes are checkout, order history and admin order management
func OrderRoutes(h *handler.OrderHandler, g Gates) *DomainGroup {
	return NewDomainGroup("orders", "/orders").
		Use(g.Session).
		GET("", g.Admin, h.List).
		POST("", h.Create).
		GET("/myorders", h.MyOrders).
		GET("/stats", g.Admin, h.Stats).
		GET("/:id", h.Get).
		PUT("/:id/pay", h.Pay).
		PUT("/:id/status", g.Admin, h.UpdateStatus)
}

func notFound(c *gin.Context) {
	c.JSON(dto.GetHTTPStatus(dto.ErrCodeRouteNotFound), dto.NewErrorResponse(
		dto.ErrCodeRouteNotFound,
		"Route not found: "+c.Request.Method+" "+c.Request.URL.Path,
		middleware.GetRequestID(c),
	))
}
