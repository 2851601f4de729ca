package router

import (
	"github.com/gin-gonic/gin"
	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/interfaces/http/handler"
	"github.com/hostly/ordercore/internal/interfaces/http/middleware"
)

// Handlers bundles every HTTP handler the API mounts
type Handlers struct {
	Orders      *handler.OrderHandler
	Menu        *handler.MenuHandler
	Permissions *handler.PermissionHandler
	Events      *handler.EventsHandler
	Auth        *handler.AuthHandler
	Health      *handler.HealthHandler
}

// Mount registers the public and authenticated API on engine. authenticate
// resolves the principal; matrix backs the edge permission checks.
func Mount(engine *gin.Engine, h Handlers, authenticate gin.HandlerFunc, matrix *access.Matrix) {
	if h.Health != nil {
		engine.GET("/health", h.Health.Live)
		engine.GET("/ready", h.Health.Ready)
	}

	r := NewRouter(engine)

	public := NewDomainGroup("public", "/public")
	public.GET("/menu", h.Menu.PublicList)
	public.POST("/orders", h.Orders.Create)
	r.Register(public)

	authGroup := NewDomainGroup("auth", "/auth").Use(authenticate)
	authGroup.GET("/me", h.Auth.Me)
	authGroup.POST("/revoke", h.Auth.Revoke)
	r.Register(authGroup)

	orders := NewDomainGroup("orders", "/orders").Use(authenticate)
	orders.GET("", middleware.RequireModule(matrix, access.ModuleOrders, access.ActionRead), h.Orders.List)
	orders.GET("/:id", middleware.RequireModule(matrix, access.ModuleOrders, access.ActionRead), h.Orders.Get)
	orders.PATCH("/:id/status", middleware.RequireModule(matrix, access.ModuleOrders, access.ActionUpdate), h.Orders.Transition)
	orders.POST("/:id/print", middleware.RequireModule(matrix, access.ModuleOrders, access.ActionUpdate), h.Orders.MarkPrinted)
	r.Register(orders)

	dishes := NewDomainGroup("dishes", "/dishes").Use(authenticate)
	dishes.GET("", middleware.RequireModule(matrix, access.ModuleSupplyChain, access.ActionRead), h.Menu.List)
	dishes.GET("/:id", middleware.RequireModule(matrix, access.ModuleSupplyChain, access.ActionRead), h.Menu.Get)
	dishes.POST("", middleware.RequireModule(matrix, access.ModuleSupplyChain, access.ActionCreate), h.Menu.Create)
	dishes.PUT("/:id", middleware.RequireModule(matrix, access.ModuleSupplyChain, access.ActionUpdate), h.Menu.Update)
	dishes.DELETE("/:id", middleware.RequireModule(matrix, access.ModuleSupplyChain, access.ActionDelete), h.Menu.Delete)
	r.Register(dishes)

	permissions := NewDomainGroup("permissions", "/permissions").Use(authenticate)
	permissions.GET("/me", h.Permissions.Grants)
	permissions.GET("/check", h.Permissions.Check)
	r.Register(permissions)

	users := NewDomainGroup("users", "/users").Use(authenticate)
	users.GET("/:user_id/overrides", middleware.RequireModule(matrix, access.ModuleUsers, access.ActionRead), h.Permissions.Overrides)
	users.PUT("/:user_id/overrides", middleware.RequireModule(matrix, access.ModuleUsers, access.ActionUpdate), h.Permissions.SetOverride)
	users.DELETE("/:user_id/overrides", middleware.RequireModule(matrix, access.ModuleUsers, access.ActionDelete), h.Permissions.ClearOverrides)
	r.Register(users)

	events := NewDomainGroup("events", "/events").Use(authenticate)
	events.GET("/stream", middleware.RequireModule(matrix, access.ModuleOrders, access.ActionRead), h.Events.Stream)
	events.POST("/sessions/:id/mute", h.Events.SetMuted)
	events.POST("/sessions/:id/push-permission", h.Events.SetPushPermission)
	r.Register(events)

	r.Setup()
}
