package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/interfaces/http/middleware"
)

// RouteRegistrar registers a set of routes under the API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithAPIMiddleware adds middleware that runs on every API route, such as
// authentication
func WithAPIMiddleware(mw ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.middleware = append(r.middleware, mw...)
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be mounted by Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup mounts all registrars
func (r *Router) Setup() {
	api := r.engine.Group("/api/"+r.apiVersion, r.middleware...)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// ResourceGroup is the routes of one permission module. Every route in it
// passes through RequireModule for that module.
type ResourceGroup struct {
	prefix string
	module identity.Module
	guard  middleware.ModuleGuard
	routes []routeDefinition
}

// NewResourceGroup creates a group gated on module. An empty module leaves
// the group open to every authenticated caller.
func NewResourceGroup(prefix string, module identity.Module, guard middleware.ModuleGuard) *ResourceGroup {
	return &ResourceGroup{prefix: prefix, module: module, guard: guard}
}

// GET registers a GET route
func (g *ResourceGroup) GET(path string, handlers ...gin.HandlerFunc) *ResourceGroup {
	return g.handle(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (g *ResourceGroup) POST(path string, handlers ...gin.HandlerFunc) *ResourceGroup {
	return g.handle(http.MethodPost, path, handlers)
}

// PUT registers a PUT route
func (g *ResourceGroup) PUT(path string, handlers ...gin.HandlerFunc) *ResourceGroup {
	return g.handle(http.MethodPut, path, handlers)
}

// DELETE registers a DELETE route
func (g *ResourceGroup) DELETE(path string, handlers ...gin.HandlerFunc) *ResourceGroup {
	return g.handle(http.MethodDelete, path, handlers)
}

func (g *ResourceGroup) handle(method, path string, handlers []gin.HandlerFunc) *ResourceGroup {
	g.routes = append(g.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return g
}

// CRUDHandler is a resource handler with the five standard operations
type CRUDHandler interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// CRUD registers list, create, get, update and delete
func (g *ResourceGroup) CRUD(h CRUDHandler) *ResourceGroup {
	return g.
		GET("", h.List).
		POST("", h.Create).
		GET("/:id", h.Get).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete)
}

// RegisterRoutes implements RouteRegistrar
func (g *ResourceGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(g.prefix)
	if g.module != "" {
		group.Use(middleware.RequireModule(g.module, g.guard))
	}
	for _, route := range g.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
}

// Module returns the module gating the group
func (g *ResourceGroup) Module() identity.Module {
	return g.module
}
