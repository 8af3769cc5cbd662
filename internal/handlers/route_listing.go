package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"grovaapp/internal/observability"

	"github.com/gin-gonic/gin"
)

// RouteInfo represents information about a single route
type RouteInfo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	HandlerName string `json:"handler_name"`
}

// RouteListing is the body of GET /?json=true
type RouteListing struct {
	Service string      `json:"service"`
	Count   int         `json:"count"`
	Routes  []RouteInfo `json:"routes"`
}

// RouteListingHandler lists the routes registered on the engine
type RouteListingHandler struct {
	serviceName string
	routes      []RouteInfo
}

// NewRouteListingHandler creates a new route listing handler
func NewRouteListingHandler(serviceName string) *RouteListingHandler {
	return &RouteListingHandler{
		serviceName: serviceName,
		routes:      []RouteInfo{},
	}
}

// CollectRoutes snapshots the engine's routes sorted by path then method
func (h *RouteListingHandler) CollectRoutes(engine *gin.Engine) {
	h.routes = []RouteInfo{}
	for _, route := range engine.Routes() {
		if strings.HasPrefix(route.Path, "/debug/") {
			continue
		}
		h.routes = append(h.routes, RouteInfo{
			Method:      route.Method,
			Path:        route.Path,
			HandlerName: shortHandlerName(route.Handler),
		})
	}
	sort.Slice(h.routes, func(i, j int) bool {
		if h.routes[i].Path != h.routes[j].Path {
			return h.routes[i].Path < h.routes[j].Path
		}
		return h.routes[i].Method < h.routes[j].Method
	})
}

// Routes returns the collected routes
func (h *RouteListingHandler) Routes() []RouteInfo {
	return h.routes
}

// Serve answers with JSON when ?json=true and with a plain text table otherwise
func (h *RouteListingHandler) Serve(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_route_listing")
	defer observability.FinishSpan(span, nil)

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	if c.Query("json") == "true" {
		c.JSON(http.StatusOK, RouteListing{
			Service: h.serviceName,
			Count:   len(h.routes),
			Routes:  h.routes,
		})
		return
	}
	c.String(http.StatusOK, h.text())
}

func (h *RouteListingHandler) text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d routes\n\n", h.serviceName, len(h.routes))
	for _, r := range h.routes {
		fmt.Fprintf(&b, "%-7s %-55s %s\n", r.Method, r.Path, r.HandlerName)
	}
	return b.String()
}

// shortHandlerName trims the module path from a handler's function name
func shortHandlerName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}
