package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteListingHandler_CollectRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", func(_ *gin.Context) {})
	router.POST("/test", func(_ *gin.Context) {})
	router.GET("/debug/pprof", func(_ *gin.Context) {})
	v1 := router.Group("/v1")
	{
		v1.GET("/projects", func(_ *gin.Context) {})
		v1.POST("/projects", func(_ *gin.Context) {})
	}

	handler := NewRouteListingHandler("grova")
	handler.CollectRoutes(router)

	routes := handler.Routes()
	require.Len(t, routes, 4)
	assert.Equal(t, "/", routes[0].Path)
	assert.Equal(t, "/test", routes[1].Path)
	assert.Equal(t, RouteInfo{Method: "GET", Path: "/v1/projects", HandlerName: routes[2].HandlerName}, routes[2])
	assert.Equal(t, "POST", routes[3].Method)
}

func TestRouteListingHandler_Serve(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/v1/projects", func(_ *gin.Context) {})
	handler := NewRouteListingHandler("grova")
	router.GET("/", handler.Serve)
	handler.CollectRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?json=true", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var listing RouteListing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Equal(t, "grova", listing.Service)
	assert.Equal(t, 2, listing.Count)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, w.Body.String(), "grova: 2 routes")
	assert.Contains(t, w.Body.String(), "/v1/projects")
}

func TestShortHandlerName(t *testing.T) {
	assert.Equal(t, "handlers.(*FeedbackHandler).Inbox", shortHandlerName("grovaapp/internal/handlers.(*FeedbackHandler).Inbox-fm"))
	assert.Equal(t, "main.func1", shortHandlerName("main.func1"))
}
