package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"grovaapp/internal/backend"
	"grovaapp/internal/demo"
	contextutils "grovaapp/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// liveStub stands in for the HTTP backend
type liveStub struct {
	*backend.DemoBackend
}

func (liveStub) Name() string { return backend.NameHTTP }

func newSelector(t *testing.T, forced bool) *backend.Selector {
	t.Helper()
	sim, err := demo.NewSimulator()
	require.NoError(t, err)
	demoBackend := backend.NewDemoBackend(sim)
	return backend.NewSelector(demoBackend, liveStub{demoBackend}, forced)
}

func newSessionRouter(t *testing.T, selector *backend.Selector) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(sessions.Sessions("grova-session", cookie.NewStore([]byte("test-secret"))))
	router.Use(ClientSession())
	if selector != nil {
		router.Use(SelectBackend(selector))
	}
	return router
}

func doRequest(router http.Handler, method, target string, cookies []*http.Cookie, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestClientSession_AssignsStableID(t *testing.T) {
	router := newSessionRouter(t, nil)
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"client_id":  ClientID(c),
			"context_id": contextutils.GetClientIDFromContext(c.Request.Context()),
		})
	})

	first := doRequest(router, http.MethodGet, "/whoami", nil, nil)
	require.Equal(t, http.StatusOK, first.Code)
	body := decodeBody(t, first)
	id, _ := body["client_id"].(string)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, body["context_id"])

	cookies := first.Result().Cookies()
	require.NotEmpty(t, cookies)

	second := doRequest(router, http.MethodGet, "/whoami", cookies, nil)
	assert.Equal(t, id, decodeBody(t, second)["client_id"])

	other := doRequest(router, http.MethodGet, "/whoami", nil, nil)
	assert.NotEqual(t, id, decodeBody(t, other)["client_id"])
}

func TestSelectBackend_DemoQueryParam(t *testing.T) {
	router := newSessionRouter(t, newSelector(t, false))
	router.GET("/backend", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"backend": BackendFrom(c).Name(), "demo": IsDemo(c)})
	})

	w := doRequest(router, http.MethodGet, "/backend", nil, nil)
	assert.Equal(t, backend.NameHTTP, decodeBody(t, w)["backend"])
	assert.Equal(t, false, decodeBody(t, w)["demo"])

	w = doRequest(router, http.MethodGet, "/backend?demo", nil, nil)
	assert.Equal(t, backend.NameDemo, decodeBody(t, w)["backend"])
	cookies := w.Result().Cookies()

	// The flag sticks to the session without the query parameter
	w = doRequest(router, http.MethodGet, "/backend", cookies, nil)
	assert.Equal(t, backend.NameDemo, decodeBody(t, w)["backend"])
	assert.Equal(t, true, decodeBody(t, w)["demo"])

	w = doRequest(router, http.MethodGet, "/backend?demo=false", cookies, nil)
	assert.Equal(t, backend.NameHTTP, decodeBody(t, w)["backend"])
	cookies = w.Result().Cookies()

	w = doRequest(router, http.MethodGet, "/backend", cookies, nil)
	assert.Equal(t, backend.NameHTTP, decodeBody(t, w)["backend"])
}

func TestSession_OneCookiePerResponse(t *testing.T) {
	router := newSessionRouter(t, newSelector(t, false))
	router.POST("/demo", func(c *gin.Context) {
		require.NoError(t, SetDemo(c, false))
		c.JSON(http.StatusOK, gin.H{"demo": IsDemo(c)})
	})

	// new client id, ?demo and SetDemo all save in one request
	w := doRequest(router, http.MethodPost, "/demo?demo", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Values("Set-Cookie"), 1)
	assert.Len(t, w.Result().Cookies(), 1)
}

func TestSaveSession_KeepsOtherCookies(t *testing.T) {
	router := newSessionRouter(t, nil)
	router.GET("/other", func(c *gin.Context) {
		http.SetCookie(c.Writer, &http.Cookie{Name: "unrelated", Value: "1"})
		require.NoError(t, saveSession(c, sessions.Default(c)))
		c.Status(http.StatusNoContent)
	})

	w := doRequest(router, http.MethodGet, "/other", nil, nil)
	names := make([]string, 0)
	for _, ck := range w.Result().Cookies() {
		names = append(names, ck.Name)
	}
	assert.ElementsMatch(t, []string{"grova-session", "unrelated"}, names)
}

func TestSelectBackend_Forced(t *testing.T) {
	router := newSessionRouter(t, newSelector(t, true))
	router.GET("/backend", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"backend": BackendFrom(c).Name(), "demo": IsDemo(c)})
	})

	w := doRequest(router, http.MethodGet, "/backend?demo=0", nil, nil)
	body := decodeBody(t, w)
	assert.Equal(t, backend.NameDemo, body["backend"])
	assert.Equal(t, true, body["demo"])
}

func TestRequireBearer(t *testing.T) {
	router := newSessionRouter(t, newSelector(t, false))
	router.GET("/secure", RequireBearer(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"token": contextutils.GetBearerTokenFromContext(c.Request.Context())})
	})

	t.Run("missing header", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/secure", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, string(contextutils.ErrorCodeUnauthorized), decodeBody(t, w)["code"])
	})

	t.Run("wrong scheme", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/secure", nil, map[string]string{"Authorization": "Basic abc"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bearer token passed through", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/secure", nil, map[string]string{"Authorization": "Bearer tok-123"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "tok-123", decodeBody(t, w)["token"])
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/secure", nil, map[string]string{"Authorization": "bearer tok-456"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "tok-456", decodeBody(t, w)["token"])
	})

	t.Run("demo sessions skip the check", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/secure?demo", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "", decodeBody(t, w)["token"])
	})
}

func TestSetDemo(t *testing.T) {
	router := newSessionRouter(t, newSelector(t, false))
	router.POST("/demo", func(c *gin.Context) {
		require.NoError(t, SetDemo(c, true))
		c.JSON(http.StatusOK, gin.H{"demo": IsDemo(c)})
	})
	router.GET("/backend", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"backend": BackendFrom(c).Name()})
	})

	w := doRequest(router, http.MethodPost, "/demo", nil, nil)
	assert.Equal(t, true, decodeBody(t, w)["demo"])

	w = doRequest(router, http.MethodGet, "/backend", w.Result().Cookies(), nil)
	assert.Equal(t, backend.NameDemo, decodeBody(t, w)["backend"])
}

func TestBackendFrom_Unset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, BackendFrom(c))
	assert.False(t, IsDemo(c))
	assert.Equal(t, "", ClientID(c))
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"  Bearer   abc  ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bearerToken(tt.header), tt.header)
	}
}

func TestDemoParamEnabled(t *testing.T) {
	for _, raw := range []string{"", "1", "true", "yes"} {
		assert.True(t, demoParamEnabled(raw), raw)
	}
	for _, raw := range []string{"0", "false", "FALSE", "off", "no"} {
		assert.False(t, demoParamEnabled(raw), raw)
	}
}
