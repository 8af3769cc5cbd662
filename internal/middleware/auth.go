// Package middleware provides the session, authentication, error recovery
// and response contract middleware for the Gin router.
package middleware

import (
	"net/http"
	"strings"

	"grovaapp/internal/backend"
	"grovaapp/internal/observability"
	contextutils "grovaapp/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context and session keys
const (
	// ClientIDKey is the gin context key of the dashboard client id
	ClientIDKey = observability.SessionClientIDKey
	// DemoKey is the session and gin context key of the demo flag
	DemoKey = "demo"
	// BackendKey is the gin context key of the session's backend
	BackendKey = "backend"
	// DemoQueryParam switches a session into or out of demo mode
	DemoQueryParam = "demo"
)

// ClientSession assigns every browser a stable client id kept in the session
// cookie. Preferences and app state are scoped by it.
func ClientSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		clientID, _ := session.Get(ClientIDKey).(string)
		if clientID == "" {
			clientID = uuid.NewString()
			session.Set(ClientIDKey, clientID)
			if err := saveSession(c, session); err != nil {
				HandleAppError(c, contextutils.WrapError(err, "failed to save session"))
				c.Abort()
				return
			}
		}

		c.Set(ClientIDKey, clientID)
		c.Request = c.Request.WithContext(contextutils.WithClientID(c.Request.Context(), clientID))
		c.Next()
	}
}

// SelectBackend resolves the session's demo flag and stores the matching
// backend in the gin context. ?demo turns demo mode on, ?demo=0 or
// ?demo=false turns it off; otherwise the session flag is kept.
func SelectBackend(selector *backend.Selector) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		demo, _ := session.Get(DemoKey).(bool)

		if raw, present := c.GetQuery(DemoQueryParam); present {
			wanted := demoParamEnabled(raw)
			if wanted != demo {
				demo = wanted
				session.Set(DemoKey, demo)
				if err := saveSession(c, session); err != nil {
					HandleAppError(c, contextutils.WrapError(err, "failed to save session"))
					c.Abort()
					return
				}
			}
		}
		if selector.Forced() {
			demo = true
		}

		be := selector.For(demo)
		c.Set(DemoKey, demo)
		c.Set(BackendKey, be)
		c.Next()
	}
}

// RequireBearer passes the dashboard's bearer token through to the upstream
// API. Demo sessions skip the check.
func RequireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsDemo(c) {
			c.Next()
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  string(contextutils.ErrorCodeUnauthorized),
			})
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(contextutils.WithBearerToken(c.Request.Context(), token))
		c.Next()
	}
}

// SetDemo updates the session's demo flag outside of the query hint
func SetDemo(c *gin.Context, demo bool) error {
	session := sessions.Default(c)
	session.Set(DemoKey, demo)
	if err := saveSession(c, session); err != nil {
		return contextutils.WrapError(err, "failed to save session")
	}
	c.Set(DemoKey, demo)
	return nil
}

// IsDemo reports whether the request is served from fixtures
func IsDemo(c *gin.Context) bool {
	return c.GetBool(DemoKey)
}

// ClientID returns the client id set by ClientSession
func ClientID(c *gin.Context) string {
	return c.GetString(ClientIDKey)
}

// BackendFrom returns the backend chosen by SelectBackend
func BackendFrom(c *gin.Context) backend.Backend {
	v, ok := c.Get(BackendKey)
	if !ok {
		return nil
	}
	be, _ := v.(backend.Backend)
	return be
}

// saveSession writes the session cookie, replacing any Set-Cookie an earlier
// save in the same request added, so the response carries one cookie per name.
func saveSession(c *gin.Context, session sessions.Session) error {
	header := c.Writer.Header()
	before := header.Values("Set-Cookie")
	before = append([]string(nil), before...)
	if err := session.Save(); err != nil {
		return err
	}

	after := header.Values("Set-Cookie")
	if len(after) <= len(before) {
		return nil
	}
	added := after[len(before):]
	written := make(map[string]struct{}, len(added))
	for _, line := range added {
		written[cookieName(line)] = struct{}{}
	}

	kept := make([]string, 0, len(after))
	for _, line := range before {
		if _, replaced := written[cookieName(line)]; !replaced {
			kept = append(kept, line)
		}
	}
	header["Set-Cookie"] = append(kept, added...)
	return nil
}

func cookieName(setCookie string) string {
	name, _, _ := strings.Cut(setCookie, "=")
	return strings.TrimSpace(name)
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func demoParamEnabled(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "0", "false", "off", "no":
		return false
	}
	return true
}
