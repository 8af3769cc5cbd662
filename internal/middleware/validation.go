package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"grovaapp/internal/observability"
	contextutils "grovaapp/internal/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// maxLoggedBody caps how much of an invalid body ends up in the logs
const maxLoggedBody = 200

// ResponseValidationMiddleware checks every 2xx JSON response against the
// documented 200 schema of its route. A response that breaks the contract is
// replaced by a 500 so that drift is caught in development and tests.
func ResponseValidationMiddleware(loader *SchemaLoader, logger *observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		originalWriter := c.Writer
		capture := &responseCaptureWriter{
			ResponseWriter: originalWriter,
			body:           &bytes.Buffer{},
		}
		c.Writer = capture

		c.Next()

		c.Writer = originalWriter
		statusCode := capture.Status()

		flush := func() {
			originalWriter.WriteHeader(statusCode)
			_, _ = originalWriter.Write(capture.body.Bytes())
		}

		if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices || capture.body.Len() == 0 {
			flush()
			return
		}

		schemaName := loader.DetermineSchemaFromPath(c.Request.URL.Path, c.Request.Method)
		if schemaName == "" {
			flush()
			return
		}

		ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "response_validation",
			attribute.String("http.path", c.Request.URL.Path),
			attribute.String("schema.name", schemaName),
		)
		defer span.End()

		var responseData interface{}
		err := json.Unmarshal(capture.body.Bytes(), &responseData)
		if err == nil {
			err = loader.ValidateData(responseData, schemaName)
		}
		if err == nil {
			span.SetAttributes(attribute.Bool("schema.valid", true))
			flush()
			return
		}

		span.SetAttributes(attribute.Bool("schema.valid", false))
		logger.Error(ctx, "Response validation failed", err, map[string]interface{}{
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"schema_name":   schemaName,
			"response_data": truncate(capture.body.String(), maxLoggedBody),
		})

		appErr := contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInternalError,
			contextutils.SeverityError,
			"Response validation failed",
			"API response does not match the OpenAPI schema "+schemaName,
			err,
		)
		body, _ := json.Marshal(appErr.ToJSON())
		originalWriter.Header().Set("Content-Type", "application/json; charset=utf-8")
		originalWriter.WriteHeader(http.StatusInternalServerError)
		_, _ = originalWriter.Write(body)
	}
}

// RequestValidationMiddleware rejects JSON bodies that do not match the
// documented request schema of their route. Undocumented routes and routes
// without a request schema pass through.
func RequestValidationMiddleware(loader *SchemaLoader, logger *observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch {
			c.Next()
			return
		}

		schemaName := loader.DetermineRequestSchemaFromPath(c.Request.URL.Path, method)
		if schemaName == "" || c.Request.Body == nil {
			c.Next()
			return
		}

		body, err := c.GetRawData()
		if err != nil {
			HandleBindError(c, err)
			c.Abort()
			return
		}
		// Restore the request body so handlers can read it
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		if len(body) == 0 {
			c.Next()
			return
		}

		var requestData interface{}
		if err := json.Unmarshal(body, &requestData); err != nil {
			HandleBindError(c, err)
			c.Abort()
			return
		}
		if err := loader.ValidateData(requestData, schemaName); err != nil {
			logger.Warn(c.Request.Context(), "Request validation failed", map[string]interface{}{
				"method":      method,
				"path":        c.Request.URL.Path,
				"schema_name": schemaName,
				"error":       err.Error(),
			})
			HandleAppError(c, contextutils.NewAppErrorWithCause(
				contextutils.ErrorCodeValidationFailed,
				contextutils.SeverityWarn,
				"Invalid request data",
				err.Error(),
				err,
			))
			c.Abort()
			return
		}

		c.Next()
	}
}

// responseCaptureWriter buffers the response body until it is validated
type responseCaptureWriter struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (w *responseCaptureWriter) WriteHeader(statusCode int) {
	w.status = statusCode
}

func (w *responseCaptureWriter) WriteHeaderNow() {}

func (w *responseCaptureWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *responseCaptureWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

func (w *responseCaptureWriter) Written() bool {
	return w.body.Len() > 0 || w.status != 0
}

func (w *responseCaptureWriter) Size() int {
	return w.body.Len()
}

func (w *responseCaptureWriter) Status() int {
	if w.status != 0 {
		return w.status
	}
	return http.StatusOK
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
