package handlers

import (
	"net/http"

	"grovaapp/internal/models"
	"grovaapp/internal/observability"
	"grovaapp/internal/services"

	"github.com/gin-gonic/gin"
)

// BillingHandler serves plan status, the tier catalog and the checkout and
// portal redirects
type BillingHandler struct {
	billingService  *services.BillingService
	feedbackService *services.FeedbackService
	logger          *observability.Logger
}

// NewBillingHandler creates a new BillingHandler instance
func NewBillingHandler(billingService *services.BillingService, feedbackService *services.FeedbackService, logger *observability.Logger) *BillingHandler {
	return &BillingHandler{billingService: billingService, feedbackService: feedbackService, logger: logger}
}

// Status handles GET /v1/billing/status?project_id=
func (h *BillingHandler) Status(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_billing_status")
	defer observability.FinishSpan(span, nil)

	projectID, ok := requiredQuery(c, "project_id")
	if !ok {
		return
	}
	be, ok := currentBackend(c)
	if !ok {
		return
	}
	status, err := be.BillingStatus(ctx, projectID)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Overview handles GET /v1/billing/overview?project_id=
func (h *BillingHandler) Overview(c *gin.Context) {
	overview, ok := h.overview(c, "get_billing_overview")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, overview)
}

// Tiers handles GET /v1/billing/tiers?project_id=
func (h *BillingHandler) Tiers(c *gin.Context) {
	overview, ok := h.overview(c, "get_billing_tiers")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, overview.Tiers)
}

func (h *BillingHandler) overview(c *gin.Context, name string) (services.BillingOverview, bool) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), name)
	defer observability.FinishSpan(span, nil)

	projectID, ok := requiredQuery(c, "project_id")
	if !ok {
		return services.BillingOverview{}, false
	}
	be, ok := currentBackend(c)
	if !ok {
		return services.BillingOverview{}, false
	}
	project, ok := resolveProject(c, h.feedbackService, be, projectID)
	if !ok {
		return services.BillingOverview{}, false
	}
	overview, err := h.billingService.Overview(ctx, be, project)
	if err != nil {
		HandleAppError(c, err)
		return services.BillingOverview{}, false
	}
	return overview, true
}

// Checkout handles POST /v1/billing/checkout
func (h *BillingHandler) Checkout(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "billing_checkout")
	defer observability.FinishSpan(span, nil)

	var req models.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}
	be, ok := currentBackend(c)
	if !ok {
		return
	}
	redirect, err := be.Checkout(ctx, req)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	h.logger.Info(ctx, "Checkout session created", map[string]interface{}{
		"project_id": req.ProjectID,
		"tier":       req.Tier,
	})
	c.JSON(http.StatusOK, redirect)
}

// Portal handles POST /v1/billing/portal
func (h *BillingHandler) Portal(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "billing_portal")
	defer observability.FinishSpan(span, nil)

	var req models.PortalRequest
	if !bindJSON(c, &req) {
		return
	}
	be, ok := currentBackend(c)
	if !ok {
		return
	}
	redirect, err := be.Portal(ctx, req)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, redirect)
}
