package handler

import (
	"net/http"

	"campaign_portal_backend/internal/billables/service"
	"campaign_portal_backend/internal/billables/transport"
	"campaign_portal_backend/platform/httpkit"
	"campaign_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for billables.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new billables handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the admin billables routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Month)
	rg.PUT("", h.UpsertBillable)
	rg.POST("/brands/:brandId/approve", h.Approve)
	rg.POST("/brands/:brandId/dispute", h.Dispute)

	rg.GET("/master-brands", h.ListMasterBrands)
	rg.POST("/master-brands", h.CreateMasterBrand)

	rg.GET("/networks", h.ListNetworkStatus)
	rg.PUT("/networks/:network", h.ReportNetworkStatus)
}

func (h *Handler) Month(c *gin.Context) {
	var req transport.MonthRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.Month(c.Request.Context(), req.BillingMonth)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Approve(c *gin.Context) {
	brandID, err := uuid.Parse(c.Param("brandId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.ApproveRequest
	if !h.bindJSON(c, &req) {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Approve(c.Request.Context(), identity.UserID(), brandID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Dispute(c *gin.Context) {
	brandID, err := uuid.Parse(c.Param("brandId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.DisputeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Dispute(c.Request.Context(), identity.UserID(), brandID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) ListMasterBrands(c *gin.Context) {
	result, err := h.svc.ListMasterBrands(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// CreateMasterBrand answers 201 when every mapping was written and 207 with
// per-mapping results when some failed.
func (h *Handler) CreateMasterBrand(c *gin.Context) {
	var req transport.CreateMasterBrandRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.CreateMasterBrand(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, result)
}

func (h *Handler) UpsertBillable(c *gin.Context) {
	var req transport.UpsertBillableRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.UpsertBillable(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) ListNetworkStatus(c *gin.Context) {
	result, err := h.svc.ListNetworkStatus(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) ReportNetworkStatus(c *gin.Context) {
	var req transport.NetworkStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.ReportNetworkStatus(c.Request.Context(), c.Param("network"), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return false
	}
	return true
}
