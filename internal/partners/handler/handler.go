package handler

import (
	"net/http"

	"campaign_portal_backend/internal/partners/service"
	"campaign_portal_backend/internal/partners/transport"
	"campaign_portal_backend/platform/httpkit"
	"campaign_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for partners.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new partners handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterAdminRoutes registers partner management for admins.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id/assets", h.ListAssets)
	rg.GET("/:id/assets/:channel/download", h.Download)
}

// RegisterReviewRoutes registers asset review for admins.
func (h *Handler) RegisterReviewRoutes(rg *gin.RouterGroup) {
	rg.PUT("/:assetId/feedback", h.SetFeedback)
}

// RegisterPartnerRoutes registers the self-service routes of partner users.
// The partner is resolved from the caller, never from the path.
func (h *Handler) RegisterPartnerRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile", h.Mine)
	rg.GET("/assets", h.ownPartner, h.ListAssets)
	rg.PUT("/assets/:channel", h.ownPartner, h.UpsertAsset)
	rg.POST("/assets/:channel/uploads", h.ownPartner, h.PresignUpload)
	rg.GET("/assets/:channel/download", h.ownPartner, h.Download)
}

const ctxPartnerID = "partnerID"

// ownPartner stores the caller's partner id for the handlers after it.
func (h *Handler) ownPartner(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		c.Abort()
		return
	}

	partnerID, err := h.svc.OwnPartnerID(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		c.Abort()
		return
	}

	c.Set(ctxPartnerID, partnerID)
	c.Next()
}

// partnerID reads the partner from ownPartner or, on admin routes, the path.
func partnerID(c *gin.Context) (uuid.UUID, bool) {
	if v, ok := c.Get(ctxPartnerID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListPartnersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreatePartnerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, result)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Mine(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Mine(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdatePartnerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListAssets(c *gin.Context) {
	id, ok := partnerID(c)
	if !ok {
		return
	}

	result, err := h.svc.Assets(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) UpsertAsset(c *gin.Context) {
	id, ok := partnerID(c)
	if !ok {
		return
	}

	var req transport.UpsertAssetRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.UpsertAsset(c.Request.Context(), id, c.Param("channel"), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) PresignUpload(c *gin.Context) {
	id, ok := partnerID(c)
	if !ok {
		return
	}

	var req transport.PresignUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.PresignUpload(c.Request.Context(), id, c.Param("channel"), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Download(c *gin.Context) {
	id, ok := partnerID(c)
	if !ok {
		return
	}

	var req transport.DownloadRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.DownloadURL(c.Request.Context(), id, c.Param("channel"), req.FileKey)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) SetFeedback(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("assetId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.SetFeedbackRequest
	if !h.bindJSON(c, &req) {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.SetFeedback(c.Request.Context(), identity.UserID(), assetID, req)
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
