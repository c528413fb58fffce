package review

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reception-backend/internal/category"
	"reception-backend/internal/documents"
	"reception-backend/internal/shared/server/middleware"
	"reception-backend/internal/shared/server/respond"
	"reception-backend/internal/users"
)

// Handler wires HTTP handlers to the review service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches review routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/review/queue", h.queue)
	rg.POST("/documents/:id/claim", h.claim)
	rg.POST("/documents/:id/release", h.release)
	rg.POST("/documents/:id/resolve", h.resolve)
	rg.POST("/documents/:id/reject", h.reject)
	rg.GET("/documents/:id/actions", h.actions)
}

func (h *Handler) queue(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	docs, err := h.Svc.Queue(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list queue", nil)
		return
	}
	respond.OK(c, gin.H{"documents": documents.ToResponses(docs)})
}

func (h *Handler) claim(c *gin.Context) {
	documentID := c.Param("id")
	if documentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document id is required", nil)
		return
	}
	reviewerID := middleware.UserIDFromContext(c)

	doc, err := h.Svc.Claim(c.Request.Context(), documentID, reviewerID)
	if err != nil {
		respondReviewError(c, err, "failed to claim document")
		return
	}
	respond.OK(c, documents.ToResponse(doc))
}

func (h *Handler) release(c *gin.Context) {
	documentID := c.Param("id")
	if documentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document id is required", nil)
		return
	}
	reviewerID := middleware.UserIDFromContext(c)
	admin := middleware.UserRoleFromContext(c) == string(users.RoleAdmin)

	doc, err := h.Svc.Release(c.Request.Context(), documentID, reviewerID, admin)
	if err != nil {
		respondReviewError(c, err, "failed to release document")
		return
	}
	respond.OK(c, documents.ToResponse(doc))
}

func (h *Handler) resolve(c *gin.Context) {
	documentID := c.Param("id")
	if documentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document id is required", nil)
		return
	}

	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	final, err := category.Parse(req.FinalCategory)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown category", []map[string]string{
			{"field": "finalCategory", "issue": "unknown"},
		})
		return
	}

	reviewerID := middleware.UserIDFromContext(c)

	doc, err := h.Svc.Resolve(c.Request.Context(), documentID, reviewerID, final, req.Comment)
	if err != nil {
		respondReviewError(c, err, "failed to resolve document")
		return
	}
	respond.OK(c, documents.ToResponse(doc))
}

func (h *Handler) reject(c *gin.Context) {
	documentID := c.Param("id")
	if documentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document id is required", nil)
		return
	}

	// Body is optional for reject.
	var req rejectRequest
	_ = c.ShouldBindJSON(&req)

	reviewerID := middleware.UserIDFromContext(c)

	doc, err := h.Svc.Reject(c.Request.Context(), documentID, reviewerID, req.Comment)
	if err != nil {
		respondReviewError(c, err, "failed to reject document")
		return
	}
	respond.OK(c, documents.ToResponse(doc))
}

func (h *Handler) actions(c *gin.Context) {
	documentID := c.Param("id")
	if documentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document id is required", nil)
		return
	}

	trail, err := h.Svc.Trail(c.Request.Context(), documentID)
	if err != nil {
		respondReviewError(c, err, "failed to load audit trail")
		return
	}
	respond.OK(c, gin.H{"actions": ToActionResponses(trail)})
}

func respondReviewError(c *gin.Context, err error, fallback string) {
	var transition *TransitionError
	switch {
	case errors.Is(err, documents.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrAlreadyClaimed):
		respond.Error(c, http.StatusConflict, "already_claimed", "document is already claimed by another reviewer", nil)
	case errors.As(err, &transition):
		respond.Error(c, http.StatusConflict, "invalid_transition", transition.Error(), nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "document is assigned to another reviewer", nil)
	case errors.Is(err, documents.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid input", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
