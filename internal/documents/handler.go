package documents

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"reception-backend/internal/category"
	"reception-backend/internal/shared/server/respond"
	"reception-backend/internal/store"
)

// Handler serves the document read endpoints.
type Handler struct {
	Repo  Repo
	Files store.BlobStore
}

func NewHandler(repo Repo, files store.BlobStore) *Handler {
	return &Handler{Repo: repo, Files: files}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.GET("/documents/:id/file", h.download)
	rg.PATCH("/documents/:id/applicant", h.updateApplicant)
}

func (h *Handler) list(c *gin.Context) {
	filter := ListFilter{}
	if raw := c.Query("status"); raw != "" {
		status, ok := ParseStatus(raw)
		if !ok {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown status", nil)
			return
		}
		filter.Status = status
	}
	if raw := c.Query("category"); raw != "" {
		cat, err := category.Parse(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown category", nil)
			return
		}
		filter.Category = cat
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	docs, err := h.Repo.List(c.Request.Context(), filter)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}
	respond.OK(c, gin.H{"documents": ToResponses(docs)})
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load document", nil)
		return
	}
	respond.OK(c, ToResponse(doc))
}

func (h *Handler) download(c *gin.Context) {
	doc, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load document", nil)
		return
	}
	if doc.StoredPath == "" || h.Files == nil {
		respond.Error(c, http.StatusNotFound, "not_found", "stored file not available", nil)
		return
	}

	rc, err := h.Files.Open(c.Request.Context(), doc.StoredPath)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "stored file not available", nil)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+doc.OriginalName+`"`)
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

type applicantUpdateRequest struct {
	ApplicantName     string `json:"applicantName" binding:"required"`
	ApplicantLastname string `json:"applicantLastname" binding:"required"`
}

// Reviewers can correct OCR-garbled applicant names on any document.
func (h *Handler) updateApplicant(c *gin.Context) {
	var req applicantUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "applicantName and applicantLastname are required", nil)
		return
	}
	name := strings.TrimSpace(req.ApplicantName)
	lastname := strings.TrimSpace(req.ApplicantLastname)
	if name == "" || lastname == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "applicantName and applicantLastname are required", nil)
		return
	}

	id := c.Param("id")
	if err := h.Repo.UpdateApplicant(c.Request.Context(), id, name, lastname, time.Now().UTC()); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update document", nil)
		return
	}

	doc, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load document", nil)
		return
	}
	respond.OK(c, ToResponse(doc))
}
