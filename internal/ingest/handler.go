package ingest

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"reception-backend/internal/documents"
	"reception-backend/internal/ocr"
	"reception-backend/internal/rasterize"
	"reception-backend/internal/shared/server/respond"
)

// Handler exposes the upload endpoint.
type Handler struct {
	Svc *Service
	// MaxFiles bounds how many files one request may carry.
	MaxFiles int
	// MaxFileSize bounds a single file's size in bytes.
	MaxFileSize int64
}

func NewHandler(svc *Service, maxFiles int, maxFileSize int64) *Handler {
	if maxFiles <= 0 {
		maxFiles = 20
	}
	return &Handler{Svc: svc, MaxFiles: maxFiles, MaxFileSize: maxFileSize}
}

// RegisterRoutes attaches upload routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
}

// uploadResult reports the outcome for one file in a batch.
type uploadResult struct {
	FileName string                      `json:"fileName"`
	Document *documents.DocumentResponse `json:"document,omitempty"`
	Error    string                      `json:"error,omitempty"`
}

func (h *Handler) upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "expected multipart form data", nil)
		return
	}

	name := c.PostForm("name")
	lastname := c.PostForm("lastname")
	if name == "" || lastname == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "name and lastname are required", []map[string]string{
			{"field": "name", "issue": "required"},
			{"field": "lastname", "issue": "required"},
		})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "at least one file is required", nil)
		return
	}
	if len(files) > h.MaxFiles {
		respond.Error(c, http.StatusRequestEntityTooLarge, "too_many_files", "too many files in one upload", nil)
		return
	}

	results := make([]uploadResult, 0, len(files))
	created := 0
	for _, fh := range files {
		res := uploadResult{FileName: fh.Filename}
		doc, err := h.ingestFile(c, fh, name, lastname)
		if err != nil {
			res.Error = uploadErrorMessage(err)
		} else {
			resp := documents.ToResponse(doc)
			res.Document = &resp
			created++
		}
		results = append(results, res)
	}

	status := http.StatusCreated
	if created == 0 {
		status = http.StatusUnprocessableEntity
	}
	respond.JSON(c, status, gin.H{"results": results})
}

func (h *Handler) ingestFile(c *gin.Context, fh *multipart.FileHeader, name, lastname string) (documents.Document, error) {
	if h.MaxFileSize > 0 && fh.Size > h.MaxFileSize {
		return documents.Document{}, errFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return documents.Document{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return documents.Document{}, err
	}

	return h.Svc.Ingest(c.Request.Context(), Input{
		FileName:          fh.Filename,
		MimeType:          fh.Header.Get("Content-Type"),
		Data:              data,
		ApplicantName:     name,
		ApplicantLastname: lastname,
	})
}

var errFileTooLarge = errors.New("file too large")

func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, errFileTooLarge):
		return "file exceeds the size limit"
	case errors.Is(err, ErrEmptyFile):
		return "file is empty"
	case errors.Is(err, rasterize.ErrUnsupportedFormat):
		return "unsupported file format"
	case errors.Is(err, ocr.ErrExtractionFailed):
		return "text extraction failed"
	case errors.Is(err, documents.ErrInvalidInput):
		return "invalid applicant data"
	default:
		return "processing failed"
	}
}
