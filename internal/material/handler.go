package material

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rx3lixir/prodhack/internal/battle"
	"github.com/rx3lixir/prodhack/pkg/httputil"
	"github.com/rx3lixir/prodhack/pkg/logger"
)

const (
	// MaxUploadSize limits uploaded documents to 10MB
	MaxUploadSize = 10 << 20

	// uploadFieldName is the multipart field the frontend uses
	uploadFieldName = "pdfFile"

	archiveTimeout = 30 * time.Second
)

// Archive persists uploaded documents for later reference. Archival is
// best-effort: a failure never blocks or fails the analysis response.
type Archive interface {
	StorePDF(ctx context.Context, objectName string, data []byte) error
}

// Handler exposes document analysis over HTTP
type Handler struct {
	service *Service
	archive Archive // may be nil when object storage is disabled
	log     *logger.Logger
}

func NewHandler(service *Service, archive Archive, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		archive: archive,
		log:     log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze-pdf", httputil.Handler(h.AnalyzePDF, h.log.Logger))
}

// AnalyzePDF accepts a multipart PDF upload and responds with study
// topics, a quiz and a suggested study duration. Generation failures
// degrade to the fallback payload rather than an error status.
func (h *Handler) AnalyzePDF(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)

	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		return httputil.BadRequest("Upload too large or malformed", map[string]string{
			"parse_error": err.Error(),
		})
	}

	file, header, err := r.FormFile(uploadFieldName)
	if err != nil {
		return httputil.BadRequest(fmt.Sprintf("Missing %q file field", uploadFieldName))
	}
	defer file.Close()

	if !isPDF(header.Header.Get("Content-Type"), header.Filename) {
		return httputil.BadRequest("Only PDF files are supported")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return httputil.Internal(fmt.Errorf("failed to read upload: %w", err))
	}

	analysis := h.service.AnalyzePDF(r.Context(), data, "application/pdf")

	h.archivePDF(header.Filename, data)

	return httputil.RespondJSON(w, http.StatusOK, analysisResponse{
		Success:       true,
		Topics:        analysis.Topics,
		Quiz:          analysis.Quiz,
		StudyDuration: analysis.StudyDuration,
		IsFallback:    analysis.IsFallback,
	})
}

type analysisResponse struct {
	Success       bool              `json:"success"`
	Topics        []string          `json:"topics"`
	Quiz          []battle.Question `json:"quiz"`
	StudyDuration int               `json:"studyDuration"`
	IsFallback    bool              `json:"isFallback,omitempty"`
}

// archivePDF stores the upload in object storage without holding up
// the response
func (h *Handler) archivePDF(filename string, data []byte) {
	if h.archive == nil {
		return
	}

	objectName := fmt.Sprintf("uploads/%d_%s", time.Now().UnixNano(), sanitizeFilename(filename))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()

		if err := h.archive.StorePDF(ctx, objectName, data); err != nil {
			h.log.Warn("failed to archive uploaded pdf",
				"object", objectName,
				"error", err,
			)
		}
	}()
}

func isPDF(contentType, filename string) bool {
	if strings.EqualFold(contentType, "application/pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

func sanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)

	if name == "" {
		return "document.pdf"
	}
	return name
}
