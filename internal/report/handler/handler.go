package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"kinfolk/internal/report"
	"kinfolk/internal/report/models"
	"kinfolk/internal/report/service"
	dErrors "kinfolk/pkg/domain-errors"
	"kinfolk/pkg/platform/httputil"
	"kinfolk/pkg/requestcontext"
)

type Service interface {
	Export(ctx context.Context, req *models.ExportRequest) (*service.ExportResult, error)
	Get(ctx context.Context, id string) (*models.Export, error)
	Shared(ctx context.Context, token string) (*models.Export, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/reports", h.handleExport)
	r.Get("/reports/{id}", h.handleDownload)
	r.Get("/shared/reports", h.handleShared)
}

type exportResponse struct {
	ID          string    `json:"id"`
	Format      string    `json:"format"`
	Title       string    `json:"title"`
	ETag        string    `json:"etag"`
	RootIDs     []string  `json:"root_ids"`
	People      int       `json:"people"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	DownloadURL string    `json:"download_url"`
	ShareURL    string    `json:"share_url"`
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[models.ExportRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.Export(ctx, req)
	if err != nil {
		h.fail(ctx, w, "report export failed", err)
		return
	}
	e := res.Export
	h.logger.InfoContext(ctx, "report exported",
		"request_id", requestID,
		"export_id", e.ID,
		"format", e.Format,
		"people", e.People,
	)
	httputil.WriteJSON(w, http.StatusCreated, exportResponse{
		ID:          e.ID,
		Format:      e.Format,
		Title:       e.Title,
		ETag:        e.ETag,
		RootIDs:     e.RootIDs,
		People:      e.People,
		CreatedAt:   e.CreatedAt,
		ExpiresAt:   e.ExpiresAt,
		DownloadURL: "/reports/" + e.ID,
		ShareURL:    res.ShareURL,
	})
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "report download failed", err)
		return
	}
	h.serve(w, r, e)
}

func (h *Handler) handleShared(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e, err := h.service.Shared(ctx, r.URL.Query().Get("token"))
	if err != nil {
		h.fail(ctx, w, "shared report download failed", err)
		return
	}
	h.serve(w, r, e)
}

// serve writes the stored body with caching headers. A matching
// If-None-Match gets 304. ?download=1 asks the browser to save the file.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, e *models.Export) {
	header := w.Header()
	header.Set("ETag", e.ETag)
	if remaining := time.Until(e.ExpiresAt); remaining > 0 {
		header.Set("Cache-Control", "private, max-age="+strconv.Itoa(int(remaining.Seconds())))
	}
	if match := r.Header.Get("If-None-Match"); match != "" && match == e.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	ext := ".html"
	if f, err := report.ParseFormat(e.Format); err == nil {
		ext = f.Extension()
	}
	disposition := "inline"
	if r.URL.Query().Get("download") == "1" {
		disposition = "attachment"
	}
	header.Set("Content-Disposition", disposition+`; filename="`+e.Filename(ext)+`"`)
	header.Set("Content-Type", e.ContentType)
	header.Set("Content-Length", strconv.Itoa(len(e.Body)))
	header.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(e.Body)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
