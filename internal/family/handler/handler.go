package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kinfolk/internal/family/models"
	"kinfolk/internal/hierarchy"
	dErrors "kinfolk/pkg/domain-errors"
	"kinfolk/pkg/platform/httputil"
	"kinfolk/pkg/requestcontext"
)

// Service is the family service surface used by the HTTP layer.
type Service interface {
	CreatePerson(ctx context.Context, req *models.CreatePersonRequest) (*models.Person, error)
	Detail(ctx context.Context, id string) (*models.Detail, error)
	Search(ctx context.Context, query, excludeID string, limit int) ([]models.Person, error)
	UpdatePerson(ctx context.Context, id string, req *models.UpdatePersonRequest) (*models.Person, error)
	DeletePerson(ctx context.Context, id string) error
	SetParents(ctx context.Context, id string, req *models.SetParentsRequest) (*models.Person, error)
	LinkRelation(ctx context.Context, originID string, req *models.LinkRequest) (*models.Detail, error)
	CreateUnion(ctx context.Context, req *models.CreateUnionRequest) (*models.Union, bool, error)
	DeleteUnion(ctx context.Context, id string) error
	FocalTree(ctx context.Context, focalID string) (*hierarchy.TreeNode, error)
	Ancestors(ctx context.Context) ([]models.Person, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts people, union and tree endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/people", func(r chi.Router) {
		r.Post("/", h.handleCreatePerson)
		r.Get("/", h.handleSearch)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleDetail)
			r.Patch("/", h.handleUpdatePerson)
			r.Delete("/", h.handleDeletePerson)
			r.Put("/parents", h.handleSetParents)
			r.Post("/links", h.handleLink)
			r.Get("/tree", h.handleTree)
		})
	})
	r.Post("/unions", h.handleCreateUnion)
	r.Delete("/unions/{id}", h.handleDeleteUnion)
	r.Get("/ancestors", h.handleAncestors)
}

type searchResponse struct {
	People []models.Person `json:"people"`
}

type ancestorsResponse struct {
	Ancestors []models.Person `json:"ancestors"`
}

type unionResponse struct {
	Union   *models.Union `json:"union"`
	Created bool          `json:"created"`
}

func (h *Handler) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[models.CreatePersonRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.CreatePerson(ctx, req)
	if err != nil {
		h.fail(ctx, w, "create person failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	people, err := h.service.Search(ctx, q.Get("q"), q.Get("exclude"), limit)
	if err != nil {
		h.fail(ctx, w, "search failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, searchResponse{People: people})
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	detail, err := h.service.Detail(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "load person failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[models.UpdatePersonRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.UpdatePerson(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(ctx, w, "update person failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.DeletePerson(ctx, chi.URLParam(r, "id")); err != nil {
		h.fail(ctx, w, "delete person failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetParents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[models.SetParentsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.SetParents(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(ctx, w, "set parents failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[models.LinkRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	detail, err := h.service.LinkRelation(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(ctx, w, "link relation failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleTree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tree, err := h.service.FocalTree(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "build focal tree failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tree)
}

func (h *Handler) handleAncestors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roots, err := h.service.Ancestors(ctx)
	if err != nil {
		h.fail(ctx, w, "find ancestors failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ancestorsResponse{Ancestors: roots})
}

// handleCreateUnion answers 201 for a new union and 200 when the pair was
// already joined.
func (h *Handler) handleCreateUnion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[models.CreateUnionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	u, created, err := h.service.CreateUnion(ctx, req)
	if err != nil {
		h.fail(ctx, w, "create union failed", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, unionResponse{Union: u, Created: created})
}

func (h *Handler) handleDeleteUnion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.DeleteUnion(ctx, chi.URLParam(r, "id")); err != nil {
		h.fail(ctx, w, "delete union failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
