// Package api exposes generation operations over HTTP.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/eleven-am/genkit/internal/generator"
	"github.com/eleven-am/genkit/internal/introspect"
	"github.com/eleven-am/genkit/internal/logger"
	"github.com/eleven-am/genkit/internal/model"
	"github.com/eleven-am/genkit/internal/render"
	"github.com/eleven-am/genkit/internal/store"
)

// Service is the generation surface served over HTTP.
type Service interface {
	List(ctx context.Context, q store.ListQuery) (*store.Page, error)
	Info(ctx context.Context, id int64) (*model.Table, error)
	Update(ctx context.Context, t model.Table) error
	Delete(ctx context.Context, ids ...int64) error
	DBList(ctx context.Context, f introspect.Filter) ([]model.Table, error)
	Import(ctx context.Context, names ...string) ([]model.Table, error)
	Sync(ctx context.Context, tableName string) error
	Preview(ctx context.Context, tableName string) ([]render.File, error)
	BatchDownload(ctx context.Context, w io.Writer, tableNames ...string) error
}

// Options configures the router.
type Options struct {
	// Operator is used when a request carries no X-Operator header.
	Operator string
	// Ping backs /healthz when set.
	Ping func(ctx context.Context) error
}

// Handler implements HTTP handlers for the generation service.
type Handler struct {
	svc  Service
	opts Options
	log  logger.Logger
}

// NewRouter returns the HTTP handler for svc.
func NewRouter(svc Service, opts Options) http.Handler {
	h := &Handler{svc: svc, opts: opts, log: logger.API()}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)
	r.Use(h.withOperator)

	r.Get("/healthz", h.Health)

	r.Route("/gen", func(r chi.Router) {
		r.Get("/list", h.List)
		r.Put("/update", h.Update)
		r.Get("/db/list", h.DBList)
		r.Post("/import/{tableNames}", h.Import)
		r.Put("/sync/{tableName}", h.Sync)
		r.Get("/preview/{tableName}", h.Preview)
		r.Get("/download/{tableNames}", h.Download)
		r.Get("/{tableIds}", h.Info)
		r.Delete("/{tableIds}", h.Delete)
	})

	return r
}

func (h *Handler) withOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operator := strings.TrimSpace(r.Header.Get(OperatorHeader))
		if operator == "" {
			operator = h.opts.Operator
		}
		next.ServeHTTP(w, r.WithContext(generator.WithOperator(r.Context(), operator)))
	})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.log.WithFields(map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("Handled request")
	})
}

// Health reports whether the store is reachable.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.opts.Ping != nil {
		if err := h.opts.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// List returns a page of imported tables.
// GET /gen/list?tableName=&tableComment=&page=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.List(r.Context(), store.ListQuery{
		TableName:    q.Get("tableName"),
		TableComment: q.Get("tableComment"),
		Page:         queryInt(r, "page"),
		Limit:        queryInt(r, "limit"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Info returns one imported table with its columns.
// GET /gen/{tableId}
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDs(chi.URLParam(r, "tableIds"))
	if err != nil || len(ids) != 1 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid table id")
		return
	}

	table, err := h.svc.Info(r.Context(), ids[0])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// Update saves edited table metadata and column settings.
// PUT /gen/update
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var table model.Table
	if err := decodeJSON(r, &table); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
		return
	}
	if table.TableID <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "tableId is required")
		return
	}

	if err := h.svc.Update(r.Context(), table); err != nil {
		writeServiceError(w, r, err)
		return
	}

	saved, err := h.svc.Info(r.Context(), table.TableID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// Delete removes imported tables.
// DELETE /gen/{tableIds}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDs(chi.URLParam(r, "tableIds"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), ids...); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DBList returns live tables that can be imported.
// GET /gen/db/list?tableName=&tableComment=
func (h *Handler) DBList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tables, err := h.svc.DBList(r.Context(), introspect.Filter{
		Name:    q.Get("tableName"),
		Comment: q.Get("tableComment"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if tables == nil {
		tables = []model.Table{}
	}
	writeJSON(w, http.StatusOK, tables)
}

// Import imports live tables.
// POST /gen/import/{tableNames}
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	names := splitList(chi.URLParam(r, "tableNames"))
	if len(names) == 0 {
		writeError(w, http.StatusBadRequest, "MISSING_PARAMS", "tableNames is required")
		return
	}

	tables, err := h.svc.Import(r.Context(), names...)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tables)
}

// Sync reconciles an imported table with its live structure.
// PUT /gen/sync/{tableName}
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Sync(r.Context(), chi.URLParam(r, "tableName")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Preview renders the generated files of a table.
// GET /gen/preview/{tableName}
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.Preview(r.Context(), chi.URLParam(r, "tableName"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// Download returns the generated files of one or more tables as a zip archive.
// GET /gen/download/{tableNames}
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	names := splitList(chi.URLParam(r, "tableNames"))
	if len(names) == 0 {
		writeError(w, http.StatusBadRequest, "MISSING_PARAMS", "tableNames is required")
		return
	}

	var buf bytes.Buffer
	if err := h.svc.BatchDownload(r.Context(), &buf, names...); err != nil {
		writeServiceError(w, r, err)
		return
	}

	filename := "genkit.zip"
	if len(names) == 1 {
		filename = names[0] + ".zip"
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.WithError(err).Warn("Failed to write archive")
	}
}
