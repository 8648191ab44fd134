package documents

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/folio/pkg/handlers"
	"github.com/JaimeStill/folio/pkg/pagination"
	"github.com/JaimeStill/folio/pkg/routes"
)

// Handler provides HTTP endpoints for document operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, pagination config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "documents"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for document endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "POST", Pattern: "/batch", Handler: h.Batch},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "POST", Pattern: "/analyze", Handler: h.Analyze},
			{Method: "POST", Pattern: "/diagnose", Handler: h.Diagnose},
			{Method: "POST", Pattern: "/recover", Handler: h.Recover},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "GET", Pattern: "/{id}/download", Handler: h.Download},
		},
	}
}

// List returns a paginated list of documents with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single document by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching documents.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[SearchRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Upload ingests a multipart "file" for the form's owner_id and stores it.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(w, r); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	owner := strings.TrimSpace(r.FormValue("owner_id"))
	if owner == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingOwner)
		return
	}

	cmd, err := formCommand(r, "file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	cmd.OwnerID = owner

	doc, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

// Batch ingests every multipart "files[]" (or "files") part concurrently.
// Per-file failures are reported in the response and do not fail the request.
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(w, r); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	owner := strings.TrimSpace(r.FormValue("owner_id"))
	if owner == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingOwner)
		return
	}

	headers := append(r.MultipartForm.File["files[]"], r.MultipartForm.File["files"]...)
	if len(headers) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: no files provided", ErrInvalidFile))
		return
	}

	results := make([]BatchResult, len(headers))
	var (
		cmds []CreateCommand
		slot []int
	)
	for i, fh := range headers {
		cmd, err := headerCommand(fh)
		if err != nil {
			results[i] = BatchResult{Filename: fh.Filename, Error: err.Error()}
			continue
		}
		cmd.OwnerID = owner
		cmds = append(cmds, cmd)
		slot = append(slot, i)
	}

	if len(cmds) > 0 {
		for j, res := range h.sys.Batch(r.Context(), cmds) {
			results[slot[j]] = res
		}
	}

	handlers.RespondJSON(w, http.StatusOK, NewBatchResponse(results))
}

// Update edits a document's title or content from a JSON body.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	cmd, err := handlers.DecodeJSON[UpdateCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, err := h.sys.Update(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Delete removes a document by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Download streams the original upload as an attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	dl, err := h.sys.Download(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer dl.Body.Close()

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", attachment(dl.Filename))
	if dl.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(dl.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, dl.Body); err != nil {
		h.logger.Warn("download stream interrupted", "id", id, "error", err)
	}
}

// Analyze runs ingestion on a multipart "file" without persisting it.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	cmd, ok := h.singleFile(w, r)
	if !ok {
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.Analyze(r.Context(), cmd))
}

// Diagnose validates a multipart "file" as a PDF.
func (h *Handler) Diagnose(w http.ResponseWriter, r *http.Request) {
	cmd, ok := h.singleFile(w, r)
	if !ok {
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.Diagnose(cmd.Data))
}

// Recover returns the salvaged bytes of a multipart "file" PDF.
func (h *Handler) Recover(w http.ResponseWriter, r *http.Request) {
	cmd, ok := h.singleFile(w, r)
	if !ok {
		return
	}

	data, err := h.sys.Recover(cmd.Data)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", attachment("recovered_"+cmd.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) singleFile(w http.ResponseWriter, r *http.Request) (CreateCommand, bool) {
	if err := h.parseForm(w, r); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return CreateCommand{}, false
	}

	cmd, err := formCommand(r, "file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return CreateCommand{}, false
	}
	return cmd, true
}

// parseForm bounds the request body by the upload ceiling before parsing.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrFileTooLarge
		}
		return fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return nil
}

func formCommand(r *http.Request, field string) (CreateCommand, error) {
	_, header, err := r.FormFile(field)
	if err != nil {
		return CreateCommand{}, fmt.Errorf("%w: missing %q part", ErrInvalidFile, field)
	}
	return headerCommand(header)
}

func headerCommand(fh *multipart.FileHeader) (CreateCommand, error) {
	f, err := fh.Open()
	if err != nil {
		return CreateCommand{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return CreateCommand{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	return CreateCommand{
		Data:        data,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
	}, nil
}

func attachment(filename string) string {
	if filename == "" {
		filename = "document"
	}
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
