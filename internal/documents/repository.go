package documents

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/folio/internal/ingest"
	"github.com/JaimeStill/folio/pkg/pagination"
	"github.com/JaimeStill/folio/pkg/pdfcheck"
	"github.com/JaimeStill/folio/pkg/query"
	"github.com/JaimeStill/folio/pkg/repository"
	"github.com/JaimeStill/folio/pkg/storage"
)

const defaultBatchConcurrency = 4

type repo struct {
	db       *sql.DB
	storage  storage.System
	pipeline *ingest.Pipeline
	logger   *slog.Logger
	cfg      Config
}

// New creates a document repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	pipeline *ingest.Pipeline,
	logger *slog.Logger,
	cfg Config,
) System {
	if cfg.BatchConcurrency < 1 {
		cfg.BatchConcurrency = defaultBatchConcurrency
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "documents"
	}

	return &repo{
		db:       db,
		storage:  store,
		pipeline: pipeline,
		logger:   logger.With("system", "documents"),
		cfg:      cfg,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.cfg.Pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.cfg.Pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Filename", "Content")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryScalar[int](ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, dbErrors.Map(err)
	}
	return &d, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	if strings.TrimSpace(cmd.OwnerID) == "" {
		return nil, ErrMissingOwner
	}

	now := time.Now()
	analysis := r.pipeline.AnalyzeAndExtract(ctx, cmd.upload())
	key := storage.Key(r.cfg.KeyPrefix, cmd.OwnerID, cmd.Filename, now)
	doc := newDocument(cmd, analysis, key)

	meta, err := json.Marshal(doc.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), doc.ContentType); err != nil {
		return nil, fmt.Errorf("upload document blob: %w", err)
	}

	q := `
		INSERT INTO documents(id, owner_id, title, filename, content_type, declared_type, detected_type,
			confidence, size_bytes, page_count, content, html_content, metadata, preview, has_error, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + returning

	insertArgs := []any{
		doc.ID,
		doc.OwnerID,
		doc.Title,
		doc.Filename,
		doc.ContentType,
		doc.DeclaredType,
		doc.DetectedType,
		doc.Confidence,
		doc.SizeBytes,
		doc.PageCount,
		doc.Content,
		doc.HTMLContent,
		meta,
		doc.Preview,
		doc.HasError,
		doc.StorageKey,
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanDocument)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, dbErrors.Map(err)
	}

	r.logger.Info("document created",
		"id", d.ID,
		"owner", d.OwnerID,
		"filename", d.Filename,
		"type", d.DetectedType,
		"has_error", d.HasError,
	)
	return &d, nil
}

func (r *repo) Batch(ctx context.Context, cmds []CreateCommand) []BatchResult {
	results := make([]BatchResult, len(cmds))

	g := new(errgroup.Group)
	g.SetLimit(r.cfg.BatchConcurrency)

	for i, cmd := range cmds {
		g.Go(func() error {
			results[i].Filename = cmd.Filename

			doc, err := r.Create(ctx, cmd)
			if err != nil {
				r.logger.Warn("batch item failed", "filename", cmd.Filename, "error", err)
				results[i].Error = err.Error()
				return nil
			}

			results[i].Document = doc
			return nil
		})
	}

	g.Wait()

	r.logger.Info("batch upload complete", "files", len(cmds))
	return results
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Document, error) {
	if cmd.empty() {
		return nil, ErrInvalidUpdate
	}

	var preview *string
	if cmd.Content != nil {
		p := r.pipeline.PreviewText(*cmd.Content)
		preview = &p
	}

	q := `
		UPDATE documents SET
			title = COALESCE($2, title),
			content = COALESCE($3, content),
			html_content = COALESCE($4, html_content),
			preview = COALESCE($5, preview),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + returning

	args := []any{id, cmd.Title, cmd.Content, cmd.HTMLContent, preview}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		return repository.QueryOne(ctx, tx, q, args, scanDocument)
	})
	if err != nil {
		return nil, dbErrors.Map(err)
	}

	r.logger.Info("document updated", "id", id)
	return &d, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	if err := r.storage.Delete(ctx, doc.StorageKey); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("delete document blob: %w", err)
		}
		r.logger.Warn("document blob already missing", "key", doc.StorageKey)
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecOne(
			ctx, tx,
			"DELETE FROM documents WHERE id = $1",
			id,
		)
	})
	if err != nil {
		return dbErrors.Map(err)
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}

func (r *repo) Download(ctx context.Context, id uuid.UUID) (*Download, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	blob, err := r.storage.Download(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: original file unavailable", ErrNotFound)
		}
		return nil, fmt.Errorf("download document blob: %w", err)
	}

	contentType := doc.ContentType
	if contentType == "" {
		contentType = blob.ContentType
	}

	return &Download{
		Filename:      doc.Filename,
		ContentType:   contentType,
		ContentLength: blob.ContentLength,
		Body:          blob.Body,
	}, nil
}

func (r *repo) Analyze(ctx context.Context, cmd CreateCommand) AnalyzeResult {
	return NewAnalyzeResult(cmd.Filename, r.pipeline.AnalyzeAndExtract(ctx, cmd.upload()))
}

func (r *repo) Diagnose(data []byte) pdfcheck.Diagnostics {
	return r.pipeline.DiagnosePDF(data)
}

func (r *repo) Recover(data []byte) ([]byte, error) {
	rec := r.pipeline.RecoverPDF(data)
	if !rec.Recovered {
		return nil, fmt.Errorf("%w: %s", ErrRecoveryFailed, rec.Message)
	}
	return rec.Data, nil
}

// newDocument maps an analysis onto a new document row.
func newDocument(cmd CreateCommand, a ingest.Analysis, key string) Document {
	doc := Document{
		ID:           uuid.New(),
		OwnerID:      strings.TrimSpace(cmd.OwnerID),
		Title:        titleFromFilename(cmd.Filename),
		Filename:     cmd.Filename,
		ContentType:  a.Decision.MimeType,
		DeclaredType: cmd.ContentType,
		DetectedType: string(a.Decision.Type),
		Confidence:   a.Decision.Confidence,
		SizeBytes:    int64(len(cmd.Data)),
		Content:      a.Document.PlainText,
		HTMLContent:  a.Document.HTML,
		Metadata:     a.Document.Metadata,
		Preview:      a.Preview,
		HasError:     a.Document.HasError(),
		StorageKey:   key,
	}

	if doc.ContentType == "" {
		doc.ContentType = ingest.MimeOctetStream
	}
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}
	if a.Decision.Type == ingest.TypePDF {
		if n, ok := doc.Metadata["pages"].(int); ok && n > 0 {
			doc.PageCount = &n
		}
	}

	return doc
}

func titleFromFilename(name string) string {
	base := filepath.Base(name)
	if base == "." || base == "/" || base == "" {
		return "Untitled"
	}
	if title := strings.TrimSuffix(base, filepath.Ext(base)); title != "" {
		return title
	}
	return base
}
