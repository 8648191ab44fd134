package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/folio/pkg/pagination"
	"github.com/JaimeStill/folio/pkg/pdfcheck"
)

// System defines the public contract for document domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)
	Batch(ctx context.Context, cmds []CreateCommand) []BatchResult
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Download(ctx context.Context, id uuid.UUID) (*Download, error)

	// Analyze ingests an upload without persisting anything.
	Analyze(ctx context.Context, cmd CreateCommand) AnalyzeResult
	Diagnose(data []byte) pdfcheck.Diagnostics
	// Recover returns salvaged PDF bytes or an error wrapping ErrRecoveryFailed.
	Recover(data []byte) ([]byte, error)
}

// Config holds the tunables a document System needs beyond its collaborators.
type Config struct {
	Pagination       pagination.Config
	KeyPrefix        string
	BatchConcurrency int
}
