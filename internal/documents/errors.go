package documents

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/folio/pkg/repository"
	"github.com/JaimeStill/folio/pkg/storage"
)

// Domain errors for document operations.
var (
	ErrNotFound       = errors.New("document not found")
	ErrDuplicate      = errors.New("document already exists")
	ErrFileTooLarge   = errors.New("file exceeds maximum upload size")
	ErrInvalidFile    = errors.New("invalid file")
	ErrInvalidID      = errors.New("invalid document id")
	ErrMissingOwner   = errors.New("owner_id is required")
	ErrInvalidUpdate  = errors.New("update must set title, content, or html_content")
	ErrRecoveryFailed = errors.New("pdf recovery failed")
	ErrConstraint     = errors.New("document field out of range")
)

var dbErrors = repository.Errors{
	NotFound:  ErrNotFound,
	Duplicate: ErrDuplicate,
	Invalid:   ErrConstraint,
}

// MapHTTPStatus maps document domain errors to HTTP status codes, deferring
// to the storage mapping for blob failures.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFile),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrMissingOwner),
		errors.Is(err, ErrInvalidUpdate),
		errors.Is(err, ErrConstraint):
		return http.StatusBadRequest
	case errors.Is(err, ErrRecoveryFailed):
		return http.StatusUnprocessableEntity
	}
	return storage.MapHTTPStatus(err)
}
