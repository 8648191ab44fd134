package storage

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

var (
	// ErrNotFound indicates the requested blob does not exist.
	ErrNotFound = errors.New("blob not found")
	// ErrEmptyKey indicates an empty storage key was provided.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates the storage key contains a path traversal segment.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
	// ErrUnavailable indicates the container is missing or the account
	// rejected the request.
	ErrUnavailable = errors.New("blob storage unavailable")
)

// MapHTTPStatus maps storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyKey), errors.Is(err, ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var unavailableCodes = []bloberror.Code{
	bloberror.ContainerNotFound,
	bloberror.ContainerBeingDeleted,
	bloberror.AuthenticationFailed,
	bloberror.AuthorizationFailure,
	bloberror.AccountIsDisabled,
}

// translate converts an Azure service error for op on key into the package
// sentinels. The service error stays in the chain except for not-found.
func translate(op, key string, err error) error {
	switch {
	case bloberror.HasCode(err, bloberror.BlobNotFound):
		return ErrNotFound
	case bloberror.HasCode(err, unavailableCodes...):
		return fmt.Errorf("%s blob %s: %w: %w", op, key, ErrUnavailable, err)
	default:
		return fmt.Errorf("%s blob %s: %w", op, key, err)
	}
}
