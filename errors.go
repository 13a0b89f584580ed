package buildcache

import (
	"github.com/jmgilman/go/errors"

	"github.com/jmgilman/go/buildcache/internal/httperr"
	"github.com/jmgilman/go/buildcache/transport"
)

// Sentinel errors. Match them with errors.Is; each is wrapped, never
// returned bare, so callers also see the operation that failed.
var (
	// ErrDefaultBranchNotFound is returned when none of the default branch
	// candidates exist in the store repository.
	ErrDefaultBranchNotFound = errors.New(errors.CodeNotFound, "no default branch found")

	// ErrNoReleaseForTag signals that no release exists for a tag. It is a
	// cache miss.
	ErrNoReleaseForTag = errors.New(errors.CodeNotFound, "no release for tag")

	// ErrReleaseMissing is returned when a tag exists but its release does
	// not.
	ErrReleaseMissing = errors.New(errors.CodeConflict, "tag exists without a release")

	// ErrMissingCredential is returned when no token is available for a
	// remote operation.
	ErrMissingCredential = errors.New(errors.CodeUnauthorized, "no artifact store credential")

	// ErrNoAssets signals a release with no assets. It is a cache miss.
	ErrNoAssets = errors.New(errors.CodeNotFound, "release has no assets")

	// ErrMissingAssetURL signals an asset without a download URL. It is a
	// cache miss.
	ErrMissingAssetURL = errors.New(errors.CodeNotFound, "asset has no download URL")
)

// WrapHTTPError wraps an error based on the HTTP status code returned by the
// artifact store.
func WrapHTTPError(err error, statusCode int, message string) error {
	return httperr.Wrap(err, statusCode, message)
}

// IsCacheMiss reports whether err is an expected miss rather than a failure.
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrNoReleaseForTag) ||
		errors.Is(err, ErrNoAssets) ||
		errors.Is(err, ErrMissingAssetURL)
}

// isDataError reports whether err means a downloaded archive did not hold
// the expected artifact.
func isDataError(err error) bool {
	return errors.Is(err, transport.ErrArtifactNotFound)
}
