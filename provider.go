package buildcache

import "context"

//go:generate go run github.com/matryer/moq@latest -out mocks/registry.go -pkg mocks . Registry

// Registry is the raw artifact-store API: git references, annotated tags,
// releases and release assets of one repository.
//
// Implementations include sdk.SDKProvider (go-github) and cli.CLIProvider
// (gh CLI). Errors carry codes from github.com/jmgilman/go/errors so callers
// can tell a missing resource (CodeNotFound) apart from other failures.
type Registry interface {
	// GetRef retrieves a reference such as "heads/main" or "tags/v1".
	// Returns CodeNotFound if the reference doesn't exist.
	GetRef(ctx context.Context, owner, repo, ref string) (*RefData, error)

	// CreateTag creates an annotated tag object. It does not create the
	// reference.
	CreateTag(ctx context.Context, owner, repo string, opts CreateTagOptions) (*TagData, error)

	// CreateRef creates a fully qualified reference pointing at sha.
	// Returns CodeConflict or CodeInvalidInput if it already exists.
	CreateRef(ctx context.Context, owner, repo, ref, sha string) (*RefData, error)

	// GetReleaseByTag retrieves the release for a tag.
	// Returns CodeNotFound if no release exists for the tag.
	GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*ReleaseData, error)

	// CreateRelease creates a release for an existing tag.
	CreateRelease(ctx context.Context, owner, repo string, opts CreateReleaseOptions) (*ReleaseData, error)

	// UploadReleaseAsset uploads a local file to a release with an explicit
	// content length.
	UploadReleaseAsset(ctx context.Context, owner, repo string, releaseID int64, opts UploadAssetOptions) (*AssetData, error)

	// DeleteReleaseAsset deletes a release asset.
	DeleteReleaseAsset(ctx context.Context, owner, repo string, assetID int64) error
}
