package buildcache

import (
	"context"

	"github.com/jmgilman/go/errors"

	"github.com/jmgilman/go/buildcache/transport"
)

// DefaultBranches are the branch names tried, in order, when resolving the
// commit a new tag points at.
var DefaultBranches = []string{"main", "master", "develop"}

const octetStream = "application/octet-stream"

// Releases implements the release protocol on top of a Registry. It keeps no
// state between calls; every call re-reads the store.
type Releases struct {
	registry Registry
	observer Observer
	branches []string
}

// NewReleases creates a Releases. Empty branches uses DefaultBranches and a
// nil observer discards events.
func NewReleases(registry Registry, observer Observer, branches []string) *Releases {
	if len(branches) == 0 {
		branches = DefaultBranches
	}
	if observer == nil {
		observer = NopObserver()
	}
	return &Releases{registry: registry, observer: observer, branches: branches}
}

// ResolveDefaultCommit returns the head commit of the first default branch
// that exists. A missing branch advances to the next candidate; any other
// failure aborts.
func (r *Releases) ResolveDefaultCommit(ctx context.Context, store StoreConfig) (string, error) {
	for _, branch := range r.branches {
		ref, err := r.registry.GetRef(ctx, store.Owner, store.Repo, "heads/"+branch)
		if err == nil {
			return ref.SHA, nil
		}
		if errors.GetCode(err) != errors.CodeNotFound {
			return "", errors.WithContext(errors.Wrap(err, errors.GetCode(err), "failed to resolve default branch"), "branch", branch)
		}
	}

	err := errors.Wrap(ErrDefaultBranchNotFound, errors.CodeNotFound, "failed to resolve default commit")
	return "", errors.WithContext(err, "repository", store.Owner+"/"+store.Repo)
}

// EnsureTag returns the object SHA of tag, creating an annotated tag on
// commitSHA and its reference when the tag does not exist. existed reports
// whether the tag was already present.
//
// If reference creation is rejected because a concurrent upload created it
// first, the reference is read once more and treated as existing.
func (r *Releases) EnsureTag(ctx context.Context, store StoreConfig, tag Tag, commitSHA string) (sha string, existed bool, err error) {
	ref, err := r.registry.GetRef(ctx, store.Owner, store.Repo, "tags/"+tag.String())
	if err == nil {
		return ref.SHA, true, nil
	}
	if errors.GetCode(err) != errors.CodeNotFound {
		return "", false, errors.WithContext(errors.Wrap(err, errors.GetCode(err), "failed to read tag"), "tag", tag.String())
	}

	obj, err := r.registry.CreateTag(ctx, store.Owner, store.Repo, CreateTagOptions{
		Tag:        tag.String(),
		Message:    tag.String(),
		ObjectSHA:  commitSHA,
		ObjectType: "commit",
	})
	if err != nil {
		return "", false, errors.WithContext(errors.Wrap(err, errors.GetCode(err), "failed to create tag"), "tag", tag.String())
	}

	created, err := r.registry.CreateRef(ctx, store.Owner, store.Repo, "refs/tags/"+tag.String(), obj.SHA)
	if err != nil {
		code := errors.GetCode(err)
		if code == errors.CodeConflict || code == errors.CodeInvalidInput {
			if ref, getErr := r.registry.GetRef(ctx, store.Owner, store.Repo, "tags/"+tag.String()); getErr == nil {
				r.observer.Warn("Tag was created concurrently, reusing it", "tag", tag.String())
				return ref.SHA, true, nil
			}
		}
		return "", false, errors.WithContext(errors.Wrap(err, code, "failed to create tag reference"), "tag", tag.String())
	}

	return created.SHA, false, nil
}

// EnsureRelease returns the release for tag. An existing tag must already
// have a release; a new tag gets a non-draft pre-release named after it.
func (r *Releases) EnsureRelease(ctx context.Context, store StoreConfig, tag Tag, tagExisted bool) (*ReleaseHandle, error) {
	if tagExisted {
		release, err := r.registry.GetReleaseByTag(ctx, store.Owner, store.Repo, tag.String())
		if err != nil {
			if errors.GetCode(err) == errors.CodeNotFound {
				return nil, errors.WithContext(errors.Wrap(ErrReleaseMissing, errors.CodeConflict, "failed to reuse release"), "tag", tag.String())
			}
			return nil, errors.WithContext(errors.Wrap(err, errors.GetCode(err), "failed to get release"), "tag", tag.String())
		}
		return newReleaseHandle(release, true), nil
	}

	release, err := r.registry.CreateRelease(ctx, store.Owner, store.Repo, CreateReleaseOptions{
		TagName:    tag.String(),
		Name:       tag.String(),
		Draft:      false,
		Prerelease: true,
	})
	if err != nil {
		return nil, errors.WithContext(errors.Wrap(err, errors.GetCode(err), "failed to create release"), "tag", tag.String())
	}
	return newReleaseHandle(release, false), nil
}

func newReleaseHandle(release *ReleaseData, existed bool) *ReleaseHandle {
	return &ReleaseHandle{
		ReleaseID:      release.ID,
		TagName:        release.TagName,
		AlreadyExisted: existed,
		Assets:         release.Assets,
	}
}

// UploadAsset uploads pkg to the release and returns its public download
// URL. An asset with the same name is deleted first so re-uploads overwrite.
func (r *Releases) UploadAsset(ctx context.Context, store StoreConfig, handle *ReleaseHandle, pkg *transport.Package) (string, error) {
	for _, asset := range handle.Assets {
		if asset == nil || asset.Name != pkg.Name {
			continue
		}
		if err := r.registry.DeleteReleaseAsset(ctx, store.Owner, store.Repo, asset.ID); err != nil && errors.GetCode(err) != errors.CodeNotFound {
			return "", errors.WithContext(errors.Wrap(err, errors.GetCode(err), "failed to replace existing asset"), "asset", asset.Name)
		}
		r.observer.Info("Replaced existing release asset", "asset", asset.Name)
	}

	asset, err := r.registry.UploadReleaseAsset(ctx, store.Owner, store.Repo, handle.ReleaseID, UploadAssetOptions{
		Name:        pkg.Name,
		Path:        pkg.Path,
		ContentType: octetStream,
	})
	if err != nil {
		return "", errors.WithContext(errors.Wrap(err, errors.GetCode(err), "failed to upload asset"), "asset", pkg.Name)
	}

	return asset.BrowserDownloadURL, nil
}

// Publish runs the full upload sequence for tag: resolve the default commit,
// ensure the tag and its release, then upload pkg.
func (r *Releases) Publish(ctx context.Context, store StoreConfig, tag Tag, pkg *transport.Package) (string, error) {
	commit, err := r.ResolveDefaultCommit(ctx, store)
	if err != nil {
		return "", err
	}

	_, existed, err := r.EnsureTag(ctx, store, tag, commit)
	if err != nil {
		return "", err
	}

	handle, err := r.EnsureRelease(ctx, store, tag, existed)
	if err != nil {
		return "", err
	}

	return r.UploadAsset(ctx, store, handle, pkg)
}

// FetchAssetsByTag lists the assets of the release for tag. A missing
// release is reported as ErrNoReleaseForTag.
func (r *Releases) FetchAssetsByTag(ctx context.Context, store StoreConfig, tag Tag) ([]RemoteAsset, error) {
	release, err := r.registry.GetReleaseByTag(ctx, store.Owner, store.Repo, tag.String())
	if err != nil {
		if errors.GetCode(err) == errors.CodeNotFound {
			return nil, errors.WithContext(errors.Wrap(ErrNoReleaseForTag, errors.CodeNotFound, "failed to fetch release"), "tag", tag.String())
		}
		r.observer.Warn("Failed to fetch release", "tag", tag.String(), "error", err)
		return nil, err
	}

	assets := make([]RemoteAsset, 0, len(release.Assets))
	for _, a := range release.Assets {
		if a == nil {
			continue
		}
		assets = append(assets, RemoteAsset{Name: a.Name, URL: a.URL, Size: a.Size})
	}
	return assets, nil
}
