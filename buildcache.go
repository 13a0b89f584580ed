package buildcache

import (
	"context"
	"path/filepath"

	"github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/fs/billy"

	"github.com/jmgilman/go/buildcache/transport"
)

// Cache resolves and uploads build artifacts against a release store.
// A Cache holds no per-call state and is safe for concurrent use.
type Cache struct {
	newRegistry RegistryFactory
	observer    Observer
	local       *LocalStore
	transport   *transport.Transport
	manifests   ManifestReader
	branches    []string
}

// New creates a Cache. A RegistryFactory is required; everything else
// defaults to the local filesystem, DefaultCacheRoot and DefaultBranches.
func New(opts ...Option) (*Cache, error) {
	c := &Cache{
		observer: NopObserver(),
		branches: DefaultBranches,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.newRegistry == nil {
		err := errors.New(errors.CodeInvalidConfig, "a registry factory is required")
		return nil, errors.WithContext(err, "field", "factory")
	}

	fsys := billy.NewLocal()
	if c.local == nil {
		c.local = NewLocalStore(DefaultCacheRoot(), fsys)
	}
	if c.manifests == nil {
		c.manifests = NewFSManifestReader(fsys)
	}
	if c.transport == nil {
		t, err := transport.New(transport.WithFilesystem(fsys), transport.WithObserver(c.observer))
		if err != nil {
			return nil, err
		}
		c.transport = t
	}

	return c, nil
}

// Resolve returns the local path of the cached artifact for props,
// downloading it from the store on a local miss. It returns false when the
// cache is disabled or no artifact could be provided; failures are logged
// through the observer and never returned.
func (c *Cache) Resolve(ctx context.Context, props BuildProps, store StoreConfig, token string) (string, bool) {
	if !props.RunOptions.BuildCache {
		return "", false
	}

	path, err := c.resolve(ctx, props, store, token)
	if err != nil {
		c.report("Remote build cache lookup failed", err)
		return "", false
	}

	return path, true
}

// Upload publishes the artifact at props.BuildPath and returns its public
// download URL. It returns false on any failure; failures are logged through
// the observer and never returned.
func (c *Cache) Upload(ctx context.Context, props BuildProps, store StoreConfig, token string) (string, bool) {
	url, err := c.upload(ctx, props, store, token)
	if err != nil {
		c.report("Remote build cache upload failed", err)
		return "", false
	}

	return url, true
}

func (c *Cache) tag(props BuildProps) (Tag, error) {
	if !props.Platform.Valid() {
		err := errors.New(errors.CodeInvalidInput, "unsupported platform")
		return "", errors.WithContext(err, "platform", string(props.Platform))
	}

	isDevClient := IsDevClientBuild(c.manifests, props.ProjectRoot, props.RunOptions)
	return NewTag(props.FingerprintHash, props.Platform, isDevClient), nil
}

func (c *Cache) releases(token string) (*Releases, error) {
	if token == "" {
		return nil, errors.Wrap(ErrMissingCredential, errors.CodeUnauthorized, "GITHUB_TOKEN is not set")
	}

	registry, err := c.newRegistry(token)
	if err != nil {
		return nil, errors.Wrap(err, errors.GetCode(err), "failed to create registry client")
	}

	return NewReleases(registry, c.observer, c.branches), nil
}

func (c *Cache) resolve(ctx context.Context, props BuildProps, store StoreConfig, token string) (string, error) {
	tag, err := c.tag(props)
	if err != nil {
		return "", err
	}

	dest := c.local.Path(tag, props.Platform)
	if c.local.Exists(dest) {
		c.observer.Info("Using cached build", "tag", tag.String(), "path", dest)
		return dest, nil
	}

	releases, err := c.releases(token)
	if err != nil {
		return "", err
	}

	assets, err := releases.FetchAssetsByTag(ctx, store, tag)
	if err != nil {
		return "", err
	}

	asset, err := firstAsset(assets, tag)
	if err != nil {
		return "", err
	}

	staging, err := c.local.StagingDir()
	if err != nil {
		return "", err
	}
	defer func() {
		if err := c.local.RemoveStaging(staging); err != nil {
			c.observer.Warn("Failed to clean up staging directory", "path", staging, "error", err)
		}
	}()

	c.observer.Info("Downloading cached build", "tag", tag.String(), "asset", asset.Name)
	archive := filepath.Join(staging, assetFileName(asset.Name))
	if err := c.transport.Download(ctx, asset.URL, archive, token); err != nil {
		return "", err
	}

	artifact := archive
	if props.Platform == PlatformIOS {
		artifact, err = c.transport.ExtractAndLocate(ctx, archive, props.Platform.Extension())
		if err != nil {
			return "", err
		}
	}

	path, err := c.local.Commit(artifact, dest)
	if err != nil {
		return "", err
	}

	c.observer.Success("Restored build from remote cache", "tag", tag.String(), "path", path)
	return path, nil
}

func (c *Cache) upload(ctx context.Context, props BuildProps, store StoreConfig, token string) (string, error) {
	tag, err := c.tag(props)
	if err != nil {
		return "", err
	}

	releases, err := c.releases(token)
	if err != nil {
		return "", err
	}

	pkg, err := c.transport.PackageIfDirectory(ctx, props.BuildPath)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := c.transport.Cleanup(pkg); err != nil {
			c.observer.Warn("Failed to remove packaged archive", "path", pkg.Path, "error", err)
		}
	}()

	c.observer.Info("Uploading build to remote cache", "tag", tag.String(), "asset", pkg.Name)
	url, err := releases.Publish(ctx, store, tag, pkg)
	if err != nil {
		return "", err
	}

	c.observer.Success("Uploaded build to remote cache", "tag", tag.String(), "url", url)
	return url, nil
}

// report logs a failure at a level matching its class.
func (c *Cache) report(msg string, err error) {
	switch {
	case IsCacheMiss(err):
		c.observer.Info("No cached build available", "reason", err.Error())
	case errors.Is(err, ErrMissingCredential):
		c.observer.Warn(msg, "error", err)
	case isDataError(err):
		c.observer.Error(msg+": unexpected archive contents", "error", err)
	default:
		c.observer.Error(msg, "error", err)
	}
}

func firstAsset(assets []RemoteAsset, tag Tag) (RemoteAsset, error) {
	if len(assets) == 0 {
		return RemoteAsset{}, errors.WithContext(errors.Wrap(ErrNoAssets, errors.CodeNotFound, "no cached build"), "tag", tag.String())
	}
	if assets[0].URL == "" {
		err := errors.WithContext(errors.Wrap(ErrMissingAssetURL, errors.CodeNotFound, "no cached build"), "tag", tag.String())
		return RemoteAsset{}, errors.WithContext(err, "asset", assets[0].Name)
	}
	return assets[0], nil
}

// assetFileName returns a safe local file name for a remote asset name.
func assetFileName(name string) string {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		return "artifact"
	}
	return base
}
