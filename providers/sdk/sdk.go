// Package sdk provides a buildcache.Registry implementation using the
// go-github SDK.
//
// This package wraps github.com/google/go-github/v67 to drive the git
// references, annotated tags, releases and release assets that back the
// build cache.
package sdk

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/go-github/v67/github"
	"github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/fs/billy"
	"github.com/jmgilman/go/fs/core"

	"github.com/jmgilman/go/buildcache"
)

const defaultContentType = "application/octet-stream"

var _ buildcache.Registry = (*SDKProvider)(nil)

// SDKProvider implements buildcache.Registry using the go-github SDK.
type SDKProvider struct {
	client *github.Client
	fs     core.FS
}

// NewSDKProvider creates a provider using the GitHub SDK.
//
// Example with token authentication:
//
//	provider, err := sdk.NewSDKProvider(sdk.WithToken(os.Getenv("GITHUB_TOKEN")))
//
// Example against GitHub Enterprise:
//
//	provider, err := sdk.NewSDKProvider(
//	    sdk.WithToken(token),
//	    sdk.WithEnterpriseURLs("https://ghe.example.com/api/v3/", "https://ghe.example.com/api/uploads/"),
//	)
func NewSDKProvider(opts ...Option) (*SDKProvider, error) {
	cfg := &config{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.client == nil {
		if cfg.token == "" {
			err := errors.New(errors.CodeInvalidInput, "either token or client must be provided")
			return nil, errors.WithContext(err, "field", "token or client")
		}
		cfg.client = github.NewClient(nil).WithAuthToken(cfg.token)
	}

	if cfg.baseURL != "" {
		client, err := cfg.client.WithEnterpriseURLs(cfg.baseURL, cfg.uploadURL)
		if err != nil {
			err = errors.Wrap(err, errors.CodeInvalidInput, "invalid enterprise URLs")
			return nil, errors.WithContext(err, "base_url", cfg.baseURL)
		}
		cfg.client = client
	}

	if cfg.fs == nil {
		cfg.fs = billy.NewLocal()
	}

	return &SDKProvider{
		client: cfg.client,
		fs:     cfg.fs,
	}, nil
}

// config holds configuration for SDKProvider.
type config struct {
	client    *github.Client
	token     string
	baseURL   string
	uploadURL string
	fs        core.FS
}

// Option configures the SDK provider.
type Option func(*config) error

// WithToken sets the authentication token for the SDK provider.
func WithToken(token string) Option {
	return func(cfg *config) error {
		if token == "" {
			err := errors.New(errors.CodeInvalidInput, "token cannot be empty")
			return errors.WithContext(err, "field", "token")
		}
		cfg.token = token
		return nil
	}
}

// WithClient sets a custom GitHub client for the SDK provider.
func WithClient(client *github.Client) Option {
	return func(cfg *config) error {
		if client == nil {
			err := errors.New(errors.CodeInvalidInput, "client cannot be nil")
			return errors.WithContext(err, "field", "client")
		}
		cfg.client = client
		return nil
	}
}

// WithEnterpriseURLs points the provider at a GitHub Enterprise Server. An
// empty uploadURL reuses baseURL.
func WithEnterpriseURLs(baseURL, uploadURL string) Option {
	return func(cfg *config) error {
		if baseURL == "" {
			err := errors.New(errors.CodeInvalidInput, "enterprise base URL cannot be empty")
			return errors.WithContext(err, "field", "baseURL")
		}
		if uploadURL == "" {
			uploadURL = baseURL
		}
		cfg.baseURL = baseURL
		cfg.uploadURL = uploadURL
		return nil
	}
}

// WithFilesystem sets the filesystem release assets are read from.
func WithFilesystem(fsys core.FS) Option {
	return func(cfg *config) error {
		if fsys == nil {
			err := errors.New(errors.CodeInvalidInput, "filesystem cannot be nil")
			return errors.WithContext(err, "field", "filesystem")
		}
		cfg.fs = fsys
		return nil
	}
}

// GetRef retrieves a git reference.
func (s *SDKProvider) GetRef(ctx context.Context, owner, repo, ref string) (*buildcache.RefData, error) {
	ghRef, resp, err := s.client.Git.GetRef(ctx, owner, repo, ref)
	if err != nil {
		return nil, errors.WithContext(s.wrapError(err, resp, "failed to get reference"), "ref", ref)
	}

	return convertRef(ghRef), nil
}

// CreateTag creates an annotated tag object.
func (s *SDKProvider) CreateTag(ctx context.Context, owner, repo string, opts buildcache.CreateTagOptions) (*buildcache.TagData, error) {
	objectType := opts.ObjectType
	if objectType == "" {
		objectType = "commit"
	}

	tag, resp, err := s.client.Git.CreateTag(ctx, owner, repo, &github.Tag{
		Tag:     github.String(opts.Tag),
		Message: github.String(opts.Message),
		Object: &github.GitObject{
			Type: github.String(objectType),
			SHA:  github.String(opts.ObjectSHA),
		},
	})
	if err != nil {
		return nil, errors.WithContext(s.wrapError(err, resp, "failed to create tag"), "tag", opts.Tag)
	}

	return &buildcache.TagData{
		Tag:       tag.GetTag(),
		SHA:       tag.GetSHA(),
		Message:   tag.GetMessage(),
		ObjectSHA: tag.GetObject().GetSHA(),
	}, nil
}

// CreateRef creates a git reference.
func (s *SDKProvider) CreateRef(ctx context.Context, owner, repo, ref, sha string) (*buildcache.RefData, error) {
	ghRef, resp, err := s.client.Git.CreateRef(ctx, owner, repo, &github.Reference{
		Ref:    github.String(ref),
		Object: &github.GitObject{SHA: github.String(sha)},
	})
	if err != nil {
		return nil, errors.WithContext(s.wrapError(err, resp, "failed to create reference"), "ref", ref)
	}

	return convertRef(ghRef), nil
}

// GetReleaseByTag retrieves the release for a tag.
func (s *SDKProvider) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*buildcache.ReleaseData, error) {
	release, resp, err := s.client.Repositories.GetReleaseByTag(ctx, owner, repo, tag)
	if err != nil {
		return nil, errors.WithContext(s.wrapError(err, resp, "failed to get release"), "tag", tag)
	}

	return convertRelease(release), nil
}

// CreateRelease creates a release.
func (s *SDKProvider) CreateRelease(ctx context.Context, owner, repo string, opts buildcache.CreateReleaseOptions) (*buildcache.ReleaseData, error) {
	ghRelease := &github.RepositoryRelease{
		TagName:    github.String(opts.TagName),
		Name:       github.String(opts.Name),
		Draft:      github.Bool(opts.Draft),
		Prerelease: github.Bool(opts.Prerelease),
	}
	if opts.Body != "" {
		ghRelease.Body = github.String(opts.Body)
	}

	release, resp, err := s.client.Repositories.CreateRelease(ctx, owner, repo, ghRelease)
	if err != nil {
		return nil, errors.WithContext(s.wrapError(err, resp, "failed to create release"), "tag", opts.TagName)
	}

	return convertRelease(release), nil
}

// UploadReleaseAsset streams a local file to a release. The request carries
// the file size as its content length.
func (s *SDKProvider) UploadReleaseAsset(ctx context.Context, owner, repo string, releaseID int64, opts buildcache.UploadAssetOptions) (*buildcache.AssetData, error) {
	info, err := s.fs.Stat(opts.Path)
	if err != nil {
		return nil, errors.WithContext(errors.Wrap(err, errors.CodeNotFound, "failed to stat asset"), "path", opts.Path)
	}
	if info.IsDir() {
		err := errors.New(errors.CodeInvalidInput, "asset must be a file")
		return nil, errors.WithContext(err, "path", opts.Path)
	}

	f, err := s.fs.Open(opts.Path)
	if err != nil {
		return nil, errors.WithContext(errors.Wrap(err, errors.CodeInternal, "failed to open asset"), "path", opts.Path)
	}
	defer f.Close()

	contentType := opts.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	u := fmt.Sprintf("repos/%s/%s/releases/%d/assets?name=%s", owner, repo, releaseID, url.QueryEscape(opts.Name))
	req, err := s.client.NewUploadRequest(u, f, info.Size(), contentType)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to build upload request")
	}

	asset := new(github.ReleaseAsset)
	resp, err := s.client.Do(ctx, req, asset)
	if err != nil {
		return nil, errors.WithContext(s.wrapError(err, resp, "failed to upload asset"), "asset", opts.Name)
	}

	return convertAsset(asset), nil
}

// DeleteReleaseAsset deletes a release asset.
func (s *SDKProvider) DeleteReleaseAsset(ctx context.Context, owner, repo string, assetID int64) error {
	resp, err := s.client.Repositories.DeleteReleaseAsset(ctx, owner, repo, assetID)
	if err != nil {
		return errors.WithContext(s.wrapError(err, resp, "failed to delete asset"), "asset_id", assetID)
	}
	return nil
}

func convertRef(ref *github.Reference) *buildcache.RefData {
	if ref == nil {
		return nil
	}
	return &buildcache.RefData{
		Ref:        ref.GetRef(),
		SHA:        ref.GetObject().GetSHA(),
		ObjectType: ref.GetObject().GetType(),
	}
}

func convertRelease(release *github.RepositoryRelease) *buildcache.ReleaseData {
	if release == nil {
		return nil
	}

	data := &buildcache.ReleaseData{
		ID:         release.GetID(),
		TagName:    release.GetTagName(),
		Name:       release.GetName(),
		Draft:      release.GetDraft(),
		Prerelease: release.GetPrerelease(),
		HTMLURL:    release.GetHTMLURL(),
	}

	for _, asset := range release.Assets {
		data.Assets = append(data.Assets, convertAsset(asset))
	}

	return data
}

func convertAsset(asset *github.ReleaseAsset) *buildcache.AssetData {
	return &buildcache.AssetData{
		ID:                 asset.GetID(),
		Name:               asset.GetName(),
		URL:                asset.GetURL(),
		BrowserDownloadURL: asset.GetBrowserDownloadURL(),
		ContentType:        asset.GetContentType(),
		Size:               int64(asset.GetSize()),
	}
}

// wrapError wraps go-github errors with appropriate error codes.
func (s *SDKProvider) wrapError(err error, resp *github.Response, message string) error {
	if err == nil {
		return nil
	}

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		statusCode = ghErr.Response.StatusCode
	}

	if statusCode != 0 {
		return buildcache.WrapHTTPError(err, statusCode, message)
	}

	// Fallback to network error for unknown errors
	return errors.Wrap(err, errors.CodeNetwork, message)
}
