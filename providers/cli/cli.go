//nolint:contextcheck // Context is properly passed via CommandWrapper.WithContext() but linter cannot verify
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/exec"

	"github.com/jmgilman/go/buildcache"
)

const (
	defaultHostname    = "github.com"
	defaultUploadHost  = "uploads.github.com"
	defaultContentType = "application/octet-stream"
)

var _ buildcache.Registry = (*CLIProvider)(nil)

// httpStatusPattern matches the status gh api prints on failure, e.g.
// "gh: Not Found (HTTP 404)".
var httpStatusPattern = regexp.MustCompile(`\(HTTP (\d{3})\)`)

// Option configures the CLI provider.
type Option func(*CLIProvider) error

// CLIProvider implements buildcache.Registry using the gh CLI.
type CLIProvider struct {
	wrapper  *exec.CommandWrapper
	token    string
	hostname string
}

// NewCLIProvider creates a provider using the gh CLI.
// Without WithToken it inherits authentication from the gh CLI configuration.
//
// Example:
//
//	provider, err := cli.NewCLIProvider(cli.WithToken(os.Getenv("GITHUB_TOKEN")))
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewCLIProvider(opts ...Option) (*CLIProvider, error) {
	executor := exec.New(exec.WithInheritEnv())

	provider := &CLIProvider{
		wrapper:  exec.NewWrapper(executor, "gh"),
		hostname: defaultHostname,
	}

	for _, opt := range opts {
		if err := opt(provider); err != nil {
			return nil, err
		}
	}

	// Verify gh is installed and authenticated
	result, err := provider.run(context.Background(), "auth", "status", "--hostname", provider.hostname)
	if err != nil {
		return nil, wrapAuthError(err, result)
	}

	return provider, nil
}

// WithExecutor sets a custom executor for the CLI provider.
// This is primarily useful for testing with a mock executor.
func WithExecutor(executor exec.Executor) Option {
	return func(p *CLIProvider) error {
		if executor == nil {
			err := errors.New(errors.CodeInvalidInput, "executor cannot be nil")
			return errors.WithContext(err, "field", "executor")
		}
		p.wrapper = exec.NewWrapper(executor, "gh")
		return nil
	}
}

// WithToken authenticates gh with token through GH_TOKEN.
func WithToken(token string) Option {
	return func(p *CLIProvider) error {
		if token == "" {
			err := errors.New(errors.CodeInvalidInput, "token cannot be empty")
			return errors.WithContext(err, "field", "token")
		}
		p.token = token
		return nil
	}
}

// WithHostname targets a GitHub Enterprise Server host.
func WithHostname(hostname string) Option {
	return func(p *CLIProvider) error {
		if hostname == "" {
			err := errors.New(errors.CodeInvalidInput, "hostname cannot be empty")
			return errors.WithContext(err, "field", "hostname")
		}
		p.hostname = hostname
		return nil
	}
}

// GetRef retrieves a git reference.
func (c *CLIProvider) GetRef(ctx context.Context, owner, repo, ref string) (*buildcache.RefData, error) {
	result, err := c.api(ctx, fmt.Sprintf("repos/%s/%s/git/ref/%s", owner, repo, ref))
	if err != nil {
		return nil, errors.WithContext(c.wrapCLIError(err, result, "failed to get reference"), "ref", ref)
	}

	var apiResp apiRef
	if err := parseJSON(result, &apiResp); err != nil {
		return nil, err
	}
	return apiResp.convert(), nil
}

// CreateTag creates an annotated tag object.
func (c *CLIProvider) CreateTag(ctx context.Context, owner, repo string, opts buildcache.CreateTagOptions) (*buildcache.TagData, error) {
	objectType := opts.ObjectType
	if objectType == "" {
		objectType = "commit"
	}

	result, err := c.api(ctx, fmt.Sprintf("repos/%s/%s/git/tags", owner, repo),
		"--method", "POST",
		"-f", "tag="+opts.Tag,
		"-f", "message="+opts.Message,
		"-f", "object="+opts.ObjectSHA,
		"-f", "type="+objectType,
	)
	if err != nil {
		return nil, errors.WithContext(c.wrapCLIError(err, result, "failed to create tag"), "tag", opts.Tag)
	}

	var apiResp struct {
		Tag     string `json:"tag"`
		SHA     string `json:"sha"`
		Message string `json:"message"`
		Object  struct {
			SHA string `json:"sha"`
		} `json:"object"`
	}
	if err := parseJSON(result, &apiResp); err != nil {
		return nil, err
	}

	return &buildcache.TagData{
		Tag:       apiResp.Tag,
		SHA:       apiResp.SHA,
		Message:   apiResp.Message,
		ObjectSHA: apiResp.Object.SHA,
	}, nil
}

// CreateRef creates a git reference.
func (c *CLIProvider) CreateRef(ctx context.Context, owner, repo, ref, sha string) (*buildcache.RefData, error) {
	result, err := c.api(ctx, fmt.Sprintf("repos/%s/%s/git/refs", owner, repo),
		"--method", "POST",
		"-f", "ref="+ref,
		"-f", "sha="+sha,
	)
	if err != nil {
		return nil, errors.WithContext(c.wrapCLIError(err, result, "failed to create reference"), "ref", ref)
	}

	var apiResp apiRef
	if err := parseJSON(result, &apiResp); err != nil {
		return nil, err
	}
	return apiResp.convert(), nil
}

// GetReleaseByTag retrieves the release for a tag.
func (c *CLIProvider) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*buildcache.ReleaseData, error) {
	result, err := c.api(ctx, fmt.Sprintf("repos/%s/%s/releases/tags/%s", owner, repo, tag))
	if err != nil {
		return nil, errors.WithContext(c.wrapCLIError(err, result, "failed to get release"), "tag", tag)
	}

	var apiResp apiRelease
	if err := parseJSON(result, &apiResp); err != nil {
		return nil, err
	}
	return apiResp.convert(), nil
}

// CreateRelease creates a release.
func (c *CLIProvider) CreateRelease(ctx context.Context, owner, repo string, opts buildcache.CreateReleaseOptions) (*buildcache.ReleaseData, error) {
	args := []string{
		"--method", "POST",
		"-f", "tag_name=" + opts.TagName,
		"-f", "name=" + opts.Name,
		"-F", "draft=" + strconv.FormatBool(opts.Draft),
		"-F", "prerelease=" + strconv.FormatBool(opts.Prerelease),
	}
	if opts.Body != "" {
		args = append(args, "-f", "body="+opts.Body)
	}

	result, err := c.api(ctx, fmt.Sprintf("repos/%s/%s/releases", owner, repo), args...)
	if err != nil {
		return nil, errors.WithContext(c.wrapCLIError(err, result, "failed to create release"), "tag", opts.TagName)
	}

	var apiResp apiRelease
	if err := parseJSON(result, &apiResp); err != nil {
		return nil, err
	}
	return apiResp.convert(), nil
}

// UploadReleaseAsset uploads a local file to a release through the uploads
// endpoint. gh sends the file size as the content length.
func (c *CLIProvider) UploadReleaseAsset(ctx context.Context, owner, repo string, releaseID int64, opts buildcache.UploadAssetOptions) (*buildcache.AssetData, error) {
	contentType := opts.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	endpoint := fmt.Sprintf("%srepos/%s/%s/releases/%d/assets?name=%s", c.uploadBase(), owner, repo, releaseID, url.QueryEscape(opts.Name))
	result, err := c.api(ctx, endpoint,
		"--method", "POST",
		"-H", "Content-Type: "+contentType,
		"--input", opts.Path,
	)
	if err != nil {
		return nil, errors.WithContext(c.wrapCLIError(err, result, "failed to upload asset"), "asset", opts.Name)
	}

	var apiResp apiAsset
	if err := parseJSON(result, &apiResp); err != nil {
		return nil, err
	}
	return apiResp.convert(), nil
}

// DeleteReleaseAsset deletes a release asset.
func (c *CLIProvider) DeleteReleaseAsset(ctx context.Context, owner, repo string, assetID int64) error {
	result, err := c.api(ctx, fmt.Sprintf("repos/%s/%s/releases/assets/%d", owner, repo, assetID), "--method", "DELETE")
	if err != nil {
		return errors.WithContext(c.wrapCLIError(err, result, "failed to delete asset"), "asset_id", assetID)
	}
	return nil
}

// api runs "gh api" against endpoint.
func (c *CLIProvider) api(ctx context.Context, endpoint string, args ...string) (*exec.Result, error) {
	full := append([]string{"api", endpoint}, args...)
	if c.hostname != defaultHostname {
		full = append(full, "--hostname", c.hostname)
	}
	return c.run(ctx, full...)
}

func (c *CLIProvider) run(ctx context.Context, args ...string) (*exec.Result, error) {
	cmd := c.wrapper.Clone().WithContext(ctx)
	if c.token != "" {
		cmd = cmd.WithEnv(map[string]string{"GH_TOKEN": c.token, "GH_ENTERPRISE_TOKEN": c.token})
	}
	return cmd.Run(args...)
}

func (c *CLIProvider) uploadBase() string {
	if c.hostname == defaultHostname {
		return "https://" + defaultUploadHost + "/"
	}
	return "https://" + c.hostname + "/api/uploads/"
}

type apiRef struct {
	Ref    string `json:"ref"`
	Object struct {
		SHA  string `json:"sha"`
		Type string `json:"type"`
	} `json:"object"`
}

func (r apiRef) convert() *buildcache.RefData {
	return &buildcache.RefData{Ref: r.Ref, SHA: r.Object.SHA, ObjectType: r.Object.Type}
}

type apiAsset struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	URL                string `json:"url"`
	BrowserDownloadURL string `json:"browser_download_url"`
	ContentType        string `json:"content_type"`
	Size               int64  `json:"size"`
}

func (a apiAsset) convert() *buildcache.AssetData {
	return &buildcache.AssetData{
		ID:                 a.ID,
		Name:               a.Name,
		URL:                a.URL,
		BrowserDownloadURL: a.BrowserDownloadURL,
		ContentType:        a.ContentType,
		Size:               a.Size,
	}
}

type apiRelease struct {
	ID         int64      `json:"id"`
	TagName    string     `json:"tag_name"`
	Name       string     `json:"name"`
	Draft      bool       `json:"draft"`
	Prerelease bool       `json:"prerelease"`
	HTMLURL    string     `json:"html_url"`
	Assets     []apiAsset `json:"assets"`
}

func (r apiRelease) convert() *buildcache.ReleaseData {
	data := &buildcache.ReleaseData{
		ID:         r.ID,
		TagName:    r.TagName,
		Name:       r.Name,
		Draft:      r.Draft,
		Prerelease: r.Prerelease,
		HTMLURL:    r.HTMLURL,
	}
	for _, a := range r.Assets {
		data.Assets = append(data.Assets, a.convert())
	}
	return data
}

// parseJSON decodes gh output into v.
func parseJSON(result *exec.Result, v any) error {
	if err := json.Unmarshal([]byte(result.Stdout), v); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to parse gh output")
	}
	return nil
}

// wrapCLIError wraps CLI execution errors with appropriate error types.
func (c *CLIProvider) wrapCLIError(err error, result *exec.Result, message string) error {
	if err == nil {
		return nil
	}

	// gh api reports the HTTP status on stderr; prefer it when present
	if result != nil {
		if m := httpStatusPattern.FindStringSubmatch(result.Stderr); m != nil {
			status, _ := strconv.Atoi(m[1])
			wrapped := buildcache.WrapHTTPError(err, status, message)
			return errors.WithContext(wrapped, "stderr", strings.TrimSpace(result.Stderr))
		}
	}

	code := errors.CodeExecutionFailed
	if result != nil {
		code = c.getErrorCodeFromResult(result)
	}

	wrappedErr := errors.Wrap(err, code, message)

	if result != nil && result.Stderr != "" {
		wrappedErr = errors.WithContext(wrappedErr, "stderr", result.Stderr)
		wrappedErr = errors.WithContext(wrappedErr, "exit_code", result.ExitCode)
	}

	return wrappedErr
}

func (c *CLIProvider) getErrorCodeFromResult(result *exec.Result) errors.ErrorCode {
	switch result.ExitCode {
	case 4:
		return errors.CodeUnauthorized
	case 1:
		stderr := strings.ToLower(result.Stderr)
		if strings.Contains(stderr, "not found") || strings.Contains(stderr, "could not resolve") {
			return errors.CodeNotFound
		}
		if strings.Contains(stderr, "already exists") {
			return errors.CodeConflict
		}
		if strings.Contains(stderr, "authentication") || strings.Contains(stderr, "unauthorized") {
			return errors.CodeUnauthorized
		}
		if strings.Contains(stderr, "forbidden") || strings.Contains(stderr, "permission denied") {
			return errors.CodeForbidden
		}
		if strings.Contains(stderr, "rate limit") {
			return errors.CodeRateLimit
		}
	}
	return errors.CodeExecutionFailed
}

// wrapAuthError wraps authentication errors from gh CLI.
func wrapAuthError(err error, result *exec.Result) error {
	authErr := errors.Wrap(err, errors.CodeUnauthorized, "gh CLI not authenticated")
	authErr = errors.WithContext(authErr, "hint", "Run 'gh auth login' or set GITHUB_TOKEN")
	if result != nil && result.Stderr != "" {
		authErr = errors.WithContext(authErr, "stderr", result.Stderr)
	}
	return authErr
}
