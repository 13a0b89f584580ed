//nolint:contextcheck // Context is properly passed via CommandWrapper.WithContext() but linter cannot verify
package cli

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/exec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/buildcache"
)

// fakeExecutor records every gh invocation and answers through runFunc.
type fakeExecutor struct {
	mu      sync.Mutex
	calls   [][]string
	env     map[string]string
	runFunc func(args ...string) (*exec.Result, error)
}

func (f *fakeExecutor) WithEnv(env map[string]string) exec.Executor {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.env = env
	return f
}

func (f *fakeExecutor) WithDir(string) exec.Executor              { return f }
func (f *fakeExecutor) WithContext(context.Context) exec.Executor { return f }
func (f *fakeExecutor) WithDisableColors() exec.Executor          { return f }
func (f *fakeExecutor) WithTimeout(string) exec.Executor          { return f }
func (f *fakeExecutor) WithInheritEnv() exec.Executor             { return f }
func (f *fakeExecutor) WithStdout(io.Writer) exec.Executor        { return f }
func (f *fakeExecutor) WithStderr(io.Writer) exec.Executor        { return f }
func (f *fakeExecutor) WithPassthrough() exec.Executor            { return f }
func (f *fakeExecutor) Clone() exec.Executor                      { return f }

func (f *fakeExecutor) Run(args ...string) (*exec.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, args)
	f.mu.Unlock()
	return f.runFunc(args...)
}

func (f *fakeExecutor) last() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func hasArgs(args []string, want ...string) bool {
	return strings.Contains(strings.Join(args, "\x00"), strings.Join(want, "\x00"))
}

// newProvider returns a provider whose auth check succeeds and whose API
// calls are answered by api.
func newProvider(t *testing.T, api func(args ...string) (*exec.Result, error), opts ...Option) (*CLIProvider, *fakeExecutor) {
	t.Helper()

	fake := &fakeExecutor{runFunc: func(args ...string) (*exec.Result, error) {
		if len(args) >= 2 && args[1] == "auth" {
			return &exec.Result{Stdout: "Logged in to github.com"}, nil
		}
		return api(args...)
	}}

	provider, err := NewCLIProvider(append([]Option{WithExecutor(fake)}, opts...)...)
	require.NoError(t, err)
	return provider, fake
}

func ok(stdout string) func(args ...string) (*exec.Result, error) {
	return func(...string) (*exec.Result, error) {
		return &exec.Result{Stdout: stdout}, nil
	}
}

func failed(exitCode int, stderr string) func(args ...string) (*exec.Result, error) {
	return func(...string) (*exec.Result, error) {
		return &exec.Result{Stderr: stderr, ExitCode: exitCode}, errors.New(errors.CodeExecutionFailed, "exit status 1")
	}
}

func TestNewCLIProvider(t *testing.T) {
	t.Parallel()

	t.Run("checks authentication with token", func(t *testing.T) {
		t.Parallel()

		provider, fake := newProvider(t, ok("{}"), WithToken("secret"))
		assert.NotNil(t, provider)
		assert.Equal(t, []string{"gh", "auth", "status", "--hostname", "github.com"}, fake.last())
		assert.Equal(t, "secret", fake.env["GH_TOKEN"])
	})

	t.Run("fails when auth status check fails", func(t *testing.T) {
		t.Parallel()

		fake := &fakeExecutor{runFunc: failed(1, "You are not logged into any GitHub hosts")}
		provider, err := NewCLIProvider(WithExecutor(fake))
		require.Error(t, err)
		assert.Nil(t, provider)
		assert.Equal(t, errors.CodeUnauthorized, errors.GetCode(err))
	})

	tests := []struct {
		name string
		opt  Option
	}{
		{name: "nil executor", opt: WithExecutor(nil)},
		{name: "empty token", opt: WithToken("")},
		{name: "empty hostname", opt: WithHostname("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewCLIProvider(tt.opt)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
		})
	}
}

func TestCLIProvider_GetRef(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		provider, fake := newProvider(t, ok(`{"ref": "refs/heads/main", "object": {"sha": "abc123", "type": "commit"}}`))
		ref, err := provider.GetRef(context.Background(), "acme", "builds", "heads/main")
		require.NoError(t, err)
		assert.Equal(t, &buildcache.RefData{Ref: "refs/heads/main", SHA: "abc123", ObjectType: "commit"}, ref)
		assert.Equal(t, []string{"gh", "api", "repos/acme/builds/git/ref/heads/main"}, fake.last())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		provider, _ := newProvider(t, failed(1, "gh: Not Found (HTTP 404)"))
		_, err := provider.GetRef(context.Background(), "acme", "builds", "heads/main")
		require.Error(t, err)
		assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	})
}

func TestCLIProvider_CreateTagAndRef(t *testing.T) {
	t.Parallel()

	provider, fake := newProvider(t, func(args ...string) (*exec.Result, error) {
		switch args[2] {
		case "repos/acme/builds/git/tags":
			return &exec.Result{Stdout: `{"tag": "fingerprint.abc.ios", "sha": "tag-sha", "message": "m", "object": {"sha": "commit-sha"}}`}, nil
		default:
			if hasArgs(args, "-f", "ref=refs/tags/taken") {
				return failed(1, "gh: Reference already exists (HTTP 422)")()
			}
			return &exec.Result{Stdout: `{"ref": "refs/tags/fingerprint.abc.ios", "object": {"sha": "tag-sha", "type": "tag"}}`}, nil
		}
	})

	tag, err := provider.CreateTag(context.Background(), "acme", "builds", buildcache.CreateTagOptions{
		Tag:       "fingerprint.abc.ios",
		Message:   "m",
		ObjectSHA: "commit-sha",
	})
	require.NoError(t, err)
	assert.Equal(t, "tag-sha", tag.SHA)
	assert.Equal(t, "commit-sha", tag.ObjectSHA)
	args := fake.last()
	assert.True(t, hasArgs(args, "--method", "POST"))
	assert.True(t, hasArgs(args, "-f", "object=commit-sha", "-f", "type=commit"))

	ref, err := provider.CreateRef(context.Background(), "acme", "builds", "refs/tags/fingerprint.abc.ios", "tag-sha")
	require.NoError(t, err)
	assert.Equal(t, "tag-sha", ref.SHA)
	assert.True(t, hasArgs(fake.last(), "-f", "ref=refs/tags/fingerprint.abc.ios", "-f", "sha=tag-sha"))

	_, err = provider.CreateRef(context.Background(), "acme", "builds", "refs/tags/taken", "tag-sha")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestCLIProvider_Releases(t *testing.T) {
	t.Parallel()

	release := `{"id": 9, "tag_name": "fingerprint.abc.android", "prerelease": true,
		"assets": [{"id": 4, "name": "app.apk", "url": "https://api.github.com/repos/acme/builds/releases/assets/4", "size": 3}]}`
	provider, fake := newProvider(t, ok(release))

	got, err := provider.GetReleaseByTag(context.Background(), "acme", "builds", "fingerprint.abc.android")
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.ID)
	require.Len(t, got.Assets, 1)
	assert.Equal(t, "https://api.github.com/repos/acme/builds/releases/assets/4", got.Assets[0].URL)
	assert.Equal(t, []string{"gh", "api", "repos/acme/builds/releases/tags/fingerprint.abc.android"}, fake.last())

	_, err = provider.CreateRelease(context.Background(), "acme", "builds", buildcache.CreateReleaseOptions{
		TagName:    "fingerprint.abc.android",
		Name:       "fingerprint.abc.android",
		Prerelease: true,
	})
	require.NoError(t, err)
	args := fake.last()
	assert.True(t, hasArgs(args, "-F", "draft=false", "-F", "prerelease=true"))
	assert.False(t, hasArgs(args, "-f", "body="))

	require.NoError(t, provider.DeleteReleaseAsset(context.Background(), "acme", "builds", 4))
	assert.Equal(t, []string{"gh", "api", "repos/acme/builds/releases/assets/4", "--method", "DELETE"}, fake.last())
}

func TestCLIProvider_UploadReleaseAsset(t *testing.T) {
	t.Parallel()

	t.Run("github.com", func(t *testing.T) {
		t.Parallel()

		provider, fake := newProvider(t, ok(`{"id": 5, "name": "My App.tar.gz", "browser_download_url": "https://github.com/d"}`))
		asset, err := provider.UploadReleaseAsset(context.Background(), "acme", "builds", 9, buildcache.UploadAssetOptions{
			Name: "My App.tar.gz",
			Path: "/tmp/buildcache-1.tar.gz",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://github.com/d", asset.BrowserDownloadURL)
		assert.Equal(t, []string{
			"gh", "api", "https://uploads.github.com/repos/acme/builds/releases/9/assets?name=My+App.tar.gz",
			"--method", "POST",
			"-H", "Content-Type: application/octet-stream",
			"--input", "/tmp/buildcache-1.tar.gz",
		}, fake.last())
	})

	t.Run("enterprise", func(t *testing.T) {
		t.Parallel()

		provider, fake := newProvider(t, ok(`{"id": 5}`), WithHostname("ghe.example.com"))
		_, err := provider.UploadReleaseAsset(context.Background(), "acme", "builds", 9, buildcache.UploadAssetOptions{Name: "a.apk", Path: "/tmp/a.apk"})
		require.NoError(t, err)
		args := fake.last()
		assert.Equal(t, "https://ghe.example.com/api/uploads/repos/acme/builds/releases/9/assets?name=a.apk", args[2])
		assert.True(t, hasArgs(args, "--hostname", "ghe.example.com"))
	})

	t.Run("forbidden", func(t *testing.T) {
		t.Parallel()

		provider, _ := newProvider(t, failed(1, "gh: Resource not accessible by integration (HTTP 403)"))
		_, err := provider.UploadReleaseAsset(context.Background(), "acme", "builds", 9, buildcache.UploadAssetOptions{Name: "a.apk", Path: "/tmp/a.apk"})
		require.Error(t, err)
		assert.Equal(t, errors.CodeForbidden, errors.GetCode(err))
	})
}

func TestCLIProvider_wrapCLIError(t *testing.T) {
	t.Parallel()

	provider := &CLIProvider{}
	cause := errors.New(errors.CodeExecutionFailed, "exit status 1")

	tests := []struct {
		name   string
		result *exec.Result
		want   errors.ErrorCode
	}{
		{name: "http status", result: &exec.Result{ExitCode: 1, Stderr: "gh: Bad credentials (HTTP 401)"}, want: errors.CodeUnauthorized},
		{name: "server error", result: &exec.Result{ExitCode: 1, Stderr: "gh: HTTP 502 (HTTP 502)"}, want: errors.CodeNetwork},
		{name: "auth exit code", result: &exec.Result{ExitCode: 4}, want: errors.CodeUnauthorized},
		{name: "stderr not found", result: &exec.Result{ExitCode: 1, Stderr: "release not found"}, want: errors.CodeNotFound},
		{name: "stderr conflict", result: &exec.Result{ExitCode: 1, Stderr: "tag already exists"}, want: errors.CodeConflict},
		{name: "unknown", result: &exec.Result{ExitCode: 3}, want: errors.CodeExecutionFailed},
		{name: "no result", result: nil, want: errors.CodeExecutionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, errors.GetCode(provider.wrapCLIError(cause, tt.result, "failed")))
		})
	}

	assert.NoError(t, provider.wrapCLIError(nil, nil, "failed"))
}
