package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func clearToken(t *testing.T) {
	t.Helper()
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("BUILDCACHE_TOKEN", "")
}

func TestResolve_Disabled(t *testing.T) {
	clearToken(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "flag omitted", args: nil},
		{name: "flag false", args: []string{"--build-cache=false"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			cached := filepath.Join(dir, "cache", "fingerprint.abc.ios.app")
			require.NoError(t, os.MkdirAll(cached, 0o755))

			args := append([]string{"resolve",
				"--platform", "ios", "--fingerprint", "abc",
				"--project-root", dir, "--cache-dir", filepath.Join(dir, "cache")}, tt.args...)
			stdout, stderr, err := run(t, args...)
			require.NoError(t, err)
			assert.Empty(t, stdout)
			assert.Empty(t, stderr)
		})
	}
}

func TestResolve_LocalHit(t *testing.T) {
	clearToken(t)
	dir := t.TempDir()
	cached := filepath.Join(dir, "cache", "fingerprint.abc.android.apk")
	require.NoError(t, os.MkdirAll(filepath.Dir(cached), 0o755))
	require.NoError(t, os.WriteFile(cached, []byte("apk"), 0o644))

	stdout, _, err := run(t, "resolve", "--build-cache",
		"--platform", "android", "--fingerprint", "abc",
		"--project-root", dir, "--cache-dir", filepath.Join(dir, "cache"))
	require.NoError(t, err)
	assert.Equal(t, cached+"\n", stdout)
}

func TestResolve_RelativePaths(t *testing.T) {
	clearToken(t)
	dir := t.TempDir()
	t.Chdir(dir)
	wd, err := os.Getwd()
	require.NoError(t, err)

	manifest := `{"dependencies": {"expo-dev-client": "~5.0.0"}}`
	require.NoError(t, os.WriteFile(filepath.Join(wd, "package.json"), []byte(manifest), 0o644))
	cached := filepath.Join(wd, "cache", "fingerprint.abc.dev-client.android.apk")
	require.NoError(t, os.MkdirAll(filepath.Dir(cached), 0o755))
	require.NoError(t, os.WriteFile(cached, []byte("apk"), 0o644))

	stdout, _, err := run(t, "resolve", "--build-cache",
		"--platform", "android", "--fingerprint", "abc",
		"--project-root", ".", "--cache-dir", "cache")
	require.NoError(t, err)
	assert.Equal(t, cached+"\n", stdout)
}

func TestResolve_RemoteMiss(t *testing.T) {
	clearToken(t)
	t.Setenv("GITHUB_TOKEN", "test-token")

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/api/v3/repos/acme/builds/releases/tags/fingerprint.abc.android", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Not Found"}`))
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	stdout, stderr, err := run(t, "resolve", "--build-cache",
		"--owner", "acme", "--repo", "builds",
		"--platform", "android", "--fingerprint", "abc",
		"--project-root", dir, "--cache-dir", filepath.Join(dir, "cache"),
		"--enterprise-url", server.URL+"/")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Equal(t, int32(1), hits.Load())
	assert.Contains(t, stderr, "No cached build available")
}

func TestUpload_WithoutCredential(t *testing.T) {
	clearToken(t)
	dir := t.TempDir()

	stdout, stderr, err := run(t, "upload",
		"--owner", "acme", "--repo", "builds",
		"--platform", "android", "--fingerprint", "abc",
		"--project-root", dir, "--cache-dir", filepath.Join(dir, "cache"))
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "GITHUB_TOKEN")
}

func TestUpload_UnknownProvider(t *testing.T) {
	clearToken(t)
	t.Setenv("BUILDCACHE_TOKEN", "test-token")
	dir := t.TempDir()
	apk := filepath.Join(dir, "app.apk")
	require.NoError(t, os.WriteFile(apk, []byte("apk"), 0o644))

	stdout, stderr, err := run(t, "upload",
		"--provider", "bogus", "--owner", "acme", "--repo", "builds",
		"--platform", "android", "--fingerprint", "abc", "--build-path", apk,
		"--project-root", dir, "--cache-dir", filepath.Join(dir, "cache"))
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "unknown provider")
}

func TestInvalidArguments(t *testing.T) {
	clearToken(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "platform", args: []string{"resolve", "--platform", "windows"}, want: "platform"},
		{name: "log level", args: []string{"resolve", "--platform", "ios", "--log-level", "loud"}, want: "log level"},
		{name: "enterprise url", args: []string{"resolve", "--platform", "ios", "--enterprise-url", "::"}, want: "enterprise URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := run(t, tt.args...)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want) || strings.Contains(stderr, tt.want))
		})
	}
}
