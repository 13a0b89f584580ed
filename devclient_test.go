package buildcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestIsDevClientBuild(t *testing.T) {
	t.Parallel()

	fsys := billy.NewMemory()
	require.NoError(t, fsys.MkdirAll("/dev", 0o755))
	require.NoError(t, fsys.WriteFile("/dev/package.json",
		[]byte(`{"dependencies": {"expo": "~52.0.0", "expo-dev-client": "~5.0.0"}}`), 0o644))
	require.NoError(t, fsys.MkdirAll("/devdep", 0o755))
	require.NoError(t, fsys.WriteFile("/devdep/package.json",
		[]byte(`{"devDependencies": {"expo-dev-client": "~5.0.0"}}`), 0o644))
	require.NoError(t, fsys.MkdirAll("/plain", 0o755))
	require.NoError(t, fsys.WriteFile("/plain/package.json",
		[]byte(`{"dependencies": {"expo": "~52.0.0"}}`), 0o644))
	require.NoError(t, fsys.MkdirAll("/broken", 0o755))
	require.NoError(t, fsys.WriteFile("/broken/package.json", []byte(`{not json`), 0o644))

	reader := NewFSManifestReader(fsys)

	tests := []struct {
		name string
		root string
		opts RunOptions
		want bool
	}{
		{name: "debug variant", root: "/dev", opts: RunOptions{Variant: strPtr("debug")}, want: true},
		{name: "release variant", root: "/dev", opts: RunOptions{Variant: strPtr("release")}, want: false},
		{name: "debug configuration", root: "/dev", opts: RunOptions{Configuration: strPtr("Debug")}, want: true},
		{name: "configuration is case sensitive", root: "/dev", opts: RunOptions{Configuration: strPtr("debug")}, want: false},
		{name: "release configuration", root: "/dev", opts: RunOptions{Configuration: strPtr("Release")}, want: false},
		{name: "variant wins over configuration", root: "/dev", opts: RunOptions{Variant: strPtr("release"), Configuration: strPtr("Debug")}, want: false},
		{name: "dependency alone", root: "/dev", opts: RunOptions{}, want: true},
		{name: "dev dependency", root: "/devdep", opts: RunOptions{Variant: strPtr("debug")}, want: true},
		{name: "no dependency with debug variant", root: "/plain", opts: RunOptions{Variant: strPtr("debug")}, want: false},
		{name: "no dependency with debug configuration", root: "/plain", opts: RunOptions{Configuration: strPtr("Debug")}, want: false},
		{name: "missing manifest", root: "/missing", opts: RunOptions{}, want: false},
		{name: "unparsable manifest", root: "/broken", opts: RunOptions{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsDevClientBuild(reader, tt.root, tt.opts))
		})
	}
}

func TestFSManifestReader_Errors(t *testing.T) {
	t.Parallel()

	fsys := billy.NewMemory()
	require.NoError(t, fsys.MkdirAll("/broken", 0o755))
	require.NoError(t, fsys.WriteFile("/broken/package.json", []byte(`[`), 0o644))
	reader := NewFSManifestReader(fsys)

	_, err := reader.PackageJSON("/missing")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	_, err = reader.PackageJSON("/broken")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestFSManifestReader_RelativeRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"),
		[]byte(`{"devDependencies": {"expo-dev-client": "~5.0.0"}}`), 0o644))
	t.Chdir(dir)

	reader := NewFSManifestReader(billy.NewLocal())

	manifest, err := reader.PackageJSON(".")
	require.NoError(t, err)
	assert.True(t, manifest.HasDependency(DevClientPackage))
	assert.True(t, IsDevClientBuild(reader, ".", RunOptions{}))
}
