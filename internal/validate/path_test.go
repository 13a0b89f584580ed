package validate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberValidator_ValidatePath(t *testing.T) {
	t.Parallel()

	v := NewMemberValidator("/extract")

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "bundle root", path: "MyApp.app/", wantErr: false},
		{name: "nested file", path: "MyApp.app/Info.plist", wantErr: false},
		{name: "hidden entry", path: "MyApp.app/.bundle-meta", wantErr: false},
		{name: "unicode name", path: "Café.app/Café", wantErr: false},
		{name: "inner dotdot staying inside", path: "a/b/../c", wantErr: false},
		{name: "empty", path: "", wantErr: true},
		{name: "whitespace", path: "  ", wantErr: true},
		{name: "absolute", path: "/etc/passwd", wantErr: true},
		{name: "windows drive", path: "C:\\Windows", wantErr: true},
		{name: "unc", path: "\\\\server\\share", wantErr: true},
		{name: "traversal", path: "../outside", wantErr: true},
		{name: "nested traversal", path: "a/../../outside", wantErr: true},
		{name: "nul byte", path: "a\x00b", wantErr: true},
		{name: "control character", path: "a\x01b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := v.ValidatePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMemberValidator_ValidateSymlink(t *testing.T) {
	t.Parallel()

	v := NewMemberValidator("/extract")

	assert.NoError(t, v.ValidateSymlink("App.app/Frameworks/F.framework/Versions/Current", "A"))
	assert.NoError(t, v.ValidateSymlink("App.app/Frameworks/F.framework/F", "Versions/Current/F"))
	assert.NoError(t, v.ValidateSymlink("App.app/a/link", "../b"))
	assert.Error(t, v.ValidateSymlink("App.app/link", "../../escape"))
	assert.Error(t, v.ValidateSymlink("link", "/etc/passwd"))

	unrooted := NewMemberValidator("")
	assert.Error(t, unrooted.ValidateSymlink("a", "b"))
}

func TestMemberValidator_SymlinkChains(t *testing.T) {
	t.Parallel()

	t.Run("chain climbing out of the root", func(t *testing.T) {
		t.Parallel()

		v := NewMemberValidator("/extract")
		require.NoError(t, v.ValidateSymlink("d1", "."))
		v.RecordSymlink("d1", ".")

		located, err := v.ResolveParent("d1/d2")
		require.NoError(t, err)
		assert.Equal(t, "d2", located)
		assert.Error(t, v.ValidateSymlink("d1/d2", ".."))
	})

	t.Run("member below a link", func(t *testing.T) {
		t.Parallel()

		v := NewMemberValidator("/extract")
		v.RecordSymlink("F.framework/Versions/Current", "A")

		located, err := v.ResolveParent("F.framework/Versions/Current/Info.plist")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("F.framework", "Versions", "A", "Info.plist"), located)

		resolved, err := v.Resolve("F.framework/Versions/Current")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("F.framework", "Versions", "A"), resolved)

		assert.NoError(t, v.ValidateSymlink("F.framework/F", "Versions/Current/F"))
	})

	t.Run("link loop", func(t *testing.T) {
		t.Parallel()

		v := NewMemberValidator("/extract")
		v.RecordSymlink("a", "b")
		v.RecordSymlink("b", "a")

		_, err := v.Resolve("a/file")
		assert.Error(t, err)
	})

	t.Run("forget", func(t *testing.T) {
		t.Parallel()

		v := NewMemberValidator("/extract")
		v.RecordSymlink("up", "..")
		assert.True(t, v.Forget("up"))
		assert.False(t, v.Forget("up"))

		located, err := v.ResolveParent("up/file")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("up", "file"), located)
	})

	t.Run("invalid member names", func(t *testing.T) {
		t.Parallel()

		v := NewMemberValidator("/extract")
		_, err := v.ResolveParent("a/..")
		assert.Error(t, err)
		_, err = v.ResolveParent(".")
		assert.Error(t, err)
	})
}
