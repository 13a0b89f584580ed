// Package localpath anchors relative paths for filesystems rooted at "/".
//
// The fs/billy local adapter resolves every name against the filesystem
// root, so a relative name such as "." or "build/app.apk" must be made
// absolute against the working directory before it reaches the adapter.
package localpath

import (
	"path/filepath"

	"github.com/jmgilman/go/fs/core"
)

// Abs returns path made absolute against the working directory when fsys is
// a local filesystem. Empty and absolute paths, and paths on any other kind
// of filesystem, are returned unchanged. If the working directory cannot be
// determined the path is returned as-is.
func Abs(fsys core.FS, path string) string {
	if path == "" || filepath.IsAbs(path) || fsys == nil || fsys.Type() != core.FSTypeLocal {
		return path
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
