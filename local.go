package buildcache

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/fs/core"

	"github.com/jmgilman/go/buildcache/internal/localpath"
)

const (
	// AppNamespace namespaces the cache root inside the temp directory.
	AppNamespace = "github-build-cache-provider"

	// CacheDirName is the subdirectory holding cached artifacts.
	CacheDirName = "build-run-cache"

	stagingDirName = ".staging"
)

// DefaultCacheRoot returns the default local cache root.
func DefaultCacheRoot() string {
	return filepath.Join(os.TempDir(), AppNamespace, CacheDirName)
}

// LocalStore maps tags to artifact paths under a cache root.
//
// Entries are never invalidated: an artifact at a tag's path is trusted for
// the lifetime of the tag. There is no expiry or size bound.
type LocalStore struct {
	root string
	fs   core.FS
}

// NewLocalStore creates a LocalStore rooted at root on fsys. A relative root
// on a local filesystem is resolved against the working directory.
func NewLocalStore(root string, fsys core.FS) *LocalStore {
	return &LocalStore{root: localpath.Abs(fsys, root), fs: fsys}
}

// Root returns the cache root.
func (s *LocalStore) Root() string {
	return s.root
}

// Path returns the deterministic artifact path for tag.
func (s *LocalStore) Path(tag Tag, platform Platform) string {
	return filepath.Join(s.root, tag.String()+platform.Extension())
}

// Exists reports whether path is present. Lookup errors count as absent.
func (s *LocalStore) Exists(path string) bool {
	ok, err := s.fs.Exists(path)
	return err == nil && ok
}

// Commit moves the completed artifact at src to dest, replacing whatever is
// there, and returns dest.
func (s *LocalStore) Commit(src, dest string) (string, error) {
	if err := s.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", errors.WithContext(errors.Wrap(err, errors.CodeInternal, "failed to create cache directory"), "path", filepath.Dir(dest))
	}

	if s.Exists(dest) {
		if err := s.fs.RemoveAll(dest); err != nil {
			return "", errors.WithContext(errors.Wrap(err, errors.CodeInternal, "failed to replace cached artifact"), "path", dest)
		}
	}

	if err := s.fs.Rename(src, dest); err != nil {
		err = errors.WithContext(errors.Wrap(err, errors.CodeInternal, "failed to commit artifact to cache"), "src", src)
		return "", errors.WithContext(err, "dest", dest)
	}

	return dest, nil
}

// StagingDir creates and returns a fresh directory for one download. It
// lives under the cache root so Commit is a same-filesystem rename.
func (s *LocalStore) StagingDir() (string, error) {
	dir := filepath.Join(s.root, stagingDirName, uuid.NewString())
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", errors.WithContext(errors.Wrap(err, errors.CodeInternal, "failed to create staging directory"), "path", dir)
	}
	return dir, nil
}

// RemoveStaging deletes a directory returned by StagingDir.
func (s *LocalStore) RemoveStaging(dir string) error {
	if err := s.fs.RemoveAll(dir); err != nil {
		return errors.WithContext(errors.Wrap(err, errors.CodeInternal, "failed to remove staging directory"), "path", dir)
	}
	return nil
}
