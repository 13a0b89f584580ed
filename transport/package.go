package transport

import (
	"archive/tar"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jmgilman/go/errors"
	"github.com/klauspost/compress/gzip"

	"github.com/jmgilman/go/buildcache/internal/localpath"
)

// Package is an artifact ready for upload.
type Package struct {
	// Path is the file to upload.
	Path string

	// Name is the release asset name.
	Name string

	// Size is the file size in bytes.
	Size int64

	// Temporary is true when Path was created by PackageIfDirectory and
	// must be removed with Cleanup after upload.
	Temporary bool
}

// PackageIfDirectory prepares path for upload. A regular file is used as-is
// under its base name. A directory is archived into a uniquely named tar.gz
// in the temp directory with the directory's own name as the single root
// entry; the asset name becomes "<name>.tar.gz". A relative path is resolved
// against the working directory.
func (t *Transport) PackageIfDirectory(ctx context.Context, path string) (*Package, error) {
	if path == "" {
		err := errors.New(errors.CodeInvalidInput, "build path cannot be empty")
		return nil, errors.WithContext(err, "field", "path")
	}
	path = localpath.Abs(t.fs, path)

	info, err := t.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithContext(errors.Wrap(err, errors.CodeNotFound, "build artifact not found"), "path", path)
		}
		return nil, errors.WithContext(errors.Wrap(err, errors.CodeInternal, "failed to stat build artifact"), "path", path)
	}

	if !info.IsDir() {
		return &Package{
			Path: path,
			Name: filepath.Base(path),
			Size: info.Size(),
		}, nil
	}

	if err := t.fs.MkdirAll(t.tempDir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to create temp directory")
	}

	archivePath := filepath.Join(t.tempDir, "buildcache-"+uuid.NewString()+".tar.gz")
	if err := t.writeArchive(ctx, path, archivePath); err != nil {
		_ = t.fs.Remove(archivePath)
		return nil, errors.WithContext(err, "path", path)
	}

	archiveInfo, err := t.fs.Stat(archivePath)
	if err != nil {
		_ = t.fs.Remove(archivePath)
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to stat archive")
	}

	return &Package{
		Path:      archivePath,
		Name:      filepath.Base(path) + ".tar.gz",
		Size:      archiveInfo.Size(),
		Temporary: true,
	}, nil
}

// Cleanup removes a temporary package file. It is a no-op for packages that
// reference the caller's own artifact.
func (t *Transport) Cleanup(pkg *Package) error {
	if pkg == nil || !pkg.Temporary {
		return nil
	}
	if err := t.fs.Remove(pkg.Path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.CodeInternal, "failed to remove packaged archive")
	}
	return nil
}

// writeArchive writes sourceDir as a tar.gz to archivePath. Member names are
// relative to sourceDir's parent.
func (t *Transport) writeArchive(ctx context.Context, sourceDir, archivePath string) error {
	out, err := t.fs.Create(archivePath)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to create archive")
	}

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)
	parent := filepath.Dir(filepath.Clean(sourceDir))

	walkErr := t.fs.Walk(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(parent, filepath.FromSlash(path))
		if err != nil {
			return err
		}

		return t.writeEntry(tw, path, filepath.ToSlash(rel), d)
	})

	// Close in order so the gzip trailer follows the tar footer.
	if err := tw.Close(); walkErr == nil {
		walkErr = err
	}
	if err := gz.Close(); walkErr == nil {
		walkErr = err
	}
	if err := out.Close(); walkErr == nil {
		walkErr = err
	}

	if walkErr != nil {
		return errors.Wrap(walkErr, errors.CodeInternal, "failed to archive build artifact")
	}
	return nil
}

// writeEntry writes the header and content of one filesystem entry.
func (t *Transport) writeEntry(tw *tar.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	var link string
	if info.Mode()&fs.ModeSymlink != 0 {
		if link, err = readlink(t.fs, path); err != nil {
			return err
		}
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return err
	}
	hdr.Name = name
	if info.IsDir() {
		hdr.Name += "/"
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := t.fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(tw, f)
	return err
}
