package transport

import (
	"archive/tar"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/fs/core"
	"github.com/klauspost/compress/gzip"

	"github.com/jmgilman/go/buildcache/internal/localpath"
	"github.com/jmgilman/go/buildcache/internal/validate"
)

// ExtractAndLocate expands the tar.gz at archivePath into a new, uniquely
// named directory next to the archive and returns the path of the entry
// whose name ends with extension.
//
// When several entries match, the shallowest wins and ties are broken by
// lexical order. Matching directories are not searched further. Returns
// ErrArtifactNotFound when nothing matches. On failure the extraction
// directory is removed.
func (t *Transport) ExtractAndLocate(ctx context.Context, archivePath, extension string) (string, error) {
	archivePath = localpath.Abs(t.fs, archivePath)
	dir := filepath.Join(filepath.Dir(archivePath), "extract-"+uuid.NewString())
	if err := t.fs.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to create extraction directory")
	}

	if err := t.extract(ctx, archivePath, dir); err != nil {
		_ = t.fs.RemoveAll(dir)
		return "", err
	}

	found, err := t.locate(dir, extension)
	if err != nil {
		_ = t.fs.RemoveAll(dir)
		return "", err
	}

	return found, nil
}

// extract tries the native tar binary and falls back to in-process
// extraction when it is unavailable or fails.
func (t *Transport) extract(ctx context.Context, archivePath, dir string) error {
	if t.native && t.fs.Type() == core.FSTypeLocal {
		_, err := t.executor.Clone().WithContext(ctx).Run("tar", "-xzf", archivePath, "-C", dir)
		if err == nil {
			return nil
		}

		t.observer.Warn("native tar extraction failed, falling back to in-process extraction", "error", err)
		if err := t.fs.RemoveAll(dir); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to reset extraction directory")
		}
		if err := t.fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to reset extraction directory")
		}
	}

	return t.extractInProcess(ctx, archivePath, dir)
}

// extractInProcess expands a tar.gz archive with the klauspost gzip reader.
// Files and directories keep their permission bits, and hard links are
// materialized as copies of the file they name.
func (t *Transport) extractInProcess(ctx context.Context, archivePath, dir string) error {
	f, err := t.fs.Open(archivePath)
	if err != nil {
		return errors.WithContext(errors.Wrap(err, errors.CodeNotFound, "failed to open archive"), "archive", archivePath)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.WithContext(errors.Wrap(err, errors.CodeInvalidInput, "archive is not gzip compressed"), "archive", archivePath)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	x := &extraction{dir: dir, pv: validate.NewMemberValidator(dir), dirModes: map[string]fs.FileMode{}}

	for {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.CodeTimeout, "extraction canceled")
		}

		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.WithContext(errors.Wrap(err, errors.CodeInvalidInput, "failed to read tar header"), "archive", archivePath)
		}

		if err := t.extractEntry(tr, hdr, x); err != nil {
			return errors.WithContext(err, "member", hdr.Name)
		}
	}

	return t.applyDirModes(x.dirModes)
}

// extraction is the state of one in-process extraction.
type extraction struct {
	dir string
	pv  *validate.MemberValidator

	// dirModes holds directory permissions, applied once all members are
	// written so a read-only directory cannot block its own contents.
	dirModes map[string]fs.FileMode
}

// extractEntry writes a single tar member below x.dir. Member locations are
// resolved through symlinks extracted earlier, so nothing is written through
// a link that leads outside the root.
func (t *Transport) extractEntry(tr *tar.Reader, hdr *tar.Header, x *extraction) error {
	if err := x.pv.ValidatePath(hdr.Name); err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "unsafe archive member")
	}

	if hdr.Typeflag == tar.TypeDir {
		rel, err := x.pv.Resolve(hdr.Name)
		if err != nil {
			return errors.Wrap(err, errors.CodeInvalidInput, "unsafe archive member")
		}
		target := filepath.Join(x.dir, rel)
		if err := t.fs.MkdirAll(target, 0o755); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to create directory")
		}
		x.dirModes[target] = hdr.FileInfo().Mode().Perm()
		return nil
	}

	rel, err := x.pv.ResolveParent(hdr.Name)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "unsafe archive member")
	}
	target := filepath.Join(x.dir, rel)

	switch hdr.Typeflag {
	case tar.TypeReg, tar.TypeLink, tar.TypeSymlink:
	default:
		// Devices and FIFOs never appear in build artifacts.
		return nil
	}

	if err := t.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to create parent directory")
	}
	if x.pv.Forget(rel) {
		if err := t.fs.Remove(target); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to replace symlink")
		}
	}

	switch hdr.Typeflag {
	case tar.TypeReg:
		return t.writeFile(target, tr, hdr.FileInfo().Mode().Perm())
	case tar.TypeLink:
		if err := x.pv.ValidatePath(hdr.Linkname); err != nil {
			return errors.Wrap(err, errors.CodeInvalidInput, "unsafe hard link")
		}
		src, err := x.pv.Resolve(hdr.Linkname)
		if err != nil {
			return errors.Wrap(err, errors.CodeInvalidInput, "unsafe hard link")
		}
		return t.copyFile(filepath.Join(x.dir, src), target)
	default:
		if err := x.pv.ValidateSymlink(hdr.Name, hdr.Linkname); err != nil {
			return errors.Wrap(err, errors.CodeInvalidInput, "unsafe symlink")
		}
		_ = t.fs.Remove(target)
		if err := symlink(t.fs, hdr.Linkname, target); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to create symlink")
		}
		x.pv.RecordSymlink(rel, hdr.Linkname)
		return nil
	}
}

// writeFile writes r to target with mode perm.
func (t *Transport) writeFile(target string, r io.Reader, perm fs.FileMode) error {
	out, err := t.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to create file")
	}
	_, err = io.Copy(out, r)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to write file")
	}
	return nil
}

// copyFile materializes a hard link to src at target.
func (t *Transport) copyFile(src, target string) error {
	info, err := t.fs.Stat(src)
	if err != nil {
		return errors.WithContext(errors.Wrap(err, errors.CodeInvalidInput, "hard link target not extracted"), "link", src)
	}
	if !info.Mode().IsRegular() {
		return errors.WithContext(errors.New(errors.CodeInvalidInput, "hard link target is not a regular file"), "link", src)
	}

	in, err := t.fs.Open(src)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to open hard link target")
	}
	defer in.Close()

	return t.writeFile(target, in, info.Mode().Perm())
}

// applyDirModes sets the recorded directory permissions, deepest first.
// Filesystems without mode support keep their defaults.
func (t *Transport) applyDirModes(modes map[string]fs.FileMode) error {
	dirs := make([]string, 0, len(modes))
	for dir := range modes {
		dirs = append(dirs, dir)
	}
	sort.Slice(dirs, func(i, j int) bool {
		if di, dj := depth(dirs[i]), depth(dirs[j]); di != dj {
			return di > dj
		}
		return dirs[i] < dirs[j]
	})

	for _, dir := range dirs {
		err := chmod(t.fs, dir, modes[dir])
		if errors.Is(err, core.ErrUnsupported) {
			return nil
		}
		if err != nil {
			return errors.WithContext(errors.Wrap(err, errors.CodeInternal, "failed to set directory mode"), "path", dir)
		}
	}
	return nil
}

// locate finds the entry below dir whose name ends with extension.
func (t *Transport) locate(dir, extension string) (string, error) {
	root := filepath.ToSlash(filepath.Clean(dir))

	var matches []string
	err := t.fs.Walk(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if filepath.ToSlash(path) == root {
			return nil
		}
		if strings.HasSuffix(d.Name(), extension) {
			matches = append(matches, path)
			if d.IsDir() {
				return fs.SkipDir
			}
		}
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to search extracted archive")
	}

	if len(matches) == 0 {
		return "", errors.WithContext(errors.Wrap(ErrArtifactNotFound, errors.CodeNotFound, "artifact not found in archive"), "extension", extension)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		di, dj := depth(matches[i]), depth(matches[j])
		if di != dj {
			return di < dj
		}
		return matches[i] < matches[j]
	})

	return filepath.FromSlash(matches[0]), nil
}

func depth(path string) int {
	return strings.Count(filepath.ToSlash(path), "/")
}
