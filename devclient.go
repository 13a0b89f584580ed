package buildcache

import (
	"encoding/json"
	"path/filepath"

	"github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/fs/core"

	"github.com/jmgilman/go/buildcache/internal/localpath"
)

const (
	// DevClientPackage is the dependency that marks a project as able to
	// produce development-client builds.
	DevClientPackage = "expo-dev-client"

	// debugVariant is the Android variant that selects a dev-client build.
	debugVariant = "debug"

	// debugConfiguration is the iOS configuration that selects a dev-client build.
	debugConfiguration = "Debug"
)

// PackageManifest is the subset of package.json the cache inspects.
type PackageManifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// HasDependency reports whether name is a direct or development dependency.
func (m *PackageManifest) HasDependency(name string) bool {
	if m == nil {
		return false
	}
	if _, ok := m.Dependencies[name]; ok {
		return true
	}
	_, ok := m.DevDependencies[name]
	return ok
}

// ManifestReader loads a project's package manifest.
type ManifestReader interface {
	PackageJSON(projectRoot string) (*PackageManifest, error)
}

// FSManifestReader reads package.json from a filesystem.
type FSManifestReader struct {
	fs core.FS
}

// NewFSManifestReader creates a ManifestReader backed by fsys.
func NewFSManifestReader(fsys core.FS) *FSManifestReader {
	return &FSManifestReader{fs: fsys}
}

// PackageJSON reads and decodes <projectRoot>/package.json. A relative
// projectRoot is resolved against the working directory.
func (r *FSManifestReader) PackageJSON(projectRoot string) (*PackageManifest, error) {
	path := filepath.Join(localpath.Abs(r.fs, projectRoot), "package.json")

	data, err := r.fs.ReadFile(path)
	if err != nil {
		return nil, errors.WithContext(errors.Wrap(err, errors.CodeNotFound, "failed to read package manifest"), "path", path)
	}

	var manifest PackageManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.WithContext(errors.Wrap(err, errors.CodeInvalidInput, "failed to parse package manifest"), "path", path)
	}

	return &manifest, nil
}

// IsDevClientBuild decides whether a build counts as a development-client
// build.
//
// Projects without DevClientPackage in their manifest never produce one. A
// missing or unreadable manifest counts as not having it. Otherwise an
// explicit variant decides ("debug"), then an explicit configuration
// ("Debug", case-sensitive). With neither set the dependency alone makes it a
// dev-client build.
func IsDevClientBuild(reader ManifestReader, projectRoot string, opts RunOptions) bool {
	manifest, err := reader.PackageJSON(projectRoot)
	if err != nil || !manifest.HasDependency(DevClientPackage) {
		return false
	}

	if opts.Variant != nil {
		return *opts.Variant == debugVariant
	}

	if opts.Configuration != nil {
		return *opts.Configuration == debugConfiguration
	}

	return true
}
