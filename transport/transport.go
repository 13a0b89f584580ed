package transport

import (
	"io/fs"
	"net/http"
	"os"
	"strings"

	gobilly "github.com/go-git/go-billy/v5"
	"github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/exec"
	"github.com/jmgilman/go/fs/billy"
	"github.com/jmgilman/go/fs/core"
)

// DefaultAPIHost is the artifact-store API host that receives token-scheme
// authorization.
const DefaultAPIHost = "api.github.com"

// ErrArtifactNotFound is returned when an extracted archive holds no entry
// with the requested extension.
var ErrArtifactNotFound = errors.New(errors.CodeNotFound, "no artifact with the requested extension in archive")

// Observer receives progress and warning events from a Transport.
// It is satisfied by buildcache.Observer.
type Observer interface {
	Warn(msg string, args ...any)
	StartProgress(msg string, total int64)
	UpdateProgress(current int64, msg string)
	StopProgress(msg string)
}

// Transport downloads, extracts and packages build artifacts.
// A Transport holds no per-call state and is safe for concurrent use.
type Transport struct {
	client   *http.Client
	fs       core.FS
	executor exec.Executor
	observer Observer
	apiHosts map[string]struct{}
	native   bool
	tempDir  string
}

// Option configures a Transport.
type Option func(*Transport) error

// New creates a Transport. Without options it uses a plain http.Client, the
// local filesystem, the native tar binary and the system temp directory.
func New(opts ...Option) (*Transport, error) {
	t := &Transport{
		client:   &http.Client{},
		fs:       billy.NewLocal(),
		executor: exec.New(exec.WithInheritEnv()),
		observer: nopObserver{},
		apiHosts: map[string]struct{}{DefaultAPIHost: {}},
		native:   true,
		tempDir:  os.TempDir(),
	}

	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// WithHTTPClient sets the HTTP client used for downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Transport) error {
		if client == nil {
			err := errors.New(errors.CodeInvalidInput, "http client cannot be nil")
			return errors.WithContext(err, "field", "client")
		}
		t.client = client
		return nil
	}
}

// WithFilesystem sets the filesystem artifacts are read from and written to.
// Native extraction is only attempted on local filesystems.
func WithFilesystem(fsys core.FS) Option {
	return func(t *Transport) error {
		if fsys == nil {
			err := errors.New(errors.CodeInvalidInput, "filesystem cannot be nil")
			return errors.WithContext(err, "field", "filesystem")
		}
		t.fs = fsys
		return nil
	}
}

// WithExecutor sets the executor used to run the native tar binary.
func WithExecutor(executor exec.Executor) Option {
	return func(t *Transport) error {
		if executor == nil {
			err := errors.New(errors.CodeInvalidInput, "executor cannot be nil")
			return errors.WithContext(err, "field", "executor")
		}
		t.executor = executor
		return nil
	}
}

// WithObserver sets the receiver for progress and warning events.
func WithObserver(observer Observer) Option {
	return func(t *Transport) error {
		if observer == nil {
			observer = nopObserver{}
		}
		t.observer = observer
		return nil
	}
}

// WithAPIHosts replaces the set of hosts that receive token-scheme
// authorization. Use this for GitHub Enterprise API hosts.
func WithAPIHosts(hosts ...string) Option {
	return func(t *Transport) error {
		if len(hosts) == 0 {
			err := errors.New(errors.CodeInvalidInput, "at least one API host is required")
			return errors.WithContext(err, "field", "hosts")
		}
		t.apiHosts = make(map[string]struct{}, len(hosts))
		for _, h := range hosts {
			t.apiHosts[strings.ToLower(h)] = struct{}{}
		}
		return nil
	}
}

// WithNativeExtraction enables or disables the native tar fast path.
func WithNativeExtraction(enabled bool) Option {
	return func(t *Transport) error {
		t.native = enabled
		return nil
	}
}

// WithTempDir sets the directory packaged archives are written to.
func WithTempDir(dir string) Option {
	return func(t *Transport) error {
		if dir == "" {
			err := errors.New(errors.CodeInvalidInput, "temp directory cannot be empty")
			return errors.WithContext(err, "field", "dir")
		}
		t.tempDir = dir
		return nil
	}
}

// Filesystem returns the filesystem the transport operates on.
func (t *Transport) Filesystem() core.FS {
	return t.fs
}

type nopObserver struct{}

func (nopObserver) Warn(string, ...any)          {}
func (nopObserver) StartProgress(string, int64)  {}
func (nopObserver) UpdateProgress(int64, string) {}
func (nopObserver) StopProgress(string)          {}

// billyFS is implemented by fs/billy adapters; it exposes the go-billy
// filesystem for symlink operations core.FS does not cover.
type billyFS interface {
	Unwrap() gobilly.Filesystem
}

func symlink(fsys core.FS, target, name string) error {
	if sfs, ok := fsys.(core.SymlinkFS); ok {
		return sfs.Symlink(target, name)
	}
	if bfs, ok := fsys.(billyFS); ok {
		return bfs.Unwrap().Symlink(target, name)
	}
	return core.ErrUnsupported
}

func readlink(fsys core.FS, name string) (string, error) {
	if sfs, ok := fsys.(core.SymlinkFS); ok {
		return sfs.Readlink(name)
	}
	if bfs, ok := fsys.(billyFS); ok {
		return bfs.Unwrap().Readlink(name)
	}
	return "", core.ErrUnsupported
}

// chmod sets the mode of name. The billy local adapter does not expose
// Chmod, so local filesystems are changed through the os package.
func chmod(fsys core.FS, name string, mode fs.FileMode) error {
	if mfs, ok := fsys.(core.MetadataFS); ok {
		return mfs.Chmod(name, mode)
	}
	if bfs, ok := fsys.(billyFS); ok {
		if cfs, ok := bfs.Unwrap().(gobilly.Change); ok {
			return cfs.Chmod(name, mode)
		}
	}
	if fsys.Type() == core.FSTypeLocal {
		return os.Chmod(name, mode)
	}
	return core.ErrUnsupported
}
