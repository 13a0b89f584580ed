package buildcache

// Platform identifies the target mobile platform of a build.
type Platform string

const (
	// PlatformIOS is an iOS build; artifacts are .app bundles.
	PlatformIOS Platform = "ios"

	// PlatformAndroid is an Android build; artifacts are .apk files.
	PlatformAndroid Platform = "android"
)

// Extension returns the artifact file extension for the platform,
// including the leading dot.
func (p Platform) Extension() string {
	if p == PlatformAndroid {
		return ".apk"
	}
	return ".app"
}

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	return p == PlatformIOS || p == PlatformAndroid
}

// RunOptions are the caller's run settings relevant to caching.
type RunOptions struct {
	// BuildCache enables the remote build cache. When false, Resolve returns
	// immediately without touching the filesystem or network.
	BuildCache bool

	// Variant is the Android build variant (e.g. "debug"), if set.
	Variant *string

	// Configuration is the iOS build configuration (e.g. "Debug"), if set.
	Configuration *string
}

// BuildProps describe one build supplied by the orchestrator.
type BuildProps struct {
	ProjectRoot     string
	Platform        Platform
	FingerprintHash string
	RunOptions      RunOptions

	// BuildPath is the built artifact to upload. Only used by Upload.
	BuildPath string
}

// StoreConfig identifies the repository whose releases hold the cache.
type StoreConfig struct {
	Owner string
	Repo  string
}

// RemoteAsset is a read-only projection of a release asset.
type RemoteAsset struct {
	Name string

	// URL is the API fetch URL, which requires authentication and an
	// octet-stream Accept header. It differs from the browser URL.
	URL string

	Size int64
}

// ReleaseHandle is the release resolved for one upload call.
type ReleaseHandle struct {
	ReleaseID      int64
	TagName        string
	AlreadyExisted bool

	// Assets lists assets already attached to the release.
	Assets []*AssetData
}

// RefData represents a git reference in the artifact store.
type RefData struct {
	// Ref is the fully qualified name, e.g. "refs/tags/v1".
	Ref string

	// SHA is the object the reference points to.
	SHA string

	// ObjectType is "commit" or "tag".
	ObjectType string
}

// TagData represents an annotated tag object.
type TagData struct {
	Tag       string
	SHA       string
	Message   string
	ObjectSHA string
}

// ReleaseData represents a release.
type ReleaseData struct {
	ID         int64
	TagName    string
	Name       string
	Draft      bool
	Prerelease bool
	HTMLURL    string
	Assets     []*AssetData
}

// AssetData represents a release asset.
type AssetData struct {
	ID                 int64
	Name               string
	URL                string
	BrowserDownloadURL string
	ContentType        string
	Size               int64
}

// CreateTagOptions configures annotated tag creation.
type CreateTagOptions struct {
	Tag        string
	Message    string
	ObjectSHA  string
	ObjectType string
}

// CreateReleaseOptions configures release creation.
type CreateReleaseOptions struct {
	TagName    string
	Name       string
	Body       string
	Draft      bool
	Prerelease bool
}

// UploadAssetOptions configures a release asset upload.
type UploadAssetOptions struct {
	// Name is the asset name shown on the release.
	Name string

	// Path is the local file to upload.
	Path string

	// ContentType defaults to application/octet-stream.
	ContentType string
}
