// Package transport moves build artifacts between the local filesystem and a
// remote release-asset store.
//
// A Transport provides three operations:
//
//   - Download streams a remote blob to disk, reporting coarse progress when
//     the size is known and removing the partial file on any failure.
//   - ExtractAndLocate expands a tar.gz archive into a fresh directory and
//     returns the artifact whose name ends with a given extension. The native
//     tar binary is tried first; on failure the archive is expanded in-process.
//   - PackageIfDirectory turns a directory artifact (for example an iOS .app
//     bundle) into a tar.gz whose single root entry is the directory itself.
//     Regular files are returned unchanged.
//
// All filesystem access goes through a core.FS, which defaults to the local
// filesystem provided by github.com/jmgilman/go/fs/billy.
//
// Example:
//
//	t, err := transport.New(transport.WithObserver(obs))
//	if err != nil {
//	    return err
//	}
//	if err := t.Download(ctx, asset.URL, "/tmp/build.tar.gz", token); err != nil {
//	    return err
//	}
//	app, err := t.ExtractAndLocate(ctx, "/tmp/build.tar.gz", ".app")
package transport
