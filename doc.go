// Package buildcache provides a remote build-artifact cache backed by
// GitHub releases.
//
// Each build is keyed by a Tag derived from the project's content
// fingerprint, the target platform and whether it is a development-client
// build. Resolve looks the tag up in a local cache first and otherwise
// downloads the release asset published under that tag; Upload publishes a
// built artifact as a pre-release asset under the tag, creating the tag and
// release when needed.
//
// Neither operation ever fails the caller. Resolve and Upload report failures
// through an Observer and return false, so the caller falls back to a full
// build.
//
// Example:
//
//	cache, err := buildcache.New(
//	    buildcache.WithRegistryFactory(func(token string) (buildcache.Registry, error) {
//	        return sdk.NewSDKProvider(sdk.WithToken(token))
//	    }),
//	    buildcache.WithObserver(buildcache.NewSlogObserver(logger)),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	path, ok := cache.Resolve(ctx, props, buildcache.StoreConfig{Owner: "acme", Repo: "builds"}, os.Getenv("GITHUB_TOKEN"))
package buildcache
