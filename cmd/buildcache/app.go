package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/fs/billy"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmgilman/go/buildcache"
	"github.com/jmgilman/go/buildcache/providers/cli"
	"github.com/jmgilman/go/buildcache/providers/sdk"
	"github.com/jmgilman/go/buildcache/transport"
)

const envPrefix = "BUILDCACHE"

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:          "buildcache",
		Short:        "Remote build cache backed by GitHub releases",
		SilenceUsage: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.String("owner", "", "owner of the repository holding cache releases")
	flags.String("repo", "", "repository holding cache releases")
	flags.String("provider", "sdk", "registry backend: sdk (GitHub API) or cli (gh)")
	flags.String("cache-dir", buildcache.DefaultCacheRoot(), "local cache directory")
	flags.String("enterprise-url", "", "GitHub Enterprise API base URL")
	flags.String("upload-url", "", "GitHub Enterprise upload URL (defaults to the API base URL)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("project-root", ".", "project root containing package.json")
	flags.String("platform", "", "target platform (ios or android)")
	flags.String("fingerprint", "", "project fingerprint hash")
	flags.String("variant", "", "Android build variant")
	flags.String("configuration", "", "iOS build configuration")

	cmd.PersistentFlags().VisitAll(func(flag *pflag.Flag) {
		_ = v.BindPFlag(flag.Name, flag)
	})
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("token", envPrefix+"_TOKEN", "GITHUB_TOKEN")

	cmd.AddCommand(newResolveCommand(v), newUploadCommand(v))

	return cmd
}

func newResolveCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the path of the cached build, downloading it if needed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			props, err := buildProps(v)
			if err != nil {
				return err
			}

			cache, err := newCache(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if path, ok := cache.Resolve(cmd.Context(), props, storeConfig(v), v.GetString("token")); ok {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	cmd.Flags().Bool("build-cache", false, "enable the remote build cache")
	_ = v.BindPFlag("build-cache", cmd.Flags().Lookup("build-cache"))

	return cmd
}

func newUploadCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a build and print its download URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			props, err := buildProps(v)
			if err != nil {
				return err
			}
			props.BuildPath = absPath(v.GetString("build-path"))

			cache, err := newCache(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if link, ok := cache.Upload(cmd.Context(), props, storeConfig(v), v.GetString("token")); ok {
				fmt.Fprintln(cmd.OutOrStdout(), link)
			}
			return nil
		},
	}

	cmd.Flags().String("build-path", "", "built artifact (.apk file or .app directory)")
	_ = v.BindPFlag("build-path", cmd.Flags().Lookup("build-path"))

	return cmd
}

func buildProps(v *viper.Viper) (buildcache.BuildProps, error) {
	platform := buildcache.Platform(strings.ToLower(v.GetString("platform")))
	if !platform.Valid() {
		err := errors.New(errors.CodeInvalidInput, "platform must be ios or android")
		return buildcache.BuildProps{}, errors.WithContext(err, "platform", string(platform))
	}

	props := buildcache.BuildProps{
		ProjectRoot:     absPath(v.GetString("project-root")),
		Platform:        platform,
		FingerprintHash: v.GetString("fingerprint"),
		RunOptions:      buildcache.RunOptions{BuildCache: v.GetBool("build-cache")},
	}
	if v.IsSet("variant") {
		variant := v.GetString("variant")
		props.RunOptions.Variant = &variant
	}
	if v.IsSet("configuration") {
		configuration := v.GetString("configuration")
		props.RunOptions.Configuration = &configuration
	}

	return props, nil
}

func storeConfig(v *viper.Viper) buildcache.StoreConfig {
	return buildcache.StoreConfig{Owner: v.GetString("owner"), Repo: v.GetString("repo")}
}

func newLogger(v *viper.Viper, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log-level"))); err != nil {
		err := errors.Wrap(err, errors.CodeInvalidInput, "invalid log level")
		return nil, errors.WithContext(err, "log-level", v.GetString("log-level"))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

func newCache(v *viper.Viper, logw io.Writer) (*buildcache.Cache, error) {
	logger, err := newLogger(v, logw)
	if err != nil {
		return nil, err
	}
	observer := buildcache.NewSlogObserver(logger)

	fsys := billy.NewLocal()
	topts := []transport.Option{transport.WithFilesystem(fsys), transport.WithObserver(observer)}
	host, err := enterpriseHost(v)
	if err != nil {
		return nil, err
	}
	if host != "" {
		topts = append(topts, transport.WithAPIHosts(transport.DefaultAPIHost, host))
	}
	t, err := transport.New(topts...)
	if err != nil {
		return nil, err
	}

	return buildcache.New(
		buildcache.WithRegistryFactory(registryFactory(v, host)),
		buildcache.WithObserver(observer),
		buildcache.WithLocalStore(buildcache.NewLocalStore(absPath(v.GetString("cache-dir")), fsys)),
		buildcache.WithTransport(t),
		buildcache.WithManifestReader(buildcache.NewFSManifestReader(fsys)),
	)
}

// absPath resolves a path flag against the working directory. Empty values
// stay empty.
func absPath(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// enterpriseHost returns the host of the configured enterprise URL, if any.
func enterpriseHost(v *viper.Viper) (string, error) {
	raw := v.GetString("enterprise-url")
	if raw == "" {
		return "", nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		err := errors.New(errors.CodeInvalidInput, "invalid enterprise URL")
		return "", errors.WithContext(err, "enterprise-url", raw)
	}
	return u.Hostname(), nil
}

func registryFactory(v *viper.Viper, host string) buildcache.RegistryFactory {
	return func(token string) (buildcache.Registry, error) {
		switch provider := v.GetString("provider"); provider {
		case "sdk":
			opts := []sdk.Option{sdk.WithToken(token)}
			if base := v.GetString("enterprise-url"); base != "" {
				opts = append(opts, sdk.WithEnterpriseURLs(base, v.GetString("upload-url")))
			}
			p, err := sdk.NewSDKProvider(opts...)
			if err != nil {
				return nil, err
			}
			return p, nil
		case "cli":
			opts := []cli.Option{cli.WithToken(token)}
			if host != "" {
				opts = append(opts, cli.WithHostname(host))
			}
			p, err := cli.NewCLIProvider(opts...)
			if err != nil {
				return nil, err
			}
			return p, nil
		default:
			err := errors.New(errors.CodeInvalidInput, "unknown provider")
			return nil, errors.WithContext(err, "provider", provider)
		}
	}
}
