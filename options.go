package buildcache

import (
	"github.com/jmgilman/go/errors"

	"github.com/jmgilman/go/buildcache/transport"
)

// RegistryFactory creates a Registry authenticated with token.
type RegistryFactory func(token string) (Registry, error)

// Option configures a Cache.
type Option func(*Cache) error

// WithRegistryFactory sets how a Registry is created for a credential.
// It is required.
func WithRegistryFactory(factory RegistryFactory) Option {
	return func(c *Cache) error {
		if factory == nil {
			err := errors.New(errors.CodeInvalidInput, "registry factory cannot be nil")
			return errors.WithContext(err, "field", "factory")
		}
		c.newRegistry = factory
		return nil
	}
}

// WithObserver sets the receiver of log and progress events.
func WithObserver(observer Observer) Option {
	return func(c *Cache) error {
		if observer == nil {
			observer = NopObserver()
		}
		c.observer = observer
		return nil
	}
}

// WithLocalStore sets the local artifact cache. It must share a filesystem
// with the transport.
func WithLocalStore(store *LocalStore) Option {
	return func(c *Cache) error {
		if store == nil {
			err := errors.New(errors.CodeInvalidInput, "local store cannot be nil")
			return errors.WithContext(err, "field", "store")
		}
		c.local = store
		return nil
	}
}

// WithTransport sets the artifact transport.
func WithTransport(t *transport.Transport) Option {
	return func(c *Cache) error {
		if t == nil {
			err := errors.New(errors.CodeInvalidInput, "transport cannot be nil")
			return errors.WithContext(err, "field", "transport")
		}
		c.transport = t
		return nil
	}
}

// WithManifestReader sets how project manifests are read for dev-client
// detection.
func WithManifestReader(reader ManifestReader) Option {
	return func(c *Cache) error {
		if reader == nil {
			err := errors.New(errors.CodeInvalidInput, "manifest reader cannot be nil")
			return errors.WithContext(err, "field", "reader")
		}
		c.manifests = reader
		return nil
	}
}

// WithDefaultBranches sets the branch names tried when resolving the commit
// for a new tag.
func WithDefaultBranches(branches ...string) Option {
	return func(c *Cache) error {
		if len(branches) == 0 {
			err := errors.New(errors.CodeInvalidInput, "at least one default branch is required")
			return errors.WithContext(err, "field", "branches")
		}
		c.branches = branches
		return nil
	}
}
