// Package validate checks archive member names before they are written to
// disk during in-process extraction.
//
// Application bundles routinely contain dot-prefixed entries, non-ASCII file
// names and relative symlinks between framework versions, so the rules here
// only reject what would place a file outside the extraction root.
package validate

import (
	"fmt"
	"path/filepath"
	"strings"
)

// maxLinkHops bounds symlink expansion while resolving a member name.
const maxLinkHops = 255

// MemberValidator validates tar member names and symlink targets against an
// extraction root.
//
// Symlinks extracted earlier in the same archive are recorded with
// RecordSymlink. Member names and link targets are then resolved through
// them, so a chain of links that each look harmless cannot place a later
// member outside the root.
type MemberValidator struct {
	// RootPath is the extraction root directory used for symlink validation.
	RootPath string

	// links maps the resolved slash path of each extracted symlink to its target.
	links map[string]string
}

// NewMemberValidator creates a MemberValidator rooted at root.
func NewMemberValidator(root string) *MemberValidator {
	return &MemberValidator{RootPath: root, links: map[string]string{}}
}

// ValidatePath validates an archive member name.
// Returns nil if the name is safe to join onto the extraction root.
func (v *MemberValidator) ValidatePath(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty path")
	}

	if isAbsolutePath(name) {
		return fmt.Errorf("absolute path not allowed: %s", name)
	}

	if err := detectControlCharacters(name); err != nil {
		return err
	}

	if escapes(filepath.Clean(filepath.FromSlash(name))) {
		return fmt.Errorf("path traversal detected: %s", name)
	}

	return nil
}

// ValidateSymlink validates that a symlink at linkPath pointing to target
// resolves inside the extraction root, following any recorded symlinks.
func (v *MemberValidator) ValidateSymlink(linkPath, target string) error {
	if v.RootPath == "" {
		return fmt.Errorf("root path not set for symlink validation")
	}

	if isAbsolutePath(target) {
		return fmt.Errorf("symlink target is absolute path: %s -> %s", linkPath, target)
	}

	if err := detectControlCharacters(target); err != nil {
		return err
	}

	located, err := v.ResolveParent(linkPath)
	if err != nil {
		return err
	}

	parts := append(splitPath(filepath.Dir(located)), splitPath(target)...)
	if _, err := v.resolve(parts); err != nil {
		return fmt.Errorf("symlink target escapes root directory: %s -> %s", linkPath, target)
	}

	return nil
}

// Resolve returns name relative to the root with every recorded symlink
// followed, including a symlink in its final element.
func (v *MemberValidator) Resolve(name string) (string, error) {
	parts, err := v.resolve(splitPath(name))
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, name)
	}
	return joinPath(parts), nil
}

// ResolveParent returns name relative to the root with recorded symlinks in
// its directory followed. The final element is kept as-is, so the result is
// where the member itself is created.
func (v *MemberValidator) ResolveParent(name string) (string, error) {
	parts := splitPath(name)
	for len(parts) > 0 && parts[len(parts)-1] == "." {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 || parts[len(parts)-1] == ".." {
		return "", fmt.Errorf("invalid member name: %s", name)
	}

	parent, err := v.resolve(parts[:len(parts)-1])
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, name)
	}
	return joinPath(append(parent, parts[len(parts)-1])), nil
}

// RecordSymlink records a symlink created at the resolved path located.
func (v *MemberValidator) RecordSymlink(located, target string) {
	if v.links == nil {
		v.links = map[string]string{}
	}
	v.links[filepath.ToSlash(located)] = target
}

// Forget removes a recorded symlink at the resolved path located and reports
// whether one was recorded.
func (v *MemberValidator) Forget(located string) bool {
	key := filepath.ToSlash(located)
	if _, ok := v.links[key]; !ok {
		return false
	}
	delete(v.links, key)
	return true
}

// resolve walks parts from the root, expanding recorded symlinks in place.
func (v *MemberValidator) resolve(parts []string) ([]string, error) {
	var out []string
	hops := 0

	for len(parts) > 0 {
		elem := parts[0]
		parts = parts[1:]

		switch elem {
		case ".":
			continue
		case "..":
			if len(out) == 0 {
				return nil, fmt.Errorf("path escapes root directory")
			}
			out = out[:len(out)-1]
			continue
		}

		out = append(out, elem)
		target, ok := v.links[strings.Join(out, "/")]
		if !ok {
			continue
		}
		if isAbsolutePath(target) {
			return nil, fmt.Errorf("path passes through absolute symlink")
		}
		if hops++; hops > maxLinkHops {
			return nil, fmt.Errorf("too many levels of symbolic links")
		}
		out = out[:len(out)-1]
		parts = append(splitPath(target), parts...)
	}

	return out, nil
}

// splitPath splits a slash or OS separated path into its non-empty elements.
func splitPath(path string) []string {
	return strings.FieldsFunc(filepath.ToSlash(path), func(r rune) bool { return r == '/' })
}

// joinPath joins resolved elements into an OS path; no elements is the root.
func joinPath(parts []string) string {
	if len(parts) == 0 {
		return "."
	}
	return filepath.Join(parts...)
}

// escapes reports whether a cleaned relative path climbs above its root.
func escapes(clean string) bool {
	return clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator))
}

// detectControlCharacters rejects NUL bytes and ASCII control characters.
func detectControlCharacters(path string) error {
	for _, r := range path {
		if r == 0 {
			return fmt.Errorf("NUL byte detected in path: %q", path)
		}
		if r < 32 || r == 127 {
			return fmt.Errorf("control character detected in path: %q (U+%04X)", path, r)
		}
	}
	return nil
}

// isAbsolutePath checks for absolute paths on all platforms including Windows and UNC paths.
func isAbsolutePath(path string) bool {
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return true
	}

	// Windows drive letters (C:, D:, etc.)
	if len(path) >= 3 && path[1] == ':' && (path[2] == '\\' || path[2] == '/') {
		drive := path[0]
		if (drive >= 'A' && drive <= 'Z') || (drive >= 'a' && drive <= 'z') {
			return true
		}
	}

	return strings.HasPrefix(path, "\\\\")
}
