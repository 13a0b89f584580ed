package buildcache

import "strings"

// Tag is the cache key for one build. It is used verbatim as the release tag
// name, the release name and the stem of the local cache file.
type Tag string

// devClientSegment marks development-client builds.
const devClientSegment = "dev-client"

// NewTag derives the tag for a build:
//
//	fingerprint.<hash>[.dev-client].<platform>
//
// The segment order is part of the contract with tags already stored in a
// repository and must not change.
func NewTag(fingerprintHash string, platform Platform, isDevClient bool) Tag {
	parts := []string{"fingerprint", fingerprintHash}
	if isDevClient {
		parts = append(parts, devClientSegment)
	}
	parts = append(parts, string(platform))
	return Tag(strings.Join(parts, "."))
}

// String returns the tag as a string.
func (t Tag) String() string {
	return string(t)
}
