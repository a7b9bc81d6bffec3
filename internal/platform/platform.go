// Package platform holds the OS-specific probes used by destinations.
package platform

// FreeSpace returns the bytes available to an unprivileged user on the
// filesystem holding path. ok is false when the platform cannot tell or the
// probe fails.
func FreeSpace(path string) (free uint64, ok bool) {
	return freeSpace(path)
}
