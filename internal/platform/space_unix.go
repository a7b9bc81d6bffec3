//go:build linux || darwin

package platform

import "golang.org/x/sys/unix"

func freeSpace(path string) (uint64, bool) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, false
	}
	return st.Bavail * uint64(st.Bsize), true //nolint:gosec // G115: block size is positive
}
