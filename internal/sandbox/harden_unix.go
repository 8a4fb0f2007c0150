//go:build !windows

package sandbox

import "os"

// Owner-read-only via POSIX permission bits.
func hardenFile(path string) error {
	return os.Chmod(path, 0o400)
}
