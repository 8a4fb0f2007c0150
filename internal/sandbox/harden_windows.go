//go:build windows

package sandbox

import "os"

// Windows has no owner-only permission bits; clearing the write bits sets
// the generic read-only attribute.
func hardenFile(path string) error {
	return os.Chmod(path, 0o444)
}
