//go:build windows

package config

const interpreterName = "python.exe"

// Windows has no execute permission bit; existence is checked by the
// caller and the ACL check happens when the process starts.
func checkExecutable(path string) error {
	_ = path
	return nil
}
