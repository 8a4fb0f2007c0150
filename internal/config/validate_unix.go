//go:build !windows

package config

import "golang.org/x/sys/unix"

const interpreterName = "python"

func checkExecutable(path string) error {
	return unix.Access(path, unix.X_OK)
}
