//go:build unix

package xaiepy

import "golang.org/x/sys/unix"

func dirWritable(dir string) error {
	return unix.Access(dir, unix.W_OK)
}
