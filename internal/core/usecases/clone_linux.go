//go:build linux

package usecases

import (
	"os"

	"golang.org/x/sys/unix"
)

// cloneFile attempts a reflink copy-on-write clone via the FICLONE ioctl,
// supported by filesystems such as btrfs and xfs. Any failure (including
// "not supported on this filesystem") is returned so the caller falls back
// to a byte-for-byte copy; it is never treated as fatal.
func cloneFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	return unix.IoctlFileClone(int(out.Fd()), int(in.Fd()))
}
