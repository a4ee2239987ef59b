//go:build !linux

package usecases

import "errors"

// cloneFile has no portable reflink equivalent outside Linux; it always
// reports unsupported so copyFileCloneOrBytes falls back to a byte copy.
func cloneFile(src, dst string) error {
	return errors.New("copy-on-write clone not supported on this platform")
}
