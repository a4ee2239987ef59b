package usecases

import (
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// defaultCopyConcurrency bounds concurrent filesystem operations per
// dedup-copy or declaration-copy invocation.
const defaultCopyConcurrency = 64

// copyTree recursively copies srcDir's contents into dstDir. Directory
// creation happens first and is not parallelized — it is separated from
// file copy and completes first; file and symlink copies then run under
// a bounded errgroup (golang.org/x/sync/errgroup), capped at concurrency
// concurrent operations.
func copyTree(srcDir, dstDir string, concurrency int) error {
	if concurrency <= 0 {
		concurrency = defaultCopyConcurrency
	}

	var files []string
	var symlinks []string

	err := filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(dstDir, rel)

		if info.Mode()&os.ModeSymlink != 0 {
			symlinks = append(symlinks, rel)
			return nil
		}
		if info.IsDir() {
			return os.MkdirAll(dst, info.Mode().Perm()|0o700)
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return err
	}

	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	for _, rel := range files {
		rel := rel
		g.Go(func() error {
			return copyFileCloneOrBytes(filepath.Join(srcDir, rel), filepath.Join(dstDir, rel))
		})
	}
	for _, rel := range symlinks {
		rel := rel
		g.Go(func() error {
			return copySymlink(srcDir, dstDir, rel)
		})
	}
	return g.Wait()
}

// copyFileCloneOrBytes tries a copy-on-write clone first, when available,
// and falls back to a byte-for-byte copy when cloning isn't supported by
// the filesystem/OS.
func copyFileCloneOrBytes(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if cloneFile(src, dst) == nil {
		return nil
	}
	return copyFileBytes(src, dst)
}

func copyFileBytes(src, dst string) error {
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

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// copySymlink preserves a symlink found at srcDir/rel into dstDir/rel.
// Absolute targets are copied as-is; relative targets are rewritten to
// remain relative to the new location.
func copySymlink(srcDir, dstDir, rel string) error {
	srcPath := filepath.Join(srcDir, rel)
	target, err := os.Readlink(srcPath)
	if err != nil {
		return err
	}

	dstPath := filepath.Join(dstDir, rel)
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return err
	}

	newTarget := target
	if !filepath.IsAbs(target) {
		absTarget := filepath.Join(filepath.Dir(srcPath), target)
		rewritten, err := filepath.Rel(filepath.Dir(dstPath), absTarget)
		if err == nil {
			newTarget = rewritten
		}
	}

	_ = os.Remove(dstPath)
	return os.Symlink(newTarget, dstPath)
}
