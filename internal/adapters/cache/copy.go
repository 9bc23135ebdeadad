package cache

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
)

// copyTree copies the contents of src into dst, preserving file modes.
// Symlinks and other irregular files are skipped: cached toolchain trees may
// contain sockets or stale links that must not break a best-effort restore.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return zerr.With(zerr.Wrap(err, "walk failed"), "path", path)
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return zerr.Wrap(err, "failed to relativize path")
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			info, err := d.Info()
			if err != nil {
				return zerr.Wrap(err, "failed to stat directory")
			}
			return os.MkdirAll(target, info.Mode().Perm())
		}

		if !d.Type().IsRegular() {
			return nil
		}

		return copyFile(path, target, d)
	})
}

func copyFile(src, dst string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return zerr.Wrap(err, "failed to stat file")
	}

	in, err := os.Open(src) //nolint:gosec // Paths stay inside the cache root and namespace dirs
	if err != nil {
		return zerr.Wrap(err, "failed to open source file")
	}
	defer in.Close() //nolint:errcheck // Best effort close in defer

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()) //nolint:gosec // see above
	if err != nil {
		return zerr.Wrap(err, "failed to create destination file")
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(err, "failed to copy file"), "path", src)
	}
	return out.Close()
}
