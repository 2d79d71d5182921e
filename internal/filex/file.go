// Package filex holds small filesystem helpers shared by the ledger and the
// job output writers.
package filex

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// EnsureDir creates dir (and parents) if missing and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// WriteFileAtomic writes data to path by way of a sibling temp file that is
// renamed over the target, so readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	_, err := WriteStreamAtomic(path, bytes.NewReader(data), perm)
	return err
}

// WriteStreamAtomic copies r into path with the same temp-and-rename scheme
// as WriteFileAtomic and returns the number of bytes written. The parent
// directory is created when missing.
func WriteStreamAtomic(path string, r io.Reader, perm os.FileMode) (int64, error) {
	return WriteStreamAtomicVerified(path, r, perm, nil)
}

// WriteStreamAtomicVerified is WriteStreamAtomic with a check that runs after
// the temp file is complete and before it replaces path. When verify returns
// an error the temp file is removed and path is left untouched.
func WriteStreamAtomicVerified(path string, r io.Reader, perm os.FileMode, verify func() error) (int64, error) {
	dir := filepath.Dir(path)
	if _, err := EnsureDir(dir); err != nil {
		return 0, err
	}

	tmp := filepath.Join(dir, "."+filepath.Base(path)+".tmp-"+uuid.NewString())

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", tmp, err)
	}

	n, err := io.Copy(f, r)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return n, fmt.Errorf("write %s: %w", tmp, err)
	}

	if verify != nil {
		if err := verify(); err != nil {
			_ = os.Remove(tmp)
			return n, err
		}
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return n, fmt.Errorf("rename %s: %w", path, err)
	}

	return n, nil
}
