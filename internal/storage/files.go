// Package storage keeps uploaded catalog images on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrBadPath is returned for empty names and paths outside the upload root.
var ErrBadPath = errors.New("storage: invalid file path")

// Files stores images under Root.  Stored paths are relative and always
// start with the root's base name, e.g. "uploads/chair.png", which is also
// the URL path the router serves them under.
type Files struct {
	Root string
}

func NewFiles(root string) (*Files, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Files{Root: root}, nil
}

// Save writes fh to disk and returns its stored path.  A file with the same
// base name already on disk is reused as-is, so two records uploading the
// same name share one file.
func (f *Files) Save(fh *multipart.FileHeader) (string, error) {
	name := filepath.Base(filepath.Clean("/" + fh.Filename))
	if name == "/" || name == "." || name == "" {
		return "", ErrBadPath
	}
	dst := filepath.Join(f.Root, name)
	rel := f.relative(name)

	if _, err := os.Stat(dst); err == nil {
		return rel, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp := filepath.Join(f.Root, "."+uuid.NewString()+".part")
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return rel, nil
}

// Exists reports whether the stored path names a file under Root.
func (f *Files) Exists(rel string) bool {
	_, err := f.Canonical(rel)
	return err == nil
}

// Canonical returns the stored form of rel, e.g. "uploads/a.png" for
// "/uploads/a.png".  Records must only persist this form: reference counts
// compare image paths as plain strings.
func (f *Files) Canonical(rel string) (string, error) {
	p, err := f.resolve(rel)
	if err != nil {
		return "", err
	}
	st, err := os.Stat(p)
	if err != nil {
		return "", err
	}
	if st.IsDir() {
		return "", ErrBadPath
	}
	return f.relative(filepath.Base(p)), nil
}

// Remove deletes the file at the stored path rel.
func (f *Files) Remove(rel string) error {
	p, err := f.resolve(rel)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

func (f *Files) relative(name string) string {
	return path.Join(filepath.Base(f.Root), name)
}

// resolve maps a stored path back onto the filesystem.  Only direct
// children of Root are accepted.
func (f *Files) resolve(rel string) (string, error) {
	rel = filepath.ToSlash(strings.TrimSpace(rel))
	rel = strings.TrimPrefix(rel, "/")
	base := filepath.Base(f.Root)
	if !strings.HasPrefix(rel, base+"/") {
		return "", ErrBadPath
	}
	name := strings.TrimPrefix(rel, base+"/")
	if name == "" || name == "." || name == ".." || strings.Contains(name, "/") {
		return "", ErrBadPath
	}
	return filepath.Join(f.Root, name), nil
}
