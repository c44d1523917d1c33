package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local writes objects below a directory and serves them under urlPrefix.
type Local struct {
	root      string
	urlPrefix string
}

// NewLocal creates root if needed.
func NewLocal(root, urlPrefix string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Local{root: root, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Root is the directory objects are written to.
func (l *Local) Root() string { return l.root }

// URLPrefix is the path objects are served under.
func (l *Local) URLPrefix() string { return l.urlPrefix }

func (l *Local) Put(ctx context.Context, key string, r io.Reader, _ string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dst := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

// Delete removes the object. A missing object is not an error.
func (l *Local) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err = os.Remove(filepath.Join(l.root, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (l *Local) URL(key string) string {
	key, err := cleanKey(key)
	if err != nil {
		return ""
	}
	return l.urlPrefix + "/" + key
}
