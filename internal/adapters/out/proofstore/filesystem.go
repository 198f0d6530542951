// Package proofstore keeps completion photos on a local or mounted
// filesystem and serves them under a public base URL.
package proofstore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"dispatch/internal/pkg/errs"
)

// FileStore implements ports.ProofStorage.
type FileStore struct {
	dir     string
	baseURL string
}

// NewFileStore creates dir if needed. baseURL is the prefix under which the
// HTTP server exposes dir, e.g. "/proofs" or "https://cdn.example.com/proofs".
func NewFileStore(dir, baseURL string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errs.NewValueIsRequiredError("proof directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create proof directory: %w", err)
	}
	return &FileStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir is the directory photos are written to.
func (s *FileStore) Dir() string {
	return s.dir
}

// Put writes data under name through a temporary file so readers never see
// a partial photo, and returns the public URL.
func (s *FileStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if name == "" || filepath.Base(name) != name || name == "." || name == ".." {
		return "", errs.NewValueIsInvalidErrorWithCause("proof name", fmt.Errorf("%q is not a plain file name", name))
	}
	if len(data) == 0 {
		return "", errs.NewValueIsRequiredError("photo")
	}
	if err := ctx.Err(); err != nil {
		return "", errs.NewStorageUnavailableErrorWithCause(name, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", errs.NewStorageUnavailableErrorWithCause(name, err)
	}
	tmpName := tmp.Name()
	cleanup := func(cause error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", errs.NewStorageUnavailableErrorWithCause(name, cause)
	}

	if _, err = tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err = tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err = tmp.Close(); err != nil {
		return cleanup(err)
	}
	if err = ctx.Err(); err != nil {
		_ = os.Remove(tmpName)
		return "", errs.NewStorageUnavailableErrorWithCause(name, err)
	}
	if err = os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return "", errs.NewStorageUnavailableErrorWithCause(name, err)
	}

	return s.baseURL + "/" + url.PathEscape(name), nil
}
