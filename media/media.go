// Package media stores uploaded images. Clients send images as base64
// data-URIs inside JSON payloads; the store decodes them into files under
// the media root and hands back a relative path that is persisted on the
// owning row. Files are served back at /media/<path>.
package media

import (
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/user/foodgram-go/apperror"
)

// Subdirectories under the media root, matching the original upload_to paths.
const (
	RecipeImageDir = "recipes/images"
	AvatarDir      = "users/avatars"
)

// extensions maps accepted data-URI image subtypes to file extensions.
var extensions = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"jpg":  ".jpg",
	"gif":  ".gif",
	"webp": ".webp",
}

// DecodeDataURI splits a "data:image/<subtype>;base64,<payload>" string into
// raw bytes and a file extension. It rejects non-image MIME types, unknown
// subtypes, and undecodable payloads.
func DecodeDataURI(dataURI string) ([]byte, string, error) {
	if !strings.HasPrefix(dataURI, "data:") {
		return nil, "", apperror.NewValidationError("image: expected a base64 data URI", nil)
	}
	rest := strings.TrimPrefix(dataURI, "data:")
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return nil, "", apperror.NewValidationError("image: malformed data URI", nil)
	}
	mimeType, _, _ := strings.Cut(meta, ";")
	if !strings.HasSuffix(meta, ";base64") {
		return nil, "", apperror.NewValidationError("image: data URI must be base64-encoded", nil)
	}
	subtype, ok := strings.CutPrefix(mimeType, "image/")
	if !ok {
		return nil, "", apperror.NewValidationError(fmt.Sprintf("image: unsupported content type %q", mimeType), nil)
	}
	ext, ok := extensions[subtype]
	if !ok {
		return nil, "", apperror.NewValidationError(fmt.Sprintf("image: unsupported image format %q", subtype), nil)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", apperror.NewValidationError("image: invalid base64 payload", err)
	}
	if len(raw) == 0 {
		return nil, "", apperror.NewValidationError("image: empty file", nil)
	}
	return raw, ext, nil
}

// Store writes decoded uploads below a root directory.
type Store struct {
	root    string
	baseURL string
}

// NewStore creates a Store rooted at root. baseURL is the external origin
// used when building public URLs for stored files.
func NewStore(root, baseURL string) *Store {
	return &Store{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// SaveDataURI decodes a data-URI and writes it under dir with a generated
// name, returning the path relative to the media root (the value persisted
// in the database).
func (s *Store) SaveDataURI(dataURI, dir string) (string, error) {
	raw, ext, err := DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	relPath := path.Join(dir, uuid.NewString()+ext)
	fullPath := filepath.Join(s.root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", apperror.NewInternalError("failed to create media directory", err)
	}
	if err := os.WriteFile(fullPath, raw, 0o644); err != nil {
		return "", apperror.NewInternalError("failed to store uploaded file", err)
	}
	return relPath, nil
}

// Remove deletes a previously stored file. A missing file is not an error;
// the row pointing at it is already being cleared.
func (s *Store) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	fullPath := filepath.Join(s.root, filepath.FromSlash(relPath))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return apperror.NewInternalError("failed to remove stored file", err)
	}
	return nil
}

// URL builds the public URL for a stored relative path. Empty paths yield
// an empty URL so JSON output can carry null-ish avatars.
func (s *Store) URL(relPath string) string {
	if relPath == "" {
		return ""
	}
	return s.baseURL + "/media/" + relPath
}

// Root returns the filesystem directory the store writes into, for wiring
// the /media/ file server.
func (s *Store) Root() string {
	return s.root
}
