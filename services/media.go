package services

import (
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/yeremiapane/catering-app/utils"
)

const (
	EstablishmentPhotosDir = "catering_establishment/photos"
	DishPhotosDir          = "dish/photos"

	// MediaURLPrefix is the route the media root is served under.
	MediaURLPrefix = "/media/"
)

var encodedFilePattern = regexp.MustCompile(`^data:image/(\w+);base64,([A-Za-z0-9+/]+={0,2})$`)

// MediaStore keeps uploaded images on disk under Root and renders their public URLs.
type MediaStore struct {
	Root    string
	BaseURL string
}

func NewMediaStore(root, baseURL string) *MediaStore {
	return &MediaStore{Root: root, BaseURL: strings.TrimSuffix(baseURL, "/")}
}

// ValidateEncoded checks a "data:image/<format>;base64,<payload>" string and returns the
// image format and decoded bytes.
func ValidateEncoded(encoded string) (string, []byte, error) {
	m := encodedFilePattern.FindStringSubmatch(encoded)
	if m == nil {
		return "", nil, newValidation("photo", "provided encoded data has incorrect format")
	}
	content, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return "", nil, newValidation("photo", "%v", err)
	}
	return strings.ToLower(m[1]), content, nil
}

// SaveEncoded writes an encoded image under dir and returns its path relative to Root.
func (m *MediaStore) SaveEncoded(encoded, dir string) (string, error) {
	format, content, err := ValidateEncoded(encoded)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Join(m.Root, filepath.FromSlash(dir)), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media dir: %w", err)
	}

	rel := path.Join(dir, fmt.Sprintf("%s.%s", uuid.NewString(), format))
	if err := os.WriteFile(filepath.Join(m.Root, filepath.FromSlash(rel)), content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	return rel, nil
}

// Remove deletes stored files. Failures are logged and skipped.
func (m *MediaStore) Remove(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		full := filepath.Join(m.Root, filepath.FromSlash(p))
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			utils.ErrorLogger.Errorf("Failed to remove media file %s: %v", full, err)
		}
	}
}

func (m *MediaStore) URL(p string) string {
	if p == "" {
		return ""
	}
	return m.BaseURL + MediaURLPrefix + p
}

func (m *MediaStore) URLs(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, m.URL(p))
	}
	return out
}
