// Package storage keeps uploaded media on the local disk under a single
// root directory and maps stored files to their public /uploads/ URLs.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// URLPrefix is the public path under which the root directory is served.
const URLPrefix = "/uploads/"

// Upload kinds; each is a subdirectory of the root.
const (
	KindImages = "images"
	KindVideos = "videos"
)

var allowed = map[string]map[string]bool{
	KindImages: {"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true},
	KindVideos: {"mp4": true, "webm": true, "avi": true, "mov": true, "mkv": true},
}

var (
	ErrKind      = errors.New("invalid upload type")
	ErrExtension = errors.New("file type not allowed")
	ErrOutside   = errors.New("path outside upload directory")
)

// Saved describes a stored upload.
type Saved struct {
	URL              string `json:"url"`
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	Type             string `json:"type"`
}

// Local stores files below Root.
type Local struct {
	Root string
	now  func() time.Time
}

func NewLocal(root string) *Local {
	return &Local{Root: root, now: time.Now}
}

// Allowed reports whether original has an extension accepted for kind.
func Allowed(kind, original string) bool {
	exts, ok := allowed[kind]
	return ok && exts[extension(original)]
}

func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// Save copies r into <Root>/<kind>/<YYYYmmdd_HHMMSS>_<8hex>.<ext>.
func (l *Local) Save(kind, original string, r io.Reader) (Saved, error) {
	if _, ok := allowed[kind]; !ok {
		return Saved{}, ErrKind
	}
	if !Allowed(kind, original) {
		return Saved{}, ErrExtension
	}
	dir := filepath.Join(l.Root, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Saved{}, fmt.Errorf("create upload dir: %w", err)
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("%s_%s.%s", l.now().Format("20060102_150405"), id, extension(original))

	f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Saved{}, fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return Saved{}, fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return Saved{}, fmt.Errorf("close upload: %w", err)
	}
	return Saved{
		URL:              URLPrefix + kind + "/" + name,
		Filename:         name,
		OriginalFilename: filepath.Base(original),
		Type:             kind,
	}, nil
}

// IsLocal reports whether url points into the upload directory.
func IsLocal(url string) bool { return strings.HasPrefix(url, URLPrefix) }

// Path resolves a /uploads/ URL to a file below Root.
func (l *Local) Path(url string) (string, error) {
	if !IsLocal(url) {
		return "", ErrOutside
	}
	rel := filepath.Clean("/" + strings.TrimPrefix(url, URLPrefix))
	p := filepath.Join(l.Root, rel)
	back, err := filepath.Rel(l.Root, p)
	if err != nil || back == "." || strings.HasPrefix(back, "..") {
		return "", ErrOutside
	}
	return p, nil
}

// Remove deletes the file behind a /uploads/ URL. Other URLs are ignored.
// A missing file is reported with an error matching fs.ErrNotExist.
func (l *Local) Remove(url string) error {
	if !IsLocal(url) {
		return nil
	}
	p, err := l.Path(url)
	if err != nil {
		return err
	}
	return os.Remove(p)
}
