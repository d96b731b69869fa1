package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndRemove(t *testing.T) {
	root := t.TempDir()
	l := NewLocal(root)
	l.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	s, err := l.Save(KindImages, "Poster.PNG", strings.NewReader("img"))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^20260304_050607_[0-9a-f]{8}\.png$`), s.Filename)
	assert.Equal(t, "/uploads/images/"+s.Filename, s.URL)
	assert.Equal(t, "Poster.PNG", s.OriginalFilename)

	b, err := os.ReadFile(filepath.Join(root, "images", s.Filename))
	require.NoError(t, err)
	assert.Equal(t, "img", string(b))

	require.NoError(t, l.Remove(s.URL))
	assert.ErrorIs(t, l.Remove(s.URL), fs.ErrNotExist)
}

func TestSaveRejects(t *testing.T) {
	l := NewLocal(t.TempDir())
	_, err := l.Save("docs", "a.png", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrKind)
	_, err = l.Save(KindVideos, "a.png", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrExtension)
	_, err = l.Save(KindImages, "noext", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrExtension)
}

func TestPathStaysInRoot(t *testing.T) {
	root := t.TempDir()
	l := NewLocal(root)

	p, err := l.Path("/uploads/images/a.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "images", "a.png"), p)

	p, err = l.Path("/uploads/../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "etc", "passwd"), p)

	_, err = l.Path("/uploads/")
	assert.ErrorIs(t, err, ErrOutside)
	_, err = l.Path("https://cdn.example.com/a.png")
	assert.ErrorIs(t, err, ErrOutside)
}

func TestRemoveIgnoresRemoteURLs(t *testing.T) {
	l := NewLocal(t.TempDir())
	assert.NoError(t, l.Remove("https://cdn.example.com/a.png"))
}
