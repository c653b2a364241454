package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "logpuzzle/pkg/errors"
)

func countImages(t *testing.T, html string) []string {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	var srcs []string
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		srcs = append(srcs, src)
	})
	return srcs
}

func TestNewManagerCreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	manager, err := NewManager(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, manager.GetOutputDir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = NewManager(dir)
	assert.NoError(t, err, "existing directory is accepted")
}

func TestNewManagerRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := NewManager(path)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrorTypeDirectoryCreation))
}

func TestImageName(t *testing.T) {
	tests := []struct {
		index int
		url   string
		want  string
	}{
		{0, "http://h/~foo/puzzle-bar-aaab.jpg", "img0.jpg"},
		{12, "http://h/~foo/puzzle-bar-aaab.png", "img12.png"},
		{3, "http://h/image.jpeg", "img3jpeg"},
		{1, ".gif", "img1.gif"},
		{2, "ab", "img2ab"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ImageName(tt.index, tt.url))
	}
}

func TestSaveImage(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	err = manager.SaveImage("img0.jpg", func(w io.Writer) error {
		_, err := io.WriteString(w, "photo data")
		return err
	})
	require.NoError(t, err)

	content, err := os.ReadFile(manager.Path("img0.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "photo data", string(content))

	_, err = os.Stat(manager.Path("img0.jpg.tmp"))
	assert.True(t, os.IsNotExist(err), "temporary file must be renamed away")
}

func TestSaveImageFailureLeavesNothing(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	boom := errors.New("connection reset")
	err = manager.SaveImage("img1.jpg", func(w io.Writer) error {
		io.WriteString(w, "partial")
		return boom
	})
	require.ErrorIs(t, err, boom)

	entries, err := os.ReadDir(manager.GetOutputDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteIndex(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	names := []string{"img0.jpg", "img1.jpg", "img2.png"}
	require.NoError(t, manager.WriteIndex(DefaultIndexFile, names, IndexAppend))

	data, err := os.ReadFile(manager.Path(DefaultIndexFile))
	require.NoError(t, err)
	html := string(data)

	assert.True(t, strings.HasPrefix(html, "<html><body>\n"))
	assert.True(t, strings.HasSuffix(html, "</body></html>"))
	assert.Contains(t, html, `<img src="img0.jpg"><img src="img1.jpg"><img src="img2.png">`)
	assert.Equal(t, names, countImages(t, html))
}

func TestWriteIndexEmpty(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, manager.WriteIndex(DefaultIndexFile, nil, IndexAppend))

	data, err := os.ReadFile(manager.Path(DefaultIndexFile))
	require.NoError(t, err)
	assert.Equal(t, "<html><body>\n</body></html>", string(data))
}

func TestWriteIndexAppendsOnRerun(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	names := []string{"img0.jpg", "img1.jpg"}
	require.NoError(t, manager.WriteIndex(DefaultIndexFile, names, IndexAppend))
	require.NoError(t, manager.WriteIndex(DefaultIndexFile, names, IndexAppend))

	data, err := os.ReadFile(manager.Path(DefaultIndexFile))
	require.NoError(t, err)
	html := string(data)

	assert.Equal(t, 2, strings.Count(html, "<html>"), "a second document is appended")
	assert.Equal(t, 4, strings.Count(html, "<img "))
}

func TestWriteIndexOverwriteIsIdempotent(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, manager.WriteIndex(DefaultIndexFile, []string{"img0.jpg", "img1.jpg", "img2.jpg"}, IndexOverwrite))
	require.NoError(t, manager.WriteIndex(DefaultIndexFile, []string{"img0.jpg"}, IndexOverwrite))

	data, err := os.ReadFile(manager.Path(DefaultIndexFile))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "<html>"))
	assert.Equal(t, []string{"img0.jpg"}, countImages(t, string(data)))
}

func TestWriteIndexEscapesSource(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, manager.WriteIndex(DefaultIndexFile, []string{`img0.jpg" onerror="x`}, IndexOverwrite))

	data, err := os.ReadFile(manager.Path(DefaultIndexFile))
	require.NoError(t, err)
	html := string(data)
	assert.NotContains(t, html, `onerror="x"`)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	_, hasHandler := doc.Find("img").Attr("onerror")
	assert.False(t, hasHandler)
}
