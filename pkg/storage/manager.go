package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	errs "logpuzzle/pkg/errors"
)

// Manager owns the destination directory of a fetch run
type Manager struct {
	outputDir string
}

// NewManager creates outputDir and any missing parents
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeDirectoryCreation, outputDir, "failed to create output directory", err)
	}

	// MkdirAll succeeds silently on an existing directory but fails on a
	// file; a symlink to a file slips through, so check the final target.
	info, err := os.Stat(outputDir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeDirectoryCreation, outputDir, "cannot stat output directory", err)
	}
	if !info.IsDir() {
		return nil, errs.New(errs.ErrorTypeDirectoryCreation, outputDir, "output path exists and is not a directory")
	}

	return &Manager{outputDir: outputDir}, nil
}

// ImageName returns the local file name for the image at position index:
// "img<index>" followed by the last four characters of url.
func ImageName(index int, url string) string {
	ext := url
	if len(url) > 4 {
		ext = url[len(url)-4:]
	}
	return "img" + strconv.Itoa(index) + ext
}

// SaveImage writes name through write, using a temporary file and rename
// so a failed download never leaves a truncated image under its final name.
func (m *Manager) SaveImage(name string, write func(io.Writer) error) error {
	filename := m.Path(name)
	tempFile := filename + ".tmp"

	out, err := os.Create(tempFile)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeWrite, filename, "failed to create temporary file", err)
	}

	err = write(out)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("save %s: %w", name, err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return errs.Wrap(errs.ErrorTypeWrite, filename, "failed to close file", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return errs.Wrap(errs.ErrorTypeWrite, filename, "failed to rename temporary file", err)
	}

	return nil
}

// Path joins name onto the output directory
func (m *Manager) Path(name string) string {
	return filepath.Join(m.outputDir, name)
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}
