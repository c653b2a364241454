package storage

import (
	"bufio"
	"html/template"
	"os"

	errs "logpuzzle/pkg/errors"
)

// IndexMode selects how an existing index page is treated
type IndexMode string

const (
	// IndexAppend adds another complete document after the existing content.
	IndexAppend IndexMode = "append"
	// IndexOverwrite replaces the file, making repeated runs idempotent.
	IndexOverwrite IndexMode = "overwrite"
)

// DefaultIndexFile is the name of the generated index page
const DefaultIndexFile = "index.html"

var indexTemplate = template.Must(template.New("index").Parse(
	"<html><body>\n{{range .}}<img src=\"{{.}}\">{{end}}</body></html>"))

// WriteIndex writes an HTML page showing names in order into fileName
// inside the output directory. The src attribute is quoted and escaped.
func (m *Manager) WriteIndex(fileName string, names []string, mode IndexMode) error {
	path := m.Path(fileName)

	flags := os.O_CREATE | os.O_WRONLY
	if mode == IndexOverwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeWrite, path, "failed to open index page", err)
	}

	w := bufio.NewWriter(f)
	if err := indexTemplate.Execute(w, names); err != nil {
		f.Close()
		return errs.Wrap(errs.ErrorTypeWrite, path, "failed to render index page", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errs.Wrap(errs.ErrorTypeWrite, path, "failed to write index page", err)
	}
	if err := f.Close(); err != nil {
		return errs.Wrap(errs.ErrorTypeWrite, path, "failed to close index page", err)
	}
	return nil
}
