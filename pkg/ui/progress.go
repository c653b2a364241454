package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// Progress prints one line per image of a sequential fetch run
type Progress struct {
	out       io.Writer
	total     int
	startTime time.Time
}

// NewProgress creates a progress printer for total images
func NewProgress(out io.Writer, total int) *Progress {
	return &Progress{
		out:       out,
		total:     total,
		startTime: time.Now(),
	}
}

// Start announces the download of the image at zero-based index
func (p *Progress) Start(index int) {
	fmt.Fprintf(p.out, "Downloading image %d of %d\n", index+1, p.total)
}

// Summary prints totals once every image is stored
func (p *Progress) Summary(images int, bytes int64) {
	fmt.Fprintf(p.out, "%s %d images, %s in %s\n",
		Green("[DONE]"),
		images,
		humanize.Bytes(uint64(bytes)),
		p.GetElapsedTime().Round(time.Millisecond))
}

// GetElapsedTime returns the elapsed time since the run started
func (p *Progress) GetElapsedTime() time.Duration {
	return time.Since(p.startTime)
}
