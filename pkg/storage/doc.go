// Package storage manages the destination directory of a fetch run.
//
// It creates the directory, names images "img<index><ext>" where ext is the
// last four characters of the source URL, writes each image atomically
// through a temporary file, and renders the index.html page that shows the
// images in download order.
//
// Usage:
//
//	manager, err := storage.NewManager("puzzle_dir")
//	if err != nil {
//	    return err
//	}
//	name := storage.ImageName(0, "http://host/~foo/puzzle-bar-aaab.jpg") // img0.jpg
//	err = manager.SaveImage(name, func(w io.Writer) error {
//	    _, err := client.Download(ctx, url, w)
//	    return err
//	})
//	err = manager.WriteIndex(storage.DefaultIndexFile, []string{name}, storage.IndexAppend)
package storage
