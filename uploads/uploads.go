// Package uploads stores submitted files on local disk and serves them back
// by stored filename.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxNameAttempts = 16

// Stored describes one persisted file.
type Stored struct {
	Filename     string
	OriginalName string
}

type Disk struct {
	dir string
	now func() time.Time
}

// NewDisk creates dir if needed and returns a store rooted there.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Disk{dir: dir, now: time.Now}, nil
}

func (d *Disk) Dir() string { return d.dir }

// SaveAll writes every file and returns their stored names in order. Files
// written before a failure are left in place.
func (d *Disk) SaveAll(files []*multipart.FileHeader) ([]Stored, error) {
	out := make([]Stored, 0, len(files))
	for _, fh := range files {
		s, err := d.Save(fh)
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (d *Disk) Save(fh *multipart.FileHeader) (Stored, error) {
	src, err := fh.Open()
	if err != nil {
		return Stored{}, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer src.Close()

	original := cleanName(fh.Filename)
	dst, name, err := d.create(original)
	if err != nil {
		return Stored{}, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(filepath.Join(d.dir, name))
		return Stored{}, fmt.Errorf("write upload %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		return Stored{}, fmt.Errorf("close upload %s: %w", name, err)
	}
	return Stored{Filename: name, OriginalName: fh.Filename}, nil
}

// create opens a new file named <unix-millis>-<original>, stepping the
// timestamp forward on collision so an existing upload is never replaced.
func (d *Disk) create(original string) (*os.File, string, error) {
	ms := d.now().UnixMilli()
	for i := 0; i < maxNameAttempts; i++ {
		name := fmt.Sprintf("%d-%s", ms+int64(i), original)
		f, err := os.OpenFile(filepath.Join(d.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("create upload %s: %w", name, err)
		}
	}
	return nil, "", fmt.Errorf("create upload %s: no free name", original)
}

// Handler serves stored files. Mount it under a prefix with http.StripPrefix.
// Directories are reported as missing so stored names cannot be listed.
func (d *Disk) Handler() http.Handler {
	return http.FileServer(filesOnly{http.Dir(d.dir)})
}

type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}
