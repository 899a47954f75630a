package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fileHeaders builds multipart headers the way net/http parses them.
func fileHeaders(t *testing.T, files map[string]string) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse multipart: %v", err)
	}
	return req.MultipartForm.File["files"]
}

func TestSave_NamesWithTimestamp(t *testing.T) {
	d, err := NewDisk(filepath.Join(t.TempDir(), "nested", "uploads"))
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	d.now = func() time.Time { return time.UnixMilli(1700000000000) }

	stored, err := d.SaveAll(fileHeaders(t, map[string]string{"report.pdf": "hello"}))
	if err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored %d files", len(stored))
	}
	if stored[0].Filename != "1700000000000-report.pdf" || stored[0].OriginalName != "report.pdf" {
		t.Errorf("stored = %+v", stored[0])
	}
	data, err := os.ReadFile(filepath.Join(d.Dir(), stored[0].Filename))
	if err != nil || string(data) != "hello" {
		t.Errorf("file content = %q, %v", data, err)
	}
}

func TestSave_NeverOverwrites(t *testing.T) {
	d, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	d.now = func() time.Time { return time.UnixMilli(42) }

	first, err := d.SaveAll(fileHeaders(t, map[string]string{"a.txt": "one"}))
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.SaveAll(fileHeaders(t, map[string]string{"a.txt": "two"}))
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Filename == second[0].Filename {
		t.Fatalf("both uploads stored as %s", first[0].Filename)
	}
	data, _ := os.ReadFile(filepath.Join(d.Dir(), first[0].Filename))
	if string(data) != "one" {
		t.Errorf("first upload overwritten: %q", data)
	}
}

func TestCleanName(t *testing.T) {
	cases := map[string]string{
		"photo.png":          "photo.png",
		"../../etc/passwd":   "passwd",
		`C:\Users\me\cv.doc`: "cv.doc",
		"":                   "file",
		"/":                  "file",
	}
	for in, want := range cases {
		if got := cleanName(in); got != want {
			t.Errorf("cleanName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHandler_ServesStoredFile(t *testing.T) {
	d, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(d.Dir(), "1-a.txt"), []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}

	h := http.StripPrefix("/uploads/", d.Handler())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/1-a.txt", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "content" {
		t.Errorf("got %d %q", rr.Code, rr.Body.String())
	}
}

func TestHandler_DoesNotListDirectory(t *testing.T) {
	d, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(d.Dir(), "1700000000000-secret-report.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(d.Dir(), "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	h := http.StripPrefix("/uploads/", d.Handler())
	for _, path := range []string{"/uploads/", "/uploads/nested/"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusNotFound {
			t.Errorf("GET %s: expected 404, got %d", path, rr.Code)
		}
		if strings.Contains(rr.Body.String(), "secret-report") {
			t.Errorf("GET %s: listing leaked stored names: %q", path, rr.Body.String())
		}
	}
}
