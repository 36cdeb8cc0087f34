package upload

import (
	"bytes"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
)

// buildUpload returns a FileHeader/File pair as the HTTP layer would hand
// them to Admitter.Accept, from an in-memory multipart form.
func buildUpload(t *testing.T, filename string, content []byte) (*multipart.FileHeader, multipart.File, func()) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	r := multipart.NewReader(&buf, w.Boundary())
	form, err := r.ReadForm(10 << 20)
	if err != nil {
		t.Fatalf("ReadForm: %v", err)
	}
	header := form.File["file"][0]
	f, err := header.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return header, f, func() { f.Close(); form.RemoveAll() }
}

func TestAcceptWritesFileUnderJobDir(t *testing.T) {
	root := t.TempDir()
	a := NewAdmitter(root, 1<<20)

	header, f, cleanup := buildUpload(t, "talk.mp4", []byte("hello world"))
	defer cleanup()

	path, err := a.Accept("job-1", header, f)
	if err != nil {
		t.Fatalf("Accept returned error: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(root, "job-1") {
		t.Errorf("expected file under the job subdirectory, got %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written file: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("written content = %q, want %q", data, "hello world")
	}
}

func TestAcceptRejectsDisallowedExtension(t *testing.T) {
	root := t.TempDir()
	a := NewAdmitter(root, 1<<20)

	header, f, cleanup := buildUpload(t, "malware.exe", []byte("x"))
	defer cleanup()

	_, err := a.Accept("job-1", header, f)
	if !errors.Is(err, ErrExtensionNotAllowed) {
		t.Errorf("expected ErrExtensionNotAllowed, got %v", err)
	}
}

func TestAcceptRejectsOversizedUpload(t *testing.T) {
	root := t.TempDir()
	a := NewAdmitter(root, 4) // 4 bytes max

	header, f, cleanup := buildUpload(t, "talk.mp4", []byte("this is way more than 4 bytes"))
	defer cleanup()

	_, err := a.Accept("job-1", header, f)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestAcceptSanitizesPathTraversalFilename(t *testing.T) {
	root := t.TempDir()
	a := NewAdmitter(root, 1<<20)

	header, f, cleanup := buildUpload(t, "../../etc/passwd.mp4", []byte("x"))
	defer cleanup()

	path, err := a.Accept("job-1", header, f)
	if err != nil {
		t.Fatalf("Accept returned error: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(root, "job-1") {
		t.Errorf("expected sanitized path to stay under the job dir, got %s", path)
	}
}

func TestSanitizeFilenameEdgeCases(t *testing.T) {
	cases := map[string]string{
		"clip.mp4":    "clip.mp4",
		"../clip.mp4": "clip.mp4",
		"..":          "source",
		".":           "source",
		"":            "source",
		"a/b/c.mov":   "c.mov",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHasAllowedExtensionCaseInsensitive(t *testing.T) {
	if !hasAllowedExtension("CLIP.MP4") {
		t.Error("expected .MP4 (uppercase) to be allowed")
	}
	if hasAllowedExtension("clip.avi") {
		t.Error("expected .avi to be disallowed")
	}
}
