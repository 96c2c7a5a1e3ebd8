package ingest_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/hubctl/internal/ingest"
)

func TestReader_DigestsWhatWasRead(t *testing.T) {
	data := "hello world"
	r := ingest.NewReader(strings.NewReader(data))

	half := make([]byte, 5)
	if _, err := io.ReadFull(r, half); err != nil {
		t.Fatal(err)
	}
	if d := r.Digest(); d.Size != 5 {
		t.Errorf("Size after partial read = %d, want 5", d.Size)
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(half)+string(rest) != data {
		t.Errorf("content mismatch: got %q", string(half)+string(rest))
	}
	const want = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	d := r.Digest()
	if d.SHA256 != want || d.Size != int64(len(data)) {
		t.Errorf("Digest() = %+v, want %s/%d", d, want, len(data))
	}
	if r.SHA256() != want {
		t.Errorf("SHA256() = %q, want %q", r.SHA256(), want)
	}
}

func TestReader_EmptyInput(t *testing.T) {
	r := ingest.NewReader(strings.NewReader(""))
	io.ReadAll(r) //nolint:errcheck
	const emptySHA = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if d := r.Digest(); d.Size != 0 || d.SHA256 != emptySHA {
		t.Errorf("Digest('') = %+v, want %s/0", d, emptySHA)
	}
}

func TestParseFilename(t *testing.T) {
	cases := []struct {
		in      string
		want    ingest.Artifact
		wantErr bool
	}{
		{in: "acme-tools-1.0.0.tar.gz", want: ingest.Artifact{Namespace: "acme", Name: "tools", Version: "1.0.0"}},
		{in: "acme-net_tools-2.1.0-beta.1.tar.gz", want: ingest.Artifact{Namespace: "acme", Name: "net_tools", Version: "2.1.0-beta.1"}},
		{in: "acme-tools-1.0.tar.gz", wantErr: true},
		{in: "acme-tools-1.0.0.zip", wantErr: true},
		{in: "Acme-tools-1.0.0.tar.gz", wantErr: true},
		{in: "tools.tar.gz", wantErr: true},
	}
	for _, c := range cases {
		got, err := ingest.ParseFilename(c.in)
		if c.wantErr {
			if !errors.Is(err, ingest.ErrBadFilename) {
				t.Errorf("ParseFilename(%q) err = %v, want ErrBadFilename", c.in, err)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Errorf("ParseFilename(%q) = %+v, %v; want %+v", c.in, got, err, c.want)
		}
	}
}

func TestResolve_LocalFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "acme-tools-1.0.0.tar.gz")
	if err := os.WriteFile(p, []byte("tarball"), 0644); err != nil {
		t.Fatal(err)
	}
	src, err := ingest.Resolve(p)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src.Name != "acme-tools-1.0.0.tar.gz" || src.Size != 7 {
		t.Errorf("Source = %q/%d", src.Name, src.Size)
	}
	rc, err := src.Open(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "tarball" {
		t.Errorf("content = %q", b)
	}
}

func TestResolve_LocalFile_NotFound(t *testing.T) {
	if _, err := ingest.Resolve("/no/such/acme-tools-1.0.0.tar.gz"); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestResolve_LocalFile_IsDirectory(t *testing.T) {
	if _, err := ingest.Resolve(t.TempDir()); err == nil {
		t.Error("expected error for directory input, got nil")
	}
}

func TestResolve_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dl/acme-tools-1.0.0.tar.gz" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "remote") //nolint:errcheck
	}))
	defer srv.Close()

	src, err := ingest.Resolve(srv.URL + "/dl/acme-tools-1.0.0.tar.gz?token=abc")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src.Name != "acme-tools-1.0.0.tar.gz" {
		t.Errorf("Name = %q", src.Name)
	}
	if src.Size != -1 {
		t.Errorf("Size = %d, want -1", src.Size)
	}
	rc, err := src.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b, _ := io.ReadAll(rc)
	rc.Close()
	if string(b) != "remote" {
		t.Errorf("content = %q", b)
	}

	missing, _ := ingest.Resolve(srv.URL + "/other.tar.gz")
	if _, err := missing.Open(context.Background()); err == nil {
		t.Error("Open of 404 should fail")
	}
}
