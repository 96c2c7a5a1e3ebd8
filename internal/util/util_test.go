package util_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/hubctl/internal/util"
)

const (
	emptySHA = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	helloSHA = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
)

func TestDigestReader(t *testing.T) {
	d, err := util.DigestReader(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if d.SHA256 != emptySHA || d.Size != 0 {
		t.Errorf("DigestReader('') = %+v, want %s/0", d, emptySHA)
	}
}

func TestDigestFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "hello")
	if err := os.WriteFile(p, []byte("hello world"), 0644); err != nil {
		t.Fatal(err)
	}
	d, err := util.DigestFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if d.SHA256 != helloSHA || d.Size != 11 {
		t.Errorf("DigestFile = %+v, want %s/11", d, helloSHA)
	}
}

func TestDigestFile_MissingFile(t *testing.T) {
	if _, err := util.DigestFile("/no/such/file.bin"); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestDigest_Matches(t *testing.T) {
	d := util.Digest{SHA256: helloSHA}
	cases := map[string]bool{
		"":                        true,
		helloSHA:                  true,
		strings.ToUpper(helloSHA): true,
		emptySHA:                  false,
	}
	for want, ok := range cases {
		if got := d.Matches(want); got != ok {
			t.Errorf("Matches(%q) = %v, want %v", want, got, ok)
		}
	}
}

func TestHumanBytes(t *testing.T) {
	cases := map[int64]string{
		0:               "0 B",
		1023:            "1023 B",
		1024:            "1.0 KiB",
		1536:            "1.5 KiB",
		5 * 1024 * 1024: "5.0 MiB",
	}
	for in, want := range cases {
		if got := util.HumanBytes(in); got != want {
			t.Errorf("HumanBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "acme-tools-1.0.0.tar.gz")
	dst := filepath.Join(dir, "out", "acme-tools-1.0.0.tar.gz")

	if err := os.WriteFile(src, []byte("tarball"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := util.CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("ReadFile dst: %v", err)
	}
	if string(got) != "tarball" {
		t.Errorf("CopyFile content = %q, want %q", got, "tarball")
	}
}

func TestCopyFile_MissingSrc(t *testing.T) {
	if err := util.CopyFile("/no/src.tar.gz", filepath.Join(t.TempDir(), "dst")); err == nil {
		t.Error("expected error copying missing file, got nil")
	}
}
