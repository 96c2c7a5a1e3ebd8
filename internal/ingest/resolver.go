package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrBadFilename is returned for artifact names that are not
// <namespace>-<name>-<version>.tar.gz.
var ErrBadFilename = errors.New("invalid collection artifact filename")

// Source holds a resolved input ready for reading.
type Source struct {
	// Name is the artifact filename (no directory).
	Name string
	// Size is the byte count if known in advance (-1 if unknown).
	Size int64
	// Open returns a new ReadCloser. May be called once.
	Open func(ctx context.Context) (io.ReadCloser, error)
}

// Artifact is a parsed collection artifact filename.
type Artifact struct {
	Namespace string
	Name      string
	Version   string
}

func (a Artifact) String() string { return a.Namespace + "." + a.Name + ":" + a.Version }

var filenameRe = regexp.MustCompile(`^([a-z0-9_]+)-([a-z0-9_]+)-(\d+\.\d+\.\d+(?:[-+][0-9A-Za-z.+-]*)?)\.tar\.gz$`)

// ParseFilename splits an artifact filename into its coordinates.
func ParseFilename(name string) (Artifact, error) {
	m := filenameRe.FindStringSubmatch(name)
	if m == nil {
		return Artifact{}, fmt.Errorf("%w: %q (want namespace-name-version.tar.gz)", ErrBadFilename, name)
	}
	return Artifact{Namespace: m[1], Name: m[2], Version: m[3]}, nil
}

// Resolve determines the type of input and returns a Source.
// Supported formats:
//
//	/path/to/acme-tools-1.0.0.tar.gz          local file
//	https://example.com/acme-tools-1.0.0.tar.gz  HTTP URL
func Resolve(input string) (*Source, error) {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return resolveHTTP(input)
	}
	return resolveFile(input)
}

func resolveFile(p string) (*Source, error) {
	fi, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", p, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%q is a directory", p)
	}
	return &Source{
		Name: filepath.Base(p),
		Size: fi.Size(),
		Open: func(context.Context) (io.ReadCloser, error) { return os.Open(p) },
	}, nil
}

func resolveHTTP(rawURL string) (*Source, error) {
	client := &http.Client{Timeout: 5 * time.Minute}
	return &Source{
		Name: guessFilenameFromURL(rawURL),
		Size: -1,
		Open: func(ctx context.Context) (io.ReadCloser, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return nil, err
			}
			r, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			if r.StatusCode != http.StatusOK {
				r.Body.Close()
				return nil, fmt.Errorf("GET %s: status %d", rawURL, r.StatusCode)
			}
			return r.Body, nil
		},
	}, nil
}

func guessFilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "download"
	}
	base := path.Base(u.Path)
	if base == "" || base == "." || base == "/" {
		return "download"
	}
	return base
}
