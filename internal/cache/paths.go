package cache

import (
	"os"
	"path/filepath"
	"strings"
)

// Entry is one cached artifact.
type Entry struct {
	Namespace string
	Name      string
	Version   string
	Path      string
	Size      int64
}

// Manager handles the local artifact cache.
type Manager struct {
	baseDir string
}

// New creates a cache Manager rooted at baseDir.
func New(baseDir string) *Manager {
	return &Manager{baseDir: baseDir}
}

// Dir returns the cache root.
func (m *Manager) Dir() string { return m.baseDir }

// Filename returns the artifact filename the hub uses for a version.
func Filename(namespace, name, version string) string {
	return namespace + "-" + name + "-" + version + ".tar.gz"
}

// Path returns the full cache path for a collection version.
// Layout: <baseDir>/<namespace>/<namespace>-<name>-<version>.tar.gz
func (m *Manager) Path(namespace, name, version string) string {
	return filepath.Join(m.baseDir, namespace, Filename(namespace, name, version))
}

// Exists reports whether the cached file exists.
func (m *Manager) Exists(namespace, name, version string) bool {
	_, err := os.Stat(m.Path(namespace, name, version))
	return err == nil
}

// EnsureDir creates the namespace directory.
func (m *Manager) EnsureDir(namespace string) error {
	return os.MkdirAll(filepath.Join(m.baseDir, namespace), 0750)
}

// Remove deletes the cached file if it exists.
func (m *Manager) Remove(namespace, name, version string) error {
	err := os.Remove(m.Path(namespace, name, version))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// List returns every cached artifact. A missing cache directory is empty.
func (m *Manager) List() ([]Entry, error) {
	nsDirs, err := os.ReadDir(m.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []Entry
	for _, nd := range nsDirs {
		if !nd.IsDir() {
			continue
		}
		ns := nd.Name()
		files, err := os.ReadDir(filepath.Join(m.baseDir, ns))
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			name, version, ok := parseFilename(ns, f.Name())
			if !ok {
				continue
			}
			info, err := f.Info()
			if err != nil {
				continue
			}
			out = append(out, Entry{
				Namespace: ns,
				Name:      name,
				Version:   version,
				Path:      filepath.Join(m.baseDir, ns, f.Name()),
				Size:      info.Size(),
			})
		}
	}
	return out, nil
}

// Clear removes the whole cache directory.
func (m *Manager) Clear() error {
	return os.RemoveAll(m.baseDir)
}

// parseFilename splits "<ns>-<name>-<version>.tar.gz". Collection names may
// not contain '-', so the first dash after the namespace ends the name.
func parseFilename(namespace, file string) (name, version string, ok bool) {
	rest, found := strings.CutSuffix(file, ".tar.gz")
	if !found {
		return "", "", false
	}
	rest, found = strings.CutPrefix(rest, namespace+"-")
	if !found {
		return "", "", false
	}
	name, version, found = strings.Cut(rest, "-")
	if !found || name == "" || version == "" {
		return "", "", false
	}
	return name, version, true
}
