package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"github.com/dgallion1/coursemap/internal/mindmap"
)

// Fixed artifact names under the data directory. Each submission replaces
// them; no history is kept.
const (
	DocumentFile = "mind-map.json"
	PageFile     = "screenshot.html"
	lockFile     = ".artifacts.lock"
)

// ErrNoPage is returned by ReadPage before the first document is written.
var ErrNoPage = errors.New("no rendered page yet")

// Artifacts owns the fixed-name files in one directory. Writes are
// serialized within the process by a mutex and across processes by a lock
// file.
type Artifacts struct {
	dir  string
	opts PageOptions
	mu   sync.Mutex
	lock *flock.Flock
}

// Written lists the files produced by Artifacts.Write.
type Written struct {
	DocumentPath string
	PagePath     string
}

// NewArtifacts prepares dir for artifact writes.
func NewArtifacts(dir string, opts PageOptions) (*Artifacts, error) {
	if dir == "" {
		return nil, errors.New("artifacts: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact directory: %w", err)
	}
	return &Artifacts{
		dir:  dir,
		opts: opts,
		lock: flock.New(filepath.Join(dir, lockFile)),
	}, nil
}

// Dir returns the artifact directory.
func (a *Artifacts) Dir() string { return a.dir }

// PagePath returns where the rendered page lives.
func (a *Artifacts) PagePath() string { return filepath.Join(a.dir, PageFile) }

// DocumentPath returns where the document JSON lives.
func (a *Artifacts) DocumentPath() string { return filepath.Join(a.dir, DocumentFile) }

// Write replaces the document JSON and the rendered page with doc.
func (a *Artifacts) Write(doc *mindmap.Document) (Written, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Written{}, fmt.Errorf("marshal document: %w", err)
	}
	page, err := Page(doc, a.opts)
	if err != nil {
		return Written{}, fmt.Errorf("render page: %w", err)
	}

	unlock, err := a.acquire()
	if err != nil {
		return Written{}, err
	}
	defer unlock()

	if err := replaceFile(a.DocumentPath(), data); err != nil {
		return Written{}, err
	}
	if err := replaceFile(a.PagePath(), page); err != nil {
		return Written{}, err
	}
	return Written{DocumentPath: a.DocumentPath(), PagePath: a.PagePath()}, nil
}

// WriteImage stores a rendered image under name and returns its path.
func (a *Artifacts) WriteImage(name string, png []byte) (string, error) {
	path := filepath.Join(a.dir, diskName(name))
	unlock, err := a.acquire()
	if err != nil {
		return "", err
	}
	defer unlock()
	if err := replaceFile(path, png); err != nil {
		return "", err
	}
	return path, nil
}

// ReadPage returns the most recently written page.
func (a *Artifacts) ReadPage() ([]byte, error) {
	data, err := os.ReadFile(a.PagePath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoPage
	}
	return data, err
}

func (a *Artifacts) acquire() (func(), error) {
	a.mu.Lock()
	if err := a.lock.Lock(); err != nil {
		a.mu.Unlock()
		return nil, fmt.Errorf("lock artifacts: %w", err)
	}
	return func() {
		a.lock.Unlock()
		a.mu.Unlock()
	}, nil
}

// replaceFile writes through a temp file so readers never see a partial
// artifact.
func replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// diskName keeps a download name inside the artifact directory.
func diskName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "mind-map.png"
	}
	return name
}
