// Package templates locates the document templates shipped with the service
// and checks that their content matches the expected format.
package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

var (
	ErrNotFound   = errors.New("template not found")
	ErrWrongKind  = errors.New("template content does not match its kind")
	errStopWalk   = errors.New("stop walk")
	bundledSubdir = filepath.Join("src", "lib", "templates")
)

// Kind is the container format a template is expected to have.
type Kind string

const (
	KindDOCX Kind = "docx"
	KindPDF  Kind = "pdf"
)

// Resolver maps logical template names to files under a root directory.
type Resolver struct {
	fs   afero.Fs
	root string
}

// NewResolver returns a Resolver looking for templates under root on fsys.
func NewResolver(fsys afero.Fs, root string) *Resolver {
	return &Resolver{fs: fsys, root: root}
}

// Resolve returns the path of the template called name. The bundled location
// <root>/src/lib/templates/<name> is tried first, then <root>/<name>, and
// finally any file with that base name anywhere below root.
func (r *Resolver) Resolve(name string) (string, error) {
	candidates := []string{
		filepath.Join(r.root, bundledSubdir, name),
		filepath.Join(r.root, name),
	}
	for _, p := range candidates {
		if r.isFile(p) {
			return p, nil
		}
	}

	var found string
	err := afero.Walk(r.fs, r.root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			// unreadable subtrees are skipped
			return nil
		}
		if !info.IsDir() && info.Name() == name {
			found = p
			return errStopWalk
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		return "", fmt.Errorf("searching for %s: %w", name, err)
	}
	if found == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return found, nil
}

// Load resolves name and returns its content after checking it is of the
// given kind.
func (r *Resolver) Load(name string, kind Kind) (string, []byte, error) {
	path, err := r.Resolve(name)
	if err != nil {
		return "", nil, err
	}
	content, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return path, nil, fmt.Errorf("reading template %s: %w", path, err)
	}
	if err := Sniff(content, kind); err != nil {
		return path, nil, fmt.Errorf("%s: %w", path, err)
	}
	return path, content, nil
}

func (r *Resolver) isFile(p string) bool {
	info, err := r.fs.Stat(p)
	return err == nil && !info.IsDir()
}

// Sniff detects the MIME type of content and reports ErrWrongKind if it does
// not fit kind. A .docx is a ZIP package, so any ZIP-derived type passes.
func Sniff(content []byte, kind Kind) error {
	mt := mimetype.Detect(content)
	switch kind {
	case KindDOCX:
		if mt.Is("application/zip") || hasParent(mt, "application/zip") {
			return nil
		}
	case KindPDF:
		if mt.Is("application/pdf") {
			return nil
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrWrongKind, kind)
	}
	return fmt.Errorf("%w: expected %s, detected %s", ErrWrongKind, kind, mt.String())
}

func hasParent(mt *mimetype.MIME, parent string) bool {
	for p := mt.Parent(); p != nil; p = p.Parent() {
		if p.Is(parent) {
			return true
		}
	}
	return false
}
