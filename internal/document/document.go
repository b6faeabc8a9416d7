// Package document provides the editable targets rendered release notes are
// delivered to. A Surface hands out the active document; delivering replaces
// the document's entire content.
package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"recordnote/internal/metadata"
	"recordnote/pkg/utils"
)

// Document is a single editable text target.
type Document interface {
	Name() string
	// Replace discards the current content and writes content in its place.
	Replace(content string) error
}

// Surface exposes the document currently being edited.
type Surface interface {
	ActiveDocument() (Document, error)
}

// FileSurface serves a markdown file inside the vault as the active document.
type FileSurface struct {
	root   string
	active string
}

// NewFileSurface creates a surface rooted at the vault directory. active is
// the vault-relative path of the document to edit and may be empty.
func NewFileSurface(root, active string) *FileSurface {
	return &FileSurface{root: root, active: active}
}

// ActiveDocument resolves the active path inside the vault.
func (s *FileSurface) ActiveDocument() (Document, error) {
	rel := strings.TrimSpace(s.active)

	if rel == "" {
		return nil, metadata.ErrNoActiveDocument
	}

	path, err := utils.ResolveWithin(s.root, rel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", metadata.ErrNoActiveDocument, err)
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", metadata.ErrNoActiveDocument, rel)
	}

	return &File{name: filepath.ToSlash(filepath.Clean(rel)), path: path}, nil
}

// File is a document backed by a file on disk.
type File struct {
	name string
	path string
}

func (f *File) Name() string { return f.name }

// Replace writes content atomically, creating parent directories as needed.
func (f *File) Replace(content string) error {
	if err := utils.EnsureDir(filepath.Dir(f.path)); err != nil {
		return err
	}
	return utils.WriteFileAtomic(f.path, []byte(content), 0644)
}

// WriterSurface always returns a document that prints to w. The CLI uses it
// when no document path is given.
type WriterSurface struct {
	w io.Writer
}

func NewWriterSurface(w io.Writer) *WriterSurface {
	return &WriterSurface{w: w}
}

func (s *WriterSurface) ActiveDocument() (Document, error) {
	if s.w == nil {
		return nil, metadata.ErrNoActiveDocument
	}
	return &writerDocument{w: s.w}, nil
}

type writerDocument struct {
	w io.Writer
}

func (d *writerDocument) Name() string { return "stdout" }

func (d *writerDocument) Replace(content string) error {
	_, err := io.WriteString(d.w, content)
	return err
}

// Memory is an in-memory document. It is its own Surface.
type Memory struct {
	mu      sync.Mutex
	name    string
	content string
	writes  int
}

func NewMemory(name, content string) *Memory {
	return &Memory{name: name, content: content}
}

func (m *Memory) ActiveDocument() (Document, error) { return m, nil }

func (m *Memory) Name() string { return m.name }

func (m *Memory) Replace(content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = content
	m.writes++
	return nil
}

// Content returns the current document text.
func (m *Memory) Content() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content
}

// Writes returns how many times the document was replaced.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
