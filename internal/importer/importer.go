package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/supportbank/internal/model"
)

// Parser converts one file format into canonical records. Parsers only map
// structure; dates and amounts are judged later by the pipeline.
type Parser interface {
	Parse(r io.Reader) ([]model.Record, error)
	Format() string
}

// Registry holds parsers keyed by format name, which is also the file
// extension they handle.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes an importable file in a directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := p.Format()
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[format]
}

// ForPath selects a parser by the path's extension. The match is
// case-sensitive: "a.csv" is supported, "a.CSV" is not.
func (r *Registry) ForPath(path string) Parser {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil
	}
	return r.parsers[strings.TrimPrefix(ext, ".")]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CSVParser{})
	r.Register(&JSONParser{})
	r.Register(&XMLParser{})
	return r
}

// processedDir is the subdirectory imported files are moved to.
const processedDir = "processed"

// Scan returns the files directly inside dir that some registered parser
// handles, in name order.
func Scan(dir string, reg *Registry) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if reg.ForPath(e.Name()) == nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from dir/ to dir/processed/.
func MarkProcessed(dir, fileName string) error {
	dstDir := filepath.Join(dir, processedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	src := filepath.Join(dir, fileName)
	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
