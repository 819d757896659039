package source

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fortio.org/safecast"
)

// FileSet manages a collection of source files and provides offset resolution.
// Safe for concurrent use; *File values are immutable once added.
type FileSet struct {
	mu      sync.RWMutex
	files   []*File
	index   map[string]FileID // path -> id
	baseDir string            // базовая директория для относительных путей
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]*File, 0),
		index: make(map[string]FileID),
	}
}

// NewFileSetWithBase создаёт FileSet с заданной базовой директорией.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

// BaseDir возвращает текущую базовую директорию.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fileSet.baseDir
}

// Add stores a file, computes LineIdx and Hash, and returns a new FileID.
// It always creates a new FileID even if a file with the same path already exists.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	if bytes.Contains(content, []byte("\r\n")) {
		flags |= FileHasCRLF
	}
	if bytes.HasPrefix(content, utf8BOM) {
		flags |= FileHadBOM
	}
	normalizedPath := normalizePath(path)
	f := &File{
		Path:    normalizedPath,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	}

	fileSet.mu.Lock()
	defer fileSet.mu.Unlock()
	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	f.ID = FileID(lenFiles)
	fileSet.files = append(fileSet.files, f)
	fileSet.index[normalizedPath] = f.ID
	return f.ID
}

// Load reads a file from disk and calls Add.
// Content is kept byte-for-byte: BOM and CRLF are recorded in flags, not stripped,
// so that rewritten output only differs where edits were applied.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return fileSet.Add(path, content, 0), nil
}

// AddVirtual adds a virtual file with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID, or nil if the ID is unknown.
func (fileSet *FileSet) Get(id FileID) *File {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	if int(id) >= len(fileSet.files) {
		return nil
	}
	return fileSet.files[id]
}

// GetByPath возвращает последнюю версию *File по пути.
func (fileSet *FileSet) GetByPath(path string) (*File, bool) {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	if id, ok := fileSet.index[normalizePath(path)]; ok {
		return fileSet.files[id], true
	}
	return nil, false
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return f.Position(span.Start), f.Position(span.End)
}

// Position converts a byte offset into a 1-based line/column pair.
func (f *File) Position(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}

// Len returns the content length as uint32.
func (f *File) Len() uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	return n
}

// Text returns the bytes covered by span as a string.
func (f *File) Text(span Span) string {
	end := min(span.End, f.Len())
	if span.Start >= end {
		return ""
	}
	return string(f.Content[span.Start:end])
}

// LineStart returns the offset of the first byte of the line containing off.
func (f *File) LineStart(off uint32) uint32 {
	pos := f.Position(off)
	return f.lineStartOffset(pos.Line)
}

// LineEnd returns the offset of the '\n' terminating the line containing off,
// or the content length for the last line.
func (f *File) LineEnd(off uint32) uint32 {
	pos := f.Position(off)
	if idx := pos.Line - 1; int(idx) < len(f.LineIdx) {
		return f.LineIdx[idx]
	}
	return f.Len()
}

func (f *File) lineStartOffset(line uint32) uint32 {
	if line <= 1 {
		return 0
	}
	if idx := line - 2; int(idx) < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	return f.Len()
}

// GetLine возвращает строку с заданным номером (1-based) без '\n' и '\r'.
// Если строка не существует, возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	lenLineIdx, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	if lineNum-1 > lenLineIdx {
		return ""
	}
	start := f.lineStartOffset(lineNum)
	end := f.Len()
	if lineNum-1 < lenLineIdx {
		end = f.LineIdx[lineNum-1]
	}
	if start >= end {
		return ""
	}
	line := f.Content[start:end]
	return string(bytes.TrimSuffix(line, []byte("\r")))
}

// FormatPath форматирует путь к файлу в зависимости от режима.
// mode: "absolute", "relative", "basename", "auto"
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
		return f.Path

	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
		return f.Path

	case "basename":
		return BaseName(f.Path)

	case "auto":
		// короткий или относительный путь оставляем как есть, иначе basename
		if len(f.Path) < 40 || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		return BaseName(f.Path)

	default:
		return f.Path
	}
}
