package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"sync"

	"fortio.org/safecast"
)

// FileSet manages the source files of one lint run.
// Files are added concurrently by the driver, so access is guarded.
type FileSet struct {
	mu    sync.RWMutex
	files []*File
	index map[string]FileID // path -> id
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]*File, 0),
		index: make(map[string]FileID),
	}
}

// Add stores a file from normalized bytes, computes LineIdx and Hash, and returns a new FileID.
// It always creates a new FileID even if a file with the same path already exists.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	hash := sha256.Sum256(content)
	lineIdx := buildLineIndex(content)
	normalizedPath := normalizePath(path)

	fileSet.mu.Lock()
	defer fileSet.mu.Unlock()

	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, &File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: lineIdx,
		Hash:    hash,
		Flags:   flags,
	})
	// Всегда обновляем индекс на последнюю версию файла
	fileSet.index[normalizedPath] = id
	return id
}

// Load reads a file from disk, normalizes CRLF/BOM, and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content, flags := Normalize(content)
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds a virtual file (stdin, test, or generated) with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	content, flags := Normalize(content)
	return fileSet.Add(name, content, flags|FileVirtual)
}

// Get returns the file metadata for the given ID or nil.
func (fileSet *FileSet) Get(id FileID) *File {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	if int(id) >= len(fileSet.files) {
		return nil
	}
	return fileSet.files[id]
}

// GetLatest returns the latest file ID for the given path, if it exists.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// Len returns the number of stored files.
func (fileSet *FileSet) Len() int {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	return len(fileSet.files)
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return f.Position(span.Start), f.Position(span.End)
}

// Normalize strips a UTF-8 BOM and folds CRLF line endings.
func Normalize(content []byte) ([]byte, FileFlags) {
	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return content, flags
}

// NewFile builds a standalone File outside of any FileSet.
func NewFile(id FileID, path string, content []byte) *File {
	return &File{
		ID:      id,
		Path:    normalizePath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
	}
}

// Size returns the content length as a span offset.
func (f *File) Size() uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	return n
}

// Bounds returns the span covering the whole file.
func (f *File) Bounds() Span {
	return Span{File: f.ID, Start: 0, End: f.Size()}
}

// Position converts an offset into a line/column pair.
func (f *File) Position(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}

// LineCount returns the number of lines, counting a trailing partial line.
func (f *File) LineCount() uint32 {
	n := uint32(len(f.LineIdx)) + 1
	if len(f.LineIdx) > 0 && f.LineIdx[len(f.LineIdx)-1] == f.Size()-1 {
		n-- // файл заканчивается переводом строки
	}
	return n
}

// LineStart returns the offset of the first byte of a 1-based line.
func (f *File) LineStart(line uint32) uint32 {
	switch {
	case line <= 1:
		return 0
	case int(line-2) < len(f.LineIdx):
		return f.LineIdx[line-2] + 1
	default:
		return f.Size()
	}
}

// LineEnd returns the offset of the newline that terminates a 1-based line
// (or the file size for the last line).
func (f *File) LineEnd(line uint32) uint32 {
	if line == 0 {
		return 0
	}
	if int(line-1) < len(f.LineIdx) {
		return f.LineIdx[line-1]
	}
	return f.Size()
}

// GetLine returns the text of a 1-based line without its newline.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	start, end := f.LineStart(lineNum), f.LineEnd(lineNum)
	if start >= f.Size() || end < start {
		return ""
	}
	return string(f.Content[start:end])
}

// LineSpan returns the span of full lines touched by s.
func (f *File) LineSpan(s Span) Span {
	start := f.LineStart(f.Position(s.Start).Line)
	end := f.LineEnd(f.Position(s.End).Line)
	return Span{File: f.ID, Start: start, End: end}
}

// Text returns the source text under span, clamped to the file bounds.
func (f *File) Text(s Span) string {
	size := f.Size()
	start, end := min(s.Start, size), min(s.End, size)
	if end < start {
		return ""
	}
	return string(f.Content[start:end])
}

// Offset converts a 1-based line and a 1-based rune column into a byte offset.
func (f *File) Offset(line, runeCol uint32) uint32 {
	off := f.LineStart(line)
	end := f.LineEnd(line)
	for col := uint32(1); col < runeCol && off < end; col++ {
		off += runeLen(f.Content[off])
	}
	return min(off, end)
}

// InBounds reports whether s lies inside the file content.
func (f *File) InBounds(s Span) bool {
	return s.File == f.ID && s.Start <= s.End && s.End <= f.Size()
}
