package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

// NoFileID marks spans that do not point into any file.
const NoFileID FileID = 0

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	// FileDeclaration marks *.d.ts inputs; other files are parsed as declaration-only sources.
	FileDeclaration
)

// File captures metadata and content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// IsDeclarationFile reports whether the file carries the .d.ts extension.
func (f *File) IsDeclarationFile() bool {
	return f != nil && f.Flags&FileDeclaration != 0
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// Position is a fully resolved location: path plus 1-based line and column.
type Position struct {
	Path string
	Line uint32
	Col  uint32
}

// IsValid reports whether the position points into a file.
func (p Position) IsValid() bool { return p.Path != "" }
