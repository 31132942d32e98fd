package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("lib/index.d.ts", []byte("export {};"), 0)
	id2 := fs.Add("lib/index.d.ts", []byte("export declare const x: number;"), 0)
	if id1 == id2 {
		t.Fatalf("expected a new FileID for the second version")
	}

	latest, ok := fs.Lookup("lib/index.d.ts")
	if !ok || latest != id2 {
		t.Fatalf("Lookup = %d,%v want %d,true", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "export {};" {
		t.Fatalf("first version content = %q", got)
	}
	if id1 == NoFileID || fs.Get(NoFileID) != nil {
		t.Fatalf("NoFileID must stay reserved")
	}
	if fs.Len() != 2 || len(fs.Files()) != 2 {
		t.Fatalf("Len = %d, Files = %d", fs.Len(), len(fs.Files()))
	}
	if !fs.Get(id2).IsDeclarationFile() {
		t.Fatalf("expected .d.ts file to carry the declaration flag")
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.d.ts", []byte("a\nbc\n\nd"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{1, LineCol{Line: 1, Col: 2}},
		{2, LineCol{Line: 2, Col: 1}},
		{3, LineCol{Line: 2, Col: 2}},
		{5, LineCol{Line: 3, Col: 1}},
		{6, LineCol{Line: 4, Col: 1}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("offset %d: got %+v, want %+v", tt.off, start, tt.want)
		}
	}
	if fs.Get(id).Flags&FileVirtual == 0 {
		t.Fatalf("expected FileVirtual flag")
	}
}

func TestPositionIsRelativeToBase(t *testing.T) {
	fs := NewFileSetWithBase("/work/pkg")
	id := fs.AddVirtual("/work/pkg/lib/index.d.ts", []byte("x\ny"))

	pos := fs.Position(Span{File: id, Start: 2, End: 3})
	if pos.Path != "lib/index.d.ts" || pos.Line != 2 || pos.Col != 1 {
		t.Fatalf("unexpected position %+v", pos)
	}

	outside := fs.AddVirtual("/elsewhere/x.d.ts", []byte("x"))
	if got := fs.Position(Span{File: outside}).Path; got != "/elsewhere/x.d.ts" {
		t.Fatalf("path outside base = %q", got)
	}
}

func TestLoadNormalizesInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.d.ts")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa\r\nb\r\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a\nb\n" {
		t.Fatalf("content = %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags = %b", f.Flags)
	}
	if got := f.GetLine(2); got != "b" {
		t.Fatalf("GetLine(2) = %q", got)
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	if got := a.Cover(b); got != (Span{File: 1, Start: 2, End: 8}) {
		t.Fatalf("Cover = %v", got)
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 1}); got != a {
		t.Fatalf("cross-file Cover changed span: %v", got)
	}
	if !a.Cover(b).Contains(a) {
		t.Fatalf("cover must contain its operands")
	}
}
