package ast

type (
	// главные сущности
	FileID uint32
	StmtID uint32
	DeclID uint32
	// подсущности
	ImportID uint32
	ExportID uint32
)

const (
	NoFileID   FileID   = 0
	NoStmtID   StmtID   = 0
	NoDeclID   DeclID   = 0
	NoImportID ImportID = 0
	NoExportID ExportID = 0
)

func (id FileID) IsValid() bool   { return id != NoFileID }
func (id StmtID) IsValid() bool   { return id != NoStmtID }
func (id DeclID) IsValid() bool   { return id != NoDeclID }
func (id ImportID) IsValid() bool { return id != NoImportID }
func (id ExportID) IsValid() bool { return id != NoExportID }
