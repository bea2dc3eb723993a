package ast

// -----------------------------------------------------------------------------

type IncludedFrom struct {
	File string `json:"file"`
}

type Loc struct {
	Offset       int64         `json:"offset,omitempty"` // 432
	File         string        `json:"file,omitempty"`   // "/usr/include/time.h"
	Line         int           `json:"line,omitempty"`
	PresumedFile string        `json:"presumedFile,omitempty"`
	PresumedLine int           `json:"presumedLine,omitempty"`
	Col          int           `json:"col,omitempty"`
	TokLen       int           `json:"tokLen,omitempty"`
	IncludedFrom *IncludedFrom `json:"includedFrom,omitempty"`
	SpellingLoc  *Loc          `json:"spellingLoc,omitempty"`
	ExpansionLoc *Loc          `json:"expansionLoc,omitempty"`
}

type Range struct {
	Begin Loc `json:"begin"`
	End   Loc `json:"end"`
}

// -----------------------------------------------------------------------------

type ID string

type Kind string

const (
	TranslationUnitDecl Kind = "TranslationUnitDecl"
	TypedefDecl         Kind = "TypedefDecl"
	RecordDecl          Kind = "RecordDecl"
	FieldDecl           Kind = "FieldDecl"
	IndirectFieldDecl   Kind = "IndirectFieldDecl"
	VarDecl             Kind = "VarDecl"
	EnumDecl            Kind = "EnumDecl"
	EnumConstantDecl    Kind = "EnumConstantDecl"
	FunctionDecl        Kind = "FunctionDecl"
	ParmVarDecl         Kind = "ParmVarDecl"
	TypedefType         Kind = "TypedefType"
	ElaboratedType      Kind = "ElaboratedType"
	BuiltinType         Kind = "BuiltinType"
	RecordType          Kind = "RecordType"
	PointerType         Kind = "PointerType"
	ConstantExpr        Kind = "ConstantExpr"
	IntegerLiteral      Kind = "IntegerLiteral"
	AsmLabelAttr        Kind = "AsmLabelAttr"
	DeprecatedAttr      Kind = "DeprecatedAttr"
	NoThrowAttr         Kind = "NoThrowAttr"
)

type StorageClass string

const (
	Static StorageClass = "static"
	Extern StorageClass = "extern"
)

type Type struct {
	// QualType can be:
	//   unsigned int
	//   struct timespec
	//   volatile const_int_type
	//   int (clockid_t, struct timespec *)
	//   char *(char *)
	//   int (*)(const char *, ...)
	//   const char *restrict
	//   char [16]
	//   void
	//   ...
	QualType          string `json:"qualType"`
	DesugaredQualType string `json:"desugaredQualType,omitempty"`
	TypeAliasDeclID   ID     `json:"typeAliasDeclId,omitempty"`
}

// Spelling returns the type with every typedef expanded when clang
// reported a desugared form.
func (p *Type) Spelling(desugar bool) string {
	if desugar && p.DesugaredQualType != "" {
		return p.DesugaredQualType
	}
	return p.QualType
}

type Node struct {
	ID                  ID           `json:"id,omitempty"`
	Kind                Kind         `json:"kind,omitempty"`
	Loc                 *Loc         `json:"loc,omitempty"`
	Range               *Range       `json:"range,omitempty"`
	PreviousDecl        ID           `json:"previousDecl,omitempty"`
	IsImplicit          bool         `json:"isImplicit,omitempty"` // is this type implicit defined
	IsReferenced        bool         `json:"isReferenced,omitempty"`
	IsUsed              bool         `json:"isUsed,omitempty"`
	IsBitfield          bool         `json:"isBitfield,omitempty"`
	StorageClass        StorageClass `json:"storageClass,omitempty"`
	TagUsed             string       `json:"tagUsed,omitempty"` // struct | union
	CompleteDefinition  bool         `json:"completeDefinition,omitempty"`
	Name                string       `json:"name,omitempty"`
	MangledName         string       `json:"mangledName,omitempty"`
	Type                *Type        `json:"type,omitempty"`
	FixedUnderlyingType *Type        `json:"fixedUnderlyingType,omitempty"`
	Decl                *Node        `json:"decl,omitempty"`
	OwnedTagDecl        *Node        `json:"ownedTagDecl,omitempty"`
	ReferencedDecl      *Node        `json:"referencedDecl,omitempty"`
	Init                string       `json:"init,omitempty"`
	Value               interface{}  `json:"value,omitempty"`
	Inner               []*Node      `json:"inner,omitempty"`
}

// Position returns the header file and line a declaration starts at.
// Clang only repeats the file name when it changes, so callers walking a
// translation unit should track the last file seen.
func (p *Node) Position() (file string, line int) {
	loc := p.Loc
	if loc == nil {
		return
	}
	if loc.ExpansionLoc != nil {
		loc = loc.ExpansionLoc
	}
	return loc.File, loc.Line
}

// -----------------------------------------------------------------------------
