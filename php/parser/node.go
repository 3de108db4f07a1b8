package parser

import "iter"

// Site is a declaration or statement that may carry a documentation block.
type Site interface {
	DocText() string
	Span() Span
	site()
}

// Doc is the documentation block preceding a site.
type Doc struct {
	Text string
	Span Span
}

func (d *Doc) text() string {
	if d == nil {
		return ""
	}
	return d.Text
}

// TypeHint is a native type declaration as written, e.g. "?int" or "A|B".
type TypeHint struct {
	Text string
	Span Span
}

// FunctionDecl is a function or method declaration.
type FunctionDecl struct {
	Doc       *Doc
	Name      string
	Class     string // enclosing class, interface, trait or enum; "" for functions
	Params    []*Param
	Result    *TypeHint
	Returns   []*ReturnStmt
	Generator bool
	Abstract  bool // declared without a body
	Pos       Span
}

func (f *FunctionDecl) DocText() string { return f.Doc.text() }
func (f *FunctionDecl) Span() Span      { return f.Pos }
func (*FunctionDecl) site()             {}

// Param returns the parameter called name, without the leading $.
func (f *FunctionDecl) Param(name string) (*Param, int) {
	for i, p := range f.Params {
		if p.Name == name {
			return p, i
		}
	}
	return nil, -1
}

// Param is a single function parameter.
type Param struct {
	Name     string // without the leading $
	Type     *TypeHint
	Default  Expr
	Variadic bool
	ByRef    bool
	Promoted bool
	Pos      Span // the $name token
}

// ReturnStmt is a return statement. Value is nil for a bare return.
type ReturnStmt struct {
	Value Expr
	Pos   Span
}

// PropertyDecl is a class property declaration, possibly declaring several
// properties at once: public int $a = 1, $b = 2;
type PropertyDecl struct {
	Doc      *Doc
	Class    string
	Type     *TypeHint
	Elements []*PropertyElement
	Static   bool
	Pos      Span
}

func (p *PropertyDecl) DocText() string { return p.Doc.text() }
func (p *PropertyDecl) Span() Span      { return p.Pos }
func (*PropertyDecl) site()             {}

// PropertyElement is one property in a declaration. Default is nil
// without an initializer.
type PropertyElement struct {
	Name    string // without the leading $
	Default Expr
	Pos     Span
}

// AssignStmt is a statement of the form $var = expr;
type AssignStmt struct {
	Doc   *Doc
	Var   string // without the leading $
	Value Expr
	Pos   Span
}

func (a *AssignStmt) DocText() string { return a.Doc.text() }
func (a *AssignStmt) Span() Span      { return a.Pos }
func (*AssignStmt) site()             {}

// CallExpr is a call of a plain, non-method function.
type CallExpr struct {
	Name string
	Args []*Argument
	Pos  Span
}

// Argument is a call argument. Name is set for named arguments.
type Argument struct {
	Name   string
	Value  Expr
	Spread bool
}

// File is a parsed PHP source file.
type File struct {
	Path   string
	Source []byte

	sites []Site
	calls []*CallExpr
}

// Sites yields the declaration sites of the file in source order.
func (f *File) Sites() iter.Seq[Site] {
	return func(yield func(Site) bool) {
		for _, s := range f.sites {
			if !yield(s) {
				return
			}
		}
	}
}

// Functions yields the functions and methods of the file.
func (f *File) Functions() iter.Seq[*FunctionDecl] {
	return func(yield func(*FunctionDecl) bool) {
		for _, s := range f.sites {
			if fn, ok := s.(*FunctionDecl); ok {
				if !yield(fn) {
					return
				}
			}
		}
	}
}

// Calls returns the plain function calls of the file in source order.
func (f *File) Calls() []*CallExpr {
	return f.calls
}
