// Package ast defines the Abstract Syntax Tree node types produced by the
// SiMAL parser. Every node preserves source declaration order in its
// containers, and the tree is immutable once the parser has returned it.
package ast

// SourceLocation tracks the position of a node in the source text.
type SourceLocation struct {
	Line   int
	Column int
}

// Node is the base interface satisfied by every AST node.
type Node interface {
	Location() SourceLocation
	node()
}

// Value is the tagged union attached to attributes and map/list entries:
// a string scalar, an ordered mapping, an ordered sequence, or one of the
// specialized node kinds (Block, Endpoint, Method, Field). Annotated
// non-keyed values (e.g. an annotated map inside a list) are represented
// with *Attribute whose Key is empty.
type Value interface {
	Node
	value()
}

// System is the AST root; exactly one per parsed file.
type System struct {
	Attributes []*Attribute
	Services   []*Service
	Loc        SourceLocation
}

func (s *System) node()                    {}
func (s *System) Location() SourceLocation { return s.Loc }

// Service is declared with the `service` keyword inside a System.
type Service struct {
	Name        string
	Attributes  []*Attribute
	Annotations []*Annotation
	Loc         SourceLocation
}

func (s *Service) node()                    {}
func (s *Service) Location() SourceLocation { return s.Loc }

// Block is a generic `kind Name { ... }` component; it is only ever
// produced inside a `components` list.
type Block struct {
	Kind        string
	Name        string
	Attributes  []*Attribute
	Annotations []*Annotation
	Loc         SourceLocation
}

func (b *Block) node()                    {}
func (b *Block) value()                   {}
func (b *Block) Location() SourceLocation { return b.Loc }

// Attribute is a key/value pair preserving its declaration order within
// its enclosing container. When used to wrap an annotated list item
// (rather than a true map entry) Key is empty.
type Attribute struct {
	Key         string
	Value       Value
	Annotations []*Annotation
	Loc         SourceLocation
}

func (a *Attribute) node()                    {}
func (a *Attribute) value()                   {}
func (a *Attribute) Location() SourceLocation { return a.Loc }

// Annotation is an `@name(args)` marker attached to the node it precedes.
type Annotation struct {
	Name string
	Args []string
	Loc  SourceLocation
}

func (a *Annotation) node()                    {}
func (a *Annotation) Location() SourceLocation { return a.Loc }

// StringValue is a bare or quoted/heredoc string scalar.
type StringValue struct {
	Value string
	Loc   SourceLocation
}

func (s StringValue) node()                    {}
func (s StringValue) value()                   {}
func (s StringValue) Location() SourceLocation { return s.Loc }

// MapValue is an ordered mapping (`{ ... }`). Raw (non key:value) lines
// are kept as an entry under the synthetic `__raw__` key whose value is a
// list of strings; when a map's only entries are raw lines the parser
// collapses it to a StringValue instead of returning a MapValue — see
// parser.parseMapValue.
type MapValue struct {
	Entries []*Attribute
	Loc     SourceLocation
}

func (m *MapValue) node()                    {}
func (m *MapValue) value()                   {}
func (m *MapValue) Location() SourceLocation { return m.Loc }

// ListValue is an ordered sequence (`[ ... ]`).
type ListValue struct {
	Items []Value
	Loc   SourceLocation
}

func (l *ListValue) node()                    {}
func (l *ListValue) value()                   {}
func (l *ListValue) Location() SourceLocation { return l.Loc }

// Visibility markers recognized on Field and Method list items.
const (
	VisibilityPublic    = "public"
	VisibilityPrivate   = "private"
	VisibilityProtected = "protected"
	VisibilityNone      = "none"
)

// Field is a list item of a `fields` list: `[+-#]?Name: Type`.
type Field struct {
	Visibility  string
	Name        string
	Type        string
	Annotations []*Annotation
	Loc         SourceLocation
}

func (f *Field) node()                    {}
func (f *Field) value()                   {}
func (f *Field) Location() SourceLocation { return f.Loc }

// Method is a list item of a `methods` list: `[+-#]?Name(params) -> Returns { attrs }`.
type Method struct {
	Visibility  string
	Name        string
	Params      string
	Returns     string
	Attributes  []*Attribute
	Annotations []*Annotation
	Loc         SourceLocation
}

func (m *Method) node()                    {}
func (m *Method) value()                   {}
func (m *Method) Location() SourceLocation { return m.Loc }

// Endpoint styles.
const (
	EndpointHTTP = "http"
	EndpointGRPC = "grpc"
)

// Shape is the structural parse of an endpoint request/response signature
// produced by the enricher (spec section 4.5). Kind is one of "object"
// (named or anonymous), "tuple", or "primitive".
type Shape struct {
	Kind     string
	Name     string // tag for a named object ("" for anonymous); "JSON" for the HTTP body convention
	Type     string // for Kind == "primitive"
	Fields   []ShapeField
	Optional bool
}

// ShapeField is one member of an object/tuple shape.
type ShapeField struct {
	Name     string
	Type     *Shape
	Optional bool
}

// Param is a derived {name, type} or {name, type, optional} entry exposed
// on an Endpoint's Inputs/Outputs.
type Param struct {
	Name     string
	Type     string
	Optional bool
}

// Endpoint is a list item of an `endpoints` list, either HTTP or RPC style.
type Endpoint struct {
	Style       string
	Method      string // HTTP verb, or the RPC method name
	Path        string // HTTP only
	RequestRaw  string
	RequestType *Shape // nil if enrichment failed or was not attempted
	ResponseRaw string
	ResponseType *Shape
	Inputs      []Param
	Outputs     []Param
	Attributes  []*Attribute // from a trailing `[k:v, ...]` block
	Annotations []*Annotation
	Loc         SourceLocation
}

func (e *Endpoint) node()                    {}
func (e *Endpoint) value()                   {}
func (e *Endpoint) Location() SourceLocation { return e.Loc }
