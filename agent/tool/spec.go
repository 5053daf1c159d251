package tool

import (
	"strings"
	"time"

	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
)

type Kind int

const (
	KindString Kind = iota
	KindInt
	KindEnum
	KindDate
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindEnum:
		return "enum"
	case KindDate:
		return "date"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

type DefaultSource int

const (
	DefaultNone DefaultSource = iota
	DefaultLiteral
	DefaultComputed
)

// Env is what computed defaults and date fields are resolved against.
type Env struct {
	Now     time.Time
	Context statex.ConversationContext
}

type Default struct {
	Source  DefaultSource
	Literal any
	Compute func(Env) any
}

// FieldSpec declares how one argument is resolved. Build it with the
// constructors below and chain the modifiers, e.g.
//
//	StringField("pnr").Required().Upper().FromContext(statex.FieldCurrentPNR)
type FieldSpec struct {
	Name        string
	Kind        Kind
	Description string
	IsRequired  bool
	Context     statex.ContextField
	Default     Default
	Normalize   func(string) string

	// enum
	Variants []string
	Fallback string
	Strict   bool

	// int
	Min, Max    int
	Clamp       bool
	Allowed     []int
	IntFallback int

	// array / object
	Elem     []FieldSpec
	MaxItems int
}

// ArgumentSpec is the ordered field list of one tool.
type ArgumentSpec []FieldSpec

func StringField(name string) FieldSpec {
	return FieldSpec{Name: name, Kind: KindString, Normalize: strings.TrimSpace}
}

func IntField(name string) FieldSpec {
	return FieldSpec{Name: name, Kind: KindInt}
}

// EnumField matches case-insensitively against variants. Unknown values fall
// back to fallback unless the field is Strict.
func EnumField(name string, fallback string, variants ...string) FieldSpec {
	return FieldSpec{Name: name, Kind: KindEnum, Variants: variants, Fallback: fallback}
}

func DateField(name string) FieldSpec {
	return FieldSpec{Name: name, Kind: KindDate}
}

func ArrayField(name string, elem ...FieldSpec) FieldSpec {
	return FieldSpec{Name: name, Kind: KindArray, Elem: elem}
}

func ObjectField(name string, fields ...FieldSpec) FieldSpec {
	return FieldSpec{Name: name, Kind: KindObject, Elem: fields}
}

func (f FieldSpec) Required() FieldSpec {
	f.IsRequired = true
	return f
}

func (f FieldSpec) Describe(desc string) FieldSpec {
	f.Description = desc
	return f
}

func (f FieldSpec) FromContext(field statex.ContextField) FieldSpec {
	f.Context = field
	return f
}

func (f FieldSpec) WithDefault(v any) FieldSpec {
	f.Default = Default{Source: DefaultLiteral, Literal: v}
	return f
}

func (f FieldSpec) Computed(fn func(Env) any) FieldSpec {
	f.Default = Default{Source: DefaultComputed, Compute: fn}
	return f
}

func (f FieldSpec) Upper() FieldSpec {
	f.Normalize = func(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
	return f
}

func (f FieldSpec) Lower() FieldSpec {
	f.Normalize = func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return f
}

// StrictEnum makes an unrecognized value a hard error.
func (f FieldSpec) StrictEnum() FieldSpec {
	f.Strict = true
	return f
}

// Range rejects values outside [min, max].
func (f FieldSpec) Range(min, max int) FieldSpec {
	f.Min, f.Max = min, max
	return f
}

// ClampRange pulls values outside [min, max] to the nearest bound.
func (f FieldSpec) ClampRange(min, max int) FieldSpec {
	f.Min, f.Max, f.Clamp = min, max, true
	return f
}

// OneOf restricts an int to allowed values; anything else becomes fallback.
func (f FieldSpec) OneOf(fallback int, allowed ...int) FieldSpec {
	f.Allowed, f.IntFallback = allowed, fallback
	return f
}

func (f FieldSpec) Items(max int) FieldSpec {
	f.MaxItems = max
	return f
}

func (f FieldSpec) hasRange() bool {
	return f.Min != 0 || f.Max != 0
}

// Field looks up a field by name.
func (s ArgumentSpec) Field(name string) (FieldSpec, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}
