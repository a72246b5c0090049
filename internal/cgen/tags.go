package cgen

import "github.com/arafura-lang/arafura/internal/ast"

// TagKind classifies a composite type definition.
type TagKind int

const (
	TagStruct TagKind = iota
	TagUnion
	TagEnum
)

// Keyword returns the C keyword introducing the composite type.
func (k TagKind) Keyword() string {
	switch k {
	case TagUnion:
		return "union"
	case TagEnum:
		return "enum"
	default:
		return "struct"
	}
}

// TagInfo records one composite tag from the pre-pass: its kind and, if the
// definition carries a Typedef decorator, the typedef name.
type TagInfo struct {
	Kind        TagKind
	TypedefName string
}

// tagTable is the tag set populated by the pre-pass: every user-declared
// composite tag name together with the reverse typedef-name lookup. It is
// read-only once built.
type tagTable struct {
	tags     map[string]TagInfo
	typedefs map[string]string // typedef name -> tag name
}

func (tt *tagTable) lookup(name string) (string, TagInfo, bool) {
	if tag, ok := tt.typedefs[name]; ok {
		return tag, tt.tags[tag], true
	}
	if info, ok := tt.tags[name]; ok {
		return name, info, true
	}
	return "", TagInfo{}, false
}

// isTypedefName reports whether name may stand alone in type position.
func (tt *tagTable) isTypedefName(name string) bool {
	_, ok := tt.typedefs[name]
	return ok
}

// displayName returns the C spelling of the tag's type: the typedef name
// when one exists, the tagged form otherwise.
func (tt *tagTable) displayName(tag string) string {
	info := tt.tags[tag]
	if info.TypedefName != "" {
		return info.TypedefName
	}
	return info.Kind.Keyword() + " " + tag
}

// collectTags walks every class definition, top-level and nested, and
// records its tag. Classes named with the wildcard are anonymous and are
// not recorded. The pre-pass emits nothing and never fails; decorator
// validation happens during lowering.
func collectTags(module *ast.Module) *tagTable {
	tt := &tagTable{
		tags:     make(map[string]TagInfo),
		typedefs: make(map[string]string),
	}

	ast.Walk(module, func(node ast.Node) bool {
		class, ok := node.(*ast.ClassDef)
		if !ok {
			return true
		}
		if class.Name.Name == wildcard {
			return true
		}

		info := TagInfo{Kind: classKind(class)}
		for _, dec := range class.Decorators {
			call, ok := dec.(*ast.Call)
			if !ok {
				continue
			}
			fn, ok := call.Func.(*ast.Name)
			if !ok || fn.Name != "Typedef" {
				continue
			}
			if len(call.Args) == 1 {
				if name, ok := call.Args[0].(*ast.Name); ok {
					info.TypedefName = name.Name
				}
			}
		}

		tt.tags[class.Name.Name] = info
		if info.TypedefName != "" {
			tt.typedefs[info.TypedefName] = class.Name.Name
		}
		return true
	})

	return tt
}

func classKind(class *ast.ClassDef) TagKind {
	for _, base := range class.Bases {
		switch base.Name {
		case "Union":
			return TagUnion
		case "Enum":
			return TagEnum
		}
	}
	return TagStruct
}
