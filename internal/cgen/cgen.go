package cgen

import (
	"strings"

	"github.com/arafura-lang/arafura/internal/ast"
)

// wildcard is the reserved identifier that encodes address-of, dereference,
// increment/decrement, compound literals, default arms, and anonymous
// aggregates. Recognition is always a direct name comparison.
const wildcard = "W"

// translator holds the state of one lowering walk: the tag table from the
// pre-pass, the output lines, the indentation level, and the contextual-type
// stack consulted by wildcard compound literals.
type translator struct {
	tags   *tagTable
	lines  []string
	indent int

	// context is the stack of lowered C type texts for the declaration (or
	// brace-init element) currently being lowered.
	context []string

	// inMacroBody suspends the identifier escape for __VA_ARGS__.
	inMacroBody bool
}

// Translate lowers a parsed module to C text. On failure the returned error
// is a *Error carrying the lowering code and the offending span; no partial
// output is produced.
func Translate(module *ast.Module) (string, error) {
	t := &translator{tags: collectTags(module)}
	for _, s := range module.Stmts {
		if err := t.stmt(s); err != nil {
			return "", err
		}
	}
	return strings.Join(t.lines, "\n") + "\n", nil
}

// Tags exposes the pre-pass result for a module; used by tests and tooling.
func Tags(module *ast.Module) map[string]TagInfo {
	return collectTags(module).tags
}

func (t *translator) emit(line string) {
	t.lines = append(t.lines, line)
}

func (t *translator) pad() string {
	return strings.Repeat("    ", t.indent)
}

func (t *translator) pushContext(typ string) {
	t.context = append(t.context, typ)
}

func (t *translator) popContext() {
	t.context = t.context[:len(t.context)-1]
}

func (t *translator) contextType() (string, bool) {
	if len(t.context) == 0 {
		return "", false
	}
	return t.context[len(t.context)-1], true
}

// escapeIdent applies the double-underscore escape: an identifier starting
// with two underscores is emitted with them stripped, which is the hatch for
// C names shadowed by reserved surface identifiers. __VA_ARGS__ survives
// literally inside macro bodies.
func (t *translator) escapeIdent(name string) string {
	if name == "__VA_ARGS__" && t.inMacroBody {
		return name
	}
	if strings.HasPrefix(name, "__") {
		return name[2:]
	}
	return name
}
