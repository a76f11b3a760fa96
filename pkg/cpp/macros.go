package cpp

import "strings"

// Macro is a macro definition as far as #if evaluation needs it.
type Macro struct {
	Name     string
	FuncLike bool
	Body     string
}

// MacroTable stores macro definitions.
type MacroTable struct {
	macros map[string]*Macro
}

// NewMacroTable creates an empty macro table.
func NewMacroTable() *MacroTable {
	return &MacroTable{macros: make(map[string]*Macro)}
}

// Define adds an object-like macro. An empty body defines the macro as 1,
// matching -DNAME on a compiler command line.
func (mt *MacroTable) Define(name, body string) {
	if body == "" {
		body = "1"
	}
	mt.macros[name] = &Macro{Name: name, Body: body}
}

// DefineDirective records the arguments of a #define directive.
func (mt *MacroTable) DefineDirective(args string) {
	i := 0
	for i < len(args) && isIdentByte(args[i]) {
		i++
	}
	if i == 0 {
		return
	}
	m := &Macro{Name: args[:i]}
	rest := args[i:]
	if strings.HasPrefix(rest, "(") {
		m.FuncLike = true
		if end := strings.IndexByte(rest, ')'); end >= 0 {
			rest = rest[end+1:]
		} else {
			rest = ""
		}
	}
	m.Body = strings.TrimSpace(rest)
	mt.macros[m.Name] = m
}

// Undefine removes a macro definition.
func (mt *MacroTable) Undefine(name string) {
	delete(mt.macros, name)
}

// IsDefined reports whether name is defined.
func (mt *MacroTable) IsDefined(name string) bool {
	_, ok := mt.macros[name]
	return ok
}

// Lookup returns the definition of name, or nil.
func (mt *MacroTable) Lookup(name string) *Macro {
	return mt.macros[name]
}
