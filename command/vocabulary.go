// Package command parses lines of player input into typed commands and
// tracks which commands a player may currently use.
package command

import (
	"fmt"
	"strings"
)

// Ordinal is satisfied by any command enumeration declared as an int type.
// The value of a command is its index in the Vocabulary that describes it.
type Ordinal interface {
	~int
}

// maxCommands is the size of the bitset backing a Controller.
const maxCommands = 64

// Spec describes a single command of a vocabulary.
// The first alias is the main alias, the second is the acronym.
// A command with no aliases can never be parsed.
type Spec struct {
	Name    string
	Aliases []string
	Help    string
}

// Vocabulary is the closed, ordered set of commands of type C.
type Vocabulary[C Ordinal] struct {
	specs []Spec
}

// NewVocabulary builds a vocabulary from specs declared in ordinal order:
// specs[0] describes C(0), specs[1] describes C(1) and so on.
func NewVocabulary[C Ordinal](specs ...Spec) *Vocabulary[C] {
	if len(specs) > maxCommands {
		panic(fmt.Sprintf("vocabulary has %d commands, at most %d supported", len(specs), maxCommands))
	}

	v := &Vocabulary[C]{specs: make([]Spec, len(specs))}
	for i, s := range specs {
		if s.Name == "" {
			panic(fmt.Sprintf("command %d has no name", i))
		}
		s.Aliases = append([]string(nil), s.Aliases...)
		v.specs[i] = s
	}

	return v
}

// Len returns the number of commands in the vocabulary.
func (v *Vocabulary[C]) Len() int {
	return len(v.specs)
}

// Contains reports whether c belongs to the vocabulary.
func (v *Vocabulary[C]) Contains(c C) bool {
	return int(c) >= 0 && int(c) < len(v.specs)
}

// Commands returns every command in declaration order.
func (v *Vocabulary[C]) Commands() []C {
	cmds := make([]C, 0, len(v.specs))
	for i := range v.specs {
		cmds = append(cmds, C(i))
	}
	return cmds
}

// Name returns the declared name of c.
func (v *Vocabulary[C]) Name(c C) string {
	if !v.Contains(c) {
		return fmt.Sprintf("Command(%d)", int(c))
	}
	return v.specs[c].Name
}

// Lookup finds a command by its declared name, ignoring case.
func (v *Vocabulary[C]) Lookup(name string) (C, bool) {
	name = strings.TrimSpace(name)
	for i, s := range v.specs {
		if strings.EqualFold(s.Name, name) {
			return C(i), true
		}
	}
	return 0, false
}

// Aliases returns a copy of the aliases of c.
func (v *Vocabulary[C]) Aliases(c C) []string {
	if !v.Contains(c) {
		return []string{}
	}
	return append([]string{}, v.specs[c].Aliases...)
}

// Matches reports whether candidate is one of the aliases of c.
// Comparison ignores case and surrounding whitespace.
func (v *Vocabulary[C]) Matches(c C, candidate string) bool {
	if !v.Contains(c) {
		return false
	}

	candidate = strings.TrimSpace(candidate)
	for _, alias := range v.specs[c].Aliases {
		if strings.EqualFold(alias, candidate) {
			return true
		}
	}
	return false
}

// MainAlias returns the first alias of c, or "" if it has none.
func (v *Vocabulary[C]) MainAlias(c C) string {
	if !v.Contains(c) || len(v.specs[c].Aliases) == 0 {
		return ""
	}
	return v.specs[c].Aliases[0]
}

// Acronym returns the second alias of c, or "" if it has none.
func (v *Vocabulary[C]) Acronym(c C) string {
	if !v.Contains(c) || len(v.specs[c].Aliases) < 2 {
		return ""
	}
	return v.specs[c].Aliases[1]
}

// Help returns a one line description of c in the form
// "<acronym> <main alias> : <help>".
func (v *Vocabulary[C]) Help(c C) string {
	if !v.Contains(c) || v.specs[c].Help == "" {
		return fmt.Sprintf("No help for command %s available.", v.Name(c))
	}

	alias, acronym := v.MainAlias(c), v.Acronym(c)

	var prefix string
	switch {
	case acronym != "":
		prefix = acronym + " " + alias + " : "
	case alias != "":
		prefix = alias + " : "
	}

	return prefix + v.specs[c].Help
}
