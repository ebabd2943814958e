package command

import (
	"fmt"
	"strings"
)

// bitset is a set of command ordinals.
type bitset uint64

func (b bitset) has(i int) bool { return b&(1<<uint(i)) != 0 }

// Controller parses input against a vocabulary and keeps track of which
// commands are enabled. Commands in the mask keep their enabled status
// through SetEnabled, Enable and Disable.
//
// A Controller is not safe for concurrent use. It is owned by a player and
// mutated from the hub that player belongs to.
type Controller[C Ordinal] struct {
	vocab   *Vocabulary[C]
	owner   any
	enabled bitset
	masked  bitset
}

// NewController returns a controller with every command disabled and an
// empty mask.
func NewController[C Ordinal](vocab *Vocabulary[C], owner any) *Controller[C] {
	return &Controller[C]{vocab: vocab, owner: owner}
}

// Vocabulary returns the vocabulary the controller parses against.
func (c *Controller[C]) Vocabulary() *Vocabulary[C] {
	return c.vocab
}

// Owner returns whatever the controller was created for.
func (c *Controller[C]) Owner() any {
	return c.owner
}

// set builds a bitset of cmds, panicking on commands from outside the
// vocabulary.
func (c *Controller[C]) set(cmds []C) bitset {
	var s bitset
	for _, cmd := range cmds {
		if !c.vocab.Contains(cmd) {
			panic(fmt.Sprintf("command %d is not part of the vocabulary", int(cmd)))
		}
		s |= 1 << uint(cmd)
	}
	return s
}

// SetEnabled enables exactly cmds and disables everything else, leaving
// masked commands as they were.
func (c *Controller[C]) SetEnabled(cmds ...C) {
	target := c.set(cmds) &^ c.masked
	c.enabled = (c.enabled & c.masked) | target
}

// Enable enables cmds, skipping masked ones.
func (c *Controller[C]) Enable(cmds ...C) {
	c.enabled |= c.set(cmds) &^ c.masked
}

// Disable disables cmds, skipping masked ones.
func (c *Controller[C]) Disable(cmds ...C) {
	c.enabled &^= c.set(cmds) &^ c.masked
}

// IsEnabled reports whether cmd is enabled.
func (c *Controller[C]) IsEnabled(cmd C) bool {
	return c.vocab.Contains(cmd) && c.enabled.has(int(cmd))
}

// SetMasked replaces the mask with cmds.
func (c *Controller[C]) SetMasked(cmds ...C) {
	c.masked = c.set(cmds)
}

// Mask adds cmds to the mask.
func (c *Controller[C]) Mask(cmds ...C) {
	c.masked |= c.set(cmds)
}

// Unmask removes cmds from the mask.
func (c *Controller[C]) Unmask(cmds ...C) {
	c.masked &^= c.set(cmds)
}

// IsMasked reports whether cmd is in the mask.
func (c *Controller[C]) IsMasked(cmd C) bool {
	return c.vocab.Contains(cmd) && c.masked.has(int(cmd))
}

// Enabled returns the enabled commands in declaration order.
func (c *Controller[C]) Enabled() []C {
	cmds := []C{}
	for _, cmd := range c.vocab.Commands() {
		if c.enabled.has(int(cmd)) {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// Parse turns a line of input into a Compiled command. The first part of
// the line is matched against each command's aliases in declaration order
// and the first match wins; all parts, including the first, become the
// arguments. If nothing matches, the command is absent and the raw input
// is the only argument. Parse never returns nil.
func (c *Controller[C]) Parse(input string) *Compiled[C] {
	parts := Tokenize(input)

	name := ""
	if len(parts) > 0 {
		name = parts[0]
	}

	for _, cmd := range c.vocab.Commands() {
		if c.vocab.Matches(cmd, name) {
			return c.Compile(cmd, parts...)
		}
	}

	return c.Unknown(input)
}

// Compile builds a Compiled command for cmd. When args is nil the only
// argument is the command's main alias, if it has one.
func (c *Controller[C]) Compile(cmd C, args ...string) *Compiled[C] {
	if args == nil {
		if alias := c.vocab.MainAlias(cmd); strings.TrimSpace(alias) != "" {
			args = []string{alias}
		}
	}
	return newCompiled(c, cmd, true, args)
}

// Unknown builds a Compiled command with no command, carrying args as-is.
func (c *Controller[C]) Unknown(args ...string) *Compiled[C] {
	var zero C
	return newCompiled(c, zero, false, args)
}

// Names returns the name of every command in the vocabulary.
func (c *Controller[C]) Names() []string {
	names := make([]string, 0, c.vocab.Len())
	for _, cmd := range c.vocab.Commands() {
		names = append(names, c.vocab.Name(cmd))
	}
	return names
}

// HelpFor returns the help line of the command token parses to, or an
// empty slice if it is not a known command.
func (c *Controller[C]) HelpFor(token string) []string {
	compiled := c.Parse(token)
	if cmd, ok := compiled.Command(); ok {
		return []string{c.vocab.Help(cmd)}
	}
	return []string{}
}

// HelpAll returns the help line of every command in the vocabulary.
func (c *Controller[C]) HelpAll() []string {
	lines := make([]string, 0, c.vocab.Len())
	for _, cmd := range c.vocab.Commands() {
		lines = append(lines, c.vocab.Help(cmd))
	}
	return lines
}

// Help returns every command name when token is blank, otherwise the help
// for the command token parses to (see HelpFor).
func (c *Controller[C]) Help(token string) []string {
	if strings.TrimSpace(token) == "" {
		return c.Names()
	}
	return c.HelpFor(token)
}
