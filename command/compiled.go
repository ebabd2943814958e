package command

import "strings"

// Compiled is the result of parsing one line of input. Argument 0 is
// conventionally the token that named the command, so "show burn" has
// arguments ["show", "burn"].
type Compiled[C Ordinal] struct {
	controller *Controller[C]
	cmd        C
	ok         bool
	args       []string
}

func newCompiled[C Ordinal](controller *Controller[C], cmd C, ok bool, args []string) *Compiled[C] {
	return &Compiled[C]{
		controller: controller,
		cmd:        cmd,
		ok:         ok,
		args:       append([]string{}, args...),
	}
}

// Controller returns the controller that produced the command.
func (cc *Compiled[C]) Controller() *Controller[C] {
	return cc.controller
}

// Command returns the parsed command. ok is false when the input did not
// match any command.
func (cc *Compiled[C]) Command() (cmd C, ok bool) {
	return cc.cmd, cc.ok
}

// Is reports whether the parsed command is cmd.
func (cc *Compiled[C]) Is(cmd C) bool {
	return cc.ok && cc.cmd == cmd
}

// Args returns a copy of the arguments.
func (cc *Compiled[C]) Args() []string {
	return append([]string{}, cc.args...)
}

// NumArgs returns the number of arguments, including argument 0.
func (cc *Compiled[C]) NumArgs() int {
	return len(cc.args)
}

// Arg returns argument idx, or "" if there is no such argument.
func (cc *Compiled[C]) Arg(idx int) string {
	if idx < 0 || idx >= len(cc.args) {
		return ""
	}
	return cc.args[idx]
}

// Rest joins the arguments from idx onwards with single spaces.
func (cc *Compiled[C]) Rest(idx int) string {
	if idx < 0 || idx >= len(cc.args) {
		return ""
	}
	return strings.Join(cc.args[idx:], " ")
}

// IsEnabled reports whether the command is currently enabled in its
// controller. Unparsed commands are never enabled.
func (cc *Compiled[C]) IsEnabled() bool {
	return cc.ok && cc.controller.IsEnabled(cc.cmd)
}

// IsMasked reports whether the command is currently masked in its
// controller.
func (cc *Compiled[C]) IsMasked() bool {
	return cc.ok && cc.controller.IsMasked(cc.cmd)
}

func (cc *Compiled[C]) String() string {
	name := "<unknown>"
	if cc.ok {
		name = cc.controller.vocab.Name(cc.cmd)
	}
	return strings.TrimSpace(name + " " + strings.Join(cc.args, " "))
}
