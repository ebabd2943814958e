package command

import (
	"testing"

	utils "github.com/minaorangina/deckhub/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCmd int

const (
	echo testCmd = iota
	shout
	hidden
	shortcut
	echoAgain
)

var testVocab = NewVocabulary[testCmd](
	Spec{Name: "ECHO", Aliases: []string{"echo", "e"}, Help: "repeats what you say"},
	Spec{Name: "SHOUT", Aliases: []string{"shout"}, Help: "repeats it loudly"},
	Spec{Name: "HIDDEN", Help: "cannot be typed"},
	Spec{Name: "SHORTCUT", Aliases: []string{"sc", "s"}},
	Spec{Name: "ECHO_AGAIN", Aliases: []string{"ECHO"}, Help: "never reached"},
)

func newTestController() *Controller[testCmd] {
	return NewController(testVocab, "owner")
}

func TestVocabularyMatches(t *testing.T) {
	cases := []struct {
		name      string
		cmd       testCmd
		candidate string
		want      bool
	}{
		{"main alias", echo, "echo", true},
		{"acronym", echo, "e", true},
		{"ignores case", echo, "EcHo", true},
		{"ignores surrounding whitespace", echo, "  e\t", true},
		{"other alias", echo, "shout", false},
		{"prefix is not a match", echo, "ech", false},
		{"empty candidate", echo, "", false},
		{"no aliases never matches", hidden, "hidden", false},
		{"no aliases never matches empty", hidden, "", false},
		{"out of vocabulary", testCmd(42), "echo", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			utils.AssertEqual(t, testVocab.Matches(c.cmd, c.candidate), c.want)
		})
	}
}

func TestVocabularyAliases(t *testing.T) {
	utils.AssertEqual(t, testVocab.MainAlias(echo), "echo")
	utils.AssertEqual(t, testVocab.Acronym(echo), "e")
	utils.AssertEqual(t, testVocab.MainAlias(shout), "shout")
	utils.AssertEqual(t, testVocab.Acronym(shout), "")
	utils.AssertEqual(t, testVocab.MainAlias(hidden), "")
	utils.AssertEqual(t, testVocab.Acronym(hidden), "")

	t.Run("aliases are copied", func(t *testing.T) {
		aliases := testVocab.Aliases(echo)
		aliases[0] = "changed"
		utils.AssertEqual(t, testVocab.MainAlias(echo), "echo")
	})

	t.Run("lookup by name ignores case", func(t *testing.T) {
		cmd, ok := testVocab.Lookup("shortCut")
		assert.True(t, ok)
		assert.Equal(t, shortcut, cmd)

		_, ok = testVocab.Lookup("nope")
		assert.False(t, ok)
	})
}

func TestVocabularyHelp(t *testing.T) {
	cases := []struct {
		name string
		cmd  testCmd
		want string
	}{
		{"acronym and main alias", echo, "e echo : repeats what you say"},
		{"main alias only", shout, "shout : repeats it loudly"},
		{"no aliases", hidden, "cannot be typed"},
		{"no help", shortcut, "No help for command SHORTCUT available."},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			utils.AssertEqual(t, testVocab.Help(c.cmd), c.want)
		})
	}
}

func TestNewVocabulary(t *testing.T) {
	t.Run("commands need a name", func(t *testing.T) {
		assert.Panics(t, func() { NewVocabulary[testCmd](Spec{Aliases: []string{"x"}}) })
	})

	t.Run("no more than 64 commands", func(t *testing.T) {
		specs := make([]Spec, maxCommands+1)
		for i := range specs {
			specs[i] = Spec{Name: "C"}
		}
		assert.Panics(t, func() { NewVocabulary[testCmd](specs...) })
	})
}

func TestParse(t *testing.T) {
	c := newTestController()

	t.Run("matches the first command and keeps every part as an argument", func(t *testing.T) {
		cc := c.Parse("e hello world")
		cmd, ok := cc.Command()
		require.True(t, ok)
		assert.Equal(t, echo, cmd)
		assert.Equal(t, []string{"e", "hello", "world"}, cc.Args())
		assert.Same(t, c, cc.Controller())
	})

	t.Run("first declared command wins a tie", func(t *testing.T) {
		cc := c.Parse("ECHO")
		assert.True(t, cc.Is(echo))
		assert.False(t, cc.Is(echoAgain))
	})

	t.Run("quoted groups stay together", func(t *testing.T) {
		cc := c.Parse(`shout "Mono Red" now`)
		assert.True(t, cc.Is(shout))
		assert.Equal(t, []string{"shout", "Mono Red", "now"}, cc.Args())
	})

	t.Run("unknown input is carried as argument 0", func(t *testing.T) {
		cc := c.Parse("  dance wildly ")
		_, ok := cc.Command()
		assert.False(t, ok)
		assert.Equal(t, []string{"  dance wildly "}, cc.Args())
	})

	t.Run("never returns nil", func(t *testing.T) {
		for _, input := range []string{"", " ", "\t\n", `"`, `"unterminated`, "hidden"} {
			cc := c.Parse(input)
			require.NotNil(t, cc, "input %q", input)
			_, ok := cc.Command()
			assert.False(t, ok, "input %q", input)
		}
	})
}

func TestCompile(t *testing.T) {
	c := newTestController()

	t.Run("defaults argument 0 to the main alias", func(t *testing.T) {
		cc := c.Compile(echo)
		assert.Equal(t, []string{"echo"}, cc.Args())
	})

	t.Run("no main alias means no arguments", func(t *testing.T) {
		cc := c.Compile(hidden)
		assert.Equal(t, []string{}, cc.Args())
	})

	t.Run("explicit empty arguments are kept", func(t *testing.T) {
		cc := c.Compile(echo, []string{}...)
		assert.Equal(t, []string{}, cc.Args())
	})

	t.Run("unknown commands have no default argument", func(t *testing.T) {
		cc := c.Unknown()
		assert.Equal(t, []string{}, cc.Args())
		assert.Equal(t, "", cc.Arg(0))
	})

	t.Run("arguments are copied", func(t *testing.T) {
		args := []string{"e", "one", "two"}
		cc := c.Compile(echo, args...)
		args[1] = "changed"
		assert.Equal(t, "one", cc.Arg(1))

		got := cc.Args()
		got[2] = "changed"
		assert.Equal(t, "two", cc.Arg(2))
	})

	t.Run("arg out of range is empty", func(t *testing.T) {
		cc := c.Compile(echo, "e", "x")
		assert.Equal(t, "", cc.Arg(-1))
		assert.Equal(t, "", cc.Arg(2))
		assert.Equal(t, "x", cc.Rest(1))
		assert.Equal(t, "", cc.Rest(5))
		assert.Equal(t, 2, cc.NumArgs())
	})

	t.Run("string form", func(t *testing.T) {
		assert.Equal(t, "ECHO e hi", c.Compile(echo, "e", "hi").String())
		assert.Equal(t, "<unknown> oops", c.Unknown("oops").String())
	})
}

func TestEnableDisable(t *testing.T) {
	t.Run("everything starts disabled and unmasked", func(t *testing.T) {
		c := newTestController()
		for _, cmd := range testVocab.Commands() {
			assert.False(t, c.IsEnabled(cmd))
			assert.False(t, c.IsMasked(cmd))
		}
	})

	t.Run("enable and disable", func(t *testing.T) {
		c := newTestController()
		c.Enable(echo, shout)
		assert.Equal(t, []testCmd{echo, shout}, c.Enabled())

		c.Disable(echo)
		assert.Equal(t, []testCmd{shout}, c.Enabled())
	})

	t.Run("set enabled replaces the enabled set", func(t *testing.T) {
		c := newTestController()
		c.Enable(echo)
		c.SetEnabled(shout, hidden)
		assert.Equal(t, []testCmd{shout, hidden}, c.Enabled())
	})

	t.Run("set enabled is idempotent", func(t *testing.T) {
		c := newTestController()
		c.Enable(echo)
		c.Mask(echo)

		c.SetEnabled(shout, shortcut)
		once := c.Enabled()
		c.SetEnabled(shout, shortcut)
		assert.Equal(t, once, c.Enabled())
	})

	t.Run("masked commands keep their status", func(t *testing.T) {
		c := newTestController()
		c.Enable(echo)
		c.Mask(echo, shout)

		c.Enable(shout, hidden)
		c.Disable(echo, hidden)
		c.SetEnabled()

		assert.True(t, c.IsEnabled(echo))
		assert.False(t, c.IsEnabled(shout))
		assert.False(t, c.IsEnabled(hidden))
		assert.True(t, c.IsMasked(echo))
	})

	t.Run("unmasked commands can change again", func(t *testing.T) {
		c := newTestController()
		c.Mask(echo)
		c.Enable(echo)
		assert.False(t, c.IsEnabled(echo))

		c.Unmask(echo)
		c.Enable(echo)
		assert.True(t, c.IsEnabled(echo))
	})

	t.Run("set masked replaces the mask", func(t *testing.T) {
		c := newTestController()
		c.Mask(echo, shout)
		c.SetMasked(hidden)
		assert.False(t, c.IsMasked(echo))
		assert.True(t, c.IsMasked(hidden))
	})

	t.Run("commands from outside the vocabulary panic", func(t *testing.T) {
		c := newTestController()
		assert.Panics(t, func() { c.Enable(testCmd(99)) })
		assert.Panics(t, func() { c.Disable(testCmd(-1)) })
		assert.Panics(t, func() { c.SetEnabled(echo, testCmd(5)) })
		assert.Panics(t, func() { c.Mask(testCmd(64)) })
		assert.False(t, c.IsEnabled(testCmd(99)))
	})

	t.Run("compiled commands ask their controller", func(t *testing.T) {
		c := newTestController()
		cc := c.Parse("shout")
		assert.False(t, cc.IsEnabled())

		c.Enable(shout)
		c.Mask(shout)
		assert.True(t, cc.IsEnabled())
		assert.True(t, cc.IsMasked())

		unknown := c.Parse("nope")
		assert.False(t, unknown.IsEnabled())
		assert.False(t, unknown.IsMasked())
	})
}

func TestMaskInvariance(t *testing.T) {
	all := testVocab.Commands()
	subsets := [][]testCmd{{}, {echo}, {shout, hidden}, {echo, shortcut, echoAgain}, all}

	for _, mask := range subsets {
		for _, initial := range subsets {
			for _, toEnable := range subsets {
				for _, toDisable := range subsets {
					c := newTestController()
					c.SetEnabled(initial...)
					c.Mask(mask...)

					before := map[testCmd]bool{}
					for _, m := range mask {
						before[m] = c.IsEnabled(m)
					}

					c.Enable(toEnable...)
					c.Disable(toDisable...)
					c.SetEnabled(toEnable...)

					for _, m := range mask {
						if c.IsEnabled(m) != before[m] {
							t.Fatalf("masked %d changed: mask=%v initial=%v enable=%v disable=%v",
								m, mask, initial, toEnable, toDisable)
						}
					}
				}
			}
		}
	}
}

func TestHelp(t *testing.T) {
	c := newTestController()

	t.Run("blank token lists every command name", func(t *testing.T) {
		want := []string{"ECHO", "SHOUT", "HIDDEN", "SHORTCUT", "ECHO_AGAIN"}
		assert.Equal(t, want, c.Help(""))
		assert.Equal(t, want, c.Help("   "))
		assert.Equal(t, want, c.Names())
	})

	t.Run("known token gives its help", func(t *testing.T) {
		assert.Equal(t, []string{"shout : repeats it loudly"}, c.Help("SHOUT"))
		assert.Equal(t, []string{"e echo : repeats what you say"}, c.Help("e"))
	})

	t.Run("unknown token gives nothing", func(t *testing.T) {
		assert.Equal(t, []string{}, c.Help("dance"))
	})

	t.Run("help all", func(t *testing.T) {
		lines := c.HelpAll()
		assert.Len(t, lines, testVocab.Len())
		utils.AssertContainsLine(t, lines, "No help for command SHORTCUT available.")
	})
}

func TestTokenize(t *testing.T) {
	cases := []struct {
		input string
		want  []string
	}{
		{"", []string{}},
		{"   ", []string{}},
		{"ready", []string{"ready"}},
		{"  select   burn  ", []string{"select", "burn"}},
		{`select "Mono Red"`, []string{"select", "Mono Red"}},
		{`say "she said \"hi\""`, []string{"say", `she said "hi"`}},
		{`say ""`, []string{"say", ""}},
		{`say "open`, []string{"say", `"open`}},
	}

	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			utils.AssertDeepEqual(t, Tokenize(c.input), c.want)
		})
	}
}
