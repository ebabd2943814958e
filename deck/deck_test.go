package deck

import (
	"context"
	"sort"
	"strings"
	"testing"

	utils "github.com/minaorangina/deckhub/internal"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLibrary = `
cards:
  - name: Mountain
    basic: true
  - name: Lightning Bolt
  - name: Goblin Guide
decks:
  Burn:
    Mountain: 6
    Lightning Bolt: 2
    Goblin Guide: 2
  Greedy:
    Mountain: 2
    Lightning Bolt: 8
  Tiny:
    Mountain: 1
  Fake:
    Mountain: 8
    Black Lotus: 2
  Broken:
    Mountain: 10
    Goblin Guide: 0
`

var testRules = Rules{MinCards: 10, MaxCopies: 4}

func loadTestLibrary(t *testing.T) *Library {
	t.Helper()

	lib, err := LoadYAML(strings.NewReader(testLibrary), testRules)
	require.NoError(t, err)
	return lib
}

func TestBuild(t *testing.T) {
	catalogue := map[string]Card{
		"Mountain":       {Name: "Mountain", Basic: true},
		"Lightning Bolt": {Name: "Lightning Bolt"},
	}

	t.Run("valid deck", func(t *testing.T) {
		d, err := Build("p1", "Burn", map[string]int{"Mountain": 20, "Lightning Bolt": 4}, catalogue, testRules)
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, d.Owner, "p1")
		utils.AssertEqual(t, d.Name, "Burn")
		utils.AssertEqual(t, d.Size(), 24)
	})

	cases := []struct {
		name string
		def  map[string]int
		want error
	}{
		{"missing definition", nil, ErrDeckNotFound},
		{"unknown card", map[string]int{"Mountain": 20, "Black Lotus": 1}, ErrUnknownCard},
		{"zero count", map[string]int{"Mountain": 20, "Lightning Bolt": 0}, ErrInvalidCount},
		{"negative count", map[string]int{"Mountain": 20, "Lightning Bolt": -1}, ErrInvalidCount},
		{"too many copies", map[string]int{"Mountain": 20, "Lightning Bolt": 5}, ErrTooManyCopies},
		{"too small", map[string]int{"Mountain": 9}, ErrDeckTooSmall},
		{"empty", map[string]int{}, ErrDeckTooSmall},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d, err := Build("p1", "Test", c.def, catalogue, testRules)
			assert.Nil(t, d)
			assert.True(t, eris.Is(err, c.want), "got %v, want %v", err, c.want)
		})
	}

	t.Run("basic cards ignore the copy limit", func(t *testing.T) {
		_, err := Build("p1", "Mono", map[string]int{"Mountain": 60}, catalogue, testRules)
		utils.AssertNoError(t, err)
	})

	t.Run("built deck does not share the definition", func(t *testing.T) {
		def := map[string]int{"Mountain": 20}
		d, err := Build("p1", "Mono", def, catalogue, testRules)
		require.NoError(t, err)
		def["Mountain"] = 1
		utils.AssertEqual(t, d.Cards["Mountain"], 20)
	})
}

func TestDeck(t *testing.T) {
	d := &Deck{Name: "Burn", Cards: map[string]int{"Mountain": 2, "Lightning Bolt": 1}}

	utils.AssertDeepEqual(t, d.Lines(), []string{"Lightning Bolt x1", "Mountain x2"})
	utils.AssertDeepEqual(t, d.Library(), Pile{"Lightning Bolt", "Mountain", "Mountain"})
}

func TestPile(t *testing.T) {
	t.Run("deal takes from the top", func(t *testing.T) {
		p := Pile{"a", "b", "c", "d"}
		utils.AssertDeepEqual(t, p.Deal(2), []string{"c", "d"})
		utils.AssertDeepEqual(t, p, Pile{"a", "b"})
	})

	t.Run("deal stops when the pile is empty", func(t *testing.T) {
		p := Pile{"a"}
		utils.AssertDeepEqual(t, p.Deal(3), []string{"a"})
		utils.AssertEqual(t, len(p), 0)
		utils.AssertDeepEqual(t, p.Deal(1), []string{})
		utils.AssertDeepEqual(t, p.Deal(-1), []string{})
	})

	t.Run("shuffle keeps every card", func(t *testing.T) {
		p := Pile{"a", "b", "c", "d", "e", "f"}
		p.Shuffle()
		got := append([]string{}, p...)
		sort.Strings(got)
		utils.AssertDeepEqual(t, got, []string{"a", "b", "c", "d", "e", "f"})
	})
}

func TestLibrary(t *testing.T) {
	ctx := context.Background()
	lib := loadTestLibrary(t)

	t.Run("lists decks", func(t *testing.T) {
		names, err := lib.ListDecks(ctx)
		utils.AssertNoError(t, err)
		assert.ElementsMatch(t, []string{"Burn", "Greedy", "Tiny", "Fake", "Broken"}, names)
	})

	t.Run("gets a deck", func(t *testing.T) {
		cards, err := lib.GetDeck(ctx, "Burn")
		utils.AssertNoError(t, err)
		utils.AssertDeepEqual(t, cards, map[string]int{"Mountain": 6, "Lightning Bolt": 2, "Goblin Guide": 2})

		cards["Mountain"] = 100
		again, _ := lib.GetDeck(ctx, "Burn")
		utils.AssertEqual(t, again["Mountain"], 6)
	})

	t.Run("unknown deck", func(t *testing.T) {
		_, err := lib.GetDeck(ctx, "Zoo")
		assert.True(t, eris.Is(err, ErrDeckNotFound))
		assert.Contains(t, err.Error(), "Zoo")
	})

	t.Run("builds decks", func(t *testing.T) {
		d, err := lib.BuildDeck(ctx, "p1", "Burn")
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, d.Size(), 10)
		utils.AssertEqual(t, d.Owner, "p1")
	})

	t.Run("rejects invalid decks", func(t *testing.T) {
		cases := map[string]error{
			"Greedy":  ErrTooManyCopies,
			"Tiny":    ErrDeckTooSmall,
			"Fake":    ErrUnknownCard,
			"Broken":  ErrInvalidCount,
			"Missing": ErrDeckNotFound,
		}
		for name, want := range cases {
			d, err := lib.BuildDeck(ctx, "p1", name)
			assert.Nil(t, d, name)
			assert.True(t, eris.Is(err, want), "%s: got %v", name, err)
		}
	})

	t.Run("empty input is an empty library", func(t *testing.T) {
		empty, err := LoadYAML(strings.NewReader(""), testRules)
		utils.AssertNoError(t, err)
		names, _ := empty.ListDecks(ctx)
		utils.AssertEqual(t, len(names), 0)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := LoadYAML(strings.NewReader("decks: [oops"), testRules)
		utils.AssertErrored(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile("does/not/exist.yaml", testRules)
		utils.AssertErrored(t, err)
	})

	t.Run("bundled decks are valid", func(t *testing.T) {
		bundled, err := LoadFile("../decks/decks.yaml", DefaultRules)
		require.NoError(t, err)

		names, err := bundled.ListDecks(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Affinity", "Burn", "Zoo"}, names)

		for _, name := range names {
			_, err := bundled.BuildDeck(ctx, "p1", name)
			assert.NoError(t, err, name)
		}
	})
}
