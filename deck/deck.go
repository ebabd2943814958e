// Package deck holds the card catalogue and the deck definitions players
// choose from, and validates the decks built from them.
package deck

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/rotisserie/eris"
)

var (
	ErrDeckNotFound   = eris.New("deck not found")
	ErrUnknownCard    = eris.New("unknown card")
	ErrInvalidCount   = eris.New("invalid card count")
	ErrTooManyCopies  = eris.New("too many copies")
	ErrDeckTooSmall   = eris.New("deck too small")
	ErrFnDeckNotFound = func(name string) error {
		return eris.Wrapf(ErrDeckNotFound, "no deck named '%s'", name)
	}
)

// Repository is where decks come from
type Repository interface {
	// ListDecks returns the names of every known deck, in no particular order
	ListDecks(ctx context.Context) ([]string, error)
	// GetDeck returns the card counts of the named deck
	GetDeck(ctx context.Context, name string) (map[string]int, error)
	// BuildDeck validates the named deck and builds a copy of it for owner
	BuildDeck(ctx context.Context, owner, name string) (*Deck, error)
}

// Card is an entry in the card catalogue.
// Basic cards are exempt from the copy limit.
type Card struct {
	Name  string `yaml:"name"`
	Basic bool   `yaml:"basic,omitempty"`
}

// Rules constrain which decks can be built
type Rules struct {
	MinCards  int
	MaxCopies int
}

// DefaultRules are used when no rules are configured
var DefaultRules = Rules{MinCards: 40, MaxCopies: 4}

// Deck represents a deck a player has selected
type Deck struct {
	Name  string
	Owner string
	Cards map[string]int
}

// Size returns the number of cards in the deck
func (d *Deck) Size() int {
	n := 0
	for _, count := range d.Cards {
		n += count
	}
	return n
}

// Lines returns "<card> x<count>" for each card, sorted
func (d *Deck) Lines() []string {
	return Lines(d.Cards)
}

// Library expands the deck into one entry per physical card, sorted by name
func (d *Deck) Library() Pile {
	names := make([]string, 0, len(d.Cards))
	for name := range d.Cards {
		names = append(names, name)
	}
	sort.Strings(names)

	pile := Pile{}
	for _, name := range names {
		for i := 0; i < d.Cards[name]; i++ {
			pile = append(pile, name)
		}
	}
	return pile
}

// Lines formats card counts as "<card> x<count>", sorted
func Lines(cards map[string]int) []string {
	lines := make([]string, 0, len(cards))
	for name, count := range cards {
		lines = append(lines, fmt.Sprintf("%s x%d", name, count))
	}
	sort.Strings(lines)
	return lines
}

// Build validates a deck definition against the catalogue and rules and
// returns a deck owned by owner. Nothing is returned on failure.
func Build(owner, name string, def map[string]int, catalogue map[string]Card, rules Rules) (*Deck, error) {
	if def == nil {
		return nil, ErrFnDeckNotFound(name)
	}

	cards := make(map[string]int, len(def))
	total := 0

	names := make([]string, 0, len(def))
	for cardName := range def {
		names = append(names, cardName)
	}
	sort.Strings(names)

	for _, cardName := range names {
		count := def[cardName]
		card, ok := catalogue[cardName]
		if !ok {
			return nil, eris.Wrapf(ErrUnknownCard, "deck '%s' contains '%s'", name, cardName)
		}
		if count < 1 {
			return nil, eris.Wrapf(ErrInvalidCount, "deck '%s' has %d of '%s'", name, count, cardName)
		}
		if rules.MaxCopies > 0 && !card.Basic && count > rules.MaxCopies {
			return nil, eris.Wrapf(ErrTooManyCopies,
				"deck '%s' has %d of '%s', at most %d allowed", name, count, cardName, rules.MaxCopies)
		}
		cards[cardName] = count
		total += count
	}

	if total < rules.MinCards {
		return nil, eris.Wrapf(ErrDeckTooSmall,
			"deck '%s' has %d cards, at least %d required", name, total, rules.MinCards)
	}

	return &Deck{Name: name, Owner: owner, Cards: cards}, nil
}

// Pile is an ordered stack of cards. The top of the pile is the end of the
// slice.
type Pile []string

// Shuffle shuffles the pile
func (p *Pile) Shuffle() {
	rand.Shuffle(len(*p), func(i, j int) {
		(*p)[i], (*p)[j] = (*p)[j], (*p)[i]
	})
}

// Deal deals n cards from the top of the pile, until it is empty
func (p *Pile) Deal(n int) []string {
	numCards := len(*p)
	if n < 0 {
		return []string{}
	}
	if n > numCards {
		n = numCards
	}
	startingIndex := numCards - n
	dealt := append([]string{}, (*p)[startingIndex:]...)
	*p = (*p)[:startingIndex]
	return dealt
}
