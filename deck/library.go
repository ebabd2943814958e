package deck

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Library is an in-memory Repository
type Library struct {
	mu        sync.RWMutex
	rules     Rules
	catalogue map[string]Card
	decks     map[string]map[string]int
}

// libraryFile is the on-disk layout of a library:
//
//	cards:
//	  - name: Mountain
//	    basic: true
//	  - name: Lightning Bolt
//	decks:
//	  Burn:
//	    Mountain: 20
//	    Lightning Bolt: 4
type libraryFile struct {
	Cards []Card                    `yaml:"cards"`
	Decks map[string]map[string]int `yaml:"decks"`
}

// NewLibrary constructs an empty Library
func NewLibrary(rules Rules) *Library {
	return &Library{
		rules:     rules,
		catalogue: map[string]Card{},
		decks:     map[string]map[string]int{},
	}
}

// LoadYAML reads a library from r
func LoadYAML(r io.Reader, rules Rules) (*Library, error) {
	var file libraryFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, eris.Wrap(err, "could not decode deck library")
	}

	lib := NewLibrary(rules)
	lib.AddCards(file.Cards...)
	for name, cards := range file.Decks {
		lib.AddDeck(name, cards)
	}

	return lib, nil
}

// LoadFile reads a library from the YAML file at path
func LoadFile(path string, rules Rules) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "could not open deck library %s", path)
	}
	defer f.Close()

	return LoadYAML(f, rules)
}

// Rules returns the rules decks are built with
func (l *Library) Rules() Rules {
	return l.rules
}

// AddCards adds cards to the catalogue
func (l *Library) AddCards(cards ...Card) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, c := range cards {
		l.catalogue[c.Name] = c
	}
}

// AddDeck adds or replaces a deck definition
func (l *Library) AddDeck(name string, cards map[string]int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.decks[name] = copyCounts(cards)
}

// Catalogue returns every known card
func (l *Library) Catalogue() map[string]Card {
	l.mu.RLock()
	defer l.mu.RUnlock()

	cat := make(map[string]Card, len(l.catalogue))
	for name, c := range l.catalogue {
		cat[name] = c
	}
	return cat
}

func (l *Library) ListDecks(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.decks))
	for name := range l.decks {
		names = append(names, name)
	}
	return names, nil
}

func (l *Library) GetDeck(ctx context.Context, name string) (map[string]int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	cards, ok := l.decks[name]
	if !ok {
		return nil, ErrFnDeckNotFound(name)
	}
	return copyCounts(cards), nil
}

func (l *Library) BuildDeck(ctx context.Context, owner, name string) (*Deck, error) {
	def, err := l.GetDeck(ctx, name)
	if err != nil {
		return nil, err
	}
	return Build(owner, name, def, l.Catalogue(), l.rules)
}

func copyCounts(cards map[string]int) map[string]int {
	c := make(map[string]int, len(cards))
	for name, count := range cards {
		c[name] = count
	}
	return c
}
