// Package menu serves the per-stall menu cards.
package menu

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"foodhub/internal/stall"
)

//go:embed menu.yaml
var defaultCatalog []byte

// Item is one dish on a menu card.
type Item struct {
	Name  string `yaml:"name" json:"name"`
	Price int    `yaml:"price" json:"price"`
}

// Card is a stall's menu.
type Card struct {
	Stall   stall.Stall `yaml:"-" json:"-"`
	Tagline string      `yaml:"tagline" json:"tagline"`
	Items   []Item      `yaml:"items" json:"items"`
}

// Catalog holds the menu card for each known stall.
type Catalog struct {
	cards map[stall.Stall]Card
}

// Default returns the sample catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a YAML catalog keyed by stall key. Unknown stall keys are
// rejected so typos surface instead of silently hiding a card.
func Parse(data []byte) (*Catalog, error) {
	var raw map[string]Card
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse menu catalog: %w", err)
	}
	cat := &Catalog{cards: make(map[stall.Stall]Card, len(raw))}
	for key, card := range raw {
		s := stall.Parse(key)
		if !s.Valid() {
			return nil, fmt.Errorf("menu catalog: unknown stall %q", key)
		}
		for i, item := range card.Items {
			if strings.TrimSpace(item.Name) == "" {
				return nil, fmt.Errorf("menu catalog: %s item %d has no name", key, i)
			}
			if item.Price < 0 {
				return nil, fmt.Errorf("menu catalog: %s item %q has negative price", key, item.Name)
			}
		}
		card.Stall = s
		cat.cards[s] = card
	}
	return cat, nil
}

// For returns the card for s. The boolean is false for unknown stalls or
// stalls without a card.
func (c *Catalog) For(s stall.Stall) (Card, bool) {
	if c == nil || !s.Valid() {
		return Card{}, false
	}
	card, ok := c.cards[s]
	if !ok {
		return Card{}, false
	}
	items := make([]Item, len(card.Items))
	copy(items, card.Items)
	card.Items = items
	return card, true
}
