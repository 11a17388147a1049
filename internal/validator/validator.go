package validator

import (
	"fmt"
	"sort"

	"github.com/arcanaland/cardsmith/internal/card"
	"github.com/arcanaland/cardsmith/internal/deck"
	apperrors "github.com/arcanaland/cardsmith/internal/errors"
)

type ValidationResults struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether no errors were found.
func (r ValidationResults) Valid() bool {
	return len(r.Errors) == 0
}

// Validator audits decks that were loaded without running the admission rules.
type Validator struct {
	Decks   map[string]*deck.Deck
	Results ValidationResults
}

func NewValidator(decks map[string]*deck.Deck) *Validator {
	return &Validator{
		Decks:   decks,
		Results: ValidationResults{},
	}
}

// Validate checks every deck in name order.
func (v *Validator) Validate() ValidationResults {
	names := make([]string, 0, len(v.Decks))
	for name := range v.Decks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		d := v.Decks[name]
		v.validateName(name)
		v.validateCards(name, d)
		v.validateDuplicates(name, d)
		if d.Len() == 0 {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("deck %s has no cards", name))
		}
	}

	return v.Results
}

// validateName checks the key is in the form the editor produces
func (v *Validator) validateName(name string) {
	normalized, err := deck.NormalizeName(name)
	if err != nil {
		v.Results.Errors = append(v.Results.Errors,
			fmt.Sprintf("deck name %q is not valid", name))
		return
	}
	if normalized != name {
		v.Results.Warnings = append(v.Results.Warnings,
			fmt.Sprintf("deck name %q is not lower case and cannot be addressed by commands", name))
	}
}

// validateCards re-runs the admission rules on each card
func (v *Validator) validateCards(name string, d *deck.Deck) {
	for id, c := range d.Cards() {
		rebuilt, err := card.New(string(c.Category()), c.Text())
		if err != nil {
			v.Results.Errors = append(v.Results.Errors,
				fmt.Sprintf("deck %s card %d: %s (%s)", name, id, describe(err), c))
			continue
		}
		if !rebuilt.Equal(c) {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("deck %s card %d: stored as %s, normalizes to %s", name, id, c, rebuilt))
		}
	}
}

// validateDuplicates reports repeated (category, text) pairs
func (v *Validator) validateDuplicates(name string, d *deck.Deck) {
	seen := make(map[card.Card]int)
	for id, c := range d.Cards() {
		if first, ok := seen[c]; ok {
			v.Results.Errors = append(v.Results.Errors,
				fmt.Sprintf("deck %s card %d duplicates card %d (%s)", name, id, first, c))
			continue
		}
		seen[c] = id
	}
}

func describe(err error) string {
	if e := apperrors.As(err); e != nil {
		return e.Title() + ": " + e.Message
	}
	return err.Error()
}
