package card

import (
	"fmt"
	"strings"

	apperrors "github.com/arcanaland/cardsmith/internal/errors"
)

// GapMarker marks a fill-in blank in statement text.
const GapMarker = "_"

// MaxGaps is the most gap markers a single card may hold.
const MaxGaps = 3

// Category is the kind of fragment a card carries
type Category string

const (
	Statement Category = "STATEMENT"
	Object    Category = "OBJECT"
	Verb      Category = "VERB"
)

// Categories lists the valid categories in display order.
var Categories = []Category{Statement, Object, Verb}

// ParseCategory normalizes s to upper case and checks it is a known category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case Statement, Object, Verb:
		return c, nil
	}
	names := make([]string, len(Categories))
	for i, known := range Categories {
		names[i] = strings.ToLower(string(known))
	}
	return "", apperrors.WithMetadata(apperrors.CodeInvalidCategory,
		fmt.Sprintf("%q is not a category, use one of %s", s, strings.Join(names, ", ")),
		map[string]string{"category": s})
}

// Card is an immutable (category, text) pair. Build one with New.
type Card struct {
	category Category
	text     string
}

// New validates category and text and returns the card.
//
// Rules are checked in order and the first failure wins: unknown category,
// more than MaxGaps gaps, gaps outside a statement, a statement without a gap,
// empty text, text spanning several lines or holding a tab. Duplicate
// detection needs the target deck and lives there.
func New(category, text string) (Card, error) {
	c, err := ParseCategory(category)
	if err != nil {
		return Card{}, err
	}

	text = strings.TrimSpace(text)
	gaps := strings.Count(text, GapMarker)
	if gaps > MaxGaps {
		return Card{}, apperrors.New(apperrors.CodeTooManyGaps,
			fmt.Sprintf("Can have at most %d gaps, found %d", MaxGaps, gaps))
	}
	if gaps > 0 && c != Statement {
		return Card{}, apperrors.New(apperrors.CodeGapsOutsideStatement,
			"Can only have gaps in statements")
	}
	if gaps == 0 && c == Statement {
		return Card{}, apperrors.New(apperrors.CodeMissingGap,
			"Need at least one gap in statements")
	}
	if text == "" {
		return Card{}, apperrors.New(apperrors.CodeEmptyText, "Card text cannot be empty")
	}
	// Exports hold one card per line with tab separated fields
	if strings.ContainsAny(text, "\t\n\r") {
		return Card{}, apperrors.New(apperrors.CodeInvalidText,
			"Card text must be a single line without tabs")
	}

	return Card{category: c, text: text}, nil
}

// Category returns the card category.
func (c Card) Category() Category { return c.category }

// Text returns the card text.
func (c Card) Text() string { return c.text }

// Gaps counts the gap markers in the text.
func (c Card) Gaps() int { return strings.Count(c.text, GapMarker) }

// Equal reports whether both cards carry the same category and text.
func (c Card) Equal(o Card) bool {
	return c.category == o.category && c.text == o.text
}

func (c Card) String() string {
	return fmt.Sprintf("[%s] %s", c.category, c.text)
}

// Restore rebuilds a card from persisted fields without running the admission
// rules. Cards stored by older versions may not satisfy them; the validator
// package reports those.
func Restore(category Category, text string) Card {
	return Card{category: category, text: text}
}
