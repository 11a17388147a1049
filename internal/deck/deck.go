package deck

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/arcanaland/cardsmith/internal/card"
	apperrors "github.com/arcanaland/cardsmith/internal/errors"
)

// Deck is a named, ordered collection of cards.
//
// Card ids are positional: a card's id is its index at the time of the
// query. Delete shifts every later card down by one and Replace moves the
// last card into the freed slot, so ids held by callers are only valid until
// the next structural mutation.
type Deck struct {
	Name   string
	Public bool

	cards []card.Card
}

// New creates an empty deck. Decks start private.
func New(name string) *Deck {
	return &Deck{Name: name}
}

// NormalizeName lower-cases a deck name and rejects empty names or names
// containing whitespace.
func NormalizeName(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" || strings.IndexFunc(n, unicode.IsSpace) >= 0 {
		return "", apperrors.WithMetadata(apperrors.CodeInvalidDeckName,
			fmt.Sprintf("%q is not a valid deck name", name),
			map[string]string{"deck": name})
	}
	return n, nil
}

// Len returns the number of cards.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the cards in id order.
func (d *Deck) Cards() []card.Card {
	out := make([]card.Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Card returns the card at id.
func (d *Deck) Card(id int) (card.Card, error) {
	if err := d.checkID(id); err != nil {
		return card.Card{}, err
	}
	return d.cards[id], nil
}

// Add appends c unless an equal card already exists.
func (d *Deck) Add(c card.Card) (int, error) {
	if d.indexOf(c, -1) >= 0 {
		return -1, d.duplicate(c)
	}
	d.cards = append(d.cards, c)
	return len(d.cards) - 1, nil
}

// Restore appends c without the duplicate check. Used when rebuilding a deck
// from its persisted form.
func (d *Deck) Restore(c card.Card) {
	d.cards = append(d.cards, c)
}

// ReplaceResult describes where cards ended up after Replace.
type ReplaceResult struct {
	// ID is the new position of the replacement card.
	ID int
	// Moved is true when the former last card was moved into the replaced slot.
	Moved bool
	// MovedFrom and MovedTo are the old and new ids of the moved card.
	MovedFrom int
	MovedTo   int
}

// Replace removes the card at id by swapping it with the last card and then
// overwrites the last slot with c. The former last card takes id; c becomes the
// last card. The card count is unchanged. The new card is never found at id
// afterwards unless id was the last index; use the returned ID.
//
// The duplicate check ignores the card being replaced, so replacing a card
// with itself succeeds.
func (d *Deck) Replace(id int, c card.Card) (ReplaceResult, error) {
	if err := d.checkID(id); err != nil {
		return ReplaceResult{}, err
	}
	if d.indexOf(c, id) >= 0 {
		return ReplaceResult{}, d.duplicate(c)
	}

	last := len(d.cards) - 1
	d.swapWithLast(id)
	d.cards[last] = c

	res := ReplaceResult{ID: last}
	if id != last {
		res.Moved = true
		res.MovedFrom = last
		res.MovedTo = id
	}
	return res, nil
}

// Delete removes the card at id, keeping the order of the remaining cards.
// Every card after id moves down by one.
func (d *Deck) Delete(id int) (card.Card, error) {
	if err := d.checkID(id); err != nil {
		return card.Card{}, err
	}
	removed := d.cards[id]
	d.cards = append(d.cards[:id], d.cards[id+1:]...)
	return removed, nil
}

// Visible reports whether a caller may read or edit the deck.
func (d *Deck) Visible(admin bool) bool {
	return d.Public || admin
}

// Clone returns a deep copy of the deck.
func (d *Deck) Clone() *Deck {
	return &Deck{
		Name:   d.Name,
		Public: d.Public,
		cards:  d.Cards(),
	}
}

func (d *Deck) swapWithLast(i int) {
	last := len(d.cards) - 1
	d.cards[i], d.cards[last] = d.cards[last], d.cards[i]
}

func (d *Deck) indexOf(c card.Card, skip int) int {
	for i, have := range d.cards {
		if i != skip && have.Equal(c) {
			return i
		}
	}
	return -1
}

func (d *Deck) checkID(id int) error {
	if id < 0 || id >= len(d.cards) {
		var msg string
		if len(d.cards) == 0 {
			msg = fmt.Sprintf("Deck %s has no cards, so there is no card %d", d.Name, id)
		} else {
			msg = fmt.Sprintf("Deck %s has no card %d, valid ids are 0 to %d", d.Name, id, len(d.cards)-1)
		}
		return apperrors.WithMetadata(apperrors.CodeInvalidID, msg, map[string]string{
			"deck": d.Name,
			"id":   strconv.Itoa(id),
		})
	}
	return nil
}

func (d *Deck) duplicate(c card.Card) error {
	return apperrors.WithMetadata(apperrors.CodeDuplicateCard, "Card already existing", map[string]string{
		"deck":     d.Name,
		"category": string(c.Category()),
		"text":     c.Text(),
	})
}
