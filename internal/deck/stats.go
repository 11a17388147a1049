package deck

import (
	"strings"

	"github.com/arcanaland/cardsmith/internal/card"
)

// Stats counts cards per category. Total is always the sum of the others.
type Stats struct {
	Total     int
	Statement int
	Object    int
	Verb      int
}

// Stats counts the cards in the deck.
func (d *Deck) Stats() Stats {
	var s Stats
	for _, c := range d.cards {
		switch c.Category() {
		case card.Statement:
			s.Statement++
		case card.Object:
			s.Object++
		case card.Verb:
			s.Verb++
		}
	}
	s.Total = s.Statement + s.Object + s.Verb
	return s
}

// Match is a search hit paired with its current id.
type Match struct {
	ID   int
	Card card.Card
}

// SearchResult holds up to limit matches and the number of matches found.
type SearchResult struct {
	Matches []Match
	Total   int
}

// Truncated reports whether more cards matched than were returned.
func (r SearchResult) Truncated() bool {
	return r.Total > len(r.Matches)
}

// Search returns cards whose text contains query, ignoring case. At most limit
// matches are kept, in id order; Total counts all of them.
func (d *Deck) Search(query string, limit int) SearchResult {
	q := strings.ToLower(query)
	var res SearchResult
	for i, c := range d.cards {
		if !strings.Contains(strings.ToLower(c.Text()), q) {
			continue
		}
		res.Total++
		if len(res.Matches) < limit {
			res.Matches = append(res.Matches, Match{ID: i, Card: c})
		}
	}
	return res
}
