package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/arcanaland/cardsmith/internal/card"
	"github.com/arcanaland/cardsmith/internal/deck"
)

// SchemaVersion is the version written into every saved document.
const SchemaVersion = 1

// legacyClassTag marks deck objects in the unversioned format.
const legacyClassTag = "Deck"

// Document is the persisted form of the store:
//
//	{
//	  "version": 1,
//	  "decks": {
//	    "party": {"cards": [["STATEMENT", "I like _"]], "public": false}
//	  }
//	}
//
// The deck name is the map key. Cards are [category, text] pairs in id order.
type Document struct {
	Version int                     `json:"version"`
	Decks   map[string]DeckDocument `json:"decks"`
}

// DeckDocument is one deck inside a Document.
type DeckDocument struct {
	Cards  []CardDocument `json:"cards"`
	Public bool           `json:"public"`
}

// CardDocument is a [category, text] pair.
type CardDocument [2]string

// legacyDeck is a deck object from the unversioned format, where the top level
// maps deck names directly to objects tagged with "__class".
type legacyDeck struct {
	Class  string         `json:"__class"`
	Cards  []CardDocument `json:"cards"`
	Public *bool          `json:"public"`
}

// Encode serializes decks into a versioned document.
func Encode(decks map[string]*deck.Deck) ([]byte, error) {
	doc := Document{
		Version: SchemaVersion,
		Decks:   make(map[string]DeckDocument, len(decks)),
	}
	for name, d := range decks {
		cards := make([]CardDocument, 0, d.Len())
		for _, c := range d.Cards() {
			cards = append(cards, CardDocument{string(c.Category()), c.Text()})
		}
		doc.Decks[name] = DeckDocument{Cards: cards, Public: d.Public}
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("error encoding decks: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a versioned or legacy document.
func Decode(data []byte) (map[string]*deck.Deck, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("error parsing deck document: %w", err)
	}

	if isVersioned(top) {
		return decodeVersioned(data)
	}
	return decodeLegacy(top)
}

// ReadDocument reads and decodes the document at path.
func ReadDocument(path string) (map[string]*deck.Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func isVersioned(top map[string]json.RawMessage) bool {
	raw, ok := top["version"]
	if !ok {
		return false
	}
	var v int
	return json.Unmarshal(raw, &v) == nil
}

func decodeVersioned(data []byte) (map[string]*deck.Deck, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("error parsing deck document: %w", err)
	}
	if doc.Version > SchemaVersion {
		return nil, fmt.Errorf("unsupported deck document version %d (supported: %d)", doc.Version, SchemaVersion)
	}

	decks := make(map[string]*deck.Deck, len(doc.Decks))
	for name, dd := range doc.Decks {
		decks[name] = buildDeck(name, dd.Cards, dd.Public)
	}
	return decks, nil
}

func decodeLegacy(top map[string]json.RawMessage) (map[string]*deck.Deck, error) {
	decks := make(map[string]*deck.Deck, len(top))
	for name, raw := range top {
		var ld legacyDeck
		if err := json.Unmarshal(raw, &ld); err != nil {
			return nil, fmt.Errorf("error parsing deck %s: %w", name, err)
		}
		if ld.Class != legacyClassTag {
			return nil, fmt.Errorf("deck %s: unexpected class %q", name, ld.Class)
		}
		public := false
		if ld.Public != nil {
			public = *ld.Public
		}
		decks[name] = buildDeck(name, ld.Cards, public)
	}
	return decks, nil
}

// buildDeck restores cards as stored, except that known categories are
// brought to upper case so counts by category match the card count.
func buildDeck(name string, cards []CardDocument, public bool) *deck.Deck {
	d := deck.New(name)
	d.Public = public
	for _, cd := range cards {
		category := card.Category(cd[0])
		if parsed, err := card.ParseCategory(cd[0]); err == nil {
			category = parsed
		}
		d.Restore(card.Restore(category, cd[1]))
	}
	return d
}
