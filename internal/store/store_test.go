package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/arcanaland/cardsmith/internal/card"
	"github.com/arcanaland/cardsmith/internal/deck"
	apperrors "github.com/arcanaland/cardsmith/internal/errors"
)

func openTemp(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "decks.json")
	s, err := Open(path, opts...)
	require.NoError(t, err)
	return s, path
}

func sampleDeck(t *testing.T, name string, public bool, cards ...[2]string) *deck.Deck {
	t.Helper()
	d := deck.New(name)
	d.Public = public
	for _, c := range cards {
		cc, err := card.New(c[0], c[1])
		require.NoError(t, err)
		_, err = d.Add(cc)
		require.NoError(t, err)
	}
	return d
}

// flatten turns decks into comparable plain values.
func flatten(decks map[string]*deck.Deck) map[string]DeckDocument {
	out := make(map[string]DeckDocument, len(decks))
	for name, d := range decks {
		dd := DeckDocument{Public: d.Public, Cards: []CardDocument{}}
		for _, c := range d.Cards() {
			dd.Cards = append(dd.Cards, CardDocument{string(c.Category()), c.Text()})
		}
		out[name] = dd
	}
	return out
}

func TestOpenCreatesEmptyDocument(t *testing.T) {
	s, path := openTemp(t)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version": 1, "decks": {}}`, string(data))
	assert.Empty(t, s.Names())
	assert.Equal(t, data, s.LastSaved())
}

func TestRoundTrip(t *testing.T) {
	s, path := openTemp(t)

	require.NoError(t, s.Create("party", sampleDeck(t, "party", false,
		[2]string{"statement", "I like _"},
		[2]string{"OBJECT", "a goat"},
		[2]string{"verb", "dancing"},
	)))
	require.NoError(t, s.Create("kids", sampleDeck(t, "kids", true,
		[2]string{"VERB", "jumping"},
	)))

	want := flatten(s.Snapshot())

	reopened, err := Open(path)
	require.NoError(t, err)
	got := flatten(reopened.Snapshot())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	// A second save of the loaded state is byte-identical.
	require.NoError(t, reopened.Save())
	assert.Equal(t, s.LastSaved(), reopened.LastSaved())
	assert.Equal(t, []string{"kids", "party"}, reopened.Names())
	assert.Equal(t, "STATEMENT", got["party"].Cards[0][0])
}

func TestDecodeLegacyDocument(t *testing.T) {
	legacy := `{
    "party": {
        "__class": "Deck",
        "cards": [["STATEMENT", "I like _"], ["OBJECT", "a goat"]]
    },
    "open": {"__class": "Deck", "cards": [], "public": true}
}`
	decks, err := Decode([]byte(legacy))
	require.NoError(t, err)

	require.Contains(t, decks, "party")
	assert.False(t, decks["party"].Public)
	assert.Equal(t, 2, decks["party"].Len())
	assert.True(t, decks["open"].Public)

	_, err = Decode([]byte(`{"x": {"__class": "Other", "cards": []}}`))
	assert.Error(t, err)
}

func TestDecodeNormalizesCategories(t *testing.T) {
	legacy := `{"party": {"__class": "Deck", "cards": [["object", "a goat"], [" Verb", "run"], ["NOUN", "kept"]]}}`
	decks, err := Decode([]byte(legacy))
	require.NoError(t, err)

	d := decks["party"]
	require.Equal(t, 3, d.Len())
	assert.Equal(t, deck.Stats{Total: 2, Object: 1, Verb: 1}, d.Stats())

	cards := d.Cards()
	assert.Equal(t, card.Object, cards[0].Category())
	assert.Equal(t, card.Verb, cards[1].Category())
	assert.Equal(t, card.Category("NOUN"), cards[2].Category())
}

func TestDecodeRejectsNewerVersion(t *testing.T) {
	_, err := Decode([]byte(`{"version": 2, "decks": {}}`))
	assert.ErrorContains(t, err, "unsupported")
}

func TestLegacyDocumentIsRewrittenVersioned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decks.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": {"__class": "Deck", "cards": [["VERB", "run"]]}}`), 0644))

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"decks":{"a":{"cards":[["VERB","run"]],"public":false}}}`, string(data))
}

func TestCreateExistingFails(t *testing.T) {
	s, _ := openTemp(t)
	require.NoError(t, s.Create("a", deck.New("a")))
	before := s.LastSaved()

	err := s.Create("a", deck.New("a"))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNameTaken))
	assert.Equal(t, before, s.LastSaved())
}

func TestRemove(t *testing.T) {
	s, _ := openTemp(t)
	require.NoError(t, s.Create("a", deck.New("a")))

	require.NoError(t, s.Remove("a"))
	_, ok := s.Get("a")
	assert.False(t, ok)

	err := s.Remove("a")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnknownDeck))
}

func TestUpdateUnknownDeck(t *testing.T) {
	s, _ := openTemp(t)
	err := s.Update("nope", func(*deck.Deck) error { return nil })
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnknownDeck))
}

func TestUpdateFailureLeavesDeckUnchanged(t *testing.T) {
	s, _ := openTemp(t)
	require.NoError(t, s.Create("a", sampleDeck(t, "a", false, [2]string{"VERB", "run"})))

	err := s.Update("a", func(d *deck.Deck) error {
		_, _ = d.Delete(0)
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")

	d, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, d.Len())
}

func TestFailedSaveRollsBack(t *testing.T) {
	fail := false
	s, path := openTemp(t, WithWriter(func(p string, data []byte) error {
		if fail {
			return errors.New("disk full")
		}
		return WriteAtomic(p, data)
	}))
	require.NoError(t, s.Create("a", sampleDeck(t, "a", false, [2]string{"VERB", "run"})))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	fail = true
	err = s.Update("a", func(d *deck.Deck) error {
		c, err := card.New("VERB", "walk")
		require.NoError(t, err)
		_, err = d.Add(c)
		return err
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodePersistenceFailed))
	assert.ErrorContains(t, err, "disk full")

	err = s.Create("b", deck.New("b"))
	assert.True(t, apperrors.IsCode(err, apperrors.CodePersistenceFailed))

	d, _ := s.Get("a")
	assert.Equal(t, 1, d.Len())
	assert.Equal(t, []string{"a"}, s.Names())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, before, s.LastSaved())
}

func TestWriteAtomicLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "decks.json")

	require.NoError(t, WriteAtomic(path, []byte("one")))
	require.NoError(t, WriteAtomic(path, []byte("two")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	s, path := openTemp(t)
	require.NoError(t, s.Create("a", deck.New("a")))

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		text := "object " + string(rune('a'+i))
		g.Go(func() error {
			return s.Update("a", func(d *deck.Deck) error {
				c, err := card.New("OBJECT", text)
				if err != nil {
					return err
				}
				_, err = d.Add(c)
				return err
			})
		})
	}
	require.NoError(t, g.Wait())

	d, _ := s.Get("a")
	assert.Equal(t, 20, d.Stats().Total)

	reopened, err := Open(path)
	require.NoError(t, err)
	d, _ = reopened.Get("a")
	assert.Equal(t, 20, d.Len())
}
