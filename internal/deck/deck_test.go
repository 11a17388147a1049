package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/cardsmith/internal/card"
	apperrors "github.com/arcanaland/cardsmith/internal/errors"
)

func mustCard(t *testing.T, category, text string) card.Card {
	t.Helper()
	c, err := card.New(category, text)
	require.NoError(t, err)
	return c
}

func texts(d *Deck) []string {
	var out []string
	for _, c := range d.Cards() {
		out = append(out, c.Text())
	}
	return out
}

func filled(t *testing.T, words ...string) *Deck {
	t.Helper()
	d := New("test")
	for _, w := range words {
		_, err := d.Add(mustCard(t, "OBJECT", w))
		require.NoError(t, err)
	}
	return d
}

func TestNormalizeName(t *testing.T) {
	n, err := NormalizeName("  Party ")
	require.NoError(t, err)
	assert.Equal(t, "party", n)

	for _, bad := range []string{"", "   ", "two words"} {
		_, err := NormalizeName(bad)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidDeckName), bad)
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	d := filled(t, "cheese")

	_, err := d.Add(mustCard(t, "object", "cheese"))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeDuplicateCard))
	assert.Equal(t, 1, d.Len())

	// Same text in another category is a different card.
	id, err := d.Add(mustCard(t, "VERB", "cheese"))
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestDeleteShiftsLaterIDs(t *testing.T) {
	d := filled(t, "a", "b", "c", "d")

	removed, err := d.Delete(1)
	require.NoError(t, err)
	assert.Equal(t, "b", removed.Text())
	assert.Equal(t, []string{"a", "c", "d"}, texts(d))

	c, err := d.Card(1)
	require.NoError(t, err)
	assert.Equal(t, "c", c.Text())
}

func TestDeleteOutOfRange(t *testing.T) {
	d := filled(t, "a", "b")

	for _, id := range []int{-1, 2, 100} {
		_, err := d.Delete(id)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidID))
	}
	assert.Equal(t, []string{"a", "b"}, texts(d))

	_, err := New("empty").Delete(0)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidID))
}

func TestReplaceSwapsWithLast(t *testing.T) {
	d := filled(t, "a", "b", "c", "d")

	res, err := d.Replace(1, mustCard(t, "OBJECT", "x"))
	require.NoError(t, err)

	assert.Equal(t, 4, d.Len())
	assert.Equal(t, []string{"a", "d", "c", "x"}, texts(d))
	assert.Equal(t, ReplaceResult{ID: 3, Moved: true, MovedFrom: 3, MovedTo: 1}, res)
}

func TestReplaceLastCard(t *testing.T) {
	d := filled(t, "a", "b")

	res, err := d.Replace(1, mustCard(t, "OBJECT", "x"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "x"}, texts(d))
	assert.Equal(t, ReplaceResult{ID: 1}, res)
}

func TestReplaceDuplicateCheckSkipsReplacedCard(t *testing.T) {
	d := filled(t, "a", "b", "c")

	_, err := d.Replace(0, mustCard(t, "OBJECT", "a"))
	require.NoError(t, err)
	assert.Equal(t, 3, d.Len())

	_, err = d.Replace(0, mustCard(t, "OBJECT", "b"))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeDuplicateCard))

	_, err = d.Replace(3, mustCard(t, "OBJECT", "z"))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidID))
}

func TestStats(t *testing.T) {
	d := New("s")
	for _, c := range []card.Card{
		mustCard(t, "STATEMENT", "I love _"),
		mustCard(t, "STATEMENT", "_ ate _"),
		mustCard(t, "OBJECT", "a goat"),
		mustCard(t, "VERB", "eating"),
	} {
		_, err := d.Add(c)
		require.NoError(t, err)
	}

	s := d.Stats()
	assert.Equal(t, Stats{Total: 4, Statement: 2, Object: 1, Verb: 1}, s)
	assert.Equal(t, s.Total, s.Statement+s.Object+s.Verb)
}

func TestSearch(t *testing.T) {
	d := filled(t, "Red apple", "green APPLE", "pear", "apple pie")

	res := d.Search("apple", 10)
	assert.Equal(t, 3, res.Total)
	assert.False(t, res.Truncated())
	require.Len(t, res.Matches, 3)
	assert.Equal(t, 0, res.Matches[0].ID)
	assert.Equal(t, 1, res.Matches[1].ID)
	assert.Equal(t, 3, res.Matches[2].ID)

	res = d.Search("APPLE", 2)
	assert.Equal(t, 3, res.Total)
	assert.Len(t, res.Matches, 2)
	assert.True(t, res.Truncated())

	res = d.Search("kiwi", 10)
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Matches)
}

func TestCloneIsIndependent(t *testing.T) {
	d := filled(t, "a", "b")
	c := d.Clone()

	_, err := c.Delete(0)
	require.NoError(t, err)
	c.Public = true

	assert.Equal(t, 2, d.Len())
	assert.False(t, d.Public)
}

func TestVisible(t *testing.T) {
	d := New("v")
	assert.False(t, d.Visible(false))
	assert.True(t, d.Visible(true))
	d.Public = true
	assert.True(t, d.Visible(false))
}
