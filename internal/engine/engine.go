// Package engine implements the deck editing commands.
//
// Every operation resolves the deck through the store, checks the caller's
// permissions and the deck's visibility, and persists mutations before
// returning. Card ids are positions in the deck: Delete and Replace renumber
// other cards, and their results say so through IDsChanged.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/arcanaland/cardsmith/internal/card"
	"github.com/arcanaland/cardsmith/internal/deck"
	apperrors "github.com/arcanaland/cardsmith/internal/errors"
	"github.com/arcanaland/cardsmith/internal/interact"
	"github.com/arcanaland/cardsmith/internal/store"
)

// DefaultResultsLimit is the number of search hits returned when no limit is configured.
const DefaultResultsLimit = 10

// Admins resolves whether a caller may run admin-only commands.
type Admins interface {
	IsAdmin(caller string) bool
}

// AdminList is a static allow-list of caller ids.
type AdminList []string

// IsAdmin reports whether caller is in the list.
func (l AdminList) IsAdmin(caller string) bool {
	for _, id := range l {
		if id == caller {
			return true
		}
	}
	return false
}

// Option configures an Engine.
type Option func(*Engine)

// WithResultsLimit caps the number of search results.
func WithResultsLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}

// WithPrompter makes RemoveDeck ask the caller for confirmation.
func WithPrompter(p interact.Prompter) Option {
	return func(e *Engine) { e.prompter = p }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithUsagePrefix sets the command text shown in syntax reminders, e.g. ".kgf".
func WithUsagePrefix(prefix string) Option {
	return func(e *Engine) { e.prefix = prefix }
}

// Engine runs deck commands against a store.
type Engine struct {
	store    *store.Store
	admins   Admins
	limit    int
	prompter interact.Prompter
	prefix   string
	log      *zap.Logger
}

// New creates an engine.
func New(s *store.Store, admins Admins, opts ...Option) *Engine {
	e := &Engine{
		store:  s,
		admins: admins,
		limit:  DefaultResultsLimit,
		prefix: ".kgf",
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StatsResult holds the category counts of a deck.
type StatsResult struct {
	Deck   string
	Stats  deck.Stats
	Public bool
}

// AddResult reports where a new card was placed.
type AddResult struct {
	Deck string
	ID   int
	Card card.Card
}

// ReplaceResult reports the new layout after Replace. The replaced id always
// refers to a different card afterwards, so IDsChanged is always set.
type ReplaceResult struct {
	deck.ReplaceResult
	Deck       string
	Card       card.Card
	IDsChanged bool
}

// DeleteResult reports the removed card. Shifted counts the cards whose id
// went down by one.
type DeleteResult struct {
	Deck       string
	ID         int
	Removed    card.Card
	Shifted    int
	IDsChanged bool
}

// SearchResult is a bounded list of matches with the true match count.
type SearchResult struct {
	deck.SearchResult
	Deck  string
	Query string
	Limit int
}

// List returns every deck name in alphabetical order.
func (e *Engine) List(ctx context.Context, caller string) []string {
	return e.store.Names()
}

// Create adds an empty private deck. Admin only.
func (e *Engine) Create(ctx context.Context, caller, name string) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	n, err := deck.NormalizeName(name)
	if err != nil {
		return err
	}
	if err := e.store.Create(n, deck.New(n)); err != nil {
		return err
	}
	e.log.Info("Deck created", zap.String("caller", caller), zap.String("deck", n))
	return nil
}

// RemoveDeck deletes a deck. Admin only. When a prompter is configured and
// confirmed is false, the caller must answer with the deck name; a timeout or
// another answer leaves the store untouched.
func (e *Engine) RemoveDeck(ctx context.Context, caller, name string, confirmed bool) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	n, err := deck.NormalizeName(name)
	if err != nil {
		return err
	}
	if _, ok := e.store.Get(n); !ok {
		return unknownDeck(n)
	}

	if !confirmed && e.prompter != nil {
		answer, err := e.prompter.Ask(ctx, caller,
			fmt.Sprintf("Type `%s` to confirm removing the deck and all of its cards.", n))
		if err != nil {
			return err
		}
		if answer != n {
			return apperrors.New(apperrors.CodeCancelled, "The deck was not removed.")
		}
	}

	if err := e.store.Remove(n); err != nil {
		return err
	}
	e.log.Info("Deck removed", zap.String("caller", caller), zap.String("deck", n))
	return nil
}

// Stats counts the cards in a deck.
func (e *Engine) Stats(ctx context.Context, caller, name string) (StatsResult, error) {
	var res StatsResult
	err := e.view(caller, name, func(d *deck.Deck) error {
		res = StatsResult{Deck: d.Name, Stats: d.Stats(), Public: d.Public}
		return nil
	})
	return res, err
}

// Add validates a new card and appends it.
func (e *Engine) Add(ctx context.Context, caller, name, category, text string) (AddResult, error) {
	var res AddResult
	err := e.update(caller, name, func(d *deck.Deck) error {
		c, err := card.New(category, text)
		if err != nil {
			return err
		}
		id, err := d.Add(c)
		if err != nil {
			return err
		}
		res = AddResult{Deck: d.Name, ID: id, Card: c}
		return nil
	})
	return res, err
}

// Replace validates a new card and puts it in place of the card at id, using
// the deck's swap-with-last replacement: the former last card moves to id and
// the new card becomes the last card.
func (e *Engine) Replace(ctx context.Context, caller, name string, id int, category, text string) (ReplaceResult, error) {
	var res ReplaceResult
	err := e.update(caller, name, func(d *deck.Deck) error {
		if _, err := d.Card(id); err != nil {
			return err
		}
		c, err := card.New(category, text)
		if err != nil {
			return err
		}
		r, err := d.Replace(id, c)
		if err != nil {
			return err
		}
		res = ReplaceResult{ReplaceResult: r, Deck: d.Name, Card: c, IDsChanged: true}
		return nil
	})
	return res, err
}

// Delete removes the card at id. Every later card moves down by one.
func (e *Engine) Delete(ctx context.Context, caller, name string, id int) (DeleteResult, error) {
	var res DeleteResult
	err := e.update(caller, name, func(d *deck.Deck) error {
		removed, err := d.Delete(id)
		if err != nil {
			return err
		}
		res = DeleteResult{
			Deck:       d.Name,
			ID:         id,
			Removed:    removed,
			Shifted:    d.Len() - id,
			IDsChanged: true,
		}
		return nil
	})
	return res, err
}

// Search finds cards whose text contains query, ignoring case.
func (e *Engine) Search(ctx context.Context, caller, name, query string) (SearchResult, error) {
	var res SearchResult
	err := e.view(caller, name, func(d *deck.Deck) error {
		res = SearchResult{
			SearchResult: d.Search(query, e.limit),
			Deck:         d.Name,
			Query:        query,
			Limit:        e.limit,
		}
		return nil
	})
	return res, err
}

// Card returns the card at id.
func (e *Engine) Card(ctx context.Context, caller, name string, id int) (card.Card, error) {
	var c card.Card
	err := e.view(caller, name, func(d *deck.Deck) error {
		var err error
		c, err = d.Card(id)
		return err
	})
	return c, err
}

// Download renders the deck for people to read. The output is not a playable deck.
func (e *Engine) Download(ctx context.Context, caller, name string) (File, error) {
	var f File
	err := e.view(caller, name, func(d *deck.Deck) error {
		f = readableFile(d)
		return nil
	})
	return f, err
}

// Export renders the deck as playable tab separated data.
func (e *Engine) Export(ctx context.Context, caller, name string) (File, error) {
	var f File
	err := e.view(caller, name, func(d *deck.Deck) error {
		f = exportFile(d)
		return nil
	})
	return f, err
}

func (e *Engine) isAdmin(caller string) bool {
	return e.admins != nil && e.admins.IsAdmin(caller)
}

func (e *Engine) requireAdmin(caller string) error {
	if !e.isAdmin(caller) {
		return apperrors.New(apperrors.CodeInsufficientPermissions,
			"You need to be whitelisted in order to do this.")
	}
	return nil
}

func (e *Engine) checkVisible(caller string, d *deck.Deck) error {
	if !d.Visible(e.isAdmin(caller)) {
		return apperrors.WithMetadata(apperrors.CodePrivateDeck, "This deck is private.",
			map[string]string{"deck": d.Name})
	}
	return nil
}

// view runs fn on the named deck after the visibility check.
func (e *Engine) view(caller, name string, fn func(d *deck.Deck) error) error {
	n, err := deck.NormalizeName(name)
	if err != nil {
		return err
	}
	return e.store.View(n, func(d *deck.Deck) error {
		if err := e.checkVisible(caller, d); err != nil {
			return err
		}
		return fn(d)
	})
}

// update runs fn on a copy of the named deck after the visibility check and
// persists the copy when fn succeeds.
func (e *Engine) update(caller, name string, fn func(d *deck.Deck) error) error {
	n, err := deck.NormalizeName(name)
	if err != nil {
		return err
	}
	return e.store.Update(n, func(d *deck.Deck) error {
		if err := e.checkVisible(caller, d); err != nil {
			return err
		}
		return fn(d)
	})
}

func unknownDeck(name string) error {
	return apperrors.WithMetadata(apperrors.CodeUnknownDeck,
		fmt.Sprintf("There is no deck called %s.", name),
		map[string]string{"deck": name})
}
