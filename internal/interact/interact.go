// Package interact lets a running command wait for the caller's next message.
package interact

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/arcanaland/cardsmith/internal/errors"
)

// Prompter asks a caller a question and waits for the answer.
type Prompter interface {
	Ask(ctx context.Context, caller, question string) (string, error)
}

// SayFunc sends text to a caller.
type SayFunc func(caller, text string)

// Inbox routes incoming messages to commands waiting on Ask. The transport
// offers every message to Deliver first and only dispatches it as a command
// when nobody was waiting for it.
type Inbox struct {
	say     SayFunc
	timeout time.Duration
	log     *zap.Logger

	mu      sync.Mutex
	pending map[string]chan string
}

// NewInbox creates an inbox that gives up on a question after timeout.
func NewInbox(say SayFunc, timeout time.Duration, log *zap.Logger) *Inbox {
	if log == nil {
		log = zap.NewNop()
	}
	return &Inbox{
		say:     say,
		timeout: timeout,
		log:     log,
		pending: make(map[string]chan string),
	}
}

// Ask sends question to caller and waits for their next message. It returns
// an INTERACTION_TIMEOUT error when the caller does not answer in time and
// CANCELLED when ctx ends first.
func (in *Inbox) Ask(ctx context.Context, caller, question string) (string, error) {
	ch := make(chan string, 1)

	in.mu.Lock()
	if _, busy := in.pending[caller]; busy {
		in.mu.Unlock()
		return "", apperrors.New(apperrors.CodeCancelled, "Another question is already waiting for your answer.")
	}
	in.pending[caller] = ch
	in.mu.Unlock()

	defer func() {
		in.mu.Lock()
		if in.pending[caller] == ch {
			delete(in.pending, caller)
		}
		in.mu.Unlock()
	}()

	in.say(caller, question)

	ctx, cancel := context.WithTimeout(ctx, in.timeout)
	defer cancel()

	select {
	case answer := <-ch:
		return answer, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			in.log.Debug("Interaction timed out", zap.String("caller", caller))
			return "", apperrors.Wrap(apperrors.CodeInteractionTimeout, "Request timed out.", ctx.Err())
		}
		return "", apperrors.Wrap(apperrors.CodeCancelled, "Request cancelled.", ctx.Err())
	}
}

// Deliver hands text to a pending Ask from caller. It reports whether the
// message was consumed.
func (in *Inbox) Deliver(caller, text string) bool {
	in.mu.Lock()
	ch, ok := in.pending[caller]
	if ok {
		delete(in.pending, caller)
	}
	in.mu.Unlock()

	if !ok {
		return false
	}
	ch <- strings.TrimSpace(text)
	return true
}

// Waiting reports whether caller has an unanswered question.
func (in *Inbox) Waiting(caller string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	_, ok := in.pending[caller]
	return ok
}
