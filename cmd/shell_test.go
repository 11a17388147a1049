package cmd

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	apperrors "github.com/arcanaland/cardsmith/internal/errors"
)

func TestFinishDropsUnansweredQuestion(t *testing.T) {
	s := newShellSession("alice", ".kgf", io.Discard)

	// A command asked, the question timed out and nobody answered
	s.say("alice", "Type `party` to confirm removing the deck and all of its cards.")
	s.finish()

	assert.Len(t, s.asked, 0)
	assert.Len(t, s.done, 1)

	s.finish()
	assert.Len(t, s.asked, 0)
}

func TestStdinPrompterReadsWithOneGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	r, w := io.Pipe()
	var out bytes.Buffer
	p := newStdinPrompter(r, &out, 5*time.Second, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.Ask(ctx, "alice", "first?")
	assert.Equal(t, apperrors.CodeInteractionTimeout, apperrors.GetCode(err))

	go func() {
		for !p.Waiting("alice") {
			time.Sleep(time.Millisecond)
		}
		_, _ = io.WriteString(w, "party\n")
	}()

	answer, err := p.Ask(context.Background(), "alice", "second?")
	require.NoError(t, err)
	assert.Equal(t, "party", answer)
	assert.Equal(t, "first?\nsecond?\n", out.String())

	// End of input stops the reader
	require.NoError(t, w.Close())
}
