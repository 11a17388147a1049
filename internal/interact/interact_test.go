package interact

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	apperrors "github.com/arcanaland/cardsmith/internal/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu    sync.Mutex
	said  []string
	asked chan struct{}
}

func newRecorder() *recorder {
	return &recorder{asked: make(chan struct{}, 10)}
}

func (r *recorder) say(caller, text string) {
	r.mu.Lock()
	r.said = append(r.said, caller+": "+text)
	r.mu.Unlock()
	r.asked <- struct{}{}
}

func TestAskReceivesAnswer(t *testing.T) {
	rec := newRecorder()
	in := NewInbox(rec.say, time.Minute, nil)

	done := make(chan string)
	go func() {
		answer, err := in.Ask(context.Background(), "alice", "Sure?")
		assert.NoError(t, err)
		done <- answer
	}()

	<-rec.asked
	assert.True(t, in.Waiting("alice"))
	assert.False(t, in.Deliver("bob", "yes"))
	assert.True(t, in.Deliver("alice", "  yes  "))

	assert.Equal(t, "yes", <-done)
	assert.False(t, in.Waiting("alice"))
	assert.Equal(t, []string{"alice: Sure?"}, rec.said)
}

func TestAskTimesOut(t *testing.T) {
	rec := newRecorder()
	in := NewInbox(rec.say, 10*time.Millisecond, nil)

	_, err := in.Ask(context.Background(), "alice", "Sure?")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInteractionTimeout))
	assert.False(t, in.Waiting("alice"))
	assert.False(t, in.Deliver("alice", "too late"))
}

func TestAskCancelled(t *testing.T) {
	rec := newRecorder()
	in := NewInbox(rec.say, time.Minute, nil)
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error)
	go func() {
		_, err := in.Ask(ctx, "alice", "Sure?")
		errc <- err
	}()
	<-rec.asked
	cancel()

	assert.True(t, apperrors.IsCode(<-errc, apperrors.CodeCancelled))
}

func TestAskOnePendingPerCaller(t *testing.T) {
	rec := newRecorder()
	in := NewInbox(rec.say, time.Minute, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = in.Ask(context.Background(), "alice", "first?")
	}()
	<-rec.asked

	_, err := in.Ask(context.Background(), "alice", "second?")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeCancelled))

	in.Deliver("alice", "ok")
	<-done
}
