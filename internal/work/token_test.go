package work

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	kbtesting "github.com/aristath/kanbanbar/internal/testing"
)

func TestCancellationToken_CancelStopsTimerAndContext(t *testing.T) {
	clk := kbtesting.NewFakeClock(t0)
	token := NewCancellationToken(context.Background())

	fired := false
	token.attach(clk.AfterFunc(time.Second, func() { fired = true }))

	token.Cancel()
	token.Cancel()

	assert.True(t, token.Cancelled())
	assert.ErrorIs(t, token.Context().Err(), context.Canceled)
	clk.Advance(time.Minute)
	assert.False(t, fired)
}

func TestCancellationToken_AttachAfterCancelStopsTimer(t *testing.T) {
	clk := kbtesting.NewFakeClock(t0)
	token := NewCancellationToken(context.Background())
	token.Cancel()

	fired := false
	token.attach(clk.AfterFunc(time.Second, func() { fired = true }))

	assert.Zero(t, clk.Pending())
	clk.Advance(time.Minute)
	assert.False(t, fired)
}

func TestCancellationToken_CancelAfterFireIsNoop(t *testing.T) {
	clk := kbtesting.NewFakeClock(t0)
	token := NewCancellationToken(context.Background())

	fired := 0
	token.attach(clk.AfterFunc(0, func() { fired++ }))
	clk.Advance(0)

	assert.NotPanics(t, token.Cancel)
	assert.Equal(t, 1, fired)
}

func TestCancellationToken_ParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	token := NewCancellationToken(parent)
	cancel()

	<-token.Done()
	assert.False(t, token.Cancelled(), "only an explicit Cancel marks the token")
}
