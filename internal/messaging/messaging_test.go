package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/darte/storefront/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewThreadIsSeeded(t *testing.T) {
	ts := NewThreads(time.Hour, metrics.Noop())
	th, err := ts.Open("seller_001")
	require.NoError(t, err)

	msgs := th.Messages()
	require.Len(t, msgs, 2)
	assert.True(t, msgs[0].FromUser)
	assert.Equal(t, greeting, msgs[0].Content)
	assert.False(t, msgs[1].FromUser)
	assert.True(t, msgs[0].Timestamp.Before(msgs[1].Timestamp))
}

func TestOpenReturnsSameThread(t *testing.T) {
	ts := NewThreads(time.Hour, metrics.Noop())
	a, err := ts.Open("s1")
	require.NoError(t, err)
	b, err := ts.Open("s1")
	require.NoError(t, err)
	c, err := ts.Open("s2")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "s2", c.SellerID())
}

func TestSendRejectsBlank(t *testing.T) {
	th := newThread("s1", time.Hour, metrics.Noop())

	_, err := th.Send(context.Background(), "   \t")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Len(t, th.Messages(), 2)
	assert.Zero(t, th.Pending())
}

func TestSendSchedulesReply(t *testing.T) {
	th := newThread("s1", 10*time.Millisecond, metrics.Noop())

	msg, err := th.Send(context.Background(), "  Is this in stock?  ")
	require.NoError(t, err)
	assert.Equal(t, "  Is this in stock?  ", msg.Content)
	assert.True(t, msg.FromUser)

	require.Eventually(t, func() bool { return len(th.Messages()) == 4 }, time.Second, 5*time.Millisecond)

	msgs := th.Messages()
	assert.Equal(t, msg.ID, msgs[2].ID)
	assert.False(t, msgs[3].FromUser)
	assert.Equal(t, autoReply, msgs[3].Content)
	assert.Zero(t, th.Pending())
}

func TestCloseCancelsPendingReplies(t *testing.T) {
	th := newThread("s1", 50*time.Millisecond, metrics.Noop())

	_, err := th.Send(context.Background(), "one")
	require.NoError(t, err)
	_, err = th.Send(context.Background(), "two")
	require.NoError(t, err)
	assert.Equal(t, 2, th.Pending())

	assert.Equal(t, 2, th.Close())
	assert.Zero(t, th.Close())

	time.Sleep(100 * time.Millisecond)
	assert.Len(t, th.Messages(), 4)

	_, err = th.Send(context.Background(), "three")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestThreadsCloseStartsAfresh(t *testing.T) {
	ts := NewThreads(time.Hour, metrics.Noop())
	th, err := ts.Open("s1")
	require.NoError(t, err)
	_, err = th.Send(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, 1, ts.Close("s1"))
	assert.Zero(t, ts.Close("s1"))

	fresh, err := ts.Open("s1")
	require.NoError(t, err)
	assert.NotSame(t, th, fresh)
	assert.Len(t, fresh.Messages(), 2)
}

func TestCloseAll(t *testing.T) {
	ts := NewThreads(time.Hour, metrics.Noop())
	for _, seller := range []string{"a", "b"} {
		th, err := ts.Open(seller)
		require.NoError(t, err)
		_, err = th.Send(context.Background(), "hi")
		require.NoError(t, err)
	}

	assert.Equal(t, 2, ts.CloseAll())

	_, err := ts.Open("a")
	assert.ErrorIs(t, err, ErrClosed)
}
