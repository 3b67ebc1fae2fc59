// Package messaging simulates buyer/seller conversations. Every message a
// buyer sends schedules a canned seller reply that can be cancelled.
package messaging

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/darte/storefront/internal/metrics"
	"github.com/darte/storefront/internal/models"
	"github.com/darte/storefront/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	greeting    = "Hi! I'm interested in your product."
	sellerHello = "Hello! Thank you for your interest. How can I help you?"
	autoReply   = "Thank you for your message! I'll get back to you soon."
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrClosed       = errors.New("conversation is closed")
)

// Thread is one conversation with a seller
type Thread struct {
	sellerID string
	delay    time.Duration
	metrics  *metrics.AppMetrics

	mu       sync.Mutex
	messages []models.Message
	pending  map[uint64]*time.Timer
	nextID   uint64
	closed   bool
}

func newThread(sellerID string, delay time.Duration, m *metrics.AppMetrics) *Thread {
	now := time.Now()
	return &Thread{
		sellerID: sellerID,
		delay:    delay,
		metrics:  m,
		pending:  make(map[uint64]*time.Timer),
		messages: []models.Message{
			{ID: uuid.NewString(), Content: greeting, Timestamp: now.Add(-time.Minute), FromUser: true},
			{ID: uuid.NewString(), Content: sellerHello, Timestamp: now.Add(-30 * time.Second)},
		},
	}
}

// SellerID identifies the seller on the other side of the thread.
func (t *Thread) SellerID() string { return t.sellerID }

// Send appends the buyer's message verbatim and schedules the seller reply.
func (t *Thread) Send(ctx context.Context, content string) (models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return models.Message{}, ErrEmptyMessage
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return models.Message{}, ErrClosed
	}

	msg := models.Message{
		ID:        uuid.NewString(),
		Content:   content,
		Timestamp: time.Now(),
		FromUser:  true,
	}
	t.messages = append(t.messages, msg)

	id := t.nextID
	t.nextID++
	t.pending[id] = time.AfterFunc(t.delay, func() { t.reply(id) })

	t.metrics.MessagesSent.Add(ctx, 1, t.metrics.Attrs(attribute.String("seller_id", t.sellerID)))
	logger.Debug(ctx).Str("seller_id", t.sellerID).Msg("message sent, reply scheduled")
	return msg, nil
}

func (t *Thread) reply(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.pending[id]; !ok || t.closed {
		return
	}
	delete(t.pending, id)

	t.messages = append(t.messages, models.Message{
		ID:        uuid.NewString(),
		Content:   autoReply,
		Timestamp: time.Now(),
	})
	t.metrics.AutoReplies.Add(context.Background(), 1, t.metrics.Attrs(attribute.String("seller_id", t.sellerID)))
}

// Messages returns the conversation in append order.
func (t *Thread) Messages() []models.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Message(nil), t.messages...)
}

// Pending returns the number of replies not yet delivered.
func (t *Thread) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Close cancels every pending reply and refuses further sends.
// It returns the number of replies cancelled.
func (t *Thread) Close() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0
	}
	t.closed = true

	cancelled := 0
	for id, timer := range t.pending {
		timer.Stop()
		delete(t.pending, id)
		cancelled++
	}
	if cancelled > 0 {
		t.metrics.AutoRepliesAbort.Add(context.Background(), int64(cancelled),
			t.metrics.Attrs(attribute.String("seller_id", t.sellerID)))
	}
	return cancelled
}

// Threads holds the open conversations of one session, keyed by seller.
type Threads struct {
	delay   time.Duration
	metrics *metrics.AppMetrics

	mu      sync.Mutex
	threads map[string]*Thread
	closed  bool
}

// NewThreads creates an empty set whose replies arrive after delay.
func NewThreads(delay time.Duration, m *metrics.AppMetrics) *Threads {
	return &Threads{
		delay:   delay,
		metrics: m,
		threads: make(map[string]*Thread),
	}
}

// Open returns the conversation with sellerID, starting a new one if needed.
func (ts *Threads) Open(sellerID string) (*Thread, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.closed {
		return nil, ErrClosed
	}
	t, ok := ts.threads[sellerID]
	if !ok {
		t = newThread(sellerID, ts.delay, ts.metrics)
		ts.threads[sellerID] = t
	}
	return t, nil
}

// Close ends the conversation with sellerID. The next Open starts afresh.
func (ts *Threads) Close(sellerID string) int {
	ts.mu.Lock()
	t, ok := ts.threads[sellerID]
	delete(ts.threads, sellerID)
	ts.mu.Unlock()

	if !ok {
		return 0
	}
	return t.Close()
}

// CloseAll ends every conversation; used when the session goes away.
func (ts *Threads) CloseAll() int {
	ts.mu.Lock()
	threads := ts.threads
	ts.threads = make(map[string]*Thread)
	ts.closed = true
	ts.mu.Unlock()

	cancelled := 0
	for _, t := range threads {
		cancelled += t.Close()
	}
	return cancelled
}
