package services

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/darte/storefront/internal/messaging"
	"github.com/darte/storefront/internal/models"
	"github.com/darte/storefront/internal/session"
)

// Conversation is the message-seller page
type Conversation struct {
	SellerID string           `json:"sellerId"`
	Messages []models.Message `json:"messages"`
}

// MessageService handles the simulated buyer/seller chat
type MessageService struct{}

// NewMessageService creates a new message service
func NewMessageService() *MessageService {
	return &MessageService{}
}

// View opens the conversation with sellerID
func (s *MessageService) View(ctx context.Context, sess *session.Session, sellerID string) (*Conversation, error) {
	th, err := s.thread(sess, sellerID)
	if err != nil {
		return nil, err
	}
	return &Conversation{SellerID: sellerID, Messages: th.Messages()}, nil
}

// Send posts a message to the seller; the seller answers after a delay
func (s *MessageService) Send(ctx context.Context, sess *session.Session, sellerID, content string) (*Conversation, models.Notice, error) {
	th, err := s.thread(sess, sellerID)
	if err != nil {
		return nil, models.Notice{}, err
	}
	if _, err := th.Send(ctx, content); err != nil {
		if errors.Is(err, messaging.ErrEmptyMessage) {
			return nil, models.Notice{}, &ValidationError{Field: "content", Reason: "is required"}
		}
		return nil, models.Notice{}, err
	}
	return &Conversation{SellerID: sellerID, Messages: th.Messages()},
		models.Notice{Title: "Message sent", Description: "Your message has been sent to the seller."},
		nil
}

// Close leaves the conversation, cancelling replies not yet delivered.
// It returns the number of cancelled replies.
func (s *MessageService) Close(ctx context.Context, sess *session.Session, sellerID string) int {
	return sess.Threads.Close(sellerID)
}

func (s *MessageService) thread(sess *session.Session, sellerID string) (*messaging.Thread, error) {
	if sess.Store.CurrentUser() == nil {
		return nil, ErrNotLoggedIn
	}
	return sess.Threads.Open(sellerID)
}

// SellerID derives the messaging ID of a seller from its display name
func SellerID(seller string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(seller) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
