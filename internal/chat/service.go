// Package chat is the customer support thread. Messages live in the
// document store under chat/<user>, keyed by time-ordered ids so a
// snapshot is already chronological.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/docstore"
)

const (
	SenderUser    = "user"
	SenderSupport = "support"

	MaxMessageLength = 1000

	// AutoReply answers every user message until an agent picks the thread up.
	AutoReply = "Thanks for reaching out! A member of our support team will get back to you shortly."
)

var (
	ErrUserRequired = errors.New("user is required")
	ErrEmptyMessage = errors.New("message is empty")
	ErrTooLong      = errors.New("message is too long")
)

type Message struct {
	ID     string    `json:"id"`
	Sender string    `json:"sender"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

func Path(userID string) string {
	return docstore.Join("chat", userID)
}

type Service struct {
	store docstore.Store
	now   func() time.Time
	log   logrus.FieldLogger
}

func NewService(store docstore.Store, log logrus.FieldLogger) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		log:   log.WithField("component", "chat"),
	}
}

// Decode returns the messages in a chat snapshot, skipping malformed ones.
func Decode(snap docstore.Snapshot) []Message {
	out := make([]Message, 0, snap.Len())
	for _, key := range snap.Keys() {
		var m Message
		if ok, err := snap.Decode(key, &m); !ok || err != nil {
			continue
		}
		m.ID = key
		out = append(out, m)
	}
	return out
}

func (s *Service) History(ctx context.Context, userID string) ([]Message, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	snap, err := s.store.Get(ctx, Path(userID))
	if err != nil {
		return nil, err
	}
	return Decode(snap), nil
}

// Send stores the user's message followed by the support auto-reply and
// returns both.
func (s *Service) Send(ctx context.Context, userID, text string) ([]Message, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return nil, ErrTooLong
	}

	sent, err := s.append(ctx, userID, SenderUser, text)
	if err != nil {
		return nil, err
	}
	reply, err := s.append(ctx, userID, SenderSupport, AutoReply)
	if err != nil {
		return nil, err
	}

	s.log.WithField("user_id", userID).Debug("chat message stored")
	return []Message{sent, reply}, nil
}

func (s *Service) append(ctx context.Context, userID, sender, text string) (Message, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Message{}, err
	}

	m := Message{
		ID:     id.String(),
		Sender: sender,
		Text:   text,
		SentAt: s.now().UTC(),
	}
	if err := s.store.Set(ctx, docstore.Join(Path(userID), m.ID), m); err != nil {
		return Message{}, err
	}
	return m, nil
}

// Follow streams the full thread whenever it changes. The channel closes
// when ctx ends or the underlying stream fails.
func (s *Service) Follow(ctx context.Context, userID string) (<-chan []Message, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	sub, err := s.store.Subscribe(ctx, Path(userID))
	if err != nil {
		return nil, err
	}

	out := make(chan []Message, 1)
	go func() {
		defer close(out)
		defer sub.Close()

		for snap := range sub.C() {
			select {
			case out <- Decode(snap):
			case <-ctx.Done():
				return
			}
		}
		if err := sub.Err(); err != nil {
			s.log.WithError(err).WithField("user_id", userID).Warn("chat stream terminated")
		}
	}()
	return out, nil
}
