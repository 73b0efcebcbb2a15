package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"matchwave-backend/internal/models"
	"matchwave-backend/internal/pagination"
	"matchwave-backend/internal/repository"

	"github.com/google/uuid"
)

// MessageService handles direct messaging between users
type MessageService struct {
	messages MessageStore
	users    UserStore
	notifier Notifier
}

// NewMessageService creates a new message service
func NewMessageService(messages MessageStore, users UserStore) *MessageService {
	return &MessageService{
		messages: messages,
		users:    users,
	}
}

// SetNotifier attaches the event notifier; nil disables notifications
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Send creates a message from sender to recipient
func (s *MessageService) Send(ctx context.Context, senderID, recipientID, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrInvalidInput)
	}
	if senderID == recipientID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrInvalidInput)
	}

	recipient, err := s.users.GetByID(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient: %w", err)
	}
	if recipient == nil {
		return nil, ErrNotFound
	}

	msg := &models.Message{
		ID:          uuid.New().String(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		SentAt:      time.Now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.MessageCreated(msg)
	}

	return msg, nil
}

// Get retrieves a single message visible to the requester
func (s *MessageService) Get(ctx context.Context, requesterID, id string) (*models.Message, error) {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	if msg == nil {
		return nil, ErrNotFound
	}
	if msg.SenderID != requesterID && msg.RecipientID != requesterID {
		return nil, ErrForbidden
	}
	if !msg.VisibleTo(requesterID) {
		return nil, ErrNotFound
	}
	return msg, nil
}

// Mailbox returns a page of the user's inbox, outbox or unread messages,
// newest first. Messages deleted on the user's side are hidden.
func (s *MessageService) Mailbox(ctx context.Context, userID, container string, p pagination.Params) ([]*models.Message, pagination.Meta, error) {
	var box repository.Mailbox
	switch container {
	case "", string(repository.MailboxInbox):
		box = repository.MailboxInbox
	case string(repository.MailboxOutbox):
		box = repository.MailboxOutbox
	case string(repository.MailboxUnread):
		box = repository.MailboxUnread
	default:
		return nil, pagination.Meta{}, fmt.Errorf("%w: unknown container %q", ErrInvalidInput, container)
	}

	p = p.Clamp()
	msgs, total, err := s.messages.ListMailbox(ctx, userID, box, p.Limit(), p.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to list mailbox: %w", err)
	}

	return msgs, pagination.NewMeta(p, total), nil
}

// Thread returns the conversation between the viewer and another user in
// chronological order, hiding messages the viewer deleted.
func (s *MessageService) Thread(ctx context.Context, viewerID, otherID string) ([]*models.Message, error) {
	msgs, err := s.messages.Thread(ctx, viewerID, otherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}
	return msgs, nil
}

// MarkRead marks a message as read. Only the recipient may mark a message
// read; an existing read timestamp is never overwritten.
func (s *MessageService) MarkRead(ctx context.Context, readerID, id string) (*models.Message, error) {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	if msg == nil {
		return nil, ErrNotFound
	}
	if msg.RecipientID != readerID {
		return nil, ErrForbidden
	}

	now := time.Now()
	if err := s.messages.MarkRead(ctx, id, now); err != nil {
		return nil, fmt.Errorf("failed to mark message read: %w", err)
	}

	msg.IsRead = true
	if msg.ReadAt == nil {
		msg.ReadAt = &now
	}

	if s.notifier != nil {
		s.notifier.MessageRead(msg)
	}

	return msg, nil
}

// Delete hides the message from the requester's side. Once both sides have
// deleted it the record is removed for good.
func (s *MessageService) Delete(ctx context.Context, requesterID, id string) error {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get message: %w", err)
	}
	if msg == nil {
		return ErrNotFound
	}

	var bySender bool
	switch requesterID {
	case msg.SenderID:
		bySender = true
	case msg.RecipientID:
		bySender = false
	default:
		return ErrForbidden
	}

	if err := s.messages.SetDeleted(ctx, id, bySender); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
