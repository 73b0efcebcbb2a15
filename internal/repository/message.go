package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"matchwave-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Mailbox selects which side of a user's messages to list
type Mailbox string

const (
	MailboxInbox  Mailbox = "inbox"
	MailboxOutbox Mailbox = "outbox"
	MailboxUnread Mailbox = "unread"
)

// MessageRepository handles database operations for messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

const messageColumns = `id, sender_id, recipient_id, content, sent_at, is_read, read_at,
	sender_deleted, recipient_deleted`

// Create inserts a new message
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, recipient_id, content, sent_at, is_read,
			sender_deleted, recipient_deleted)
		VALUES ($1, $2, $3, $4, $5, false, false, false)
	`
	_, err := r.db.Exec(ctx, query, msg.ID, msg.SenderID, msg.RecipientID, msg.Content, msg.SentAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetByID retrieves a message by ID, or nil when absent
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`
	var msg models.Message
	err := r.db.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.Content, &msg.SentAt,
		&msg.IsRead, &msg.ReadAt, &msg.SenderDeleted, &msg.RecipientDeleted,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &msg, nil
}

// ListMailbox retrieves a page of the user's mailbox, newest first,
// hiding messages the user has deleted on their side.
func (r *MessageRepository) ListMailbox(ctx context.Context, userID string, box Mailbox, limit, offset int) ([]*models.Message, int, error) {
	var cond string
	switch box {
	case MailboxOutbox:
		cond = `sender_id = $1 AND sender_deleted = false`
	case MailboxUnread:
		cond = `recipient_id = $1 AND recipient_deleted = false AND is_read = false`
	default:
		cond = `recipient_id = $1 AND recipient_deleted = false`
	}

	countQuery := `SELECT COUNT(*) FROM messages WHERE ` + cond
	var total int
	if err := r.db.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	query := `SELECT ` + messageColumns + ` FROM messages WHERE ` + cond + `
		ORDER BY sent_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

// Thread retrieves the full conversation between two users in chronological
// order, hiding messages the viewer has deleted on their side.
func (r *MessageRepository) Thread(ctx context.Context, viewerID, otherID string) ([]*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2 AND sender_deleted = false)
		   OR (sender_id = $2 AND recipient_id = $1 AND recipient_deleted = false)
		ORDER BY sent_at ASC`
	rows, err := r.db.Query(ctx, query, viewerID, otherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// MarkRead sets the read flag. An already-set read timestamp is kept.
func (r *MessageRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE messages SET is_read = true, read_at = COALESCE(read_at, $2) WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("message not found")
	}
	return nil
}

// SetDeleted flags one side of the message as deleted and, once both sides
// have deleted it, removes the row. Both steps run in one transaction so a
// concurrent reader never observes the half-deleted record.
func (r *MessageRepository) SetDeleted(ctx context.Context, id string, bySender bool) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	column := "recipient_deleted"
	if bySender {
		column = "sender_deleted"
	}

	query := fmt.Sprintf(
		`UPDATE messages SET %s = true WHERE id = $1 RETURNING sender_deleted, recipient_deleted`,
		column)
	var senderDeleted, recipientDeleted bool
	if err := tx.QueryRow(ctx, query, id).Scan(&senderDeleted, &recipientDeleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("message not found")
		}
		return fmt.Errorf("failed to flag message deleted: %w", err)
	}

	if senderDeleted && recipientDeleted {
		if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete message: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit message delete: %w", err)
	}
	return nil
}

func scanMessages(rows pgx.Rows) ([]*models.Message, error) {
	var msgs []*models.Message
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(
			&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.Content, &msg.SentAt,
			&msg.IsRead, &msg.ReadAt, &msg.SenderDeleted, &msg.RecipientDeleted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return msgs, nil
}
