package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"matchwave-backend/internal/models"
	"matchwave-backend/internal/pagination"
)

func newTestMessageService(messages *fakeMessageStore, users *fakeUserStore) *MessageService {
	return NewMessageService(messages, users)
}

func seedUser(users *fakeUserStore, id string) {
	users.users[id] = &models.User{ID: id, Username: id}
}

func sendTestMessage(t *testing.T, svc *MessageService, senderID, recipientID, content string) *models.Message {
	t.Helper()
	msg, err := svc.Send(context.Background(), senderID, recipientID, content)
	if err != nil {
		t.Fatalf("Send(%s -> %s) failed: %v", senderID, recipientID, err)
	}
	return msg
}

func TestSendValidation(t *testing.T) {
	users := newFakeUserStore()
	seedUser(users, "alice")
	seedUser(users, "bob")
	svc := newTestMessageService(newFakeMessageStore(), users)

	tests := []struct {
		name        string
		senderID    string
		recipientID string
		content     string
		want        error
	}{
		{"empty content", "alice", "bob", "   ", ErrInvalidInput},
		{"self message", "alice", "alice", "hi", ErrInvalidInput},
		{"unknown recipient", "alice", "carol", "hi", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Send(context.Background(), tt.senderID, tt.recipientID, tt.content); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSendNotifies(t *testing.T) {
	users := newFakeUserStore()
	seedUser(users, "alice")
	seedUser(users, "bob")
	svc := newTestMessageService(newFakeMessageStore(), users)
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)

	msg := sendTestMessage(t, svc, "alice", "bob", "hello")

	if msg.ID == "" || msg.SenderID != "alice" || msg.RecipientID != "bob" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if msg.IsRead {
		t.Error("new message should be unread")
	}
	if len(notifier.messages) != 1 || notifier.messages[0].ID != msg.ID {
		t.Errorf("notifier.messages = %v, want the sent message", notifier.messages)
	}
}

func TestGetMessageAccess(t *testing.T) {
	users := newFakeUserStore()
	seedUser(users, "alice")
	seedUser(users, "bob")
	svc := newTestMessageService(newFakeMessageStore(), users)
	msg := sendTestMessage(t, svc, "alice", "bob", "hello")

	if _, err := svc.Get(context.Background(), "alice", msg.ID); err != nil {
		t.Errorf("sender Get failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), "bob", msg.ID); err != nil {
		t.Errorf("recipient Get failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), "mallory", msg.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("third party err = %v, want ErrForbidden", err)
	}
	if _, err := svc.Get(context.Background(), "alice", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v, want ErrNotFound", err)
	}
}

func TestMarkRead(t *testing.T) {
	users := newFakeUserStore()
	seedUser(users, "alice")
	seedUser(users, "bob")
	svc := newTestMessageService(newFakeMessageStore(), users)
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)
	msg := sendTestMessage(t, svc, "alice", "bob", "hello")

	if _, err := svc.MarkRead(context.Background(), "alice", msg.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("sender MarkRead err = %v, want ErrForbidden", err)
	}

	read, err := svc.MarkRead(context.Background(), "bob", msg.ID)
	if err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if !read.IsRead || read.ReadAt == nil {
		t.Errorf("message not marked read: %+v", read)
	}
	if len(notifier.reads) != 1 {
		t.Errorf("reads = %d, want 1", len(notifier.reads))
	}

	// A second mark keeps the first timestamp.
	first := *read.ReadAt
	time.Sleep(5 * time.Millisecond)
	again, err := svc.MarkRead(context.Background(), "bob", msg.ID)
	if err != nil {
		t.Fatalf("second MarkRead failed: %v", err)
	}
	if !again.ReadAt.Equal(first) {
		t.Errorf("ReadAt = %v, want original %v", again.ReadAt, first)
	}
}

func TestMailbox(t *testing.T) {
	users := newFakeUserStore()
	seedUser(users, "alice")
	seedUser(users, "bob")
	store := newFakeMessageStore()
	svc := newTestMessageService(store, users)

	m1 := sendTestMessage(t, svc, "alice", "bob", "first")
	sendTestMessage(t, svc, "bob", "alice", "second")

	inbox, meta, err := svc.Mailbox(context.Background(), "bob", "", pagination.Params{})
	if err != nil {
		t.Fatalf("Mailbox failed: %v", err)
	}
	if len(inbox) != 1 || inbox[0].ID != m1.ID {
		t.Errorf("inbox = %v, want only the received message", inbox)
	}
	if meta.TotalCount != 1 {
		t.Errorf("TotalCount = %d, want 1", meta.TotalCount)
	}

	outbox, _, err := svc.Mailbox(context.Background(), "bob", "outbox", pagination.Params{})
	if err != nil {
		t.Fatalf("Mailbox(outbox) failed: %v", err)
	}
	if len(outbox) != 1 || outbox[0].Content != "second" {
		t.Errorf("outbox = %v, want only the sent message", outbox)
	}

	if _, err := svc.MarkRead(context.Background(), "bob", m1.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	unread, _, err := svc.Mailbox(context.Background(), "bob", "unread", pagination.Params{})
	if err != nil {
		t.Fatalf("Mailbox(unread) failed: %v", err)
	}
	if len(unread) != 0 {
		t.Errorf("unread = %v, want empty after read", unread)
	}

	if _, _, err := svc.Mailbox(context.Background(), "bob", "archive", pagination.Params{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown container err = %v, want ErrInvalidInput", err)
	}
}

func TestThreadOrder(t *testing.T) {
	users := newFakeUserStore()
	seedUser(users, "alice")
	seedUser(users, "bob")
	store := newFakeMessageStore()
	svc := newTestMessageService(store, users)

	m1 := sendTestMessage(t, svc, "alice", "bob", "hi")
	store.messages[m1.ID].SentAt = time.Now().Add(-time.Minute)
	m2 := sendTestMessage(t, svc, "bob", "alice", "hey")

	thread, err := svc.Thread(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("Thread failed: %v", err)
	}
	if len(thread) != 2 {
		t.Fatalf("thread length = %d, want 2", len(thread))
	}
	if thread[0].ID != m1.ID || thread[1].ID != m2.ID {
		t.Error("thread not in chronological order")
	}
}

func TestDeleteIsPerSide(t *testing.T) {
	users := newFakeUserStore()
	seedUser(users, "alice")
	seedUser(users, "bob")
	store := newFakeMessageStore()
	svc := newTestMessageService(store, users)
	msg := sendTestMessage(t, svc, "alice", "bob", "hi")

	if err := svc.Delete(context.Background(), "mallory", msg.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("third party err = %v, want ErrForbidden", err)
	}

	// Sender deletes: hidden from alice, still visible to bob.
	if err := svc.Delete(context.Background(), "alice", msg.ID); err != nil {
		t.Fatalf("sender Delete failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), "alice", msg.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("sender Get after delete err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(context.Background(), "bob", msg.ID); err != nil {
		t.Errorf("recipient Get after sender delete failed: %v", err)
	}
	thread, err := svc.Thread(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("Thread failed: %v", err)
	}
	if len(thread) != 0 {
		t.Errorf("sender thread = %v, want empty", thread)
	}

	// Recipient deletes too: the record is gone for good.
	if err := svc.Delete(context.Background(), "bob", msg.ID); err != nil {
		t.Fatalf("recipient Delete failed: %v", err)
	}
	if len(store.messages) != 0 {
		t.Errorf("store still holds %d messages, want 0", len(store.messages))
	}
	if err := svc.Delete(context.Background(), "bob", msg.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("repeat delete err = %v, want ErrNotFound", err)
	}
}
