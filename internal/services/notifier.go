package services

import (
	"context"
	"time"

	"matchwave-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// PushNotifier fans events out to connected websocket clients and, for
// recipients who are offline, to APNs. All delivery is best effort.
type PushNotifier struct {
	hub   *WSHub
	apns  *APNSClient // nil when push is disabled
	users UserStore
}

// NewPushNotifier creates the notifier; apns may be nil
func NewPushNotifier(hub *WSHub, apns *APNSClient, users UserStore) *PushNotifier {
	return &PushNotifier{
		hub:   hub,
		apns:  apns,
		users: users,
	}
}

// MessageCreated notifies the recipient about a new message
func (n *PushNotifier) MessageCreated(msg *models.Message) {
	if err := n.hub.SendToUser(msg.RecipientID, WSEvent{Type: EventNewMessage, Data: msg}); err == nil {
		return
	}
	// Recipient is offline, fall back to push
	go n.pushToUser(msg.RecipientID, "New message", msg.Content)
}

// MessageRead notifies the sender that their message was read
func (n *PushNotifier) MessageRead(msg *models.Message) {
	if err := n.hub.SendToUser(msg.SenderID, WSEvent{Type: EventMessageRead, Data: msg}); err != nil {
		log.Debug().Str("user_id", msg.SenderID).Msg("Read receipt not delivered, sender offline")
	}
}

// LikeCreated notifies the liked user
func (n *PushNotifier) LikeCreated(like *models.Like) {
	if err := n.hub.SendToUser(like.LikeeID, WSEvent{Type: EventNewLike, Data: like}); err == nil {
		return
	}
	go n.pushToUser(like.LikeeID, "Someone likes you", "Open the app to find out who")
}

func (n *PushNotifier) pushToUser(userID, title, body string) {
	if n.apns == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := n.users.GetByID(ctx, userID)
	if err != nil || user == nil || user.PushToken == nil {
		return
	}

	if err := n.apns.PushAlert(*user.PushToken, title, body); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send push notification")
	}
}
