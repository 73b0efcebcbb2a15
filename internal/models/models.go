package models

import "time"

// User represents a registered member
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Gender       string    `json:"gender"`
	BirthDate    time.Time `json:"birth_date"`
	City         string    `json:"city,omitempty"`
	Country      string    `json:"country,omitempty"`
	Introduction string    `json:"introduction,omitempty"`
	PushToken    *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	LastActive   time.Time `json:"last_active"`
	Photos       []*Photo  `json:"photos,omitempty"`
}

// Age returns the user's age in full years at the given instant
func (u *User) Age(now time.Time) int {
	age := now.Year() - u.BirthDate.Year()
	if now.YearDay() < u.BirthDate.YearDay() {
		age--
	}
	return age
}

// MainPhotoURL returns the URL of the user's main photo, if any
func (u *User) MainPhotoURL() string {
	for _, p := range u.Photos {
		if p.IsMain {
			return p.URL
		}
	}
	return ""
}

// Photo represents an uploaded profile photo
type Photo struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	URL        string    `json:"url"`
	StorageKey *string   `json:"-"`
	IsMain     bool      `json:"is_main"`
	AddedAt    time.Time `json:"added_at"`
}

// Like represents a one-directional like edge between two users
type Like struct {
	LikerID   string    `json:"liker_id"`
	LikeeID   string    `json:"likee_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Message represents a direct message between two users.
// The row stays around after a one-sided delete and is only physically
// removed once both sides have deleted it.
type Message struct {
	ID               string     `json:"id"`
	SenderID         string     `json:"sender_id"`
	RecipientID      string     `json:"recipient_id"`
	Content          string     `json:"content"`
	SentAt           time.Time  `json:"sent_at"`
	IsRead           bool       `json:"is_read"`
	ReadAt           *time.Time `json:"read_at,omitempty"`
	SenderDeleted    bool       `json:"-"`
	RecipientDeleted bool       `json:"-"`
}

// VisibleTo reports whether the message should still be shown to the given user
func (m *Message) VisibleTo(userID string) bool {
	switch userID {
	case m.SenderID:
		return !m.SenderDeleted
	case m.RecipientID:
		return !m.RecipientDeleted
	default:
		return false
	}
}
