package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"matchwave-backend/internal/models"
	"matchwave-backend/internal/repository"
)

// In-memory stores mirroring the repository semantics, so the service rules
// can be tested without a database.

type fakeUserStore struct {
	users      map[string]*models.User
	lastFilter repository.UserFilter
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	for _, u := range s.users {
		if u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) List(_ context.Context, f repository.UserFilter) ([]*models.User, int, error) {
	s.lastFilter = f

	var matched []*models.User
	for _, u := range s.users {
		if u.ID == f.ExcludeID {
			continue
		}
		if f.Gender != "" && u.Gender != f.Gender {
			continue
		}
		matched = append(matched, u)
	}
	sort.Slice(matched, func(i, j int) bool {
		if f.OrderBy == "created" {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].LastActive.After(matched[j].LastActive)
	})

	total := len(matched)
	if f.Offset >= total {
		return nil, total, nil
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return matched[f.Offset:end], total, nil
}

func (s *fakeUserStore) UpdateProfile(_ context.Context, user *models.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return fmt.Errorf("user not found")
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *fakeUserStore) UpdatePushToken(_ context.Context, userID string, pushToken *string) error {
	if u, ok := s.users[userID]; ok {
		u.PushToken = pushToken
	}
	return nil
}

func (s *fakeUserStore) TouchLastActive(_ context.Context, userID string, at time.Time) error {
	if u, ok := s.users[userID]; ok {
		u.LastActive = at
	}
	return nil
}

type fakeLikeStore struct {
	likes map[[2]string]*models.Like
}

func newFakeLikeStore() *fakeLikeStore {
	return &fakeLikeStore{likes: make(map[[2]string]*models.Like)}
}

func (s *fakeLikeStore) Create(_ context.Context, like *models.Like) error {
	key := [2]string{like.LikerID, like.LikeeID}
	if _, ok := s.likes[key]; ok {
		return repository.ErrDuplicate
	}
	s.likes[key] = like
	return nil
}

func (s *fakeLikeStore) Get(_ context.Context, likerID, likeeID string) (*models.Like, error) {
	return s.likes[[2]string{likerID, likeeID}], nil
}

type fakeMessageStore struct {
	messages map[string]*models.Message
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{messages: make(map[string]*models.Message)}
}

func (s *fakeMessageStore) Create(_ context.Context, msg *models.Message) error {
	cp := *msg
	s.messages[msg.ID] = &cp
	return nil
}

func (s *fakeMessageStore) GetByID(_ context.Context, id string) (*models.Message, error) {
	m, ok := s.messages[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (s *fakeMessageStore) ListMailbox(_ context.Context, userID string, box repository.Mailbox, limit, offset int) ([]*models.Message, int, error) {
	var matched []*models.Message
	for _, m := range s.messages {
		switch box {
		case repository.MailboxOutbox:
			if m.SenderID != userID || m.SenderDeleted {
				continue
			}
		case repository.MailboxUnread:
			if m.RecipientID != userID || m.RecipientDeleted || m.IsRead {
				continue
			}
		default:
			if m.RecipientID != userID || m.RecipientDeleted {
				continue
			}
		}
		matched = append(matched, m)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].SentAt.After(matched[j].SentAt) })

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (s *fakeMessageStore) Thread(_ context.Context, viewerID, otherID string) ([]*models.Message, error) {
	var matched []*models.Message
	for _, m := range s.messages {
		between := (m.SenderID == viewerID && m.RecipientID == otherID) ||
			(m.SenderID == otherID && m.RecipientID == viewerID)
		if between && m.VisibleTo(viewerID) {
			matched = append(matched, m)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].SentAt.Before(matched[j].SentAt) })
	return matched, nil
}

func (s *fakeMessageStore) MarkRead(_ context.Context, id string, at time.Time) error {
	m, ok := s.messages[id]
	if !ok {
		return fmt.Errorf("message not found")
	}
	m.IsRead = true
	if m.ReadAt == nil {
		m.ReadAt = &at
	}
	return nil
}

func (s *fakeMessageStore) SetDeleted(_ context.Context, id string, bySender bool) error {
	m, ok := s.messages[id]
	if !ok {
		return fmt.Errorf("message not found")
	}
	if bySender {
		m.SenderDeleted = true
	} else {
		m.RecipientDeleted = true
	}
	if m.SenderDeleted && m.RecipientDeleted {
		delete(s.messages, id)
	}
	return nil
}

type fakePhotoStore struct {
	photos map[string]*models.Photo
}

func newFakePhotoStore() *fakePhotoStore {
	return &fakePhotoStore{photos: make(map[string]*models.Photo)}
}

func (s *fakePhotoStore) Create(_ context.Context, photo *models.Photo) error {
	photo.IsMain = true
	for _, p := range s.photos {
		if p.UserID == photo.UserID && p.IsMain {
			photo.IsMain = false
			break
		}
	}
	cp := *photo
	s.photos[photo.ID] = &cp
	return nil
}

func (s *fakePhotoStore) GetByID(_ context.Context, id string) (*models.Photo, error) {
	p, ok := s.photos[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *fakePhotoStore) ListByUser(_ context.Context, userID string) ([]*models.Photo, error) {
	var photos []*models.Photo
	for _, p := range s.photos {
		if p.UserID == userID {
			photos = append(photos, p)
		}
	}
	sort.Slice(photos, func(i, j int) bool {
		if photos[i].IsMain != photos[j].IsMain {
			return photos[i].IsMain
		}
		return photos[i].AddedAt.Before(photos[j].AddedAt)
	})
	return photos, nil
}

func (s *fakePhotoStore) SetMain(_ context.Context, userID, photoID string) error {
	target, ok := s.photos[photoID]
	if !ok || target.UserID != userID {
		return fmt.Errorf("photo not found")
	}
	for _, p := range s.photos {
		if p.UserID == userID {
			p.IsMain = false
		}
	}
	target.IsMain = true
	return nil
}

func (s *fakePhotoStore) Delete(_ context.Context, id string) error {
	if _, ok := s.photos[id]; !ok {
		return fmt.Errorf("photo not found")
	}
	delete(s.photos, id)
	return nil
}

func (s *fakePhotoStore) mainCount(userID string) int {
	n := 0
	for _, p := range s.photos {
		if p.UserID == userID && p.IsMain {
			n++
		}
	}
	return n
}

type fakeImageStore struct {
	uploaded  map[string]string
	deleted   []string
	deleteErr error
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{uploaded: make(map[string]string)}
}

func (s *fakeImageStore) Upload(_ context.Context, key, contentType string, body io.Reader) (string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	url := "https://img.example.com/" + key
	s.uploaded[key] = contentType
	return url, nil
}

func (s *fakeImageStore) Delete(_ context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, key)
	return nil
}

type recordingNotifier struct {
	messages []*models.Message
	reads    []*models.Message
	likes    []*models.Like
}

func (n *recordingNotifier) MessageCreated(msg *models.Message) { n.messages = append(n.messages, msg) }
func (n *recordingNotifier) MessageRead(msg *models.Message)    { n.reads = append(n.reads, msg) }
func (n *recordingNotifier) LikeCreated(like *models.Like)      { n.likes = append(n.likes, like) }

func bytesReader(s string) io.Reader { return strings.NewReader(s) }
