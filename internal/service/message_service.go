package service

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/christianmesinas/famplan/internal/models"
	"github.com/christianmesinas/famplan/internal/repository"
	"github.com/christianmesinas/famplan/pkg/logger"
)

var ErrInvalidMessage = errors.New("message body must be between 1 and 500 characters")

// MessagePage is one page of a user's inbox
type MessagePage struct {
	Messages []models.InboxMessage `json:"messages"`
	Page     int                   `json:"page"`
	HasNext  bool                  `json:"has_next"`
	HasPrev  bool                  `json:"has_prev"`
}

// MessageService handles direct messages and the notification feed
type MessageService struct {
	messageRepo      *repository.MessageRepository
	notificationRepo *repository.NotificationRepository
	userRepo         *repository.UserRepository
	pageSize         int
}

// NewMessageService creates a new message service
func NewMessageService(messageRepo *repository.MessageRepository, notificationRepo *repository.NotificationRepository, userRepo *repository.UserRepository, pageSize int) *MessageService {
	if pageSize <= 0 {
		pageSize = 25
	}
	return &MessageService{
		messageRepo:      messageRepo,
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		pageSize:         pageSize,
	}
}

// nowFloat returns the current time as float seconds since the epoch
func nowFloat() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// Send delivers a direct message to a user by username and refreshes
// the recipient's unread-count notification.
func (s *MessageService) Send(senderID int64, recipientUsername, body string) (*models.Message, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" || len(trimmed) > models.MaxPostLength {
		return nil, ErrInvalidMessage
	}

	recipient, err := s.userRepo.GetUserByUsername(recipientUsername)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, ErrUserNotFound
	}

	message, err := s.messageRepo.CreateMessage(senderID, recipient.ID, trimmed)
	if err != nil {
		return nil, err
	}

	s.refreshUnreadNotification(recipient.ID, recipient.LastMessageReadTime)
	return message, nil
}

// Inbox returns one page of received messages and marks the inbox as
// read: the watermark moves to now and the unread notification resets
// to zero.
func (s *MessageService) Inbox(userID int64, pageNum int) (*MessagePage, error) {
	if pageNum < 1 {
		pageNum = 1
	}
	offset := (pageNum - 1) * s.pageSize

	messages, err := s.messageRepo.InboxPage(userID, s.pageSize+1, offset)
	if err != nil {
		return nil, err
	}

	hasNext := len(messages) > s.pageSize
	if hasNext {
		messages = messages[:s.pageSize]
	}
	if messages == nil {
		messages = []models.InboxMessage{}
	}

	if err := s.userRepo.SetLastMessageReadTime(userID, time.Now()); err != nil {
		return nil, err
	}
	s.setUnreadNotification(userID, 0)

	return &MessagePage{
		Messages: messages,
		Page:     pageNum,
		HasNext:  hasNext,
		HasPrev:  pageNum > 1,
	}, nil
}

// UnreadCount counts messages received after the user's read watermark
func (s *MessageService) UnreadCount(userID int64) (int, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrUserNotFound
	}
	return s.messageRepo.CountUnread(userID, user.LastMessageReadTime)
}

// Notifications returns the user's notifications newer than since
func (s *MessageService) Notifications(userID int64, since float64) ([]models.Notification, error) {
	return s.notificationRepo.ListSince(userID, since)
}

// refreshUnreadNotification recomputes the recipient's unread count
// and reinserts the notification with a fresh timestamp.
func (s *MessageService) refreshUnreadNotification(recipientID int64, watermark *time.Time) {
	count, err := s.messageRepo.CountUnread(recipientID, watermark)
	if err != nil {
		logger.Warn().Err(err).Int64("user_id", recipientID).Msg("Failed to count unread messages")
		return
	}
	s.setUnreadNotification(recipientID, count)
}

func (s *MessageService) setUnreadNotification(userID int64, count int) {
	payload, err := json.Marshal(map[string]interface{}{"count": count})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to encode notification payload")
		return
	}
	if _, err := s.notificationRepo.Upsert(userID, models.NotificationUnreadMessageCount, string(payload), nowFloat()); err != nil {
		logger.Warn().Err(err).Int64("user_id", userID).Msg("Failed to upsert notification")
	}
}

// PruneNotifications removes notifications older than the given age
func (s *MessageService) PruneNotifications(olderThan time.Duration) (int64, error) {
	cutoff := nowFloat() - olderThan.Seconds()
	return s.notificationRepo.DeleteOlderThan(cutoff)
}
