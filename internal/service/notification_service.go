package service

import (
	"context"
	"errors"

	"relay/internal/middleware"
	"relay/internal/models"
	"relay/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationPublisher fans a stored notification out to live subscribers.
type NotificationPublisher interface {
	Publish(ctx context.Context, notification *models.Notification) error
}

type NotificationService struct {
	notificationRepo repository.NotificationRepository
	publisher        NotificationPublisher
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	publisher NotificationPublisher,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

// Notify persists the notification and pushes it to the live stream.
// Delivery is best-effort: a publish failure is logged, never surfaced.
func (s *NotificationService) Notify(ctx context.Context, notification *models.Notification) error {
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, notification); err != nil {
			middleware.Logger.WarnContext(ctx, "notification publish failed",
				"notification_id", notification.ID.String(), "error", err)
		}
	}
	return nil
}

type ListNotificationsInput struct {
	UserID     uuid.UUID
	UnreadOnly bool
	Limit      int
	Offset     int
}

// ListNotificationsResult pairs a notification page with the unread total.
type ListNotificationsResult struct {
	Notifications []*models.Notification `json:"notifications"`
	UnreadCount   int64                  `json:"unread_count"`
}

func (s *NotificationService) ListNotifications(ctx context.Context, in ListNotificationsInput) (*ListNotificationsResult, error) {
	notifications, err := s.notificationRepo.ListByUser(ctx, in.UserID, in.UnreadOnly, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	unread, err := s.notificationRepo.CountUnread(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	return &ListNotificationsResult{Notifications: notifications, UnreadCount: unread}, nil
}

func (s *NotificationService) getOwned(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error) {
	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Notification", id)
		}
		return nil, err
	}
	if notification.UserID != userID {
		return nil, models.NewForbiddenError("You can only manage your own notifications")
	}
	return notification, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error) {
	notification, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.notificationRepo.MarkAsRead(ctx, id); err != nil {
		return nil, err
	}
	notification.Read = true
	return notification, nil
}

// MarkAllRead marks every unread notification and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notificationRepo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) DeleteNotification(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return err
	}
	return s.notificationRepo.Delete(ctx, id)
}
