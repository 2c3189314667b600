package service

import (
	"context"
	"errors"

	"ridebook/pkg/logger"
	"ridebook/pkg/models"
	"ridebook/storage"
)

type NotificationService interface {
	List(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	// Notify stores a notification and only logs on failure.
	Notify(ctx context.Context, userID, title, message, kind string)
}

type notificationService struct {
	stg storage.INotificationStorage
	log logger.ILogger
}

func NewNotificationService(stg storage.IStorage, log logger.ILogger) NotificationService {
	return &notificationService{
		stg: stg.Notification(),
		log: log,
	}
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	return s.stg.GetByUser(ctx, userID, unreadOnly)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	err := s.stg.MarkRead(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *notificationService) Notify(ctx context.Context, userID, title, message, kind string) {
	if userID == "" {
		return
	}
	_, err := s.stg.Create(ctx, &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Kind:    kind,
	})
	if err != nil {
		s.log.Warning("failed to store notification",
			logger.String("user_id", userID),
			logger.String("title", title),
			logger.Error(err),
		)
	}
}
