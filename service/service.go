package service

import (
	"ridebook/pkg/logger"
	"ridebook/storage"
)

type IServiceManager interface {
	Provisioning() ProvisioningService
	Ride() RideService
	Account() AccountService
	Notification() NotificationService
}

type service struct {
	provisioningService ProvisioningService
	rideService         RideService
	accountService      AccountService
	notificationService NotificationService
}

func New(
	stg storage.IStorage,
	sessions storage.ISessionStorage,
	tokens TokenIssuer,
	mail EmailSender,
	admin AdminNotifier,
	log logger.ILogger,
) IServiceManager {
	notifications := NewNotificationService(stg, log)

	return &service{
		provisioningService: NewProvisioningService(stg, mail, admin, notifications, log),
		rideService:         NewRideService(stg, notifications, log),
		accountService:      NewAccountService(stg, sessions, tokens, log),
		notificationService: notifications,
	}
}

func (s *service) Provisioning() ProvisioningService {
	return s.provisioningService
}

func (s *service) Ride() RideService {
	return s.rideService
}

func (s *service) Account() AccountService {
	return s.accountService
}

func (s *service) Notification() NotificationService {
	return s.notificationService
}
