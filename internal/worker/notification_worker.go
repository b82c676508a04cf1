package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/messaging-service/internal/service"
)

// StartNotificationWorker subscribes the notification relay to domain events.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		logger.Warn("notification relay disabled")
		return
	}
	notificationService.RegisterHandlers()
	logger.Info("notification relay started")
}
