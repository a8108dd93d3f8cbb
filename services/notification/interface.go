package notification

import (
	"context"

	"frontdesk/models"
	"frontdesk/utils"

	"go.uber.org/zap"
)

// NotificationService is the delivery contract consumed by the scheduling
// core. Actual delivery (SMS, email, dashboard push) lives outside this
// service.
type NotificationService interface {
	NotifyStaffPendingReview(ctx context.Context, pending *models.PendingBooking) error
	NotifyIntegrationExpired(ctx context.Context, integration *models.Integration) error
}

// LogNotificationService is the default implementation: it records the
// notification and leaves delivery to downstream consumers of the log.
type LogNotificationService struct{}

func (s *LogNotificationService) NotifyStaffPendingReview(ctx context.Context, pending *models.PendingBooking) error {
	utils.GetLogger().Info("staff reminder: pending booking awaiting review",
		zap.String("tenantID", pending.TenantID),
		zap.String("pendingID", pending.ID),
		zap.String("customerName", pending.CustomerName),
		zap.String("requestedDate", pending.RequestedDate),
		zap.String("requestedTime", pending.RequestedTime))
	return nil
}

func (s *LogNotificationService) NotifyIntegrationExpired(ctx context.Context, integration *models.Integration) error {
	utils.GetLogger().Warn("integration requires re-authorization",
		zap.String("tenantID", integration.TenantID),
		zap.String("provider", integration.Provider))
	return nil
}
