package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/metrics"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/model"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/mq"
)

type DeliveryStore interface {
	Insert(ctx context.Context, d *model.NotificationDelivery) error
}

// DeadlineDeliveryHandler consumes notification.deadline events and records
// a delivery row. Actual email/push dispatch hangs off this audit trail.
type DeadlineDeliveryHandler struct {
	deliveries DeliveryStore
	logger     *zap.Logger
}

func NewDeadlineDeliveryHandler(deliveries DeliveryStore, logger *zap.Logger) *DeadlineDeliveryHandler {
	return &DeadlineDeliveryHandler{deliveries: deliveries, logger: logger}
}

func (h *DeadlineDeliveryHandler) HandleDeadlineNotification(ctx context.Context, raw json.RawMessage) error {
	var p mq.DeadlineNotificationPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal deadline notification payload", zap.Error(err))
		return err
	}

	h.logger.Info("Recording deadline notification delivery",
		zap.Int("notification_id", p.NotificationID),
		zap.Int("member_id", p.MemberID),
		zap.Int("project_id", p.ProjectID),
		zap.Int("days_left", p.DaysLeft),
	)

	err := h.deliveries.Insert(ctx, &model.NotificationDelivery{
		NotificationID: p.NotificationID,
		MemberID:       p.MemberID,
		Channel:        "IN_APP",
		Message:        p.Message,
	})
	if err != nil {
		metrics.NotificationDeliveryCount.WithLabelValues("failed").Inc()
		h.logger.Error("Failed to insert delivery record",
			zap.Int("notification_id", p.NotificationID),
			zap.Error(err),
		)
		return err
	}

	metrics.NotificationDeliveryCount.WithLabelValues("success").Inc()
	return nil
}
