package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/model"
)

type DeliveryRepository struct {
	db *pgxpool.Pool
}

func NewDeliveryRepository(db *pgxpool.Pool) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

func (r *DeliveryRepository) Insert(ctx context.Context, d *model.NotificationDelivery) error {
	query := `
        INSERT INTO notification_deliveries (notification_id, member_id, channel, message, created_at)
        VALUES ($1, $2, $3, $4, NOW())
    `
	_, err := r.db.Exec(ctx, query, d.NotificationID, d.MemberID, d.Channel, d.Message)
	return err
}
