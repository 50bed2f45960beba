package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/model"
)

type MemberRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMemberRepository(db *pgxpool.Pool, logger *zap.Logger) *MemberRepository {
	return &MemberRepository{db: db, logger: logger}
}

func (r *MemberRepository) Insert(ctx context.Context, m *model.Member) (int, error) {
	query := `
        INSERT INTO members (name, email, password_hash, role, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query, m.Name, m.Email, m.PasswordHash, m.Role).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert member", zap.String("email", m.Email), zap.Error(err))
		return 0, err
	}

	r.logger.Info("Member inserted successfully", zap.Int("id", id))
	return id, nil
}

// FindByEmail returns (nil, nil) when no member matches.
func (r *MemberRepository) FindByEmail(ctx context.Context, email string) (*model.Member, error) {
	query := `
        SELECT id, name, email, password_hash, role, created_at
        FROM members
        WHERE email = $1
    `
	var m model.Member
	err := r.db.QueryRow(ctx, query, email).Scan(
		&m.ID,
		&m.Name,
		&m.Email,
		&m.PasswordHash,
		&m.Role,
		&m.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByID returns (nil, nil) when no member matches.
func (r *MemberRepository) FindByID(ctx context.Context, id int) (*model.Member, error) {
	query := `
        SELECT id, name, email, password_hash, role, created_at
        FROM members
        WHERE id = $1
    `
	var m model.Member
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.Name,
		&m.Email,
		&m.PasswordHash,
		&m.Role,
		&m.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
