package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/model"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/rbac"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/util"
)

type MemberStore interface {
	Insert(ctx context.Context, m *model.Member) (int, error)
	FindByEmail(ctx context.Context, email string) (*model.Member, error)
}

type Service struct {
	members   MemberStore
	jwtSecret string
}

func NewService(members MemberStore, jwtSecret string) *Service {
	return &Service{
		members:   members,
		jwtSecret: jwtSecret,
	}
}

// Register creates a new lab member.
func (s *Service) Register(ctx context.Context, name, email, password string) (*model.Member, error) {
	existing, err := s.members.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("email already exists")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	m := &model.Member{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         rbac.RoleMember,
		CreatedAt:    time.Now(),
	}

	id, err := s.members.Insert(ctx, m)
	if err != nil {
		return nil, err
	}
	m.ID = id

	return m, nil
}

// Login checks member credentials and returns a JWT.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	m, err := s.members.FindByEmail(ctx, email)
	if err != nil || m == nil {
		return "", errors.New("invalid email or password")
	}

	if !util.CheckPassword(password, m.PasswordHash) {
		return "", errors.New("invalid email or password")
	}

	return util.GenerateJWT(m.ID, s.jwtSecret)
}
