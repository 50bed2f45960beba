package model

import "time"

type Member struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // member / admin
	CreatedAt    time.Time `json:"created_at"`
}
