package service

import (
	"github.com/google/uuid"

	"healtogether/cmd/internal/domain/entity"
)

// Caller is the authenticated user a request acts on behalf of.
type Caller struct {
	UserID string
	Role   entity.Role
}

func newID() string {
	return uuid.NewString()
}
