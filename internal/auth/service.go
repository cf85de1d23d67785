package auth

import (
	"swift-dispatch/internal/jwt"

	domainerrors "swift-dispatch/internal/errors"
)

// Roles recognized by the route guards.
const (
	RoleDispatcher = "dispatcher"
	RoleDriver     = "driver"
	RoleAdmin      = "admin"
)

type Service interface {
	GenerateToken(name, role string) (string, error)
}

type authService struct {
	jwt *jwt.Service
}

func NewService(jwt *jwt.Service) Service {
	return &authService{jwt: jwt}
}

func (s *authService) GenerateToken(name, role string) (string, error) {
	switch role {
	case RoleDispatcher, RoleDriver, RoleAdmin:
	default:
		return "", domainerrors.NewValidation("unknown role: " + role)
	}
	return s.jwt.GenerateToken(name, role)
}
