package handler

import "github.com/casdu/portal-api/internal/core/domain"

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type thaidLoginRequest struct {
	Code string `json:"code,omitempty"`
	CID  string `json:"cid,omitempty"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=8"`
}

type authResponse struct {
	Token string                `json:"token"`
	User  *domain.SafePrincipal `json:"user"`
}
