package handler

import (
	"Huddle/internal/pkg/response"
	"Huddle/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{
		authSvc: authSvc,
	}
}

// Logout 注销当前 Token 并清空该用户的在线会话
func (s *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString("token")
	if token == "" {
		response.Error(c, service.ErrLoginRequired)
		return
	}
	if err := s.authSvc.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
