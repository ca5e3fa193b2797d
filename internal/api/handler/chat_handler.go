package handler

import (
	"Huddle/internal/api/dto"
	"Huddle/internal/model"
	"Huddle/internal/pkg/response"
	"Huddle/internal/pkg/util"
	"Huddle/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatSvc service.ChatService
}

func NewChatHandler(chatSvc service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatSvc: chatSvc,
	}
}

func (s *ChatHandler) ListChannels(c *gin.Context) {
	channels, err := s.chatSvc.ListChannels(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, channels)
}

func (s *ChatHandler) ListMessages(c *gin.Context) {
	userID := c.GetUint64("user_id")

	var req dto.ListMessagesReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}
	key, err := model.ParseConversationKey(req.Context)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, err := s.chatSvc.ListMessages(c.Request.Context(), userID, key, req.Cursor, req.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

func (s *ChatHandler) GetThread(c *gin.Context) {
	userID := c.GetUint64("user_id")
	messageID, ok := messageIDParam(c)
	if !ok {
		return
	}

	replies, err := s.chatSvc.GetThread(c.Request.Context(), userID, messageID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, replies)
}

func (s *ChatHandler) SendMessage(c *gin.Context) {
	userID := c.GetUint64("user_id")

	var req dto.SendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}
	key, err := model.ParseConversationKey(req.Context)
	if err != nil {
		response.Error(c, err)
		return
	}

	msg, err := s.chatSvc.SendMessage(c.Request.Context(), userID, key, req.Body, req.Files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.SendMessageResp{ID: msg.ID, Message: msg})
}

func (s *ChatHandler) EditMessage(c *gin.Context) {
	userID := c.GetUint64("user_id")
	messageID, ok := messageIDParam(c)
	if !ok {
		return
	}

	var req dto.EditMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	msg, err := s.chatSvc.EditMessage(c.Request.Context(), userID, messageID, req.Body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, msg)
}

func (s *ChatHandler) DeleteMessage(c *gin.Context) {
	userID := c.GetUint64("user_id")
	messageID, ok := messageIDParam(c)
	if !ok {
		return
	}

	if err := s.chatSvc.DeleteMessage(c.Request.Context(), userID, messageID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *ChatHandler) ToggleReaction(c *gin.Context) {
	userID := c.GetUint64("user_id")
	messageID, ok := messageIDParam(c)
	if !ok {
		return
	}

	var req dto.ToggleReactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.chatSvc.ToggleReaction(c.Request.Context(), userID, messageID, req.Emoji)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func messageIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("message_id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, service.ErrParamInvalid)
		return 0, false
	}
	return id, true
}
