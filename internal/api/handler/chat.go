package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/statside/sportschat/internal/model/dto"
	"github.com/statside/sportschat/internal/pkg/response"
	"github.com/statside/sportschat/internal/service"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// Send handles one chat turn.
// POST /api/v1/chat
func (h *ChatHandler) Send(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.chatService.Handle(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, resp)
}

// History returns a session's transcript.
// GET /api/v1/chat/sessions/:id
func (h *ChatHandler) History(c *gin.Context) {
	resp, err := h.chatService.History(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, resp)
}
