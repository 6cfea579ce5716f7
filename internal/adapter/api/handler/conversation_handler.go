package handler

import (
	"github.com/labstack/echo/v4"

	"pasariklan/internal/usecase"
	"pasariklan/pkg/response"
	"pasariklan/pkg/utils"
)

type ConversationHandler struct {
	conversationUseCase *usecase.ConversationUseCase
}

func NewConversationHandler(conversationUseCase *usecase.ConversationUseCase) *ConversationHandler {
	return &ConversationHandler{
		conversationUseCase: conversationUseCase,
	}
}

type startConversationRequest struct {
	CounterpartyID string `json:"counterparty_id"`
	ListingID      string `json:"listing_id"`
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

// StartConversation starts a conversation or returns the existing one for
// the same pair. 201 only when this request created it.
func (h *ConversationHandler) StartConversation(c echo.Context) error {
	var req startConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	result, err := h.conversationUseCase.StartConversation(c.Request().Context(), userID, usecase.StartConversationInput{
		CounterpartyID: req.CounterpartyID,
		ListingID:      req.ListingID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	if result.Created {
		return response.Created(c, result)
	}
	return response.Success(c, result)
}

// GetUserConversations lists the caller's conversations with unread counts
func (h *ConversationHandler) GetUserConversations(c echo.Context) error {
	userID := c.Get("uid").(string)
	limit, offset := utils.GetLimitOffset(c, 20)

	conversations, total, err := h.conversationUseCase.GetUserConversations(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, conversations, total, limit, offset)
}

func (h *ConversationHandler) GetConversationByID(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	conversation, err := h.conversationUseCase.GetConversationByID(c.Request().Context(), userID, conversationID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversation)
}

// SendMessage appends a message to a conversation
func (h *ConversationHandler) SendMessage(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.conversationUseCase.SendMessage(c.Request().Context(), userID, conversationID, req.Text)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// GetConversationMessages returns the thread oldest-first; viewing it marks
// the caller's unread messages as read.
func (h *ConversationHandler) GetConversationMessages(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)
	limit, offset := utils.GetLimitOffset(c, 0)

	messages, total, err := h.conversationUseCase.GetConversationMessages(c.Request().Context(), userID, conversationID, limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	if limit <= 0 {
		return response.Success(c, messages)
	}
	return response.SuccessPaginated(c, messages, total, limit, offset)
}

// MarkConversationRead explicitly marks the caller's unread messages as read
func (h *ConversationHandler) MarkConversationRead(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	marked, err := h.conversationUseCase.MarkConversationRead(c.Request().Context(), userID, conversationID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int{"marked": marked})
}

// GetUnreadCount returns the caller's total unread messages across all
// conversations.
func (h *ConversationHandler) GetUnreadCount(c echo.Context) error {
	userID := c.Get("uid").(string)

	count, err := h.conversationUseCase.GetUnreadCount(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int64{"count": count})
}
