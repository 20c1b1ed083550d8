package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calebdunn/studypath-backend/internal/services"
	"github.com/calebdunn/studypath-backend/internal/types"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Respond streams the assistant reply as server-sent events, one chunk per
// data line, closing the stream after the done chunk.
func (ch *ChatHandler) Respond(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "not_authenticated", err)
		return
	}
	var req struct {
		Messages []types.ChatMessage `json:"messages"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if len(req.Messages) == 0 {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("messages is empty"))
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		RespondError(c, http.StatusInternalServerError, "streaming_unsupported", fmt.Errorf("response writer cannot stream"))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	err = ch.chatService.Respond(c.Request.Context(), userID, req.Messages, func(chunk services.ChatChunk) error {
		raw, err := json.Marshal(chunk)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", raw); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		// Headers are already out; report the failure in-stream.
		fmt.Fprintf(c.Writer, "data: {\"type\":\"error\",\"content\":%q}\n\n", err.Error())
		flusher.Flush()
	}
}
