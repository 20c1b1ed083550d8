package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/calebdunn/studypath-backend/internal/services"
	"github.com/calebdunn/studypath-backend/internal/sse"
)

// SSEHandler owns the live client registry: Stream creates a client and holds
// the connection, Subscribe/Unsubscribe adjust its channels by client id.
type SSEHandler struct {
	hub         *sse.Hub
	planService services.PlanService

	mu      sync.Mutex
	clients map[uuid.UUID]*sse.Client
}

func NewSSEHandler(hub *sse.Hub, planService services.PlanService) *SSEHandler {
	return &SSEHandler{
		hub:         hub,
		planService: planService,
		clients:     make(map[uuid.UUID]*sse.Client),
	}
}

func (sh *SSEHandler) Stream(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "not_authenticated", err)
		return
	}

	client := sh.hub.NewClient(userID)
	sh.hub.AddChannel(client, sse.UserChannel(userID))

	sh.mu.Lock()
	sh.clients[client.ID] = client
	sh.mu.Unlock()

	defer func() {
		sh.mu.Lock()
		delete(sh.clients, client.ID)
		sh.mu.Unlock()
		sh.hub.CloseClient(client)
	}()

	// The client id arrives as the first event so the browser can address
	// subscribe calls to this connection.
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	client.Outbound <- sse.Message{
		Channel: sse.UserChannel(userID),
		Event:   "Connected",
		Data:    map[string]any{"client_id": client.ID},
	}

	sh.hub.ServeHTTP(c.Writer, c.Request, client)
}

func (sh *SSEHandler) Subscribe(c *gin.Context) {
	client, planID, ok := sh.bindSubscription(c)
	if !ok {
		return
	}
	sh.hub.AddChannel(client, sse.PlanChannel(planID))
	RespondOK(c, gin.H{"subscribed": sse.PlanChannel(planID)})
}

func (sh *SSEHandler) Unsubscribe(c *gin.Context) {
	client, planID, ok := sh.bindSubscription(c)
	if !ok {
		return
	}
	sh.hub.RemoveChannel(client, sse.PlanChannel(planID))
	RespondOK(c, gin.H{"unsubscribed": sse.PlanChannel(planID)})
}

func (sh *SSEHandler) bindSubscription(c *gin.Context) (*sse.Client, uuid.UUID, bool) {
	userID, err := currentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "not_authenticated", err)
		return nil, uuid.Nil, false
	}
	var req struct {
		ClientID uuid.UUID `json:"client_id"`
		PlanID   uuid.UUID `json:"plan_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return nil, uuid.Nil, false
	}

	sh.mu.Lock()
	client := sh.clients[req.ClientID]
	sh.mu.Unlock()
	if client == nil || client.UserID != userID {
		RespondError(c, http.StatusNotFound, "client_not_found", nil)
		return nil, uuid.Nil, false
	}

	plan, err := sh.planService.Get(c.Request.Context(), userID, req.PlanID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_failed", err)
		return nil, uuid.Nil, false
	}
	if plan == nil {
		RespondError(c, http.StatusNotFound, "plan_not_found", nil)
		return nil, uuid.Nil, false
	}
	return client, req.PlanID, true
}
