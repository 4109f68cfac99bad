package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hirehub/hirehub-server/internal/auth"
	"github.com/hirehub/hirehub-server/internal/chat"
	"github.com/hirehub/hirehub-server/internal/store"
)

// ChatWSHandler upgrades chat connections and bridges them to chat.Session.
type ChatWSHandler struct {
	authService *auth.Service
	store       store.Store
	registry    chat.Registry
	log         *zerolog.Logger
}

// NewChatWSHandler builds a new chat WebSocket handler.
func NewChatWSHandler(authService *auth.Service, st store.Store, registry chat.Registry, logger *zerolog.Logger) *ChatWSHandler {
	return &ChatWSHandler{
		authService: authService,
		store:       st,
		registry:    registry,
		log:         logger,
	}
}

// Serve handles GET /ws/chat/:username. Credentials ride on the
// Authorization header captured at handshake time; a bad credential is
// rejected before the upgrade, so the client sees a closed connection
// and never joins a room.
func (h *ChatWSHandler) Serve(c *gin.Context) {
	ctx := c.Request.Context()

	identity, err := h.authService.VerifyBearer(ctx, c.GetHeader("Authorization"))
	if err != nil {
		h.log.Debug().Err(err).Msg("ws auth rejected")
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	receiver, err := h.store.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Msg("failed to resolve chat receiver")
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if identity.Username == receiver.Username {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "cannot chat with yourself"})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	sess := chat.NewSession(h.registry, h.store, h.log)
	sess.Authenticate(identity)
	if err := sess.Join(receiver); err != nil {
		h.log.Error().Err(err).Msg("failed to join chat room")
		conn.Close(websocket.StatusInternalError, "internal error")
		return
	}
	defer sess.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, sess)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, sess)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("user", identity.Username).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *ChatWSHandler) readLoop(ctx context.Context, conn *websocket.Conn, sess *chat.Session) error {
	// Persistence outlives the connection: a frame already read must be
	// stored and broadcast even if the client disconnects mid-flight.
	persistCtx := context.WithoutCancel(ctx)

	for {
		_, raw, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		if err := sess.HandleInbound(persistCtx, raw); err != nil {
			// Per-message failure: drop the frame, keep the connection.
			h.log.Warn().Err(err).Str("room", sess.Room()).Msg("dropped inbound chat frame")
		}
	}
}

func (h *ChatWSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, sess *chat.Session) error {
	for {
		select {
		case event := <-sess.Events():
			if err := wsjson.Write(ctx, conn, event); err != nil {
				h.log.Error().Err(err).Str("room", sess.Room()).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ChatHistoryHandler serves the conversation read path.
type ChatHistoryHandler struct {
	history *chat.History
	log     *zerolog.Logger
}

// NewChatHistoryHandler builds a new chat history handler.
func NewChatHistoryHandler(history *chat.History, logger *zerolog.Logger) *ChatHistoryHandler {
	return &ChatHistoryHandler{
		history: history,
		log:     logger,
	}
}

// ChatMessageResponse represents a stored chat message in API responses.
type ChatMessageResponse struct {
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
}

// Conversation returns the full two-party history with the named user,
// both directions, oldest first.
// GET /api/chat/history/:username
func (h *ChatHistoryHandler) Conversation(c *gin.Context) {
	identity := CurrentIdentity(c)

	messages, err := h.history.Conversation(c.Request.Context(), identity, c.Param("username"))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		case errors.Is(err, chat.ErrSelfChat):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot chat with yourself"})
		default:
			h.log.Error().Err(err).Msg("failed to load conversation")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	response := make([]ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, ChatMessageResponse{
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			Message:    m.Content,
			Timestamp:  m.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, response)
}
