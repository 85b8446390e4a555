package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/scrumkit/planning-poker/internal/channel"
)

const (
	// Time allowed to write a message to the peer.
	socketWriteWait = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// socketEnvelope frames a named event as one JSON text message.
type socketEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type socketSink struct {
	conn *websocket.Conn
}

func (s socketSink) Send(msg channel.Message) error {
	payload, err := json.Marshal(socketEnvelope{Event: msg.Event, Data: json.RawMessage(msg.Data)})
	if err != nil {
		return err
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// Socket is the websocket variant of the push connection, for clients that
// prefer it over SSE. Same events, same ordering, one JSON envelope per
// message.
func (h *Handler) Socket(c *gin.Context) {
	roomID := c.Param("id")
	if _, err := h.api.GetRoom(roomID); err != nil {
		h.renderError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "websocket upgrade failed"})
		return
	}
	defer conn.Close()

	// The peer sends nothing meaningful; reading only detects disconnect.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	rc := channel.New(h.bus, roomID)
	if err := rc.Run(ctx, socketSink{conn: conn}); err != nil {
		h.log.WithError(err).WithField("room_id", roomID).Debug("socket closed on write error")
	}
}
