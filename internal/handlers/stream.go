package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/scrumkit/planning-poker/internal/channel"
)

// sseSink frames channel messages as Server-Sent Events on the response.
type sseSink struct {
	w gin.ResponseWriter
}

func (s sseSink) Send(msg channel.Message) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data); err != nil {
		return err
	}
	s.w.Flush()
	return nil
}

// StreamEvents is the long-lived push connection for one room. It holds the
// request open, forwarding filtered domain events as SSE until the client
// disconnects.
func (h *Handler) StreamEvents(c *gin.Context) {
	roomID := c.Param("id")
	if _, err := h.api.GetRoom(roomID); err != nil {
		h.renderError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.Flush()

	rc := channel.New(h.bus, roomID)
	if err := rc.Run(c.Request.Context(), sseSink{w: c.Writer}); err != nil {
		h.log.WithError(err).WithField("room_id", roomID).Debug("event stream closed on write error")
	}
}
