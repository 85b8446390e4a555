package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

// JoinQR renders the room's join link as a QR code, for sharing the session
// with the people in the meeting.
func (h *Handler) JoinQR(c *gin.Context) {
	roomID := c.Param("id")
	if _, err := h.api.GetRoom(roomID); err != nil {
		h.renderError(c, err)
		return
	}

	joinURL := fmt.Sprintf("%s/rooms/%s/join", h.baseURL, roomID)
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
