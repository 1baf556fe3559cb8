package handlers

import (
	"github.com/anjiri1684/matrix_mlm/middleware"
	"github.com/anjiri1684/matrix_mlm/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// EarningsUpgrade authenticates the ?token= query before the websocket
// upgrade and hands the member code to the connection through Locals.
func EarningsUpgrade(c *fiber.Ctx) error {
	if !websocketcontrib.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	claims, err := middleware.ParseToken(c.Query("token"))
	if err != nil {
		return unauthorized(c)
	}
	code, _ := claims["member_code"].(string)
	if code == "" {
		return unauthorized(c)
	}
	c.Locals("member_code", code)
	return c.Next()
}

// ServeEarnings keeps the socket registered until the client goes away.
// Incoming frames are ignored.
func ServeEarnings(c *websocketcontrib.Conn) {
	code, _ := c.Locals("member_code").(string)
	client := &websocket.Client{MemberCode: code, Conn: c}
	websocket.Register <- client
	defer func() {
		websocket.Unregister <- client
		c.Close()
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseAbnormalClosure) {
				log.Debugf("earnings socket closed for %s: %v", code, err)
			} else {
				log.Warnf("earnings socket read error for %s: %v", code, err)
			}
			return
		}
	}
}
