// handlers/events.go
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	log "github.com/sirupsen/logrus"

	"fithub/services"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// UpgradeEvents rejects plain HTTP requests to the event stream.
func UpgradeEvents(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// EventStream pushes the caller's progression events over a websocket until
// either side hangs up.
var EventStream = websocket.New(func(conn *websocket.Conn) {
	userID, ok := wsUserID(conn)
	if !ok {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthenticated"))
		_ = conn.Close()
		return
	}

	sub := svc.Events.Subscribe(userID)
	defer sub.Close()
	defer conn.Close()

	logger := log.WithField("user_id", userID)
	logger.Debug("event stream opened")

	done := make(chan struct{})
	go readPump(conn, done)
	writePump(conn, sub, done)

	logger.Debug("event stream closed")
})

func wsUserID(conn *websocket.Conn) (uint, bool) {
	switch id := conn.Locals("userId").(type) {
	case float64:
		return uint(id), id > 0
	case uint:
		return id, id > 0
	}
	return 0, false
}

// readPump drains client frames so pongs and close frames get processed.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Debug("event stream read failed")
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, sub *services.Subscription, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				log.WithError(err).Debug("event stream write failed")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
