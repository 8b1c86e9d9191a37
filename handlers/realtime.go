// handlers/realtime.go - Live leaderboard over WebSocket
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/Sarthaklad1034/HackMatrix/realtime"
	"github.com/Sarthaklad1034/HackMatrix/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second // Time allowed to write a message
	pingPeriod = 15 * time.Second // Send pings at this interval
	pongWait   = 2 * pingPeriod
)

type RealtimeHandler struct {
	Hub        *realtime.Hub
	Hackathons *services.HackathonService
	Scoring    *services.ScoringService
}

// Upgrade rejects plain HTTP requests and unknown hackathon ids before the handshake.
func (h *RealtimeHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	id, err := paramID(c, "id", "Hackathon")
	if err != nil {
		return err
	}
	if _, err := h.Hackathons.Get(c.UserContext(), id); err != nil {
		return err
	}
	c.Locals("hackathonId", id)
	return c.Next()
}

// Leaderboard streams the hackathon's standings: once on connect, then after every finalization.
// GET /ws/hackathons/:id/leaderboard
func (h *RealtimeHandler) Leaderboard() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		hackathonID, _ := conn.Locals("hackathonId").(uuid.UUID)
		sub := h.Hub.Subscribe(hackathonID)
		defer h.Hub.Unsubscribe(sub)

		if entries, err := h.Scoring.Leaderboard(context.Background(), hackathonID); err == nil {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(realtime.Message{Type: realtime.LeaderboardMessage, Payload: entries}); err != nil {
				return
			}
		}

		done := make(chan struct{})
		stopped := make(chan struct{})
		go func() {
			h.writePump(conn, sub, done)
			close(stopped)
		}()
		readPump(conn)
		close(done)
		<-stopped
	})
}

// readPump discards client frames and returns when the connection drops.
func readPump(conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *RealtimeHandler) writePump(conn *websocket.Conn, sub *realtime.Subscriber, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sub.Messages():
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("Write error for subscriber %s: %v", sub.ID, err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
