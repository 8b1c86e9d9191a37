// realtime/hub.go - Live leaderboard fan-out per hackathon
package realtime

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Send channel buffer size
const sendBufferSize = 16

const LeaderboardMessage = "leaderboard"

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Subscriber is one live connection watching a hackathon.
type Subscriber struct {
	ID          string
	HackathonID uuid.UUID
	send        chan Message
}

// Messages is drained by the connection's write pump. It is closed on Unsubscribe.
func (s *Subscriber) Messages() <-chan Message {
	return s.send
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[uuid.UUID]map[*Subscriber]struct{})}
}

func (h *Hub) Subscribe(hackathonID uuid.UUID) *Subscriber {
	sub := &Subscriber{
		ID:          uuid.NewString(),
		HackathonID: hackathonID,
		send:        make(chan Message, sendBufferSize),
	}

	h.mu.Lock()
	if h.subscribers[hackathonID] == nil {
		h.subscribers[hackathonID] = make(map[*Subscriber]struct{})
	}
	h.subscribers[hackathonID][sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.subscribers[sub.HackathonID]
	if !ok {
		return
	}
	if _, ok := clients[sub]; !ok {
		return
	}
	delete(clients, sub)
	close(sub.send)
	if len(clients) == 0 {
		delete(h.subscribers, sub.HackathonID)
	}
}

// Publish queues the leaderboard for every subscriber of the hackathon without blocking.
func (h *Hub) Publish(hackathonID uuid.UUID, payload any) {
	msg := Message{Type: LeaderboardMessage, Payload: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subscribers[hackathonID] {
		select {
		case sub.send <- msg:
		default:
			log.Printf("⚠️ Send buffer full for subscriber %s, dropping leaderboard update", sub.ID)
		}
	}
}

// Count returns how many connections watch the hackathon.
func (h *Hub) Count(hackathonID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[hackathonID])
}
