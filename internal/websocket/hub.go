package websocket

import (
	"encoding/json"
	"sync"
)

type BalanceUpdate struct {
	AccountID string `json:"account_id"`
	Balance   string `json:"balance"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(householdID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[householdID] == nil {
		h.clients[householdID] = make(map[*Client]struct{})
	}
	h.clients[householdID][client] = struct{}{}
}

func (h *Hub) Unregister(householdID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[householdID] == nil {
		return
	}
	delete(h.clients[householdID], client)
	if len(h.clients[householdID]) == 0 {
		delete(h.clients, householdID)
	}
}

func (h *Hub) BroadcastBalance(householdID string, update BalanceUpdate) {
	payload, _ := json.Marshal(update)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[householdID] {
		select {
		case client.send <- payload:
		default:
		}
	}
}
