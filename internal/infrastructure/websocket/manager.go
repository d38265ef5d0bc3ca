package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"expressivart/internal/infrastructure/metrics"
	"expressivart/pkg/logger"
)

// Manager tracks open clients per user.
type Manager struct {
	clients    map[string]map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	log        zerolog.Logger
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        logger.With("websocket"),
	}
}

// Start runs the registration loop until ctx is done, then closes every client.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.add(client)
			case client := <-m.Unregister:
				m.remove(client)
			case <-ctx.Done():
				close(m.done)
				m.log.Info().Int("connections", m.Count()).Msg("websocket manager stopping")
				m.CloseAll()
				return
			}
		}
	}()
}

// Join registers client. After shutdown the client is closed instead.
func (m *Manager) Join(client *Client) {
	select {
	case m.Register <- client:
	case <-m.done:
		client.Close(websocket.CloseGoingAway, "server shutting down")
	}
}

// Leave unregisters client; it never blocks once the manager has stopped.
func (m *Manager) Leave(client *Client) {
	select {
	case m.Unregister <- client:
	case <-m.done:
	}
}

func (m *Manager) add(client *Client) {
	m.mutex.Lock()
	byID, ok := m.clients[client.UserID]
	if !ok {
		byID = make(map[string]*Client)
		m.clients[client.UserID] = byID
	}
	byID[client.ID] = client
	m.mutex.Unlock()

	metrics.WebsocketConnections.Inc()
	m.log.Debug().Str("user_id", client.UserID).Str("client", client.ID).Msg("client registered")
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	byID, ok := m.clients[client.UserID]
	if ok {
		if _, ok = byID[client.ID]; ok {
			delete(byID, client.ID)
			if len(byID) == 0 {
				delete(m.clients, client.UserID)
			}
		}
	}
	m.mutex.Unlock()

	if ok {
		metrics.WebsocketConnections.Dec()
		m.log.Debug().Str("user_id", client.UserID).Str("client", client.ID).Msg("client unregistered")
	}
}

// SendToUser queues payload on every connection of userID.
func (m *Manager) SendToUser(userID string, payload []byte) int {
	m.mutex.RLock()
	targets := make([]*Client, 0, len(m.clients[userID]))
	for _, c := range m.clients[userID] {
		targets = append(targets, c)
	}
	m.mutex.RUnlock()

	sent := 0
	for _, c := range targets {
		if c.Send(payload) == nil {
			sent++
		}
	}
	return sent
}

// Rekey moves a client to another user after it re-authenticates.
func (m *Manager) Rekey(client *Client, userID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if byID, ok := m.clients[client.UserID]; ok {
		delete(byID, client.ID)
		if len(byID) == 0 {
			delete(m.clients, client.UserID)
		}
	}
	client.UserID = userID
	byID, ok := m.clients[userID]
	if !ok {
		byID = make(map[string]*Client)
		m.clients[userID] = byID
	}
	byID[client.ID] = client
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	n := 0
	for _, byID := range m.clients {
		n += len(byID)
	}
	return n
}

func (m *Manager) CloseAll() {
	m.mutex.RLock()
	var all []*Client
	for _, byID := range m.clients {
		for _, c := range byID {
			all = append(all, c)
		}
	}
	m.mutex.RUnlock()

	for _, c := range all {
		c.Close(websocket.CloseGoingAway, "server shutting down")
	}
}
