package web

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"surveillance/internal/logger"
	"surveillance/internal/surveillance"
)

// StatusMessage is pushed to websocket clients on every controller transition.
type StatusMessage struct {
	Event  string `json:"event"`
	State  string `json:"state,omitempty"`
	Status string `json:"status,omitempty"`
	File   string `json:"file,omitempty"`
	At     string `json:"at"`
}

// Hub broadcasts controller and recorder status to websocket clients. It
// implements surveillance.StatusListener and recorder.Listener.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mutex      sync.RWMutex
	logger     *logger.Logger

	stateMu sync.RWMutex
	last    StatusMessage
}

// NewHub creates a Hub.
func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		logger:     logger,
		last: StatusMessage{
			Event:  "state",
			State:  surveillance.StateIdle.String(),
			Status: surveillance.StateIdle.StatusText(),
		},
	}
}

// Run processes client registration and broadcasts until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.logger.Info("Status client connected. Total: %d", len(h.clients))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			h.mutex.Unlock()
			h.logger.Info("Status client disconnected. Total: %d", len(h.clients))

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Error("Error sending status message: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Register adds a websocket client to the hub.
func (h *Hub) Register(client *websocket.Conn) {
	h.register <- client
}

// Unregister removes a websocket client from the hub.
func (h *Hub) Unregister(client *websocket.Conn) {
	h.unregister <- client
}

// StateChanged implements surveillance.StatusListener.
func (h *Hub) StateChanged(state surveillance.State, status string, at time.Time) {
	h.send(StatusMessage{
		Event:  "state",
		State:  state.String(),
		Status: status,
		At:     at.Format(time.RFC3339),
	})
}

// RecordingStarted implements recorder.Listener.
func (h *Hub) RecordingStarted(filename string) {
	h.send(StatusMessage{
		Event: "recording_started",
		File:  filename,
		At:    time.Now().Format(time.RFC3339),
	})
}

// RecordingStopped implements recorder.Listener.
func (h *Hub) RecordingStopped(filename string) {
	h.send(StatusMessage{
		Event: "recording_stopped",
		File:  filename,
		At:    time.Now().Format(time.RFC3339),
	})
}

// Last returns the most recent state message for the /status endpoint.
func (h *Hub) Last() StatusMessage {
	h.stateMu.RLock()
	defer h.stateMu.RUnlock()
	return h.last
}

func (h *Hub) send(msg StatusMessage) {
	if msg.Event == "state" {
		h.stateMu.Lock()
		h.last = msg
		h.stateMu.Unlock()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode status message: %v", err)
		return
	}

	// Drop the broadcast rather than block a frame tick on a slow client.
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warning("Status broadcast queue full, dropping message")
	}
}
