package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"surveillance/internal/logger"
	"surveillance/internal/model"
	"surveillance/internal/repository"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SetupRoutes registers the status endpoints.
func SetupRoutes(hub *Hub, recordings repository.RecordingRepository, events repository.MotionEventRepository, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", statusWebsocketHandler(hub, logger))
	mux.HandleFunc("/status", statusHandler(hub, recordings, logger))
	mux.HandleFunc("/recordings", recordingsHandler(recordings, logger))
	mux.HandleFunc("/recordings/", recordingDetailHandler(recordings, events, logger))

	return mux
}

// statusWebsocketHandler upgrades a client and keeps it registered until it
// disconnects.
func statusWebsocketHandler(hub *Hub, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}

		hub.Register(connection)
		defer hub.Unregister(connection)

		for {
			if _, _, err := connection.ReadMessage(); err != nil {
				break
			}
		}
	}
}

// statusResponse is the /status payload: the latest controller state plus a
// snapshot of the recording index.
type statusResponse struct {
	StatusMessage
	Recordings int              `json:"recordings"`
	Open       *model.Recording `json:"open,omitempty"`
}

// statusHandler returns the latest controller state and index totals.
func statusHandler(hub *Hub, recordings repository.RecordingRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{StatusMessage: hub.Last()}

		if recordings != nil {
			count, err := recordings.Count()
			if err != nil {
				logger.Error("Failed to count recordings: %v", err)
			}
			resp.Recordings = count

			open, err := recordings.GetOpen()
			if err != nil {
				logger.Error("Failed to look up open recording: %v", err)
			}
			resp.Open = open
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

// recordingsHandler lists the recording index, newest first. A filename query
// parameter narrows the response to a single recording.
func recordingsHandler(recordings repository.RecordingRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if recordings == nil {
			http.Error(w, "recording index not available", http.StatusServiceUnavailable)
			return
		}

		if filename := r.URL.Query().Get("filename"); filename != "" {
			rec, err := recordings.GetByFilename(filename)
			if err != nil {
				logger.Error("Failed to look up recording %s: %v", filename, err)
				http.Error(w, "failed to look up recording", http.StatusInternalServerError)
				return
			}
			if rec == nil {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(rec)
			return
		}

		all, err := recordings.GetAll()
		if err != nil {
			logger.Error("Failed to list recordings: %v", err)
			http.Error(w, "failed to list recordings", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(all)
	}
}

// recordingDetailHandler serves /recordings/{id} and /recordings/{id}/events.
func recordingDetailHandler(recordings repository.RecordingRepository, events repository.MotionEventRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if recordings == nil {
			http.Error(w, "recording index not available", http.StatusServiceUnavailable)
			return
		}

		id, sub, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/recordings/"), "/")
		if id == "" {
			http.NotFound(w, r)
			return
		}

		rec, err := recordings.GetByID(id)
		if err != nil {
			logger.Error("Failed to look up recording %s: %v", id, err)
			http.Error(w, "failed to look up recording", http.StatusInternalServerError)
			return
		}
		if rec == nil {
			http.NotFound(w, r)
			return
		}

		switch sub {
		case "":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(rec)
		case "events":
			list, err := events.GetByRecordingID(id)
			if err != nil {
				logger.Error("Failed to list motion events for %s: %v", id, err)
				http.Error(w, "failed to list motion events", http.StatusInternalServerError)
				return
			}
			if list == nil {
				list = []model.MotionEvent{}
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(list)
		default:
			http.NotFound(w, r)
		}
	}
}
