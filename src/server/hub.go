package server

import (
	"net/http"
	"time"

	"market-cache/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *FastAPIServer) handleWebsockets() {
	for {
		select {
		case <-s.quit:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.progress)
			}
			s.connections.Store(0)
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connections.Store(int64(len(s.clients)))
			// Send the last known progress on connect
			client.progress <- s.snapshot("INITIAL")

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.progress)
			}
			s.connections.Store(int64(len(s.clients)))

		case client := <-s.status:
			if _, ok := s.clients[client]; ok {
				select {
				case client.progress <- s.snapshot("STATUS"):
				default:
				}
			}

		case message := <-s.broadcast:
			s.stateMutex.Lock()
			s.latestState = message
			s.stateMutex.Unlock()

			for client := range s.clients {
				select {
				case client.progress <- message:
				default:
					// Client too slow, drop it so the hub never blocks
					delete(s.clients, client)
					close(client.progress)
				}
			}
			s.connections.Store(int64(len(s.clients)))
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues a seed progress message for every subscriber.
func (s *FastAPIServer) Broadcast(message interface{}) {
	var progress *models.MSeedProgress
	switch m := message.(type) {
	case models.MSeedProgress:
		progress = &m
	case *models.MSeedProgress:
		progress = m
	case *models.MSeedSummary:
		progress = &models.MSeedProgress{Type: "UPDATE", Summary: m, Universe: m.TotalStocks, Timestamp: m.FinishedAt}
	default:
		s.Logger.Info("Broadcast expected MSeedProgress, got %T", message)
		return
	}
	if progress.Timestamp == 0 {
		progress.Timestamp = time.Now().UTC().Unix()
	}

	select {
	case s.broadcast <- progress:
	case <-s.quit:
	}
}

// -----------------------------------------------------------------------------

// snapshot copies the latest state under the given message type.
func (s *FastAPIServer) snapshot(kind string) *models.MSeedProgress {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	cp := *s.latestState
	cp.Type = kind
	return &cp
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := newClient(s, conn)

	select {
	case s.register <- client:
	case <-s.quit:
		conn.Close()
		return
	}

	go client.writeProgress()
	go client.readCommands()
}
