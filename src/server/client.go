package server

import (
	"errors"
	"time"

	"market-cache/src/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 2 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Inbound frames are only {"command":"status"}.
	maxCommandSize = 512

	// Queued progress snapshots per subscriber before it counts as slow.
	progressBuffer = 32
)

// -----------------------------------------------------------------------------

// Client is one seed-progress subscriber. The hub owns progress and is the
// only one that closes it.
type Client struct {
	hub      *FastAPIServer
	conn     *websocket.Conn
	progress chan *models.MSeedProgress
}

func newClient(hub *FastAPIServer, conn *websocket.Conn) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		progress: make(chan *models.MSeedProgress, progressBuffer),
	}
}

// -----------------------------------------------------------------------------

// readCommands decodes subscriber commands until the connection drops. A
// frame that is not a command closes the connection.
func (c *Client) readCommands() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.quit:
		}
		c.conn.Close()
		c.hub.Logger.Debug("Progress subscriber left")
	}()

	c.conn.SetReadLimit(maxCommandSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var cmd models.MClientCommand
		if err := c.conn.ReadJSON(&cmd); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				c.hub.Logger.Info("Dropping progress subscriber: %v", err)
			}
			return
		}
		c.handleCommand(cmd)
	}
}

// handleCommand answers "status" with the latest snapshot; anything else is ignored.
func (c *Client) handleCommand(cmd models.MClientCommand) {
	if cmd.Command != "status" {
		c.hub.Logger.Debug("Ignoring subscriber command %q", cmd.Command)
		return
	}
	select {
	case c.hub.status <- c:
	case <-c.hub.quit:
	}
}

// -----------------------------------------------------------------------------

// writeProgress sends each queued snapshot as JSON and keeps the link alive with pings.
func (c *Client) writeProgress() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case p, ok := <-c.progress:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(p); err != nil {
				c.hub.Logger.Info("Progress write failed: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
