// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

package websocket

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/filmatlas/internal/bridge"
	"github.com/tomtom215/filmatlas/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // renderer frames are small
)

// ErrSendBufferFull is returned by Post when the client's outbound
// buffer is saturated. The frame is dropped, per the fire-and-forget
// bridge contract.
var ErrSendBufferFull = errors.New("websocket send buffer full")

// ErrClientClosed is returned by Post after the hub has shut the
// session down. Inbound frames can race shutdown, so the bridge may
// still call Post afterwards; the frame is dropped like any other.
var ErrClientClosed = errors.New("websocket client closed")

// clientIDCounter hands out monotonically increasing IDs so clients
// can be iterated in a consistent order during fan-out.
var clientIDCounter atomic.Uint64

// Client owns one renderer websocket connection and its protocol
// bridge. It implements bridge.Transport: Post queues an encoded frame
// for the write pump, dropping rather than blocking when the buffer
// is full.
type Client struct {
	id     uint64
	hub    *Hub
	conn   *websocket.Conn
	bridge *bridge.Bridge

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// NewClient creates a client for conn. The bridge is attached by the
// caller (it needs the client as its transport).
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   clientIDCounter.Add(1),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 64),
	}
}

// ID returns the client's ordering identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// AttachBridge wires the per-session protocol state machine. Must be
// called before Start.
func (c *Client) AttachBridge(b *bridge.Bridge) {
	c.bridge = b
}

// Bridge returns the session's protocol bridge.
func (c *Client) Bridge() *bridge.Bridge {
	return c.bridge
}

// Post implements bridge.Transport.
func (c *Client) Post(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// closeSend closes the outbound buffer exactly once. The read pump may
// still be delivering a renderer frame when the hub shuts a session
// down; the flag turns any Post racing the close into ErrClientClosed
// instead of a send on a closed channel.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump forwards renderer frames to the bridge until the connection
// drops, then unregisters the client.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			break
		}
		c.bridge.HandleInbound(data)
	}
}

// writePump drains the send buffer onto the connection and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if !ok {
				// The hub closed the channel.
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logging.Error().Err(err).Msg("failed to write close message")
				}
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Error().Err(err).Msg("failed to write frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins the read and write pumps and marks the renderer surface
// as loaded.
func (c *Client) Start() {
	c.bridge.Load()
	go c.writePump()
	go c.readPump()
}
