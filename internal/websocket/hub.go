// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

// Package websocket carries the renderer bridge protocol over
// websocket connections. The Hub tracks renderer sessions and fans
// photo updates out to each session's bridge; each bridge decides
// per-session whether its renderer is ready to receive.
package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/filmatlas/internal/eventbus"
	"github.com/tomtom215/filmatlas/internal/logging"
	"github.com/tomtom215/filmatlas/internal/metrics"
	"github.com/tomtom215/filmatlas/internal/models"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// PhotoSource supplies the current photo set for fan-out and for
// per-session ready snapshots.
type PhotoSource interface {
	Photos() []models.GeoPhoto
}

type hubCommand struct {
	photos bool // re-read source and fan out UPDATE_PHOTOS
	center bool
	lat    float64
	lng    float64
	zoom   int
}

// Hub maintains the set of renderer sessions.
type Hub struct {
	clients    map[*Client]bool
	commands   chan hubCommand
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex

	lastViewport models.Viewport
	hasViewport  bool

	source PhotoSource
	bus    *eventbus.Bus
}

// NewHub creates a hub. bus may be nil; then only direct Broadcast
// calls drive fan-out.
func NewHub(source PhotoSource, bus *eventbus.Bus) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		commands:   make(chan hubCommand, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		source:     source,
		bus:        bus,
	}
}

// BroadcastPhotos asks every ready session to receive the current
// photo set. Non-blocking; coalescing drops are harmless because each
// fan-out re-reads the source.
func (h *Hub) BroadcastPhotos() {
	select {
	case h.commands <- hubCommand{photos: true}:
	default:
		logging.Warn().Msg("hub command channel full, dropping photo fan-out")
	}
}

// BroadcastCenter recenters every ready renderer.
func (h *Hub) BroadcastCenter(lat, lng float64, zoom int) {
	select {
	case h.commands <- hubCommand{center: true, lat: lat, lng: lng, zoom: zoom}:
	default:
		logging.Warn().Msg("hub command channel full, dropping center command")
	}
}

// RunWithContext runs the hub loop until ctx is cancelled. Designed
// for suture supervision: on cancellation all sessions are closed and
// ctx.Err() is returned so the supervisor treats it as a clean stop.
//
// Selection is priority-ordered so behavior stays predictable when
// several channels are ready: shutdown first, then session lifecycle,
// then fan-out commands.
func (h *Hub) RunWithContext(ctx context.Context) error {
	var busPhotos <-chan busSignal
	if h.bus != nil {
		busPhotos = h.subscribePhotoUpdates(ctx)
		h.subscribeViewportChanges(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.addClient(client)

		case client := <-h.Unregister:
			h.removeClient(client)

		case cmd := <-h.commands:
			h.dispatch(cmd)

		case _, ok := <-busPhotos:
			if !ok {
				busPhotos = nil
				continue
			}
			h.dispatch(hubCommand{photos: true})
		}
	}
}

type busSignal struct{}

// subscribePhotoUpdates adapts the eventbus subscription into a signal
// channel the hub loop can select on.
func (h *Hub) subscribePhotoUpdates(ctx context.Context) <-chan busSignal {
	out := make(chan busSignal, 1)
	msgs, err := h.bus.Subscribe(ctx, eventbus.TopicPhotosUpdated)
	if err != nil {
		logging.Err(err).Msg("failed to subscribe to photo updates")
		close(out)
		return out
	}
	go func() {
		defer close(out)
		for msg := range msgs {
			msg.Ack()
			select {
			case out <- busSignal{}:
			default:
				// A pending signal already covers this update.
			}
		}
	}()
	return out
}

// subscribeViewportChanges keeps the hub's last-reported viewport
// current. The clusters endpoint uses it as the default extent when a
// caller supplies none.
func (h *Hub) subscribeViewportChanges(ctx context.Context) {
	msgs, err := h.bus.Subscribe(ctx, eventbus.TopicViewportChanged)
	if err != nil {
		logging.Err(err).Msg("failed to subscribe to viewport changes")
		return
	}
	go func() {
		for msg := range msgs {
			var vp models.Viewport
			if err := json.Unmarshal(msg.Payload, &vp); err != nil {
				logging.Err(err).Msg("failed to decode viewport change")
				msg.Ack()
				continue
			}
			msg.Ack()
			h.setLastViewport(vp)
		}
	}()
}

func (h *Hub) setLastViewport(vp models.Viewport) {
	h.mu.Lock()
	h.lastViewport = vp
	h.hasViewport = true
	h.mu.Unlock()
}

// LastViewport returns the most recent renderer-reported viewport. ok
// is false until any renderer has reported one.
func (h *Hub) LastViewport() (models.Viewport, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastViewport, h.hasViewport
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.RendererSessions.Set(float64(total))
	logging.Info().Uint64("client_id", client.ID()).Int("total_clients", total).Msg("renderer session connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.closeSend()
		client.bridge.Close()
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.RendererSessions.Set(float64(total))
	logging.Info().Uint64("client_id", client.ID()).Int("total_clients", total).Msg("renderer session disconnected")
}

// dispatch fans a command out to every session's bridge in client ID
// order. Each bridge gates delivery on its own handshake state.
func (h *Hub) dispatch(cmd hubCommand) {
	clients := h.orderedClients()

	switch {
	case cmd.photos:
		photos := h.source.Photos()
		for _, client := range clients {
			client.bridge.UpdatePhotos(photos)
		}
	case cmd.center:
		for _, client := range clients {
			client.bridge.CenterMap(cmd.lat, cmd.lng, cmd.zoom)
		}
	}
}

func (h *Hub) orderedClients() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.ClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(shutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func shutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	for _, client := range clients {
		client.closeSend()
		client.bridge.Close()
		delete(h.clients, client)
	}
	metrics.RendererSessions.Set(0)
}

// ClientCount returns the number of connected renderer sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
