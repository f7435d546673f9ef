// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

package websocket

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/filmatlas/internal/bridge"
	"github.com/tomtom215/filmatlas/internal/eventbus"
	"github.com/tomtom215/filmatlas/internal/logging"
	"github.com/tomtom215/filmatlas/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Sessions are read-mostly and carry no credentials; the embedded
	// renderer page may also be proxied under another origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SessionConfig tunes per-session bridge behavior.
type SessionConfig struct {
	// ReadyTimeout flags sessions whose renderer never reports ready.
	// Zero disables the timer.
	ReadyTimeout time.Duration
}

// Handler returns the HTTP handler that upgrades a renderer connection
// and attaches it to the hub. Each session gets its own bridge wired
// back to the event bus: marker presses are logged, viewport reports
// are republished for interested subscribers.
func Handler(hub *Hub, source PhotoSource, bus *eventbus.Bus, cfg SessionConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Err(err).Msg("websocket upgrade failed")
			return
		}

		client := NewClient(hub, conn)

		opts := []bridge.Option{
			bridge.WithMarkerPressHandler(func(photo models.GeoPhoto) {
				logging.Info().
					Uint64("client_id", client.ID()).
					Str("photo_id", photo.ID).
					Msg("marker pressed")
			}),
			bridge.WithViewportHandler(func(vp models.Viewport) {
				publishViewport(bus, vp)
			}),
		}
		if cfg.ReadyTimeout > 0 {
			opts = append(opts, bridge.WithReadyTimeout(cfg.ReadyTimeout))
		}

		client.AttachBridge(bridge.New(client, source, opts...))
		hub.Register <- client
		client.Start()
	}
}

func publishViewport(bus *eventbus.Bus, vp models.Viewport) {
	if bus == nil {
		return
	}
	payload, err := json.Marshal(vp)
	if err != nil {
		logging.Err(err).Msg("failed to marshal viewport")
		return
	}
	if err := bus.Publish(eventbus.TopicViewportChanged, payload); err != nil {
		logging.Err(err).Msg("failed to publish viewport change")
	}
}
