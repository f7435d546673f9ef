// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

// Package bridge implements the host side of the renderer message
// protocol. Each renderer session gets its own Bridge, which gates
// outbound traffic on the renderer's MAP_READY handshake: everything
// sent earlier would race the renderer's script initialization, so it
// is dropped, and the first Ready transition pushes one full photo
// snapshot to bring the surface current.
package bridge

import (
	"sync"
	"time"

	"github.com/tomtom215/filmatlas/internal/logging"
	"github.com/tomtom215/filmatlas/internal/metrics"
	"github.com/tomtom215/filmatlas/internal/models"
)

// State is the session lifecycle phase.
type State int32

const (
	// StateUninitialized: no renderer surface attached yet.
	StateUninitialized State = iota
	// StateAwaitingReady: surface attached, MAP_READY not yet received.
	StateAwaitingReady
	// StateReady: handshake complete, outbound messages flow.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAwaitingReady:
		return "awaiting_ready"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Transport delivers an encoded frame to the renderer surface.
// Delivery is fire-and-forget; the bridge never awaits acknowledgement.
type Transport interface {
	Post(data []byte) error
}

// PhotoSource supplies the current photo set for the ready snapshot.
type PhotoSource interface {
	Photos() []models.GeoPhoto
}

// Bridge is the per-session protocol state machine. Safe for
// concurrent use.
type Bridge struct {
	mu       sync.Mutex
	state    State
	degraded bool

	transport Transport
	source    PhotoSource

	readyTimeout time.Duration
	readyTimer   *time.Timer

	onMarkerPress func(models.GeoPhoto)
	onViewport    func(models.Viewport)
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithMarkerPressHandler registers the MARKER_PRESS callback.
func WithMarkerPressHandler(fn func(models.GeoPhoto)) Option {
	return func(b *Bridge) { b.onMarkerPress = fn }
}

// WithViewportHandler registers the VIEWPORT callback.
func WithViewportHandler(fn func(models.Viewport)) Option {
	return func(b *Bridge) { b.onViewport = fn }
}

// WithReadyTimeout flags the session as degraded if MAP_READY does not
// arrive within d of Load. The handshake itself is unaffected: a late
// MAP_READY still moves the session to Ready. Zero disables the timer.
func WithReadyTimeout(d time.Duration) Option {
	return func(b *Bridge) { b.readyTimeout = d }
}

// New creates a bridge in the Uninitialized state.
func New(transport Transport, source PhotoSource, opts ...Option) *Bridge {
	b := &Bridge{
		state:     StateUninitialized,
		transport: transport,
		source:    source,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load marks the renderer surface as attached and starts awaiting its
// MAP_READY. Calling Load on an already loaded bridge is a no-op.
func (b *Bridge) Load() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateUninitialized {
		return
	}
	b.state = StateAwaitingReady
	if b.readyTimeout > 0 {
		b.readyTimer = time.AfterFunc(b.readyTimeout, b.markDegraded)
	}
}

func (b *Bridge) markDegraded() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateReady {
		return
	}
	b.degraded = true
	logging.Warn().
		Dur("timeout", b.readyTimeout).
		Msg("Renderer did not report ready in time; session flagged degraded")
}

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Degraded reports whether the ready timeout elapsed before MAP_READY.
func (b *Bridge) Degraded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.degraded
}

// UpdatePhotos sends the full photo list to the renderer. Before the
// handshake completes the message is dropped, not queued: the ready
// snapshot will carry current state anyway.
func (b *Bridge) UpdatePhotos(photos []models.GeoPhoto) {
	b.send(models.MessageTypeUpdatePhotos, func() (models.BridgeMessage, error) {
		return models.NewUpdatePhotosMessage(photos)
	})
}

// CenterMap recenters the renderer viewport at the given zoom.
func (b *Bridge) CenterMap(lat, lng float64, zoom int) {
	b.send(models.MessageTypeCenterMap, func() (models.BridgeMessage, error) {
		return models.NewCenterMapMessage(lat, lng, zoom)
	})
}

// CenterOnViewport recenters using a viewport, deriving zoom from its
// longitude delta.
func (b *Bridge) CenterOnViewport(vp models.Viewport) {
	b.CenterMap(vp.CenterLat, vp.CenterLng, ZoomForLngDelta(vp.LngDelta))
}

func (b *Bridge) send(msgType string, build func() (models.BridgeMessage, error)) {
	b.mu.Lock()
	ready := b.state == StateReady
	b.mu.Unlock()

	if !ready {
		metrics.BridgeMessagesDropped.WithLabelValues(msgType, "not_ready").Inc()
		logging.Debug().Str("type", msgType).Msg("Dropping outbound message: renderer not ready")
		return
	}
	b.post(msgType, build)
}

func (b *Bridge) post(msgType string, build func() (models.BridgeMessage, error)) {
	msg, err := build()
	if err != nil {
		logging.Err(err).Str("type", msgType).Msg("Failed to build bridge message")
		return
	}
	data, err := msg.Encode()
	if err != nil {
		logging.Err(err).Str("type", msgType).Msg("Failed to encode bridge message")
		return
	}
	if err := b.transport.Post(data); err != nil {
		metrics.BridgeMessagesDropped.WithLabelValues(msgType, "transport").Inc()
		logging.Err(err).Str("type", msgType).Msg("Failed to post bridge message")
		return
	}
	metrics.BridgeMessagesSent.WithLabelValues(msgType).Inc()
}

// HandleInbound processes a raw frame from the renderer. Malformed or
// unknown messages are logged and ignored; renderer input can never
// take the session down.
func (b *Bridge) HandleInbound(data []byte) {
	msg, err := models.DecodeBridgeMessage(data)
	if err != nil {
		metrics.BridgeProtocolErrors.Inc()
		logging.Warn().Err(err).Msg("Ignoring malformed renderer message")
		return
	}
	metrics.BridgeMessagesReceived.WithLabelValues(msg.Type).Inc()

	switch msg.Type {
	case models.MessageTypeMapReady:
		b.handleMapReady()
	case models.MessageTypeMarkerPress:
		b.handleMarkerPress(msg)
	case models.MessageTypeViewport:
		b.handleViewport(msg)
	default:
		metrics.BridgeProtocolErrors.Inc()
		logging.Warn().Str("type", msg.Type).Msg("Ignoring renderer message of unknown type")
	}
}

func (b *Bridge) handleMapReady() {
	b.mu.Lock()
	if b.state == StateReady {
		b.mu.Unlock()
		return
	}
	b.state = StateReady
	if b.readyTimer != nil {
		b.readyTimer.Stop()
		b.readyTimer = nil
	}
	b.mu.Unlock()

	// One full snapshot brings the surface current; every later change
	// arrives via UpdatePhotos.
	b.post(models.MessageTypeUpdatePhotos, func() (models.BridgeMessage, error) {
		return models.NewUpdatePhotosMessage(b.source.Photos())
	})
}

func (b *Bridge) handleMarkerPress(msg models.BridgeMessage) {
	photo, err := msg.MarkerPressPhoto()
	if err != nil {
		metrics.BridgeProtocolErrors.Inc()
		logging.Warn().Err(err).Msg("Ignoring malformed MARKER_PRESS payload")
		return
	}
	if b.onMarkerPress != nil {
		b.onMarkerPress(photo)
	}
}

func (b *Bridge) handleViewport(msg models.BridgeMessage) {
	vp, err := msg.ViewportPayload()
	if err != nil {
		metrics.BridgeProtocolErrors.Inc()
		logging.Warn().Err(err).Msg("Ignoring malformed VIEWPORT payload")
		return
	}
	if b.onViewport != nil {
		b.onViewport(vp)
	}
}

// Close stops the ready timer. The bridge is not reusable afterwards.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.readyTimer != nil {
		b.readyTimer.Stop()
		b.readyTimer = nil
	}
}
