// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

package services

import (
	"context"
)

// HubRunner matches the websocket hub's supervised entry point.
type HubRunner interface {
	RunWithContext(ctx context.Context) error
}

// HubService supervises the renderer session hub.
type HubService struct {
	hub HubRunner
}

// NewHubService wraps hub for supervision.
func NewHubService(hub HubRunner) *HubService {
	return &HubService{hub: hub}
}

// Serve implements suture.Service.
func (s *HubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer for supervisor logs.
func (s *HubService) String() string {
	return "websocket-hub"
}
