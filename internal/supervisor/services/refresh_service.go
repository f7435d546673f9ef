// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

package services

import (
	"context"
	"time"

	"github.com/tomtom215/filmatlas/internal/logging"
)

// Refresher matches the photo store's refresh entry point.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshService periodically refetches the photo set from the
// catalogue backend. One refresh runs immediately on start so the map
// has data as soon as the backend answers; fetch errors are logged,
// not returned, so a flapping backend does not churn the supervisor.
type RefreshService struct {
	refresher Refresher
	interval  time.Duration
}

// NewRefreshService creates the periodic refresh loop.
func NewRefreshService(refresher Refresher, interval time.Duration) *RefreshService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &RefreshService{refresher: refresher, interval: interval}
}

// Serve implements suture.Service.
func (s *RefreshService) Serve(ctx context.Context) error {
	s.refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *RefreshService) refresh(ctx context.Context) {
	if err := s.refresher.Refresh(ctx); err != nil {
		logging.Err(err).Msg("periodic photo refresh failed")
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *RefreshService) String() string {
	return "photo-refresh"
}
