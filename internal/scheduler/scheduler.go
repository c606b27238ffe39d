// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic weather cache warm-up.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/daylog-go/internal/weather"
)

// Scheduler owns the cron runner for background maintenance jobs.
type Scheduler struct {
	cron    *cron.Cron
	weather *weather.Service
	logger  *slog.Logger
}

// New creates a new scheduler instance.
func New(weatherSvc *weather.Service, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		weather: weatherSvc,
		logger:  logger,
	}
}

// Start registers the warm-up job on the given cron spec and begins running.
// Warm-up failures are logged and retried on the next tick, never fatal.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := s.weather.WarmToday(ctx, time.Now()); err != nil {
			s.logger.Warn("weather cache warm-up failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
