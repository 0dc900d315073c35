package cron

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/christianmesinas/famplan/internal/service"
	"github.com/christianmesinas/famplan/pkg/logger"
)

// Scheduler runs the periodic maintenance jobs
type Scheduler struct {
	cron       *cron.Cron
	authSvc    *service.AuthService
	inviteSvc  *service.InviteService
	messageSvc *service.MessageService
}

// NewScheduler creates a scheduler wired to the cleanup services
func NewScheduler(authSvc *service.AuthService, inviteSvc *service.InviteService, messageSvc *service.MessageService) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		authSvc:    authSvc,
		inviteSvc:  inviteSvc,
		messageSvc: messageSvc,
	}
}

// Start registers the jobs and starts the scheduler
func (s *Scheduler) Start() error {
	// Hourly: drop expired sessions
	if _, err := s.cron.AddFunc("0 * * * *", s.cleanupSessions); err != nil {
		return err
	}

	// Weekly: prune consumed invites older than 90 days
	if _, err := s.cron.AddFunc("0 3 * * 0", s.pruneInvites); err != nil {
		return err
	}

	// Daily: prune notifications older than 30 days
	if _, err := s.cron.AddFunc("30 3 * * *", s.pruneNotifications); err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Msg("Cleanup scheduler started")
	return nil
}

// Stop halts the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cleanup scheduler stopped")
}

func (s *Scheduler) cleanupSessions() {
	deleted, err := s.authSvc.CleanupExpiredSessions()
	if err != nil {
		logger.Error().Err(err).Msg("Session cleanup failed")
		return
	}
	if deleted > 0 {
		logger.Info().Int64("deleted", deleted).Msg("Expired sessions removed")
	}
}

func (s *Scheduler) pruneInvites() {
	pruned, err := s.inviteSvc.PruneConsumedInvites(90 * 24 * time.Hour)
	if err != nil {
		logger.Error().Err(err).Msg("Invite prune failed")
		return
	}
	if pruned > 0 {
		logger.Info().Int64("pruned", pruned).Msg("Consumed invites pruned")
	}
}

func (s *Scheduler) pruneNotifications() {
	pruned, err := s.messageSvc.PruneNotifications(30 * 24 * time.Hour)
	if err != nil {
		logger.Error().Err(err).Msg("Notification prune failed")
		return
	}
	if pruned > 0 {
		logger.Info().Int64("pruned", pruned).Msg("Stale notifications pruned")
	}
}
