// Package scheduler runs IDIS's background cron jobs: the retention sweep
// that hard-deletes deliverables past their retention window and the BYOK
// key-rotation reminder, following the teacher's cron_scheduler.go pattern
// (cron.New(cron.WithSeconds()) plus a FuncJob per registered schedule).
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/albarami/idis/internal/audit"
	"github.com/albarami/idis/internal/deliverable"
	domainaudit "github.com/albarami/idis/internal/domain/audit"
	"github.com/albarami/idis/internal/platform/logging"
	"github.com/albarami/idis/internal/security"
	"github.com/albarami/idis/internal/storage"
)

// Scheduler owns the process's cron instance and the store/auditor handles
// its jobs read and mutate through.
type Scheduler struct {
	cron    *cron.Cron
	stores  storage.Stores
	auditor *audit.Pipeline
	log     *logging.Logger
}

// New builds a Scheduler with no jobs registered yet; call
// RegisterRetentionSweep/RegisterBYOKRotationReminder before Start.
func New(stores storage.Stores, auditor *audit.Pipeline, log *logging.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		stores:  stores,
		auditor: auditor,
		log:     log,
	}
}

// Start begins running registered jobs on their schedules.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for any in-flight job to finish before returning.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RegisterRetentionSweep schedules the retention sweep on expr (a 6-field
// cron expression with seconds, matching cron.WithSeconds()).
func (s *Scheduler) RegisterRetentionSweep(expr string) error {
	_, err := s.cron.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.runRetentionSweep(ctx); err != nil {
			s.log.WithError(err).Error("retention sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule retention sweep %q: %w", expr, err)
	}
	return nil
}

// RegisterBYOKRotationReminder schedules the key-rotation reminder on expr,
// warning about any ACTIVE key whose last rotation is older than maxAge.
func (s *Scheduler) RegisterBYOKRotationReminder(expr string, maxAge time.Duration) error {
	_, err := s.cron.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.runBYOKRotationReminder(ctx, maxAge); err != nil {
			s.log.WithError(err).Error("byok rotation reminder failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule byok rotation reminder %q: %w", expr, err)
	}
	return nil
}

// runRetentionSweep implements the DELIVERABLES retention class from
// spec.md §3/security.DefaultRetentionPolicies: deliverables generated more
// than RetentionDays ago are hard-deleted unless an active legal hold
// blocks them, mirroring BlockDeletionIfHeld's HTTP-path gating.
func (s *Scheduler) runRetentionSweep(ctx context.Context) error {
	policy, ok := security.DefaultRetentionPolicies[security.RetentionDeliverables]
	if !ok || !policy.HardDeleteAllowed || policy.RetentionDays == 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -policy.RetentionDays)

	expired, err := s.stores.Deliverable.ListExpired(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list expired deliverables: %w", err)
	}

	for _, d := range expired {
		held, err := s.stores.LegalHold.IsHeld(ctx, d.TenantID, security.HoldTargetArtifact, d.DeliverableID)
		if err != nil {
			s.log.WithError(err).WithFields(map[string]interface{}{"deliverable_id": d.DeliverableID}).
				Warn("legal hold lookup failed during retention sweep, skipping")
			continue
		}
		if held {
			continue
		}
		if err := s.stores.Deliverable.DeleteDeliverable(ctx, d.TenantID, d.DeliverableID); err != nil {
			s.log.WithError(err).WithFields(map[string]interface{}{"deliverable_id": d.DeliverableID}).
				Error("retention sweep delete failed")
			continue
		}
		if err := s.emitSweepAudit(ctx, d); err != nil {
			// Audit emission is fatal for the mutation it describes
			// (spec.md §4.5); the row is already gone, so this can only be
			// logged, not rolled back.
			s.log.WithError(err).WithFields(map[string]interface{}{"deliverable_id": d.DeliverableID}).
				Error("retention sweep audit emission failed")
		}
	}
	return nil
}

func (s *Scheduler) emitSweepAudit(ctx context.Context, d deliverable.Record) error {
	ev, err := audit.Build(audit.BuildParams{
		TenantID:     d.TenantID,
		Actor:        domainaudit.Actor{ActorType: domainaudit.ActorService, ActorID: "retention-sweep", Roles: []string{string(security.RoleAdmin)}},
		Method:       "INTERNAL",
		Path:         "/scheduler/retention-sweep",
		StatusCode:   200,
		ResourceType: "ARTIFACT",
		ResourceID:   d.DeliverableID,
		EventType:    "deliverable.retention_swept",
		Severity:     domainaudit.SeverityCritical,
		Summary:      "deliverable hard-deleted by scheduled retention sweep",
		Refs:         []string{d.DealID, d.DeliverableID},
	})
	if err != nil {
		return err
	}
	return s.auditor.Emit(ctx, ev)
}

// runBYOKRotationReminder logs a warning for every ACTIVE key whose last
// rotation (or configuration, if never rotated) is older than maxAge. This
// is advisory only — it never mutates key state, matching
// original_source's rotate_key being an explicit tenant-initiated action.
func (s *Scheduler) runBYOKRotationReminder(ctx context.Context, maxAge time.Duration) error {
	keys, err := s.stores.BYOKKeys.ListActiveKeys(ctx)
	if err != nil {
		return fmt.Errorf("list active byok keys: %w", err)
	}

	now := time.Now().UTC()
	for _, k := range keys {
		age := now.Sub(k.LastRotatedAt())
		if age < maxAge {
			continue
		}
		s.log.WithFields(map[string]interface{}{
			"tenant_id": k.TenantID,
			"age_days":  int(age.Hours() / 24),
		}).Warn("byok key rotation overdue")
	}
	return nil
}
