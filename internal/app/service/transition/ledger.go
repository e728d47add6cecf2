package transition

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fatflowers/hubreport/internal/app/service/store"
	"github.com/fatflowers/hubreport/internal/models"
	"github.com/fatflowers/hubreport/pkg/dateutil"
	"github.com/fatflowers/hubreport/pkg/logctx"
	"github.com/fatflowers/hubreport/pkg/tool"
	"github.com/fatflowers/hubreport/pkg/types"
)

// applyTx runs inside the caller's transaction. The membership row is locked
// before the open entry is read, so the lookup, the close and the insert see
// and produce one consistent timeline.
func (s *Service) applyTx(ctx context.Context, tx *gorm.DB, hub *models.Hub, asOf time.Time, rec *record) (Outcome, error) {
	user, err := store.CreateOrGetUser(ctx, tx, rec.UserExternalID, rec.Name, rec.Email)
	if err != nil {
		return "", err
	}
	m, _, err := store.CreateOrGetMembership(ctx, tx, rec.ExternalID, hub.ID, rec.ConfirmedAt)
	if err != nil {
		return "", err
	}
	if m, err = store.Lock[models.Membership](ctx, tx, m.ID); err != nil {
		return "", err
	}
	if err := s.reassign(ctx, tx, m, hub, user); err != nil {
		return "", err
	}

	open, err := store.CurrentOpenEntry(ctx, tx, m.ID)
	if err != nil {
		return "", err
	}

	if m.CanceledTo != nil {
		return s.recancel(ctx, tx, m, open, asOf, rec)
	}

	plan, planCreated, err := store.CreateOrGetPlan(ctx, tx, rec.PlanName, rec.Price, s.cfg.PlanTypeFor(rec.PlanName))
	if err != nil {
		return "", err
	}
	if planCreated {
		logctx.FromCtx(ctx, s.log).Infow("new plan", "plan", plan.Name, "type", plan.Type, "price", plan.Price)
	}
	hp, err := store.CreateOrGetHubPlan(ctx, tx, hub.ID, plan.ID)
	if err != nil {
		return "", err
	}

	outcome := OutcomeUnchanged

	// A member canceling on or before asOf leaves from the plan they hold; the
	// plan reported alongside the cancellation is not opened.
	leaving := rec.CanceledTo != nil && open != nil && !rec.CanceledTo.After(asOf)

	if (open == nil || open.HubPlanID != hp.ID) && !leaving {
		latest, err := store.LatestEntry(ctx, tx, m.ID)
		if err != nil {
			return "", err
		}
		start := asOf
		outcome = OutcomeChanged
		reason := types.MembershipChangeReasonChanged
		if latest == nil {
			start = m.ConfirmedAt
			outcome = OutcomeCreated
			reason = types.MembershipChangeReasonCreated
		} else if asOf.Before(latest.StartDate) || (latest.EndDate != nil && asOf.Before(*latest.EndDate)) {
			return "", fmt.Errorf("%w: as of %s, latest entry starts %s", ErrStaleSnapshot, dateutil.FormatDate(asOf), dateutil.FormatDate(latest.StartDate))
		}

		if open != nil {
			if err := s.closeEntry(ctx, tx, open, asOf, asOf, types.MembershipChangeReasonChanged); err != nil {
				return "", err
			}
		}
		open = &models.MembershipPlan{MembershipID: m.ID, HubPlanID: hp.ID, StartDate: start}
		if err := store.Insert(ctx, tx, open); err != nil {
			return "", err
		}
		if err := s.writeLog(ctx, tx, m.ID, reason, asOf, nil, open, map[string]any{"hub": hub.Name, "plan": plan.Name}); err != nil {
			return "", err
		}
	}

	if rec.CanceledTo != nil {
		canceledTo := *rec.CanceledTo
		if err := store.Update(ctx, tx, m, map[string]any{"canceled_to": canceledTo}); err != nil {
			return "", err
		}
		m.CanceledTo = &canceledTo
		if open != nil {
			if err := s.closeEntry(ctx, tx, open, canceledTo, asOf, types.MembershipChangeReasonCanceled); err != nil {
				return "", err
			}
		}
		outcome = OutcomeCanceled
	}
	return outcome, nil
}

// recancel handles a membership that is already canceled. It is never
// reopened; a moved cancellation date moves the end of the entry it closed.
func (s *Service) recancel(ctx context.Context, tx *gorm.DB, m *models.Membership, open *models.MembershipPlan, asOf time.Time, rec *record) (Outcome, error) {
	log := logctx.FromCtx(ctx, s.log)
	if rec.CanceledTo == nil {
		log.Warnw("canceled membership reported without cancellation, ledger left as is",
			"membership", m.ExternalID, "canceled_to", dateutil.FormatDate(*m.CanceledTo))
		return OutcomeAlreadyCanceled, nil
	}
	if rec.CanceledTo.Equal(*m.CanceledTo) && open == nil {
		return OutcomeAlreadyCanceled, nil
	}

	previous := *m.CanceledTo
	canceledTo := *rec.CanceledTo
	if err := store.Update(ctx, tx, m, map[string]any{"canceled_to": canceledTo}); err != nil {
		return "", err
	}
	m.CanceledTo = &canceledTo

	if open != nil {
		if err := s.closeEntry(ctx, tx, open, canceledTo, asOf, types.MembershipChangeReasonCanceled); err != nil {
			return "", err
		}
		return OutcomeCanceled, nil
	}

	latest, err := store.LatestEntry(ctx, tx, m.ID)
	if err != nil {
		return "", err
	}
	if latest != nil && latest.EndDate != nil && latest.EndDate.Equal(maxDate(previous, latest.StartDate)) {
		if err := s.closeEntry(ctx, tx, latest, canceledTo, asOf, types.MembershipChangeReasonCancelMoved); err != nil {
			return "", err
		}
	}
	log.Infow("cancellation moved", "membership", m.ExternalID,
		"from", dateutil.FormatDate(previous), "to", dateutil.FormatDate(canceledTo))
	return OutcomeCancelMoved, nil
}

// reassign points the membership at the hub and user of the latest snapshot.
func (s *Service) reassign(ctx context.Context, tx *gorm.DB, m *models.Membership, hub *models.Hub, user *models.User) error {
	fields := map[string]any{}
	if m.HubID != hub.ID {
		fields["hub_id"] = hub.ID
		m.HubID = hub.ID
	}
	if m.UserID == nil || *m.UserID != user.ID {
		fields["user_id"] = user.ID
		m.UserID = &user.ID
	}
	return store.Update(ctx, tx, m, fields)
}

// closeEntry sets the end of mp, never before its start.
func (s *Service) closeEntry(ctx context.Context, tx *gorm.DB, mp *models.MembershipPlan, end, asOf time.Time, reason types.MembershipChangeReason) error {
	end = maxDate(end, mp.StartDate)
	before := *mp
	if err := store.Update(ctx, tx, mp, map[string]any{"end_date": end}); err != nil {
		return err
	}
	mp.EndDate = &end
	return s.writeLog(ctx, tx, mp.MembershipID, reason, asOf, &before, mp, nil)
}

func (s *Service) writeLog(ctx context.Context, tx *gorm.DB, membershipID string, reason types.MembershipChangeReason, asOf time.Time, before, after *models.MembershipPlan, extra map[string]any) error {
	entry := &models.MembershipLog{
		ID:           tool.GenerateUUIDV7(),
		MembershipID: membershipID,
		Reason:       reason,
		AsOf:         asOf,
		Before:       datatypes.NewJSONType(before),
		After:        datatypes.NewJSONType(after),
		Extra:        datatypes.JSONMap(extra),
	}
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to write membership log: %w", err)
	}
	return nil
}

func maxDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return b
	}
	return a
}
