// Package transition reconciles daily membership snapshots into the
// plan-occupancy ledger. Every snapshot is applied in its own transaction
// holding a row lock on the membership, so overlapping runs never produce two
// open entries for one member.
package transition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/hubreport/internal/app/service/store"
	"github.com/fatflowers/hubreport/internal/models"
	"github.com/fatflowers/hubreport/pkg/config"
	"github.com/fatflowers/hubreport/pkg/dateutil"
	"github.com/fatflowers/hubreport/pkg/logctx"
	"github.com/fatflowers/hubreport/pkg/types"
)

var (
	// ErrLedgerCorrupted is returned when a membership has more than one open entry.
	ErrLedgerCorrupted = store.ErrLedgerCorrupted
	// ErrStaleSnapshot is returned when a snapshot would change a timeline that
	// already extends past its as-of date.
	ErrStaleSnapshot = errors.New("snapshot older than ledger")
)

// Outcome is what applying one snapshot did to the ledger.
type Outcome string

const (
	OutcomeUnchanged       Outcome = "unchanged"
	OutcomeCreated         Outcome = "created"
	OutcomeChanged         Outcome = "changed"
	OutcomeCanceled        Outcome = "canceled"
	OutcomeCancelMoved     Outcome = "cancel_moved"
	OutcomeAlreadyCanceled Outcome = "already_canceled"
)

// SnapshotError ties a failure to the record that caused it.
type SnapshotError struct {
	ExternalID string `json:"external_id"`
	Err        string `json:"error"`
}

// RunResult summarizes one Apply call. Processed + Skipped + Failed equals the
// number of snapshots handed in.
type RunResult struct {
	Processed int             `json:"processed"`
	Skipped   int             `json:"skipped"`
	Failed    int             `json:"failed"`
	Outcomes  map[Outcome]int `json:"outcomes"`
	Errors    []SnapshotError `json:"errors,omitempty"`
}

func (r *RunResult) record(externalID string, err error) {
	r.Errors = append(r.Errors, SnapshotError{ExternalID: externalID, Err: err.Error()})
}

type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	log      *zap.SugaredLogger
	validate *validator.Validate
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, db: db, log: log, validate: newValidator()}
}

// Apply reconciles the ledger of hub with the snapshots observed on asOf.
// Bad records are skipped and failed memberships are counted; neither stops
// the run. The only error returned is the context's.
func (s *Service) Apply(ctx context.Context, hub *models.Hub, asOf time.Time, snapshots []types.MembershipSnapshot) (*RunResult, error) {
	ctx, span := otel.Tracer("transition").Start(ctx, "transition.Apply")
	defer span.End()
	asOf = dateutil.Truncate(asOf)
	span.SetAttributes(
		attribute.String("hub", hub.Name),
		attribute.String("as_of", dateutil.FormatDate(asOf)),
		attribute.Int("snapshots", len(snapshots)),
	)
	log := logctx.FromCtx(ctx, s.log).With("hub", hub.Name, "as_of", dateutil.FormatDate(asOf))

	res := &RunResult{Outcomes: map[Outcome]int{}}
	for i := range snapshots {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return res, err
		}
		snap := &snapshots[i]

		rec, err := s.parse(snap)
		if err != nil {
			log.Warnw("skipping snapshot", "membership", snap.ID, "err", err)
			res.Skipped++
			res.record(snap.ID, err)
			continue
		}

		outcome, err := s.applyOne(ctx, hub, asOf, rec)
		if err != nil {
			if errors.Is(err, ErrLedgerCorrupted) {
				log.Errorw("ledger corrupted, membership not processed", "membership", rec.ExternalID, "err", err)
			} else {
				log.Warnw("failed to apply snapshot", "membership", rec.ExternalID, "err", err)
			}
			res.Failed++
			res.record(rec.ExternalID, err)
			continue
		}
		res.Processed++
		res.Outcomes[outcome]++
	}

	span.SetAttributes(
		attribute.Int("processed", res.Processed),
		attribute.Int("skipped", res.Skipped),
		attribute.Int("failed", res.Failed),
	)
	log.Infow("snapshots applied", "processed", res.Processed, "skipped", res.Skipped, "failed", res.Failed, "outcomes", res.Outcomes)
	return res, nil
}

func (s *Service) applyOne(ctx context.Context, hub *models.Hub, asOf time.Time, rec *record) (Outcome, error) {
	var outcome Outcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		outcome, err = s.applyTx(ctx, tx, hub, asOf, rec)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("membership %s: %w", rec.ExternalID, err)
	}
	return outcome, nil
}
