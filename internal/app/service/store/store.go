// Package store mediates durable storage for the hub ledger. It holds no
// business rules: every accessor runs on the *gorm.DB it is handed, normally a
// transaction owned and committed by the caller.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/hubreport/internal/models"
)

// Entity is the closed set of models the store creates, finds and updates.
type Entity interface {
	models.Location | models.Hub | models.User | models.Plan | models.HubPlan |
		models.Membership | models.MembershipPlan | models.ReportMonth | models.MemberReport
}

type Kind string

const (
	KindLocation       Kind = "location"
	KindHub            Kind = "hub"
	KindUser           Kind = "user"
	KindPlan           Kind = "plan"
	KindHubPlan        Kind = "hub_plan"
	KindMembership     Kind = "membership"
	KindMembershipPlan Kind = "membership_plan"
	KindReportMonth    Kind = "report_month"
	KindMemberReport   Kind = "member_report"
)

// KindOf names the variant T for errors and logs.
func KindOf[T Entity]() Kind {
	var zero T
	switch any(&zero).(type) {
	case *models.Location:
		return KindLocation
	case *models.Hub:
		return KindHub
	case *models.User:
		return KindUser
	case *models.Plan:
		return KindPlan
	case *models.HubPlan:
		return KindHubPlan
	case *models.Membership:
		return KindMembership
	case *models.MembershipPlan:
		return KindMembershipPlan
	case *models.ReportMonth:
		return KindReportMonth
	case *models.MemberReport:
		return KindMemberReport
	}
	panic(fmt.Sprintf("store: %T is not an entity", zero))
}

var ErrNotFound = errors.New("not found")

// Key selects one row through a unique index, column name to value.
type Key map[string]any

// CreateOrGet returns the row matching key, inserting v when there is none.
// created reports whether v was inserted. A concurrent insert of the same key
// is absorbed by ON CONFLICT DO NOTHING and a re-read.
func CreateOrGet[T Entity](ctx context.Context, tx *gorm.DB, key Key, v *T) (got *T, created bool, err error) {
	kind := KindOf[T]()
	if got, err = Get[T](ctx, tx, key); err == nil {
		return got, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	res := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(v)
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to create %s %v: %w", kind, key, res.Error)
	}
	if res.RowsAffected == 1 {
		return v, true, nil
	}
	// The winner's row is newer than a REPEATABLE READ snapshot; only a
	// locking read is guaranteed to see it.
	got, err = Get[T](ctx, forUpdate(ctx, tx), key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to re-read %s after conflict: %w", kind, err)
	}
	return got, false, nil
}

// Get returns the single row matching key or an error wrapping ErrNotFound.
func Get[T Entity](ctx context.Context, tx *gorm.DB, key Key) (*T, error) {
	var got T
	if err := tx.WithContext(ctx).Where(map[string]any(key)).Take(&got).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s %v: %w", KindOf[T](), key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s %v: %w", KindOf[T](), key, err)
	}
	return &got, nil
}

// forUpdate turns reads on tx into SELECT ... FOR UPDATE. Locking reads see
// the latest committed rows under every isolation level. Dialects without row
// locks (SQLite) ignore the clause.
func forUpdate(ctx context.Context, tx *gorm.DB) *gorm.DB {
	return tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

// Lock re-reads the row with primary key id under SELECT ... FOR UPDATE.
func Lock[T Entity](ctx context.Context, tx *gorm.DB, id string) (*T, error) {
	var got T
	err := forUpdate(ctx, tx).
		Where("id = ?", id).
		Take(&got).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s %s: %w", KindOf[T](), id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock %s %s: %w", KindOf[T](), id, err)
	}
	return &got, nil
}

// Update writes fields (column name to value) on v's row. Callers keep their
// copy of v in sync.
func Update[T Entity](ctx context.Context, tx *gorm.DB, v *T, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if err := tx.WithContext(ctx).Model(v).Updates(fields).Error; err != nil {
		return fmt.Errorf("failed to update %s: %w", KindOf[T](), err)
	}
	return nil
}

// Insert creates v unconditionally.
func Insert[T Entity](ctx context.Context, tx *gorm.DB, v *T) error {
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("failed to insert %s: %w", KindOf[T](), err)
	}
	return nil
}
