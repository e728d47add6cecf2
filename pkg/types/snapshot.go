package types

import "github.com/shopspring/decimal"

// MembershipSnapshot is one member record as returned by the provider for a
// hub and as-of date. Dates stay raw strings until the transition engine
// validates them, so one bad record cannot fail a whole page.
type MembershipSnapshot struct {
	ID          string                 `json:"id" validate:"required"`
	Name        string                 `json:"name"`
	Email       string                 `json:"email"`
	User        *SnapshotUser          `json:"user"`
	ConfirmedAt string                 `json:"confirmed_at" validate:"required,date"`
	CanceledTo  *string                `json:"canceled_to" validate:"omitempty,date"`
	Plan        MembershipSnapshotPlan `json:"plan"`
	// DecodeError is set when the provider record could not be decoded; the
	// rest of the fields then hold whatever could be recovered.
	DecodeError string `json:"decode_error,omitempty"`
}

type SnapshotUser struct {
	ID string `json:"id"`
}

type MembershipSnapshotPlan struct {
	Name  string           `json:"name" validate:"required"`
	Price *decimal.Decimal `json:"total_price_per_cycle" validate:"required"`
}

// UserExternalID falls back to the membership id when the record has no user.
func (s *MembershipSnapshot) UserExternalID() string {
	if s.User != nil && s.User.ID != "" {
		return s.User.ID
	}
	return s.ID
}
