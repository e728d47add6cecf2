package transition

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/fatflowers/hubreport/pkg/dateutil"
	"github.com/fatflowers/hubreport/pkg/types"
)

// ErrInvalidSnapshot marks a record that cannot be applied: a required field
// is missing, a date does not parse or the price is negative.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// record is a validated snapshot with typed dates and price.
type record struct {
	ExternalID     string
	UserExternalID string
	Name           string
	Email          string
	ConfirmedAt    time.Time
	CanceledTo     *time.Time
	PlanName       string
	Price          decimal.Decimal
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := dateutil.ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

func (s *Service) parse(snap *types.MembershipSnapshot) (*record, error) {
	if snap.DecodeError != "" {
		return nil, fmt.Errorf("%w: membership %q: %s", ErrInvalidSnapshot, snap.ID, snap.DecodeError)
	}
	if err := s.validate.Struct(snap); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Namespace()+":"+fe.Tag())
			}
			return nil, fmt.Errorf("%w: membership %q: %s", ErrInvalidSnapshot, snap.ID, strings.Join(fields, ", "))
		}
		return nil, fmt.Errorf("%w: membership %q: %v", ErrInvalidSnapshot, snap.ID, err)
	}

	confirmedAt, err := dateutil.ParseDate(snap.ConfirmedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: membership %q confirmed_at: %v", ErrInvalidSnapshot, snap.ID, err)
	}
	canceledTo, err := dateutil.ParseOptionalDate(snap.CanceledTo)
	if err != nil {
		return nil, fmt.Errorf("%w: membership %q canceled_to: %v", ErrInvalidSnapshot, snap.ID, err)
	}
	if strings.TrimSpace(snap.Plan.Name) == "" {
		return nil, fmt.Errorf("%w: membership %q has a blank plan name", ErrInvalidSnapshot, snap.ID)
	}
	if snap.Plan.Price.IsNegative() {
		return nil, fmt.Errorf("%w: membership %q has negative price %s", ErrInvalidSnapshot, snap.ID, snap.Plan.Price)
	}

	return &record{
		ExternalID:     snap.ID,
		UserExternalID: snap.UserExternalID(),
		Name:           snap.Name,
		Email:          snap.Email,
		ConfirmedAt:    confirmedAt,
		CanceledTo:     canceledTo,
		PlanName:       strings.TrimSpace(snap.Plan.Name),
		Price:          *snap.Plan.Price,
	}, nil
}
