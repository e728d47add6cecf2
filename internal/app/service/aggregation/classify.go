package aggregation

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fatflowers/hubreport/internal/models"
	"github.com/fatflowers/hubreport/pkg/dateutil"
)

// Category is the set of cohorts an interval falls in for one month window.
// Retain never combines with another category; New and Leave combine when an
// interval starts and ends inside the same window.
type Category uint8

const CategoryNone Category = 0

const (
	CategoryNew Category = 1 << iota
	CategoryRetain
	CategoryLeave
)

func (c Category) Has(o Category) bool { return c&o != 0 }

func (c Category) String() string {
	var parts []string
	for _, k := range []struct {
		c    Category
		name string
	}{{CategoryNew, "new"}, {CategoryRetain, "retain"}, {CategoryLeave, "leave"}} {
		if c.Has(k.c) {
			parts = append(parts, k.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// Classify places the interval [start, end) against the inclusive window w.
// The new and leave predicates are evaluated independently.
func Classify(start time.Time, end *time.Time, w dateutil.Window) Category {
	var c Category
	if w.Contains(start) {
		c |= CategoryNew
	}
	if end != nil && w.Contains(*end) {
		c |= CategoryLeave
	}
	if start.Before(w.Start) && (end == nil || end.After(w.End)) {
		c |= CategoryRetain
	}
	return c
}

// Counts is the per-category interval tally of one hub plan and month.
type Counts struct {
	New    int64 `json:"new"`
	Retain int64 `json:"retain"`
	Leave  int64 `json:"leave"`
}

func Tally(entries []*models.MembershipPlan, w dateutil.Window) Counts {
	var c Counts
	for _, e := range entries {
		cat := Classify(e.StartDate, e.EndDate, w)
		if cat.Has(CategoryNew) {
			c.New++
		}
		if cat.Has(CategoryRetain) {
			c.Retain++
		}
		if cat.Has(CategoryLeave) {
			c.Leave++
		}
	}
	return c
}

// apply writes c into r, with revenue as count times the plan price.
func (c Counts) apply(r *models.MemberReport, price decimal.Decimal) {
	r.NewCount, r.RetainCount, r.LeaveCount = c.New, c.Retain, c.Leave
	r.NewRevenue = price.Mul(decimal.NewFromInt(c.New))
	r.RetainRevenue = price.Mul(decimal.NewFromInt(c.Retain))
	r.LeaveRevenue = price.Mul(decimal.NewFromInt(c.Leave))
}
