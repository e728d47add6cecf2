package types

import (
	"errors"
	"fmt"
	"strings"
)

type PlanType string

const (
	PlanTypeFullTime PlanType = "Full-Time"
	PlanTypePartTime PlanType = "Part-Time"
	PlanTypeOthers   PlanType = "Others"
	PlanTypeIgnore   PlanType = "Ignore"
)

var PlanTypes = []PlanType{PlanTypeFullTime, PlanTypePartTime, PlanTypeOthers, PlanTypeIgnore}

var ErrUnknownPlanType = errors.New("unknown plan type")

func ParsePlanType(s string) (PlanType, error) {
	for _, t := range PlanTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlanType, s)
}

// PlanTypeRule assigns Type to plans whose name contains Match (case-insensitive).
type PlanTypeRule struct {
	Match string   `json:"match" mapstructure:"match"`
	Type  PlanType `json:"type" mapstructure:"type"`
}

// ClassifyPlan returns the type of the first matching rule, or PlanTypeOthers.
func ClassifyPlan(rules []PlanTypeRule, planName string) PlanType {
	name := strings.ToLower(planName)
	for _, r := range rules {
		if r.Match != "" && strings.Contains(name, strings.ToLower(r.Match)) {
			return r.Type
		}
	}
	return PlanTypeOthers
}
