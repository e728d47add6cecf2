package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlanType(t *testing.T) {
	for _, pt := range PlanTypes {
		got, err := ParsePlanType(string(pt))
		require.NoError(t, err)
		assert.Equal(t, pt, got)
	}
	_, err := ParsePlanType("full-time")
	require.ErrorIs(t, err, ErrUnknownPlanType)
	_, err = ParsePlanType("")
	require.ErrorIs(t, err, ErrUnknownPlanType)
}

func TestClassifyPlan(t *testing.T) {
	rules := []PlanTypeRule{
		{Match: "fixed desk", Type: PlanTypeFullTime},
		{Match: "flex", Type: PlanTypePartTime},
		{Match: "mailbox", Type: PlanTypeIgnore},
	}
	assert.Equal(t, PlanTypeFullTime, ClassifyPlan(rules, "Fixed Desk Monthly"))
	assert.Equal(t, PlanTypePartTime, ClassifyPlan(rules, "FLEX 10"))
	assert.Equal(t, PlanTypeIgnore, ClassifyPlan(rules, "Virtual Mailbox"))
	assert.Equal(t, PlanTypeOthers, ClassifyPlan(rules, "Day Pass"))
	assert.Equal(t, PlanTypeOthers, ClassifyPlan(nil, "Fixed Desk"))
}
