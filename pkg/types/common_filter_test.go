package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommonFilterValidate(t *testing.T) {
	allowed := []string{"membership_id", "start_date", "end_date"}

	require.NoError(t, (&CommonFilter{Field: "membership_id", Operator: CommonFilterOperatorEq, Values: []any{"m1"}}).Validate(allowed))
	require.NoError(t, (&CommonFilter{Field: "end_date", Operator: CommonFilterOperatorIsNull}).Validate(allowed))
	require.NoError(t, (&CommonFilter{Field: "start_date", Operator: CommonFilterOperatorDateRange, Values: []any{"2016-01-01", "2016-01-31"}}).Validate(allowed))

	err := (&CommonFilter{Field: "id; drop table x", Operator: CommonFilterOperatorEq, Values: []any{1}}).Validate(allowed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")

	require.Error(t, (&CommonFilter{Field: "start_date", Operator: CommonFilterOperatorRange, Values: []any{"2016-01-01"}}).Validate(allowed))
	require.Error(t, (&CommonFilter{Field: "membership_id", Operator: CommonFilterOperatorIn}).Validate(allowed))
}

func TestAsDate(t *testing.T) {
	d, ok := asDate("2016-02-29")
	require.True(t, ok)
	assert.Equal(t, "2016-02-29", d.Format("2006-01-02"))

	_, ok = asDate(20160229)
	assert.False(t, ok)
	_, ok = asDate("29/02/2016")
	assert.False(t, ok)
}
