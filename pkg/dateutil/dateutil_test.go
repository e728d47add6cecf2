package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2016-01-10", want: day(2016, 1, 10)},
		{in: "2016/01/10", want: day(2016, 1, 10)},
		{in: "2016/01/10 12:30:00 +0100", want: day(2016, 1, 10)},
		{in: "2016-01-10T23:59:59Z", want: day(2016, 1, 10)},
		{in: "  2016-02-29 ", want: day(2016, 2, 29)},
		{in: "2015-02-29", wantErr: true},
		{in: "10-01-2016", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseOptionalDate(t *testing.T) {
	got, err := ParseOptionalDate(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	blank := " "
	got, err = ParseOptionalDate(&blank)
	require.NoError(t, err)
	assert.Nil(t, got)

	s := "2016/03/05"
	got, err = ParseOptionalDate(&s)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, day(2016, 3, 5), *got)

	bad := "soon"
	_, err = ParseOptionalDate(&bad)
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("2016-02")
	require.NoError(t, err)
	assert.Equal(t, day(2016, 2, 1), got)

	_, err = ParseMonth("2016-13")
	require.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseMonth("2016-02-01")
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestMonthWindow(t *testing.T) {
	tests := []struct {
		in         time.Time
		start, end time.Time
	}{
		{day(2016, 1, 10), day(2016, 1, 1), day(2016, 1, 31)},
		{day(2016, 2, 1), day(2016, 2, 1), day(2016, 2, 29)},
		{day(2015, 2, 28), day(2015, 2, 1), day(2015, 2, 28)},
		{time.Date(2016, 12, 31, 23, 0, 0, 0, time.UTC), day(2016, 12, 1), day(2016, 12, 31)},
	}
	for _, tt := range tests {
		w := MonthWindow(tt.in)
		assert.Equal(t, tt.start, w.Start, tt.in.String())
		assert.Equal(t, tt.end, w.End, tt.in.String())
	}
}

func TestWindowContains(t *testing.T) {
	w := MonthWindow(day(2016, 3, 1))
	assert.True(t, w.Contains(day(2016, 3, 1)))
	assert.True(t, w.Contains(day(2016, 3, 31)))
	assert.True(t, w.Contains(time.Date(2016, 3, 31, 18, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(day(2016, 4, 1)))
	assert.False(t, w.Contains(day(2016, 2, 29)))
}

func TestDays(t *testing.T) {
	got, err := Days(day(2016, 2, 27), day(2016, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(2016, 2, 27), day(2016, 2, 28), day(2016, 2, 29), day(2016, 3, 1)}, got)

	got, err = Days(day(2016, 1, 1), day(2016, 1, 1))
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = Days(day(2016, 1, 2), day(2016, 1, 1))
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestMonths(t *testing.T) {
	got, err := Months(day(2015, 11, 20), day(2016, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(2015, 11, 1), day(2015, 12, 1), day(2016, 1, 1), day(2016, 2, 1)}, got)

	// month-end starts must not skip February
	got, err = Months(day(2016, 1, 31), day(2016, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(2016, 1, 1), day(2016, 2, 1), day(2016, 3, 1)}, got)

	_, err = Months(day(2016, 3, 1), day(2016, 1, 1))
	require.ErrorIs(t, err, ErrInvalidDate)
}
