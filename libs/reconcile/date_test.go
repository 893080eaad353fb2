package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveDate(t *testing.T) {
	tests := []struct {
		name     string
		gps      DateValue
		smr      DateValue
		mode     DateMode
		expected DateValue
	}{
		{
			name:     "GPS newer, parsed",
			gps:      Parsed(day(2024, time.March, 2)),
			smr:      Parsed(day(2024, time.March, 1)),
			mode:     AsTime,
			expected: Parsed(day(2024, time.March, 2)),
		},
		{
			name:     "GPS newer, text passthrough",
			gps:      Text("2024-03-02"),
			smr:      Text("2024-03-01"),
			mode:     AsText,
			expected: Text("2024-03-02"),
		},
		{
			name:     "SMR newer",
			gps:      Text("2024-01-10"),
			smr:      Text("2024-02-01"),
			mode:     AsText,
			expected: Text("2024-02-01"),
		},
		{
			name:     "Equal dates prefer SMR",
			gps:      Text("2024-02-01T00:00:00Z"),
			smr:      Text("2024-02-01"),
			mode:     AsText,
			expected: Text("2024-02-01"),
		},
		{
			name:     "Unparsable GPS yields SMR",
			gps:      Text("garbage"),
			smr:      Text("2024-02-01"),
			mode:     AsText,
			expected: Text("2024-02-01"),
		},
		{
			name:     "Unparsable SMR yields GPS",
			gps:      Text("2024-01-10"),
			smr:      Text("not a date"),
			mode:     AsText,
			expected: Text("2024-01-10"),
		},
		{
			name:     "Only GPS is returned untouched",
			gps:      Text("garbage"),
			smr:      Absent(),
			mode:     AsText,
			expected: Text("garbage"),
		},
		{
			name:     "Only SMR",
			gps:      Absent(),
			smr:      Text("2024-02-01"),
			mode:     AsText,
			expected: Text("2024-02-01"),
		},
		{
			name:     "Neither",
			gps:      Absent(),
			smr:      Absent(),
			mode:     AsText,
			expected: Absent(),
		},
		{
			name:     "Mixed representations",
			gps:      Parsed(day(2024, time.May, 5)),
			smr:      Text("2024-05-04"),
			mode:     AsText,
			expected: Text("2024-05-05T00:00:00Z"),
		},
		{
			name:     "Comparison mode parses the winner",
			gps:      Text("2024-01-10"),
			smr:      Text("2024-02-01"),
			mode:     AsTime,
			expected: Parsed(day(2024, time.February, 1)),
		},
		{
			name:     "Only GPS is returned untouched in comparison mode",
			gps:      Text("garbage"),
			smr:      Absent(),
			mode:     AsTime,
			expected: Text("garbage"),
		},
		{
			name:     "Comparison mode drops an unparsable winner",
			gps:      Text("garbage"),
			smr:      Text("also garbage"),
			mode:     AsTime,
			expected: Absent(),
		},
		{
			name:     "Bare numbers are not dates",
			gps:      Text("1200"),
			smr:      Text("2024-02-01"),
			mode:     AsText,
			expected: Text("2024-02-01"),
		},
		{
			name:     "Bare number SMR loses to GPS",
			gps:      Text("2024-01-10"),
			smr:      Text("1.5"),
			mode:     AsTime,
			expected: Parsed(day(2024, time.January, 10)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDate(tt.gps, tt.smr, tt.mode)
			assert.Equal(t, tt.expected.Kind(), got.Kind())
			assert.Equal(t, tt.expected.String(), got.String())
		})
	}
}

func TestResolveDate_NewerGPSIsReturnedUnchanged(t *testing.T) {
	base := day(2023, time.January, 1)
	for i := 1; i <= 48; i++ {
		smr := base.Add(time.Duration(i) * 7 * time.Hour)
		gps := smr.Add(time.Duration(i) * time.Minute)

		got := ResolveDate(Parsed(gps), Parsed(smr), AsTime)
		require.Equal(t, DateParsed, got.Kind())
		gotTime, ok := got.Time()
		require.True(t, ok)
		assert.True(t, gotTime.Equal(gps), "iteration %d", i)
	}
}

func TestValidDate(t *testing.T) {
	valid := ValidDate("2021-06-30")
	if assert.NotNil(t, valid) {
		assert.Equal(t, "2021-06-30", *valid)
	}

	assert.Nil(t, ValidDate(""))
	assert.Nil(t, ValidDate("   "))
	assert.Nil(t, ValidDate("tomorrow-ish"))
	assert.Nil(t, ValidDate("1200"))
	assert.Nil(t, ValidDate("1.5"))
	assert.Nil(t, ValidDate(" -3 "))
	assert.Nil(t, ValidDatePtr(nil))
}

func TestDateValuePtr(t *testing.T) {
	assert.Nil(t, Absent().Ptr())
	assert.Nil(t, TextPtr(nil).Ptr())

	s := "2024-02-01"
	p := TextPtr(&s).Ptr()
	if assert.NotNil(t, p) {
		assert.Equal(t, s, *p)
	}
}
