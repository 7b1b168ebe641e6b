package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domainerr"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in   string
		want TimeOfDay
		str  string
	}{
		{"07:30", 7*3600 + 30*60, "07:30"},
		{"7:05:09", 7*3600 + 5*60 + 9, "07:05:09"},
		{"25:10", 25*3600 + 10*60, "25:10"},
		{"00:00", 0, "00:00"},
	}
	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.str, got.String())
	}

	for _, bad := range []string{"", "7", "07:60", "aa:bb", "48:00", "-1:00", "1:2:3:4"} {
		_, err := ParseTimeOfDay(bad)
		requireViolation(t, err, domainerr.InvalidValue)
	}
}

func TestTimeOfDay_On(t *testing.T) {
	date := time.Date(2024, 3, 4, 17, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 4, 7, 30, 0, 0, time.UTC), MustParseTimeOfDay("07:30").On(date))
	assert.Equal(t, time.Date(2024, 3, 5, 1, 0, 0, 0, time.UTC), MustParseTimeOfDay("25:00").On(date))
	assert.Equal(t, MustParseTimeOfDay("17:45"), TimeOfDayOf(date))
}

func TestWeekdays(t *testing.T) {
	w := NewWeekdays(time.Monday, time.Wednesday)
	assert.True(t, w.Has(time.Monday))
	assert.False(t, w.Has(time.Tuesday))
	assert.Equal(t, "Mon,Wed", w.String())
	assert.True(t, w.Overlaps(MondayToFriday))
	assert.False(t, w.Overlaps(Weekend))
	assert.Equal(t, []time.Weekday{time.Saturday, time.Sunday}, Weekend.Days())
	assert.True(t, Weekdays(0).IsEmpty())

	parsed, err := ParseWeekdays("weekdays, sat")
	require.NoError(t, err)
	assert.Equal(t, MondayToFriday|NewWeekdays(time.Saturday), parsed)

	_, err = ParseWeekdays("mon,funday")
	requireViolation(t, err, domainerr.InvalidValue)

	day, err := ParseWeekday("Thursday")
	require.NoError(t, err)
	assert.Equal(t, time.Thursday, day)
}

func TestOperatingHours_Validate(t *testing.T) {
	valid := OperatingHours{Start: MustParseTimeOfDay("05:00"), End: MustParseTimeOfDay("24:30"), Days: EveryDay}
	assert.NoError(t, valid.Validate())

	tests := map[string]OperatingHours{
		"no days":             {Start: MustParseTimeOfDay("05:00"), End: MustParseTimeOfDay("23:00")},
		"end before start":    {Start: MustParseTimeOfDay("05:00"), End: MustParseTimeOfDay("04:00"), Days: EveryDay},
		"start past midnight": {Start: MustParseTimeOfDay("24:30"), End: MustParseTimeOfDay("26:00"), Days: EveryDay},
	}
	for name, h := range tests {
		t.Run(name, func(t *testing.T) {
			requireViolation(t, h.Validate(), domainerr.InvalidOperatingHours)
		})
	}
}
