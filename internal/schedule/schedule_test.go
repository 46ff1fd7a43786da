package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utc(y int, m time.Month, d, h, min, s int) time.Time {
	return time.Date(y, m, d, h, min, s, 0, time.UTC)
}

func TestBuildTable_DerivesUTCWindowsFromPublishedHours(t *testing.T) {
	table := New().Table()

	for _, wd := range []time.Weekday{time.Monday, time.Tuesday} {
		assert.Equal(t, Window{OpenUTCHour: 16, CloseUTCHour: 1, CrossesMidnight: true}, table[wd], wd.String())
	}
	for _, wd := range []time.Weekday{time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday} {
		assert.Equal(t, Window{OpenUTCHour: 16, CloseUTCHour: 2, CrossesMidnight: true}, table[wd], wd.String())
	}
}

func TestBuildTable_OffsetShiftingOpenIntoNextDay(t *testing.T) {
	// UTC+14 では現地正午の開店がUTCの前日22時になる
	var hours [7]localHours
	for i := range hours {
		hours[i] = localHours{open: 12, close: 21}
	}
	hours[time.Monday] = localHours{open: 12, close: 22}

	table := buildTable(hours, 14)

	// 現地月曜の営業はUTC日曜22時〜月曜8時
	assert.Equal(t, Window{OpenUTCHour: 22, CloseUTCHour: 8, CrossesMidnight: true}, table[time.Sunday])
	assert.Equal(t, Window{OpenUTCHour: 22, CloseUTCHour: 7, CrossesMidnight: true}, table[time.Monday])
}

func TestIsOpen_MondayAfternoon(t *testing.T) {
	c := New()

	// 2017-05-29 は月曜日
	assert.False(t, c.IsOpen(utc(2017, 5, 29, 15, 59, 59)))
	assert.True(t, c.IsOpen(utc(2017, 5, 29, 18, 0, 0)))
	assert.True(t, c.IsOpen(utc(2017, 5, 29, 23, 59, 59)))
}

func TestIsOpen_CrossesMidnightIntoNextUTCDay(t *testing.T) {
	c := New()

	// 日曜の営業は月曜02:00 UTCまで
	assert.True(t, c.IsOpen(utc(2017, 5, 29, 1, 30, 0)))
	assert.False(t, c.IsOpen(utc(2017, 5, 29, 2, 0, 1)))

	// 月曜の営業は火曜01:00 UTCまで
	assert.True(t, c.IsOpen(utc(2017, 5, 30, 0, 30, 0)))
	assert.False(t, c.IsOpen(utc(2017, 5, 30, 1, 30, 0)))

	// 火曜の営業は水曜01:00 UTCまで
	assert.False(t, c.IsOpen(utc(2017, 5, 31, 1, 30, 0)))

	// 水曜の営業は木曜02:00 UTCまで
	assert.True(t, c.IsOpen(utc(2017, 6, 1, 1, 30, 0)))
}

func TestIsOpen_NormalizesToUTC(t *testing.T) {
	c := New()
	edt := time.FixedZone("EDT", -4*60*60)

	// 現地月曜12:30 = 16:30 UTC
	assert.True(t, c.IsOpen(time.Date(2017, 5, 29, 12, 30, 0, 0, edt)))
	// 現地月曜21:30 = 火曜01:30 UTC
	assert.False(t, c.IsOpen(time.Date(2017, 5, 29, 21, 30, 0, 0, edt)))
}

func TestBoundary_OpenTimeIsNotYetOpen(t *testing.T) {
	c := New()
	open := utc(2017, 5, 29, 16, 0, 0)

	before := c.StatusAt(open.Add(-time.Second))
	assert.False(t, before.IsOpen)
	assert.Equal(t, int64(1), before.SecondsUntilTransition)

	at := c.StatusAt(open)
	assert.False(t, at.IsOpen)
	assert.Equal(t, int64(0), at.SecondsUntilTransition)
	assert.Equal(t, "", at.HumanizedDuration)

	after := c.StatusAt(open.Add(time.Second))
	assert.True(t, after.IsOpen)
	// 火曜01:00 UTCまで 8時間59分59秒
	assert.Equal(t, int64(8*3600+59*60+59), after.SecondsUntilTransition)
}

func TestBoundary_CloseTimeIsStillOpen(t *testing.T) {
	c := New()
	close := utc(2017, 5, 30, 1, 0, 0)

	before := c.StatusAt(close.Add(-time.Second))
	assert.True(t, before.IsOpen)
	assert.Equal(t, int64(1), before.SecondsUntilTransition)
	assert.Equal(t, "1 second", before.HumanizedDuration)

	at := c.StatusAt(close)
	assert.True(t, at.IsOpen)
	assert.Equal(t, int64(0), at.SecondsUntilTransition)

	after := c.StatusAt(close.Add(time.Second))
	assert.False(t, after.IsOpen)
	// 火曜16:00 UTCまで 14時間59分59秒
	assert.Equal(t, int64(14*3600+59*60+59), after.SecondsUntilTransition)
}

func TestSecondsUntil_WrongCompanionReturnsZero(t *testing.T) {
	c := New()

	open := utc(2017, 5, 29, 18, 0, 0)
	assert.Equal(t, int64(0), c.SecondsUntilOpen(open))
	assert.Equal(t, int64(7*3600), c.SecondsUntilClose(open))

	closed := utc(2017, 5, 31, 1, 30, 0)
	assert.Equal(t, int64(0), c.SecondsUntilClose(closed))
	assert.Equal(t, int64(14*3600+30*60), c.SecondsUntilOpen(closed))
}

func TestStatusAt_CountdownAgreesWithIsOpen(t *testing.T) {
	c := New()
	start := utc(2017, 5, 28, 0, 0, 0)

	// 1週間を30分刻みで走査し、残り時間の終点で状態が遷移することを確かめる
	for m := start; m.Before(start.AddDate(0, 0, 7)); m = m.Add(30 * time.Minute) {
		status := c.StatusAt(m)
		require.Equal(t, c.IsOpen(m), status.IsOpen, m.String())

		boundary := m.Add(time.Duration(status.SecondsUntilTransition) * time.Second)
		assert.Equal(t, status.IsOpen, c.IsOpen(boundary), "state at boundary %s", boundary)
		assert.NotEqual(t, status.IsOpen, c.IsOpen(boundary.Add(time.Second)), "state after boundary %s", boundary)

		if status.IsOpen {
			assert.Equal(t, int64(0), c.SecondsUntilOpen(m))
		} else {
			assert.Equal(t, int64(0), c.SecondsUntilClose(m))
		}
	}
}

func TestStatusAt_TruncatesSubSecond(t *testing.T) {
	c := New()
	m := utc(2017, 5, 29, 15, 59, 59).Add(500 * time.Millisecond)

	status := c.StatusAt(m)
	assert.False(t, status.IsOpen)
	assert.Equal(t, int64(1), status.SecondsUntilTransition)
	assert.Equal(t, utc(2017, 5, 29, 15, 59, 59), status.At)
}

func TestStatusNow_UsesClock(t *testing.T) {
	c := NewWithClock(func() time.Time { return utc(2017, 5, 29, 17, 0, 0) })

	status := c.StatusNow()
	assert.True(t, status.IsOpen)
	assert.Equal(t, "8 hours", status.HumanizedDuration)
}

func TestHoursFor(t *testing.T) {
	c := New()

	tests := []struct {
		date      time.Time
		wantClose string
	}{
		{utc(2017, 5, 29, 0, 0, 0), "9 PM"},  // 月
		{utc(2017, 5, 30, 0, 0, 0), "9 PM"},  // 火
		{utc(2017, 5, 31, 0, 0, 0), "10 PM"}, // 水
		{utc(2017, 6, 3, 0, 0, 0), "10 PM"},  // 土
		{utc(2017, 6, 4, 23, 0, 0), "10 PM"}, // 日
	}
	for _, tt := range tests {
		h := c.HoursFor(tt.date)
		assert.Equal(t, "12 PM", h.OpenLabel, tt.date.Weekday().String())
		assert.Equal(t, tt.wantClose, h.CloseLabel, tt.date.Weekday().String())
	}
}

func TestHourLabel(t *testing.T) {
	assert.Equal(t, "12 AM", hourLabel(0))
	assert.Equal(t, "9 AM", hourLabel(9))
	assert.Equal(t, "12 PM", hourLabel(12))
	assert.Equal(t, "10 PM", hourLabel(22))
	assert.Equal(t, "12 AM", hourLabel(24))
}

func TestWeekOrder_StartsMonday(t *testing.T) {
	week := WeekOrder()
	require.Len(t, week, 7)
	assert.Equal(t, time.Monday, week[0])
	assert.Equal(t, time.Sunday, week[6])

	open, closing := HoursForWeekday(week[1])
	assert.Equal(t, "12 PM", open)
	assert.Equal(t, "9 PM", closing)
}
