// Package schedule は店舗の営業状態と開店・閉店までの残り時間を計算する。
//
// すべての時刻はUTCに正規化して扱う。公表されている営業時間は米国東部時間だが、
// UTCオフセットは -4時間（夏時間）で固定しており、冬時間への切り替えは扱わない。
// 冬時間の期間は実際の営業時間と1時間ずれる既知の簡略化である。
//
// 境界の扱い: 開店・閉店時刻ちょうどの瞬間はまだ遷移していないものとみなす。
// つまり営業中の区間は (開店, 閉店] であり、開店時刻ちょうどは閉店中（開店まで0秒）、
// 閉店時刻ちょうどは営業中（閉店まで0秒）となる。
package schedule

import (
	"fmt"
	"time"

	"github.com/hitoshi/flavorcast/internal/model"
)

// utcOffsetHours は店舗所在地の固定UTCオフセット（EDT）。
const utcOffsetHours = -4

// localHours は現地時間での開店・閉店時刻（時）。
type localHours struct {
	open  int
	close int
}

// publishedHours は店舗が公表している曜日ごとの営業時間（現地時間）。
// 月・火は21時閉店、水〜日は22時閉店。開店は毎日正午。
var publishedHours = [7]localHours{
	time.Sunday:    {open: 12, close: 22},
	time.Monday:    {open: 12, close: 21},
	time.Tuesday:   {open: 12, close: 21},
	time.Wednesday: {open: 12, close: 22},
	time.Thursday:  {open: 12, close: 22},
	time.Friday:    {open: 12, close: 22},
	time.Saturday:  {open: 12, close: 22},
}

// Window はUTCの曜日ごとの営業時間帯を表す。
// 添字の曜日はUTCで開店する日の曜日。CrossesMidnightがtrueの場合、
// 閉店は翌日のCloseUTCHour時となる。
type Window struct {
	OpenUTCHour     int
	CloseUTCHour    int
	CrossesMidnight bool
}

// bounds はUTCの日付dayにおける開店・閉店時刻を返す。
func (w Window) bounds(day time.Time) (open, close time.Time) {
	y, m, d := day.Date()
	open = time.Date(y, m, d, w.OpenUTCHour, 0, 0, 0, time.UTC)
	if w.CrossesMidnight {
		d++
	}
	close = time.Date(y, m, d, w.CloseUTCHour, 0, 0, 0, time.UTC)
	return open, close
}

// buildTable は現地時間の営業時間と固定オフセットからUTCの営業時間表を組み立てる。
func buildTable(hours [7]localHours, offset int) [7]Window {
	var table [7]Window
	for wd, h := range hours {
		open := h.open - offset
		shift := floorDiv(open, 24)
		open -= shift * 24
		closeHour := h.close - offset - shift*24

		table[mod(wd+shift, 7)] = Window{
			OpenUTCHour:     open,
			CloseUTCHour:    closeHour % 24,
			CrossesMidnight: closeHour >= 24,
		}
	}
	return table
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func mod(a, b int) int {
	return ((a % b) + b) % b
}

// defaultTable は公表営業時間から導出したUTCの営業時間表。
var defaultTable = buildTable(publishedHours, utcOffsetHours)

// Calculator は営業状態を計算する。状態を持たず、並行に使用してよい。
type Calculator struct {
	table [7]Window
	now   func() time.Time
}

// New は現在時刻にtime.Nowを使うCalculatorを生成する。
func New() *Calculator {
	return NewWithClock(time.Now)
}

// NewWithClock は現在時刻の取得関数を指定してCalculatorを生成する。
func NewWithClock(now func() time.Time) *Calculator {
	return &Calculator{
		table: defaultTable,
		now:   now,
	}
}

// Table はUTCの営業時間表を返す。
func (c *Calculator) Table() [7]Window {
	return c.table
}

// normalize は時刻をUTC・秒精度に揃える。
func normalize(m time.Time) time.Time {
	return m.UTC().Truncate(time.Second)
}

// midnight はUTCの日付の0時を返す。
func midnight(m time.Time) time.Time {
	y, mo, d := m.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// openWindow はmを含む営業時間帯の閉店時刻を返す。
// 前日に開店して日付をまたぐ時間帯も考慮する。
func (c *Calculator) openWindow(m time.Time) (time.Time, bool) {
	today := midnight(m)
	for _, day := range []time.Time{today.AddDate(0, 0, -1), today} {
		open, close := c.table[day.Weekday()].bounds(day)
		if m.After(open) && !m.After(close) {
			return close, true
		}
	}
	return time.Time{}, false
}

// IsOpen はmの時点で営業中かを返す。
func (c *Calculator) IsOpen(m time.Time) bool {
	_, ok := c.openWindow(normalize(m))
	return ok
}

// SecondsUntilClose は閉店までの秒数を返す。営業中でない場合は0。
func (c *Calculator) SecondsUntilClose(m time.Time) int64 {
	m = normalize(m)
	close, ok := c.openWindow(m)
	if !ok {
		return 0
	}
	return int64(close.Sub(m) / time.Second)
}

// SecondsUntilOpen は次の開店までの秒数を返す。営業中の場合は0。
func (c *Calculator) SecondsUntilOpen(m time.Time) int64 {
	m = normalize(m)
	if _, ok := c.openWindow(m); ok {
		return 0
	}
	day := midnight(m)
	for i := 0; i < 8; i++ {
		open, _ := c.table[day.Weekday()].bounds(day)
		if !open.Before(m) {
			return int64(open.Sub(m) / time.Second)
		}
		day = day.AddDate(0, 0, 1)
	}
	return 0
}

// StatusAt はmの時点での営業状態を返す。
// 営業中なら閉店まで、閉店中なら開店までの残り時間を含む。
func (c *Calculator) StatusAt(m time.Time) model.Status {
	m = normalize(m)
	status := model.Status{At: m}
	if c.IsOpen(m) {
		status.IsOpen = true
		status.SecondsUntilTransition = c.SecondsUntilClose(m)
	} else {
		status.SecondsUntilTransition = c.SecondsUntilOpen(m)
	}
	status.HumanizedDuration = HumanizeDuration(status.SecondsUntilTransition)
	return status
}

// StatusNow は現在時刻での営業状態を返す。
func (c *Calculator) StatusNow() model.Status {
	return c.StatusAt(c.now())
}

// HoursFor は日付の曜日から営業時間ラベルを返す。
// dateは現地のカレンダー日付として扱い、時刻部分は無視する。
func (c *Calculator) HoursFor(date time.Time) model.Hours {
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	open, close := HoursForWeekday(day.Weekday())
	return model.Hours{
		Date:       day,
		OpenLabel:  open,
		CloseLabel: close,
	}
}

// HoursForWeekday は曜日の開店・閉店ラベル（例: "12 PM", "9 PM"）を返す。
func HoursForWeekday(wd time.Weekday) (open, close string) {
	h := publishedHours[wd]
	return hourLabel(h.open), hourLabel(h.close)
}

// WeekOrder は月曜始まりの曜日順を返す。
func WeekOrder() []time.Weekday {
	return []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}
}

// hourLabel は0〜24時を12時間表記のラベルに変換する。
func hourLabel(hour int) string {
	hour = mod(hour, 24)
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d %s", h, suffix)
}
