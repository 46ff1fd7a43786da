package schedule

import (
	"fmt"
	"strings"
)

// durationUnits は残り時間の表示に使う単位（大きい順）。
var durationUnits = []struct {
	name    string
	seconds int64
}{
	{"week", 7 * 24 * 60 * 60},
	{"day", 24 * 60 * 60},
	{"hour", 60 * 60},
	{"minute", 60},
	{"second", 1},
}

// maxDurationParts は表示できる単位数の上限。
const maxDurationParts = 5

// HumanizeDuration は秒数を "1 day, 1 hour, 1 minute and 1 second" の形式に変換する。
// 値が0の単位は省略し、値が1でない単位のみ複数形にする。
// 0以下、または単位数が上限を超える場合は空文字列を返す。
func HumanizeDuration(seconds int64) string {
	if seconds <= 0 {
		return ""
	}

	parts := make([]string, 0, len(durationUnits))
	for _, u := range durationUnits {
		v := seconds / u.seconds
		if v == 0 {
			continue
		}
		seconds -= v * u.seconds

		name := u.name
		if v != 1 {
			name += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", v, name))
	}

	if len(parts) > maxDurationParts {
		return ""
	}
	return JoinList(parts)
}

// JoinList は要素をカンマで連結し、最後の要素のみ " and " で連結する。
func JoinList(items []string) string {
	switch n := len(items); n {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:n-1], ", ") + " and " + items[n-1]
	}
}
