package calendar

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrNoEntry は指定日のカレンダーセルが存在しないことを示す。
	ErrNoEntry = errors.New("no calendar entry for date")
	// ErrAmbiguous は指定日のカレンダーセルが複数存在することを示す。
	ErrAmbiguous = errors.New("ambiguous calendar entry")
	// ErrParse はページ構造が想定と異なることを示す。
	ErrParse = errors.New("parse failure")
	// ErrTransport はカレンダーページの取得に失敗したことを示す。
	ErrTransport = errors.New("transport failure")
)

const (
	// cellIDPrefix はカレンダーセルのid属性の接頭辞。
	cellIDPrefix = "calendar-"
	// summarySelector はセル内のイベント概要見出しのセレクタ。
	summarySelector = "h3.event-title.summary"
)

// CellID は日付に対応するカレンダーセルのidを返す（例: calendar-2017-05-29）。
func CellID(date time.Time) string {
	return cellIDPrefix + date.Format("2006-01-02")
}

// ParseDay はカレンダーページのHTMLから指定日のエントリ文字列を抽出する。
// 返す文字列は整形前の生テキストで、文書順に並ぶ。
//
// セルが存在しない場合はErrNoEntry、複数存在する場合はErrAmbiguous、
// 見出しが存在しないなど構造が想定と異なる場合はErrParseを返す。
func ParseDay(r io.Reader, date time.Time) (entries []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			entries = nil
			err = fmt.Errorf("%w: %v", ErrParse, rec)
		}
	}()

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	id := CellID(date)
	cells := doc.Find("td").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, ok := s.Attr("id")
		return ok && v == id
	})

	switch n := cells.Length(); {
	case n == 0:
		return nil, ErrNoEntry
	case n > 1:
		return nil, fmt.Errorf("%w: %d cells with id %s", ErrAmbiguous, n, id)
	}

	heading := cells.Find(summarySelector).First()
	if heading.Length() == 0 {
		return nil, fmt.Errorf("%w: %s has no event summary", ErrParse, id)
	}

	heading.Find("a").Each(func(_ int, a *goquery.Selection) {
		entries = append(entries, a.Text())
	})
	return entries, nil
}

// CleanFlavorName はエントリ文字列からフレーバー名を取り出す。
// 最初の "-" 以降、続いて最初の "(" 以降を切り捨て、前後の空白を除去する。
// "Banana Pudding - seasonal (vegan)" は "Banana Pudding" になる。
// rawはParseDayがテキストとして取り出した値で、"<" などもそのまま名前の一部として扱う。
func CleanFlavorName(raw string) string {
	s := raw
	if i := strings.Index(s, "-"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "("); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// IsClosureNotice はフレーバー名が休業告知かを判定する。
func IsClosureNotice(name string) bool {
	return strings.Contains(strings.ToLower(name), "closed")
}
