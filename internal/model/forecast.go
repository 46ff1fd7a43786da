// Package model はドメインモデルを定義する。
package model

import "time"

// Outcome はフレーバー検索1回の結果種別を表す。
// found / not_found / closed / error は互いに排他的である。
type Outcome string

const (
	// OutcomeFound は1件以上のフレーバーが見つかった状態。
	OutcomeFound Outcome = "found"
	// OutcomeNotFound は指定日のフレーバー予報が存在しない状態。
	OutcomeNotFound Outcome = "not_found"
	// OutcomeClosed はカレンダー上で休業が告知されている状態。
	OutcomeClosed Outcome = "closed"
	// OutcomeError は取得または解析に失敗した状態。
	OutcomeError Outcome = "error"
)

// FlavorResult は指定日のフレーバー予報の検索結果を表す。
// 検索ごとに生成され、永続化されない。
// 直接構築せず、NewFoundResult などのコンストラクタを使うこと。
type FlavorResult struct {
	Date    time.Time
	Outcome Outcome
	Flavors []string
	Error   *LookupError
}

// NewFoundResult はフレーバーが見つかった結果を生成する。
// flavorsが空の場合は見つからなかった結果になる。
func NewFoundResult(date time.Time, flavors []string) FlavorResult {
	if len(flavors) == 0 {
		return NewNotFoundResult(date)
	}
	out := make([]string, len(flavors))
	copy(out, flavors)
	return FlavorResult{Date: date, Outcome: OutcomeFound, Flavors: out}
}

// NewNotFoundResult は予報が存在しない結果を生成する。
func NewNotFoundResult(date time.Time) FlavorResult {
	return FlavorResult{Date: date, Outcome: OutcomeNotFound}
}

// NewClosedResult は休業告知の結果を生成する。
func NewClosedResult(date time.Time) FlavorResult {
	return FlavorResult{Date: date, Outcome: OutcomeClosed}
}

// NewErrorResult はエラー結果を生成する。
func NewErrorResult(date time.Time, err *LookupError) FlavorResult {
	return FlavorResult{Date: date, Outcome: OutcomeError, Error: err}
}

// Found はフレーバーが1件以上見つかったかを返す。
func (r FlavorResult) Found() bool {
	return r.Outcome == OutcomeFound
}

// Closed は休業が告知されているかを返す。
func (r FlavorResult) Closed() bool {
	return r.Outcome == OutcomeClosed
}

// Failed は検索がエラーで終わったかを返す。
func (r FlavorResult) Failed() bool {
	return r.Outcome == OutcomeError
}

// Count は見つかったフレーバー数を返す。
func (r FlavorResult) Count() int {
	return len(r.Flavors)
}

// ErrorMessage はエラーメッセージを返す。エラーでない場合は空文字列。
func (r FlavorResult) ErrorMessage() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Message
}
