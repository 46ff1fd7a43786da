package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, forecast, system
	Action   string // 利用者向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidDate = "INVALID_DATE"
	ErrCodeInvalidTime = "INVALID_TIME"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeRateLimited = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal    = "INTERNAL_ERROR"
)

// NewInvalidDateError は日付パラメータ不正エラーを生成する。
func NewInvalidDateError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("invalid date: %q", raw),
		Category: "validation",
		Action:   "Specify the date as YYYY-MM-DD.",
	}
}

// NewInvalidTimeError は時刻パラメータ不正エラーを生成する。
func NewInvalidTimeError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTime,
		Message:  fmt.Sprintf("invalid time: %q", raw),
		Category: "validation",
		Action:   "Specify the time in RFC 3339 format, e.g. 2017-05-29T18:30:00Z.",
	}
}

// NewRouteNotFoundError は存在しないエンドポイントへのアクセスエラーを生成する。
func NewRouteNotFoundError(path string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("no such endpoint: %s", path),
		Category: "validation",
		Action:   "Check the request path.",
	}
}

// NewRateLimitError はレート制限超過エラーを生成する。
func NewRateLimitError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Too many requests. Please try again later.",
		Category: "system",
		Action:   "Wait for the Retry-After interval before asking again.",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ残す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "internal error",
		Category: "system",
		Action:   "Please try again later.",
	}
}

// LookupErrorKind はフレーバー検索で発生するエラーの分類。
// NotFound と Closed はエラーではなく Outcome として表現する。
type LookupErrorKind string

const (
	// LookupNetworkFailure は通信失敗（接続・タイムアウト・非2xx応答）。
	LookupNetworkFailure LookupErrorKind = "network_failure"
	// LookupAmbiguousUpstreamData は同一日付のセルが複数存在する上流データ不整合。
	LookupAmbiguousUpstreamData LookupErrorKind = "ambiguous_upstream_data"
	// LookupParseFailure はページ構造が想定と異なる解析失敗。
	LookupParseFailure LookupErrorKind = "parse_failure"
)

// LookupError はフレーバー検索の失敗内容を表す。
type LookupError struct {
	Kind    LookupErrorKind
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *LookupError) Error() string {
	return e.Message
}

// NewTransportFailure は通信失敗を表すLookupErrorを生成する。
func NewTransportFailure() *LookupError {
	return &LookupError{Kind: LookupNetworkFailure, Message: "transport failure"}
}

// NewAmbiguousEntry は曖昧なカレンダーエントリを表すLookupErrorを生成する。
func NewAmbiguousEntry() *LookupError {
	return &LookupError{Kind: LookupAmbiguousUpstreamData, Message: "ambiguous calendar entry"}
}

// NewParseFailure は解析失敗を表すLookupErrorを生成する。
func NewParseFailure() *LookupError {
	return &LookupError{Kind: LookupParseFailure, Message: "parse failure"}
}
