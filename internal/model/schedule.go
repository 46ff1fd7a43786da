package model

import "time"

// Status はある時点での営業状態を表す。
// 問い合わせごとに計算され、永続化されない。
type Status struct {
	At                     time.Time
	IsOpen                 bool
	SecondsUntilTransition int64
	// HumanizedDuration は次の開店・閉店までの残り時間を英語で表したもの。
	HumanizedDuration string
}

// Hours は指定日の営業時間ラベルを表す。
type Hours struct {
	Date       time.Time
	OpenLabel  string
	CloseLabel string
}

// Location は店舗の名称と所在地を表す。
type Location struct {
	Name    string
	Address string
}
