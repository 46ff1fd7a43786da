// Package calendar は店舗のフレーバー予報カレンダーを取得・解析し、
// 指定日のフレーバー一覧を返す。
package calendar

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hitoshi/flavorcast/internal/model"
)

// OutcomeRecorder は検索結果の種別を記録するメトリクスのインターフェース。
type OutcomeRecorder interface {
	RecordLookup(outcome string)
}

// Service はフレーバー予報の検索を提供する。
// 呼び出しをまたいだ可変状態は持たない。
type Service struct {
	source   Source
	logger   *slog.Logger
	recorder OutcomeRecorder
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(source Source, logger *slog.Logger, recorder OutcomeRecorder) *Service {
	return &Service{
		source:   source,
		logger:   logger,
		recorder: recorder,
	}
}

// Search は指定日のフレーバー予報を検索する。
// 失敗はすべてFlavorResultのエラー結果として返し、呼び出し元にエラーやpanicを伝播しない。
func (s *Service) Search(ctx context.Context, date time.Time) model.FlavorResult {
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	result := s.search(ctx, day)

	attrs := []any{
		slog.String("date", day.Format("2006-01-02")),
		slog.String("outcome", string(result.Outcome)),
		slog.Int("count", result.Count()),
	}
	if result.Failed() {
		attrs = append(attrs, slog.String("error_kind", string(result.Error.Kind)))
		s.logger.Warn("flavor forecast search failed", attrs...)
	} else {
		s.logger.Info("flavor forecast searched", attrs...)
	}

	if s.recorder != nil {
		s.recorder.RecordLookup(string(result.Outcome))
	}
	return result
}

func (s *Service) search(ctx context.Context, day time.Time) (result model.FlavorResult) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("panic during flavor forecast search",
				slog.Any("panic", rec),
				slog.String("date", day.Format("2006-01-02")),
			)
			result = model.NewErrorResult(day, model.NewParseFailure())
		}
	}()

	entries, err := s.source.FetchDay(ctx, day)
	if err != nil {
		return resultForError(day, err)
	}
	return BuildResult(day, entries)
}

// resultForError はSourceのエラーを結果に変換する。
func resultForError(day time.Time, err error) model.FlavorResult {
	switch {
	case errors.Is(err, ErrNoEntry):
		return model.NewNotFoundResult(day)
	case errors.Is(err, ErrAmbiguous):
		return model.NewErrorResult(day, model.NewAmbiguousEntry())
	case errors.Is(err, ErrTransport):
		return model.NewErrorResult(day, model.NewTransportFailure())
	default:
		return model.NewErrorResult(day, model.NewParseFailure())
	}
}

// BuildResult は生エントリを整形し、休業判定を行って結果を組み立てる。
// いずれかのエントリが休業告知であれば、他のエントリに関わらず休業とする。
// フレーバー名は文書順のまま、重複も除去せずに返す。
// 整形後に空になったエントリは捨て、1件も残らなければ予報なしとする。
func BuildResult(day time.Time, entries []string) model.FlavorResult {
	flavors := make([]string, 0, len(entries))
	for _, raw := range entries {
		name := CleanFlavorName(raw)
		if IsClosureNotice(name) {
			return model.NewClosedResult(day)
		}
		if name == "" {
			continue
		}
		flavors = append(flavors, name)
	}
	return model.NewFoundResult(day, flavors)
}
