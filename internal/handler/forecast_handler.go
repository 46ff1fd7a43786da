package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/flavorcast/internal/middleware"
	"github.com/hitoshi/flavorcast/internal/model"
	"github.com/hitoshi/flavorcast/internal/schedule"
)

// dateLayout はクエリパラメータで受け付ける日付の形式。
const dateLayout = "2006-01-02"

// FlavorSearcher はフレーバー予報ハンドラーが必要とする検索インターフェース。
type FlavorSearcher interface {
	// Search は指定日のフレーバー予報を検索する。エラーも結果値として返す。
	Search(ctx context.Context, date time.Time) model.FlavorResult
}

// ScheduleService は営業状態ハンドラーが必要とするインターフェース。
type ScheduleService interface {
	StatusAt(m time.Time) model.Status
	HoursFor(date time.Time) model.Hours
}

// StatusRecorder は営業状態問い合わせのメトリクスを記録する。
type StatusRecorder interface {
	RecordStatusQuery(isOpen bool)
}

// ForecastHandler はフレーバー予報と営業時間のHTTPハンドラー。
type ForecastHandler struct {
	searcher FlavorSearcher
	schedule ScheduleService
	recorder StatusRecorder
	location model.Location
	now      func() time.Time
}

// NewForecastHandler はForecastHandlerを生成する。
// recorderがnilの場合はメトリクスを記録しない。
func NewForecastHandler(searcher FlavorSearcher, sched ScheduleService, recorder StatusRecorder, location model.Location) *ForecastHandler {
	return &ForecastHandler{
		searcher: searcher,
		schedule: sched,
		recorder: recorder,
		location: location,
		now:      time.Now,
	}
}

// flavorResponse はフレーバー予報のAPIレスポンス。
type flavorResponse struct {
	Date      string   `json:"date"`
	Outcome   string   `json:"outcome"`
	Found     bool     `json:"found"`
	Closed    bool     `json:"closed"`
	Flavors   []string `json:"flavors"`
	Error     string   `json:"error,omitempty"`
	ErrorKind string   `json:"error_kind,omitempty"`
}

// statusResponse は営業状態のAPIレスポンス。
type statusResponse struct {
	At                     string `json:"at"`
	IsOpen                 bool   `json:"is_open"`
	SecondsUntilTransition int64  `json:"seconds_until_transition"`
	HumanizedDuration      string `json:"humanized_duration"`
}

// hoursResponse は営業時間のAPIレスポンス。
type hoursResponse struct {
	Date    string `json:"date,omitempty"`
	Weekday string `json:"weekday"`
	Open    string `json:"open"`
	Close   string `json:"close"`
}

// locationResponse は店舗所在地のAPIレスポンス。
type locationResponse struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// GetFlavors は指定日のフレーバー予報を返す。
// GET /api/flavors?date=YYYY-MM-DD
//
// 検索結果はどのOutcomeでも200で返し、日付が不正な場合のみ400を返す。
func (h *ForecastHandler) GetFlavors(w http.ResponseWriter, r *http.Request) {
	date, ok := h.parseDate(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, toFlavorResponse(h.searcher.Search(r.Context(), date)))
}

// GetStatus は指定時刻の営業状態を返す。
// GET /api/status?at=RFC3339
func (h *ForecastHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	at := h.now()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			middleware.WriteErrorResponse(w, r, http.StatusBadRequest, model.NewInvalidTimeError(raw))
			return
		}
		at = parsed
	}

	status := h.schedule.StatusAt(at)
	if h.recorder != nil {
		h.recorder.RecordStatusQuery(status.IsOpen)
	}

	writeJSON(w, http.StatusOK, statusResponse{
		At:                     status.At.Format(time.RFC3339),
		IsOpen:                 status.IsOpen,
		SecondsUntilTransition: status.SecondsUntilTransition,
		HumanizedDuration:      status.HumanizedDuration,
	})
}

// GetHours は指定日の営業時間を返す。
// GET /api/hours?date=YYYY-MM-DD
func (h *ForecastHandler) GetHours(w http.ResponseWriter, r *http.Request) {
	date, ok := h.parseDate(w, r)
	if !ok {
		return
	}

	hours := h.schedule.HoursFor(date)
	writeJSON(w, http.StatusOK, hoursResponse{
		Date:    hours.Date.Format(dateLayout),
		Weekday: hours.Date.Weekday().String(),
		Open:    hours.OpenLabel,
		Close:   hours.CloseLabel,
	})
}

// GetWeeklyHours は月曜始まりの1週間分の営業時間を返す。
// GET /api/hours/week
func (h *ForecastHandler) GetWeeklyHours(w http.ResponseWriter, r *http.Request) {
	week := make([]hoursResponse, 0, 7)
	for _, wd := range schedule.WeekOrder() {
		open, closing := schedule.HoursForWeekday(wd)
		week = append(week, hoursResponse{Weekday: wd.String(), Open: open, Close: closing})
	}
	writeJSON(w, http.StatusOK, week)
}

// GetLocation は店舗の名称と所在地を返す。
// GET /api/location
func (h *ForecastHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, locationResponse{
		Name:    h.location.Name,
		Address: h.location.Address,
	})
}

// parseDate はdateクエリパラメータを解析する。未指定の場合は現在のUTC日付を使う。
// 解析に失敗した場合は400を書き込みfalseを返す。
func (h *ForecastHandler) parseDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		now := h.now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
	}

	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		middleware.WriteErrorResponse(w, r, http.StatusBadRequest, model.NewInvalidDateError(raw))
		return time.Time{}, false
	}
	return date, true
}

func toFlavorResponse(result model.FlavorResult) flavorResponse {
	flavors := result.Flavors
	if flavors == nil {
		flavors = []string{}
	}

	resp := flavorResponse{
		Date:    result.Date.Format(dateLayout),
		Outcome: string(result.Outcome),
		Found:   result.Found(),
		Closed:  result.Closed(),
		Flavors: flavors,
	}
	if result.Error != nil {
		resp.Error = result.Error.Message
		resp.ErrorKind = string(result.Error.Kind)
	}
	return resp
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
