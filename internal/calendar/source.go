package calendar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/net/html/charset"
)

const (
	// DefaultBaseURL は店舗のフレーバー予報カレンダーページ。
	DefaultBaseURL = "http://www.TheDairyGodmother.com/flavor-of-the-day-forecast/"
	// DefaultCalendarID はカレンダープラグインの固定識別子。
	DefaultCalendarID = "mc-0191cbfb6d82b4fdb92b8847a2046366"
	// defaultMaxBodySize はレスポンスボディの最大読み込みサイズ（5MB）。
	defaultMaxBodySize = 5 * 1024 * 1024
	userAgent          = "Flavorcast/1.0"
)

// Source は指定日のカレンダーエントリを取得するインターフェース。
// ネットワークを使わずに整形・休業判定をテストできるよう、取得と解析をここで切り離す。
type Source interface {
	// FetchDay は指定日のエントリ生テキストを文書順で返す。
	FetchDay(ctx context.Context, date time.Time) ([]string, error)
}

// FetchRecorder は上流へのリクエストを記録するメトリクスのインターフェース。
type FetchRecorder interface {
	RecordUpstreamStatus(statusCode int)
	RecordFetchLatency(duration time.Duration)
}

// HTTPSourceConfig はHTTPSourceの設定。
type HTTPSourceConfig struct {
	BaseURL     string
	CalendarID  string
	MaxBodySize int64
}

// HTTPSource はカレンダーページをHTTPで取得して解析するSource。
// リトライは行わず、1回の取得結果をそのまま返す。
type HTTPSource struct {
	httpClient  *http.Client
	logger      *slog.Logger
	recorder    FetchRecorder
	baseURL     string
	calendarID  string
	maxBodySize int64
}

// NewHTTPSource はHTTPSourceを生成する。recorderはnilでもよい。
func NewHTTPSource(httpClient *http.Client, logger *slog.Logger, recorder FetchRecorder, cfg HTTPSourceConfig) *HTTPSource {
	s := &HTTPSource{
		httpClient:  httpClient,
		logger:      logger,
		recorder:    recorder,
		baseURL:     cfg.BaseURL,
		calendarID:  cfg.CalendarID,
		maxBodySize: cfg.MaxBodySize,
	}
	if s.baseURL == "" {
		s.baseURL = DefaultBaseURL
	}
	if s.calendarID == "" {
		s.calendarID = DefaultCalendarID
	}
	if s.maxBodySize <= 0 {
		s.maxBodySize = defaultMaxBodySize
	}
	return s
}

// RequestURL は指定日のカレンダーページURLを組み立てる。
func (s *HTTPSource) RequestURL(date time.Time) (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid calendar base URL: %w", err)
	}

	q := u.Query()
	q.Set("yr", strconv.Itoa(date.Year()))
	q.Set("month", strconv.Itoa(int(date.Month())))
	q.Set("dy", strconv.Itoa(date.Day()))
	q.Set("cid", s.calendarID)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// FetchDay はカレンダーページを取得し、指定日のエントリを返す。
// 通信・読み取りの失敗および非2xx応答はErrTransportとして返す。
func (s *HTTPSource) FetchDay(ctx context.Context, date time.Time) ([]string, error) {
	reqURL, err := s.RequestURL(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html, */*")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if s.recorder != nil {
		s.recorder.RecordFetchLatency(time.Since(start))
	}
	if err != nil {
		s.logger.Error("calendar request failed",
			slog.String("url", reqURL),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if s.recorder != nil {
		s.recorder.RecordUpstreamStatus(resp.StatusCode)
	}
	s.logger.Debug("calendar response received",
		slog.String("url", reqURL),
		slog.Int("http_status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: calendar returned status %d", ErrTransport, resp.StatusCode)
	}

	// 上限を1バイト超えて読み、切り詰められたページを解析しないようにする
	raw, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}
	if int64(len(raw)) > s.maxBodySize {
		return nil, fmt.Errorf("%w: calendar page exceeds %d bytes", ErrTransport, s.maxBodySize)
	}

	// Content-Typeやmetaタグの文字コード宣言に従ってUTF-8に変換する
	decoded, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding body: %v", ErrTransport, err)
	}

	return ParseDay(decoded, date)
}
