package middleware

import "net/http"

// apiResponseHeaders はJSON APIの全レスポンスに付与するヘッダー。
// ブラウザから描画されることはなく、結果は日付・時刻ごとに変わるためキャッシュさせない。
var apiResponseHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	"Referrer-Policy":         "no-referrer",
	"Cache-Control":           "no-store",
}

// NewSecurityHeadersMiddleware はapiResponseHeadersを付与するミドルウェアを返す。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range apiResponseHeaders {
				h.Set(k, v)
			}
			next.ServeHTTP(w, r)
		})
	}
}
