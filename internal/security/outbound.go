// Package security はカレンダーページ取得など外向き通信の安全対策を提供する。
package security

import (
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// ErrUnsafeURL はカレンダーURLが外向き通信の条件を満たさない場合のエラー。
var ErrUnsafeURL = errors.New("unsafe outbound URL")

// 外向きリクエストで許可するスキームとポート。safeurlクライアントと静的検証で共有する。
var (
	outboundSchemes = []string{"http", "https"}
	outboundPorts   = []uint16{80, 443}
)

// internalPrefixes は静的検証で拒否するアドレス範囲。
// 169.254.0.0/16 はクラウドのメタデータエンドポイントを含む。
var internalPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fc00::/7"),
	netip.MustParsePrefix("fe80::/10"),
}

// OutboundGuard はカレンダーURLの検証と安全なHTTPクライアントの生成を行う。
// カレンダーURLは設定で差し替え可能なため、内部ネットワークへの誤設定を防ぐ。
type OutboundGuard struct{}

// NewOutboundGuard はOutboundGuardを生成する。
func NewOutboundGuard() *OutboundGuard {
	return &OutboundGuard{}
}

// NewSafeClient はsafeurlによるIP検証付きのHTTPクライアントを生成する。
// DNS解決後のアドレスはDialerのControlフックで検証される。
func (g *OutboundGuard) NewSafeClient(timeout time.Duration) *http.Client {
	ports := make([]int, len(outboundPorts))
	for i, p := range outboundPorts {
		ports[i] = int(p)
	}

	cfg := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(outboundSchemes...).
		SetAllowedPorts(ports...).
		Build()

	return safeurl.Client(cfg).Client
}

// ValidateURL は起動時にカレンダーURLを静的に検証する。DNS解決は行わない。
// 拒否した場合はErrUnsafeURLをラップしたエラーを返す。
func (g *OutboundGuard) ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: empty URL", ErrUnsafeURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsafeURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if !slices.Contains(outboundSchemes, scheme) {
		return fmt.Errorf("%w: scheme %q is not one of %v", ErrUnsafeURL, u.Scheme, outboundSchemes)
	}

	host := u.Hostname()
	switch {
	case host == "":
		return fmt.Errorf("%w: missing host", ErrUnsafeURL)
	case strings.EqualFold(host, "localhost"):
		return fmt.Errorf("%w: host %s", ErrUnsafeURL, host)
	}

	if err := checkPort(u); err != nil {
		return err
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		// ホスト名はDNS解決後にNewSafeClient側で検証される。
		return nil
	}
	if isInternal(addr) {
		return fmt.Errorf("%w: address %s is internal", ErrUnsafeURL, addr)
	}
	return nil
}

func checkPort(u *url.URL) error {
	raw := u.Port()
	if raw == "" {
		return nil
	}
	port, err := strconv.ParseUint(raw, 10, 16)
	if err != nil || !slices.Contains(outboundPorts, uint16(port)) {
		return fmt.Errorf("%w: port %s is not one of %v", ErrUnsafeURL, raw, outboundPorts)
	}
	return nil
}

func isInternal(addr netip.Addr) bool {
	addr = addr.Unmap().WithZone("")
	for _, p := range internalPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
