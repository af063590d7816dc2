package imgcodec

import (
	"fmt"
	"net/url"
)

// sensitiveParams はログやエラーに出してはいけないクエリパラメータです。
var sensitiveParams = []string{"key", "access_token"}

// checkScheme は http / https のみ許可します。
func checkScheme(rawURL string) (bool, error) {
	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false, fmt.Errorf("invalid url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return false, fmt.Errorf("scheme not allowed: %s", parsedURL.Scheme)
	}
	return true, nil
}

// redact は資格情報を含むクエリパラメータを伏せた URL を返します。
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	q := u.Query()
	changed := false
	for _, p := range sensitiveParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
