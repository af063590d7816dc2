package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// clientIDKey は実行時設定ドキュメント内のクライアント ID のキーです。
const clientIDKey = "GOOGLE_CLIENT_ID"

// DocumentFetcher は URL の JSON ドキュメントを取得します。httpkit.Client が満たします。
type DocumentFetcher interface {
	FetchAndDecodeJSON(ctx context.Context, url string, v any) error
}

// LoadClientID は実行時設定ドキュメントからクライアント ID を読み込みます。
// location はファイルパスか http(s) の URL です。fetcher が nil の場合はタイムアウト付きの httpkit クライアントを使います。
func LoadClientID(ctx context.Context, fetcher DocumentFetcher, location string) (string, error) {
	if location == "" {
		return "", fmt.Errorf("secrets location is empty")
	}

	var doc map[string]any
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		if fetcher == nil {
			fetcher = httpkit.New(httpkit.DefaultHTTPTimeout)
		}
		if err := fetcher.FetchAndDecodeJSON(ctx, location, &doc); err != nil {
			return "", fmt.Errorf("failed to load secrets from %s: %w", location, err)
		}
	} else {
		data, err := os.ReadFile(location)
		if err != nil {
			return "", fmt.Errorf("failed to load secrets from %s: %w", location, err)
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return "", fmt.Errorf("failed to parse secrets: %w", err)
		}
	}

	id, _ := doc[clientIDKey].(string)
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%s not found in secrets", clientIDKey)
	}
	return id, nil
}
