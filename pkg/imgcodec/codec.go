package imgcodec

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

const (
	dataURLPrefix   = "data:"
	base64Marker    = ";base64"
	defaultTimeout  = 60 * time.Second
	maxErrorBodyLen = 512
)

// Client は FetchRemote が利用する HTTP クライアントです。httpkit.Client が満たします。
type Client interface {
	httpkit.Doer
	IsSafeURL(urlStr string) (bool, error)
}

// FetchError はリモート取得時のネットワーク失敗または 2xx 以外の応答を表します。
type FetchError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 && e.Body == "" && e.Err != nil {
		return fmt.Sprintf("failed to fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: status %d, body: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Codec は画像（および動画）のバイト列とポータブルなテキスト表現を相互変換します。
type Codec struct {
	client       Client
	allowPrivate bool
}

// Option は Codec の設定を変更します。
type Option func(*Codec)

// AllowPrivateNetworks はスキーム検証のみ行い、宛先 IP の制限を外します。
func AllowPrivateNetworks() Option {
	return func(c *Codec) { c.allowPrivate = true }
}

// NewHTTPClient はリトライなしの httpkit クライアントを返します。
// 動画のダウンロード URL は一度きりの取得なので再試行しません。
func NewHTTPClient(timeout time.Duration, skipNetworkValidation bool) *httpkit.Client {
	return httpkit.New(timeout,
		httpkit.WithMaxRetries(0),
		httpkit.WithSkipNetworkValidation(skipNetworkValidation),
	)
}

// New は Codec を初期化します。client が nil の場合は SSRF 検証付きの httpkit クライアントを使います。
func New(client Client, opts ...Option) *Codec {
	c := &Codec{client: client}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = NewHTTPClient(defaultTimeout, c.allowPrivate)
	}
	return c
}

func (c *Codec) checkURL(rawURL string) (bool, error) {
	if c.allowPrivate {
		return checkScheme(rawURL)
	}
	if ok, err := checkScheme(rawURL); !ok {
		return false, err
	}
	return c.client.IsSafeURL(rawURL)
}

// Encode はバイト列を base64 と DataURL に変換します。空のバイト列も受け付けます。
func Encode(data []byte, mimeType string) domain.ImageAsset {
	b64 := base64.StdEncoding.EncodeToString(data)
	return domain.ImageAsset{
		Base64:   b64,
		MIMEType: mimeType,
		DataURL:  dataURLPrefix + mimeType + base64Marker + "," + b64,
	}
}

// Decode は DataURL を base64 ペイロードと MIME タイプに分解します。
func Decode(dataURL string) (b64 string, mimeType string, err error) {
	if !strings.HasPrefix(dataURL, dataURLPrefix) {
		return "", "", fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(dataURL, dataURLPrefix), ",")
	if !ok {
		return "", "", fmt.Errorf("data URL has no payload separator")
	}
	mimeType, isBase64 := strings.CutSuffix(meta, base64Marker)
	if !isBase64 {
		return "", "", fmt.Errorf("data URL is not base64 encoded")
	}
	return payload, mimeType, nil
}

// DecodeBytes は DataURL を生のバイト列に戻します。
func DecodeBytes(dataURL string) ([]byte, string, error) {
	b64, mimeType, err := Decode(dataURL)
	if err != nil {
		return nil, "", err
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 payload: %w", err)
	}
	return data, mimeType, nil
}

// FromDataURL は DataURL から ImageAsset を組み立てます。
func FromDataURL(dataURL string) (domain.ImageAsset, error) {
	b64, mimeType, err := Decode(dataURL)
	if err != nil {
		return domain.ImageAsset{}, err
	}
	return domain.ImageAsset{Base64: b64, MIMEType: mimeType, DataURL: dataURL}, nil
}

// Bytes は ImageAsset の base64 ペイロードをデコードします。
func Bytes(asset domain.ImageAsset) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(asset.Base64)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return data, nil
}

// Normalize はクライアントから届いた ImageAsset の DataURL と Base64 と MIMEType を揃えます。
// DataURL があればそれを正とし、他の値が食い違う場合はエラーにします。
// DataURL が無ければ Base64 と MIMEType から組み立てます。マスクはそのまま残します。
func Normalize(asset domain.ImageAsset) (domain.ImageAsset, error) {
	var out domain.ImageAsset
	if asset.DataURL != "" {
		parsed, err := FromDataURL(asset.DataURL)
		if err != nil {
			return domain.ImageAsset{}, err
		}
		if asset.Base64 != "" && asset.Base64 != parsed.Base64 {
			return domain.ImageAsset{}, errors.New("base64 does not match the data URL")
		}
		if asset.MIMEType != "" && asset.MIMEType != parsed.MIMEType {
			return domain.ImageAsset{}, fmt.Errorf("mime type %q does not match the data URL (%q)", asset.MIMEType, parsed.MIMEType)
		}
		out = parsed
	} else {
		if asset.Base64 == "" || asset.MIMEType == "" {
			return domain.ImageAsset{}, errors.New("image needs a data URL or base64 with a mime type")
		}
		out = domain.ImageAsset{
			Base64:   asset.Base64,
			MIMEType: asset.MIMEType,
			DataURL:  dataURLPrefix + asset.MIMEType + base64Marker + "," + asset.Base64,
		}
	}
	if !strings.HasPrefix(out.MIMEType, "image/") {
		return domain.ImageAsset{}, fmt.Errorf("not an image: %s", out.MIMEType)
	}
	if _, err := Bytes(out); err != nil {
		return domain.ImageAsset{}, err
	}
	return out.WithMask(asset.MaskDisplayURL, asset.MaskAPIBase64), nil
}

// DetectMIME はバイト列の MIME タイプを推定します。
func DetectMIME(data []byte) string {
	mt, _, err := mime.ParseMediaType(http.DetectContentType(data))
	if err != nil {
		return "application/octet-stream"
	}
	return mt
}

// IsImage は推定 MIME タイプが image/* かどうかを返します。
func IsImage(data []byte) bool {
	return strings.HasPrefix(DetectMIME(data), "image/")
}

// FetchRemote は URL からバイト列を取得してエンコードします。
// MIME タイプは Content-Type ヘッダを優先し、無ければ内容から推定します。
func (c *Codec) FetchRemote(ctx context.Context, rawURL string) (domain.ImageAsset, error) {
	if safe, err := c.checkURL(rawURL); !safe || err != nil {
		slog.WarnContext(ctx, "unsafe or invalid URL blocked", "url", redact(rawURL), "error", err)
		if err == nil {
			err = errors.New("url rejected")
		}
		return domain.ImageAsset{}, &FetchError{URL: redact(rawURL), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.ImageAsset{}, &FetchError{URL: redact(rawURL), Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.ImageAsset{}, &FetchError{URL: redact(rawURL), Err: err}
	}

	data, err := httpkit.HandleResponse(resp)
	if err != nil {
		return domain.ImageAsset{}, toFetchError(redact(rawURL), resp.StatusCode, err)
	}

	mimeType := ""
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			mimeType = mt
		}
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = DetectMIME(data)
	}

	return Encode(data, mimeType), nil
}

// toFetchError は httpkit の応答エラーをステータスと本文付きの FetchError に変換します。
func toFetchError(url string, status int, err error) *FetchError {
	var httpErr *httpkit.NonRetryableHTTPError
	if errors.As(err, &httpErr) {
		body := string(httpErr.Body)
		if len(body) > maxErrorBodyLen {
			body = body[:maxErrorBodyLen]
		}
		return &FetchError{URL: url, StatusCode: httpErr.StatusCode, Body: body}
	}
	if status >= 300 {
		return &FetchError{URL: url, StatusCode: status, Err: err}
	}
	return &FetchError{URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
}
