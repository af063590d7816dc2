package generator

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Client は Imagen / Gemini / Veo への 1 回きりの呼び出しを担当します。
// リトライやビジネスルールの解釈は行いません。
type Client struct {
	models ModelService
	ops    OperationService
	cfg    Models
}

// Option は Client の設定を変更します。
type Option func(*Client)

// WithModels は用途ごとのモデル名を上書きします。空の項目は既定値のままです。
func WithModels(m Models) Option {
	return func(c *Client) {
		c.cfg = m.WithDefaults()
	}
}

// NewClient は依存関係を注入して Client を初期化します。
func NewClient(models ModelService, ops OperationService, opts ...Option) (*Client, error) {
	if models == nil {
		return nil, fmt.Errorf("models is required")
	}
	if ops == nil {
		return nil, fmt.Errorf("ops is required")
	}

	c := &Client{
		models: models,
		ops:    ops,
		cfg:    DefaultModels(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewGeminiClient は API キーから genai クライアントを作り、Client を返します。
func NewGeminiClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai クライアントの初期化に失敗しました: %w", err)
	}
	return NewClient(gc.Models, gc.Operations, opts...)
}

// Models は現在のモデル構成を返します。
func (c *Client) Models() Models {
	return c.cfg
}
