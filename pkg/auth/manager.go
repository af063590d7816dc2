package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

const (
	// PlaceholderClientID は設定ファイルのひな形に入っている未設定の値です。
	PlaceholderClientID = "SEU_ID_DE_CLIENTE_DO_GOOGLE_VAI_AQUI.apps.googleusercontent.com"

	ScopeDriveFile     = "https://www.googleapis.com/auth/drive.file"
	DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
	DefaultRevokeURL   = "https://oauth2.googleapis.com/revoke"

	stateTTL    = 10 * time.Minute
	httpTimeout = 30 * time.Second
)

var (
	// ErrAuthDisabled はクライアント ID が無いため認証が無効であることを示します。
	ErrAuthDisabled = errors.New("authentication is disabled: no client id configured")
	// ErrConsentRequired は有効なトークンが無く、利用者の同意からやり直す必要があることを示します。
	ErrConsentRequired = errors.New("user consent required")
	// ErrInvalidState はコールバックの state が発行したものと一致しないことを示します。
	ErrInvalidState = errors.New("invalid or expired oauth state")
)

// Config は OAuth クライアントの設定です。
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Option は Manager の設定を変更します。
type Option func(*Manager)

// WithHTTPClient はトークン交換とプロフィール取得、失効に使う HTTP クライアントを設定します。
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) {
		if c != nil {
			m.httpClient = c
			m.api = newAPIClient(httpkit.WithHTTPClient(c))
		}
	}
}

// newAPIClient はリトライなしの httpkit クライアントを返します。失効の POST 本文は再送できません。
func newAPIClient(opts ...httpkit.ClientOption) *httpkit.Client {
	return httpkit.New(httpTimeout, append([]httpkit.ClientOption{httpkit.WithMaxRetries(0)}, opts...)...)
}

// WithEndpoints は OAuth とプロフィール、失効のエンドポイントを差し替えます。
func WithEndpoints(endpoint oauth2.Endpoint, userInfoURL, revokeURL string) Option {
	return func(m *Manager) {
		if m.oauth != nil {
			m.oauth.Endpoint = endpoint
		}
		m.userInfoURL = userInfoURL
		m.revokeURL = revokeURL
	}
}

// Manager は同意フロー、トークンの更新と失効、プロフィール取得を担当します。
// クライアント ID が無い場合は無効状態になり、他の機能を妨げません。
type Manager struct {
	oauth       *oauth2.Config
	httpClient  *http.Client
	api         httpkit.ClientInterface
	userInfoURL string
	revokeURL   string
	now         func() time.Time

	mu      sync.Mutex
	states  map[string]time.Time
	token   *oauth2.Token
	profile *domain.UserProfile
}

// NewManager は Manager を初期化します。
func NewManager(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		httpClient:  &http.Client{Timeout: httpTimeout},
		api:         newAPIClient(),
		userInfoURL: DefaultUserInfoURL,
		revokeURL:   DefaultRevokeURL,
		now:         time.Now,
		states:      make(map[string]time.Time),
	}

	clientID := strings.TrimSpace(cfg.ClientID)
	if clientID != "" && clientID != PlaceholderClientID {
		m.oauth = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{ScopeDriveFile, "openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enabled は認証が利用可能かどうかを返します。
func (m *Manager) Enabled() bool {
	return m.oauth != nil
}

// LoginURL は同意画面の URL を返します。毎回同意を求めます。
func (m *Manager) LoginURL() (string, error) {
	if !m.Enabled() {
		return "", ErrAuthDisabled
	}
	state := uuid.NewString()

	m.mu.Lock()
	m.pruneStates()
	m.states[state] = m.now().Add(stateTTL)
	m.mu.Unlock()

	return m.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// Complete はコールバックの認可コードをトークンに交換し、プロフィールを取得します。
func (m *Manager) Complete(ctx context.Context, state, code string) (*domain.UserProfile, error) {
	if !m.Enabled() {
		return nil, ErrAuthDisabled
	}
	if !m.consumeState(state) {
		return nil, ErrInvalidState
	}

	tok, err := m.oauth.Exchange(m.clientContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	profile, err := m.fetchProfile(ctx, tok)
	if err != nil {
		idToken, _ := tok.Extra("id_token").(string)
		fallback, idErr := profileFromIDToken(idToken)
		if idErr != nil {
			return nil, err
		}
		slog.WarnContext(ctx, "userinfo request failed, using id_token claims", "error", err)
		profile = fallback
	}

	m.mu.Lock()
	m.token = tok
	m.profile = profile
	m.mu.Unlock()
	return profile, nil
}

// Token は有効なアクセストークンを返します。期限切れなら更新し、できなければ ErrConsentRequired です。
func (m *Manager) Token(ctx context.Context) (*oauth2.Token, error) {
	if !m.Enabled() {
		return nil, ErrAuthDisabled
	}
	m.mu.Lock()
	current := m.token
	m.mu.Unlock()
	if current == nil {
		return nil, ErrConsentRequired
	}

	tok, err := m.oauth.TokenSource(m.clientContext(ctx), current).Token()
	if err != nil {
		slog.WarnContext(ctx, "token refresh failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrConsentRequired, err)
	}

	m.mu.Lock()
	if m.token == current {
		m.token = tok
	}
	m.mu.Unlock()
	return tok, nil
}

// Profile はサインイン中の利用者のプロフィールを返します。
func (m *Manager) Profile(ctx context.Context) (*domain.UserProfile, error) {
	m.mu.Lock()
	cached := m.profile
	m.mu.Unlock()
	if cached != nil {
		p := *cached
		return &p, nil
	}

	tok, err := m.Token(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := m.fetchProfile(ctx, tok)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.profile = profile
	m.mu.Unlock()
	return profile, nil
}

// Logout はトークンを失効させます。失効に失敗してもローカルの状態は必ず消します。
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	tok := m.token
	m.token = nil
	m.profile = nil
	m.mu.Unlock()

	if tok == nil || tok.AccessToken == "" {
		return nil
	}
	if err := m.revoke(ctx, tok.AccessToken); err != nil {
		slog.WarnContext(ctx, "token revoke failed", "error", err)
		return err
	}
	return nil
}

func (m *Manager) revoke(ctx context.Context, token string) error {
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if _, err := m.api.DoRequest(req); err != nil {
		return fmt.Errorf("revoke failed: %w", err)
	}
	return nil
}

func (m *Manager) fetchProfile(ctx context.Context, tok *oauth2.Token) (*domain.UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	tok.SetAuthHeader(req)

	body, err := m.api.DoRequest(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo failed: %w", err)
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	return &profile, nil
}

// profileFromIDToken はトークンエンドポイントから直接受け取った id_token のクレームを読みます。
// 署名検証は行いません。
func profileFromIDToken(raw string) (*domain.UserProfile, error) {
	if raw == "" {
		return nil, errors.New("no id_token")
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("failed to parse id_token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, errors.New("id_token has no subject")
	}
	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}
	verified, _ := claims["email_verified"].(bool)
	return &domain.UserProfile{
		Sub:           sub,
		Name:          str("name"),
		GivenName:     str("given_name"),
		FamilyName:    str("family_name"),
		Picture:       str("picture"),
		Email:         str("email"),
		EmailVerified: verified,
		Locale:        str("locale"),
	}, nil
}

func (m *Manager) consumeState(state string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, ok := m.states[state]
	if !ok {
		return false
	}
	delete(m.states, state)
	return m.now().Before(expiry)
}

// pruneStates は期限切れの state を捨てます。mu を保持して呼び出してください。
func (m *Manager) pruneStates() {
	now := m.now()
	for s, exp := range m.states {
		if !now.Before(exp) {
			delete(m.states, s)
		}
	}
}

func (m *Manager) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}
