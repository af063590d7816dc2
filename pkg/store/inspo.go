package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

// PutInspo はインスピレーション画像を保存し、採番された ID を返します。
func (s *SQLiteStore) PutInspo(ctx context.Context, img domain.InspoImage) (int64, error) {
	img.ID = 0
	payload, err := json.Marshal(img)
	if err != nil {
		return 0, &StoreWriteError{Collection: CollectionInspo, Op: "put", Err: err}
	}
	return s.put(ctx, CollectionInspo, map[string]any{"category": string(img.Category)}, payload)
}

// ListInspo はすべてのインスピレーション画像を登録順に返します。
func (s *SQLiteStore) ListInspo(ctx context.Context) ([]domain.InspoImage, error) {
	rows, err := s.getAll(ctx, CollectionInspo)
	if err != nil {
		return nil, err
	}
	images := make([]domain.InspoImage, 0, len(rows))
	for _, r := range rows {
		var img domain.InspoImage
		if err := json.Unmarshal(r.payload, &img); err != nil {
			slog.WarnContext(ctx, "skipping unreadable inspiration image", "id", r.id, "error", err)
			continue
		}
		img.ID = r.id
		images = append(images, img)
	}
	return images, nil
}

// DeleteInspo はインスピレーション画像を削除します。存在しない ID も成功扱いです。
func (s *SQLiteStore) DeleteInspo(ctx context.Context, id int64) error {
	return s.delete(ctx, CollectionInspo, id)
}

// Setting は設定値を返します。未設定なら ok は false です。
func (s *SQLiteStore) Setting(ctx context.Context, key string) (value string, ok bool, err error) {
	if s.db == nil {
		return "", false, &StoreUnavailableError{Err: ErrClosed}
	}
	err = s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StoreUnavailableError{Err: err}
	}
	return value, true, nil
}

// SetSetting は設定値を書き込みます。
func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	if s.db == nil {
		return &StoreWriteError{Collection: "settings", Op: "put", Err: ErrClosed}
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	); err != nil {
		return &StoreWriteError{Collection: "settings", Op: "put", Err: err}
	}
	return nil
}
