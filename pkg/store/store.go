package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	_ "modernc.org/sqlite"
)

// Collection はストア内のレコード集合の名前です。
type Collection string

const (
	CollectionCreations Collection = "creations"
	CollectionInspo     Collection = "inspo"
)

// table はコレクションに対応するテーブル名を返します。
func (c Collection) table() (string, error) {
	switch c {
	case CollectionCreations:
		return "creations", nil
	case CollectionInspo:
		return "inspo_images", nil
	}
	return "", fmt.Errorf("unknown collection: %q", string(c))
}

// StoreUnavailableError はストアを開けない、または読み出せない状態を表します。
// 呼び出し側は結果をメモリ上にのみ保持して処理を続けます。
type StoreUnavailableError struct {
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("local store unavailable: %v", e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// StoreWriteError は書き込みトランザクションの失敗を表します。
type StoreWriteError struct {
	Collection Collection
	Op         string
	Err        error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// ErrClosed はクローズ済みのストアへの操作で返ります。
var ErrClosed = errors.New("store is closed")

// SQLiteStore は埋め込み SQLite 上の 2 つのコレクションを扱うローカルストアです。
type SQLiteStore struct {
	db *sql.DB
}

// Open はデータベースを開き（無ければ作成し）、未適用のマイグレーションを適用します。
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreUnavailableError{Err: fmt.Errorf("failed to open database: %w", err)}
	}
	// SQLite は単一ライター
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &StoreUnavailableError{Err: fmt.Errorf("failed to ping database: %w", err)}
	}

	if err := newMigrator(db).Run(ctx); err != nil {
		db.Close()
		return nil, &StoreUnavailableError{Err: err}
	}

	slog.InfoContext(ctx, "local store ready", "path", path)
	return &SQLiteStore{db: db}, nil
}

// Durable は常に true です。
func (s *SQLiteStore) Durable() bool { return true }

// Close はデータベースを閉じます。
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

type row struct {
	id      int64
	payload []byte
}

func (s *SQLiteStore) put(ctx context.Context, c Collection, columns map[string]any, payload []byte) (int64, error) {
	if s.db == nil {
		return 0, &StoreWriteError{Collection: c, Op: "put", Err: ErrClosed}
	}
	table, err := c.table()
	if err != nil {
		return 0, &StoreWriteError{Collection: c, Op: "put", Err: err}
	}

	names := "payload"
	marks := "?"
	args := []any{string(payload)}
	for _, name := range slices.Sorted(maps.Keys(columns)) {
		names += ", " + name
		marks += ", ?"
		args = append(args, columns[name])
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &StoreWriteError{Collection: c, Op: "put", Err: err}
	}
	res, err := tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, names, marks), args...)
	if err != nil {
		tx.Rollback()
		return 0, &StoreWriteError{Collection: c, Op: "put", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, &StoreWriteError{Collection: c, Op: "put", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return 0, &StoreWriteError{Collection: c, Op: "put", Err: err}
	}
	return id, nil
}

func (s *SQLiteStore) getAll(ctx context.Context, c Collection) ([]row, error) {
	if s.db == nil {
		return nil, &StoreUnavailableError{Err: ErrClosed}
	}
	table, err := c.table()
	if err != nil {
		return nil, &StoreUnavailableError{Err: err}
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT id, payload FROM %s ORDER BY id", table))
	if err != nil {
		return nil, &StoreUnavailableError{Err: fmt.Errorf("failed to query %s: %w", c, err)}
	}
	defer rows.Close()

	var out []row
	for rows.Next() {
		var r row
		var payload string
		if err := rows.Scan(&r.id, &payload); err != nil {
			return nil, &StoreUnavailableError{Err: fmt.Errorf("failed to scan %s: %w", c, err)}
		}
		r.payload = []byte(payload)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreUnavailableError{Err: err}
	}
	return out, nil
}

// delete は存在しない ID でも成功として扱います。
func (s *SQLiteStore) delete(ctx context.Context, c Collection, id int64) error {
	if s.db == nil {
		return &StoreWriteError{Collection: c, Op: "delete", Err: ErrClosed}
	}
	table, err := c.table()
	if err != nil {
		return &StoreWriteError{Collection: c, Op: "delete", Err: err}
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return &StoreWriteError{Collection: c, Op: "delete", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		slog.DebugContext(ctx, "delete of missing record ignored", "collection", c, "id", id)
	}
	return nil
}
