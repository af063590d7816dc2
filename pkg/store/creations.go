package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

// PutCreation は Creation を保存し、採番された ID を返します。
// 呼び出し側が設定した ID は無視されます。
func (s *SQLiteStore) PutCreation(ctx context.Context, c domain.Creation) (int64, error) {
	payload, err := marshalCreation(c)
	if err != nil {
		return 0, &StoreWriteError{Collection: CollectionCreations, Op: "put", Err: err}
	}
	return s.put(ctx, CollectionCreations, map[string]any{
		"created_at": c.CreatedAt.UTC().Format(time.RFC3339Nano),
	}, payload)
}

// ListCreations はすべての Creation を作成日時の降順で返します。
// 旧形式のレコードは読み出し時に正規化されます。
func (s *SQLiteStore) ListCreations(ctx context.Context) ([]domain.Creation, error) {
	rows, err := s.getAll(ctx, CollectionCreations)
	if err != nil {
		return nil, err
	}

	creations := make([]domain.Creation, 0, len(rows))
	for _, r := range rows {
		c, err := NormalizeLegacyCreation(r.id, r.payload)
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable creation", "id", r.id, "error", err)
			continue
		}
		creations = append(creations, c)
	}
	SortNewestFirst(creations)
	return creations, nil
}

// DeleteCreation は Creation を削除します。存在しない ID も成功扱いです。
func (s *SQLiteStore) DeleteCreation(ctx context.Context, id int64) error {
	return s.delete(ctx, CollectionCreations, id)
}

// SortNewestFirst は CreatedAt の降順に並べ替えます。同時刻は ID の降順です。
func SortNewestFirst(creations []domain.Creation) {
	sort.SliceStable(creations, func(i, j int) bool {
		a, b := creations[i], creations[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

func marshalCreation(c domain.Creation) ([]byte, error) {
	c.ID = 0
	c.CreatedAt = c.CreatedAt.UTC()
	return json.Marshal(c)
}
