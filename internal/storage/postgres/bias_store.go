package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"whale-desk/internal/domain"
	"whale-desk/internal/storage"
)

// BiasStore implements storage.BiasStore using PostgreSQL.
type BiasStore struct {
	pool *Pool
}

// NewBiasStore creates a new BiasStore.
func NewBiasStore(pool *Pool) *BiasStore {
	return &BiasStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BiasStore = (*BiasStore)(nil)

// Insert appends a new bias snapshot.
func (s *BiasStore) Insert(ctx context.Context, b *domain.BiasResult) error {
	if b == nil || b.Asset == "" || b.Timeframe == "" {
		return storage.ErrInvalidInput
	}

	components, err := json.Marshal(b.Components)
	if err != nil {
		return fmt.Errorf("marshal bias components: %w", err)
	}

	query := `
		INSERT INTO bias_snapshots (
			asset, timeframe, value, confidence, components, ts
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.pool.Exec(ctx, query,
		b.Asset,
		b.Timeframe,
		b.Value,
		b.Confidence,
		components,
		b.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert bias snapshot: %w", err)
	}
	return nil
}

// Latest retrieves the most recent snapshot per (asset, timeframe),
// optionally filtered to the given assets. Ordered by asset, timeframe ASC.
func (s *BiasStore) Latest(ctx context.Context, assets []string) ([]*domain.BiasResult, error) {
	query := `
		SELECT DISTINCT ON (asset, timeframe)
			asset, timeframe, value, confidence, components, ts
		FROM bias_snapshots
		WHERE ($1::text[] IS NULL OR asset = ANY($1))
		ORDER BY asset ASC, timeframe ASC, ts DESC
	`

	var filter []string
	if len(assets) > 0 {
		filter = assets
	}

	rows, err := s.pool.Query(ctx, query, filter)
	if err != nil {
		return nil, fmt.Errorf("get latest bias snapshots: %w", err)
	}
	defer rows.Close()

	var result []*domain.BiasResult
	for rows.Next() {
		var b domain.BiasResult
		var components []byte

		err := rows.Scan(
			&b.Asset,
			&b.Timeframe,
			&b.Value,
			&b.Confidence,
			&components,
			&b.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan bias row: %w", err)
		}
		if err := json.Unmarshal(components, &b.Components); err != nil {
			return nil, fmt.Errorf("unmarshal bias components: %w", err)
		}
		result = append(result, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bias rows: %w", err)
	}
	return result, nil
}
