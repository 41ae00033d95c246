package repository

import (
	"context"
	"fmt"
)

// IncrementPromoUsage увеличивает глобальный счетчик использования
// промокода. Счетчик — внешняя агрегатная статистика: ядро его
// увеличивает, но никогда не читает для принятия решений.
func (s *Storage) IncrementPromoUsage(ctx context.Context, code string) error {
	const op = "storage.IncrementPromoUsage"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO promo_usage (code, used_count)
			  VALUES ($1, 1)
			  ON CONFLICT (code) DO UPDATE
			  SET used_count = promo_usage.used_count + 1`
	_, err := s.DB.ExecContext(ctx, query, code)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
