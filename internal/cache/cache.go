package cache

import (
	"context"
	"fmt"
	"time"

	"consignhub/backend/internal/domain"
)

// MetricsCache stores derived consignor metrics between mutations.
type MetricsCache interface {
	Get(ctx context.Context, key string) (*domain.ConsignorMetrics, bool, error)
	Set(ctx context.Context, key string, value *domain.ConsignorMetrics, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ConsignorKey addresses one consignor's metrics.
func ConsignorKey(orgID string, consignorID string) string {
	return fmt.Sprintf("consignhub:metrics:consignor:%s:%s", orgID, consignorID)
}

type NoopMetricsCache struct{}

func (NoopMetricsCache) Get(_ context.Context, _ string) (*domain.ConsignorMetrics, bool, error) {
	return nil, false, nil
}

func (NoopMetricsCache) Set(_ context.Context, _ string, _ *domain.ConsignorMetrics, _ time.Duration) error {
	return nil
}

func (NoopMetricsCache) Delete(_ context.Context, _ ...string) error {
	return nil
}
