package service

import (
	"context"

	"orderflow/internal/storage"
)

// HealthService reports whether the backing store is reachable.
type HealthService interface {
	Check(ctx context.Context) error
}

type healthService struct {
	store storage.RuleStorage
}

func NewHealthService(store storage.RuleStorage) HealthService {
	return &healthService{store: store}
}

func (s *healthService) Check(ctx context.Context) error {
	return s.store.Ping(ctx)
}
