package store

import (
	"context"
	"fmt"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
	"github.com/boddenberg/lessence-studio-bfa/internal/port"

	"go.uber.org/zap"
)

// CatalogRepository implements port.CatalogStore. Both lists fall back to the
// seed catalog until their first write.
type CatalogRepository struct {
	store  port.SnapshotStore
	logger *zap.Logger
}

// NewCatalogRepository creates the repository.
func NewCatalogRepository(store port.SnapshotStore, logger *zap.Logger) *CatalogRepository {
	return &CatalogRepository{store: store, logger: logger}
}

// Seed writes the default catalog for any list that was never persisted.
func (r *CatalogRepository) Seed(ctx context.Context) error {
	if _, found, err := readList[domain.Service](ctx, r.store, KeyServices); err != nil {
		return err
	} else if !found {
		if err := mutateList(ctx, r.store, KeyServices, SeedServices, keep[domain.Service]); err != nil {
			return fmt.Errorf("seed services: %w", err)
		}
		r.logger.Info("catalog: seeded services", zap.Int("count", len(SeedServices())))
	}

	if _, found, err := readList[domain.Professional](ctx, r.store, KeyProfessionals); err != nil {
		return err
	} else if !found {
		if err := mutateList(ctx, r.store, KeyProfessionals, SeedProfessionals, keep[domain.Professional]); err != nil {
			return fmt.Errorf("seed professionals: %w", err)
		}
		r.logger.Info("catalog: seeded professionals", zap.Int("count", len(SeedProfessionals())))
	}
	return nil
}

func (r *CatalogRepository) ListServices(ctx context.Context) ([]domain.Service, error) {
	ctx, span := tracer.Start(ctx, "CatalogRepository.ListServices")
	defer span.End()

	items, found, err := readList[domain.Service](ctx, r.store, KeyServices)
	if err != nil {
		return nil, err
	}
	if !found {
		return SeedServices(), nil
	}
	return items, nil
}

func (r *CatalogRepository) GetService(ctx context.Context, id string) (*domain.Service, error) {
	items, err := r.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "service", ID: id}
}

// SaveService inserts svc, or replaces the service with the same ID.
func (r *CatalogRepository) SaveService(ctx context.Context, svc domain.Service) error {
	ctx, span := tracer.Start(ctx, "CatalogRepository.SaveService")
	defer span.End()

	return mutateList(ctx, r.store, KeyServices, SeedServices, func(items []domain.Service) ([]domain.Service, error) {
		for i := range items {
			if items[i].ID == svc.ID {
				items[i] = svc
				return items, nil
			}
		}
		return append(items, svc), nil
	})
}

func (r *CatalogRepository) DeleteService(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "CatalogRepository.DeleteService")
	defer span.End()

	return mutateList(ctx, r.store, KeyServices, SeedServices, func(items []domain.Service) ([]domain.Service, error) {
		out := items[:0]
		removed := false
		for _, s := range items {
			if s.ID == id {
				removed = true
				continue
			}
			out = append(out, s)
		}
		if !removed {
			return nil, &domain.ErrNotFound{Resource: "service", ID: id}
		}
		return out, nil
	})
}

func (r *CatalogRepository) ListProfessionals(ctx context.Context) ([]domain.Professional, error) {
	ctx, span := tracer.Start(ctx, "CatalogRepository.ListProfessionals")
	defer span.End()

	items, found, err := readList[domain.Professional](ctx, r.store, KeyProfessionals)
	if err != nil {
		return nil, err
	}
	if !found {
		return SeedProfessionals(), nil
	}
	return items, nil
}

func (r *CatalogRepository) GetProfessional(ctx context.Context, id string) (*domain.Professional, error) {
	items, err := r.ListProfessionals(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "professional", ID: id}
}

func (r *CatalogRepository) SaveProfessional(ctx context.Context, pro domain.Professional) error {
	ctx, span := tracer.Start(ctx, "CatalogRepository.SaveProfessional")
	defer span.End()

	return mutateList(ctx, r.store, KeyProfessionals, SeedProfessionals, func(items []domain.Professional) ([]domain.Professional, error) {
		for i := range items {
			if items[i].ID == pro.ID {
				items[i] = pro
				return items, nil
			}
		}
		return append(items, pro), nil
	})
}

func (r *CatalogRepository) DeleteProfessional(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "CatalogRepository.DeleteProfessional")
	defer span.End()

	return mutateList(ctx, r.store, KeyProfessionals, SeedProfessionals, func(items []domain.Professional) ([]domain.Professional, error) {
		out := items[:0]
		removed := false
		for _, p := range items {
			if p.ID == id {
				removed = true
				continue
			}
			out = append(out, p)
		}
		if !removed {
			return nil, &domain.ErrNotFound{Resource: "professional", ID: id}
		}
		return out, nil
	})
}

func keep[T any](items []T) ([]T, error) { return items, nil }
