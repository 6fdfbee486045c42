package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"go-wishlist-app/internal/core/domain/catalog"
	"go-wishlist-app/internal/core/ports"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("internal/core/service")

const cacheBatchSize = 100

// CatalogService serves catalog snapshots from redis, falling back to
// postgres. The sorted set in redis only ever holds complete snapshots.
type CatalogService struct {
	repo   ports.CatalogRepository
	cache  ports.Cache
	logger *slog.Logger
}

func NewCatalogService(repo ports.CatalogRepository, cache ports.Cache, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// List returns the items of a fresh snapshot matching sel, newest first.
func (s *CatalogService) List(ctx context.Context, sel catalog.FacetSelection) ([]catalog.CatalogItem, error) {
	items, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Filter(items, sel), nil
}

// Snapshot loads the whole catalog. Each call returns a new slice.
func (s *CatalogService) Snapshot(ctx context.Context) ([]catalog.CatalogItem, error) {
	ctx, span := tracer.Start(ctx, "CatalogService.Snapshot")
	defer span.End()

	// 1. Check Redis Set for IDs
	ids, err := s.cache.GetIdsFromSet(ctx, 0, -1)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog cache unavailable", "error", err)
	}
	if err == nil && len(ids) > 0 {
		s.logger.InfoContext(ctx, "cache hit for catalog snapshot", "count", len(ids))
		items, err := collect(s.chunkedCacheIterator(ctx, ids))
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		return items, nil
	}

	// 2. Stream from DB, writing through
	s.logger.InfoContext(ctx, "streaming catalog from db")
	repoIter, err := s.repo.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	items, err := collect(s.cacheIterator(ctx, repoIter))
	if err != nil {
		span.RecordError(err)
		// Drop whatever part of the set was written.
		s.resetCache(ctx)
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	span.SetAttributes(attribute.Int("catalog.size", len(items)))
	return items, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (catalog.CatalogItem, error) {
	ctx, span := tracer.Start(ctx, "CatalogService.Get", trace.WithAttributes(attribute.String("item.id", id)))
	defer span.End()

	batch, err := s.cache.GetBatch(ctx, []string{id})
	if err == nil {
		if data, ok := batch[id]; ok {
			if item, err := unmarshalItem(data); err == nil {
				return item, nil
			}
			s.logger.WarnContext(ctx, "dropping unreadable cached item", "id", id)
		}
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return catalog.CatalogItem{}, err
	}
	s.cacheData(ctx, item)
	return item, nil
}

// Create stores a new item. The cached snapshot is dropped so the next
// read sees the new item in its place.
func (s *CatalogService) Create(ctx context.Context, item catalog.CatalogItem) error {
	ctx, span := tracer.Start(ctx, "CatalogService.Create", trace.WithAttributes(attribute.String("item.id", item.ID)))
	defer span.End()

	s.logger.InfoContext(ctx, "creating catalog item", "id", item.ID)

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	if err := item.Validate(); err != nil {
		span.RecordError(err)
		return err
	}
	if err := s.repo.Save(ctx, item); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save to db: %w", err)
	}

	s.resetCache(ctx)
	s.cacheData(ctx, item)
	return nil
}

func (s *CatalogService) chunkedCacheIterator(ctx context.Context, ids []string) iter.Seq2[catalog.CatalogItem, error] {
	return func(yield func(catalog.CatalogItem, error) bool) {
		for i := 0; i < len(ids); i += cacheBatchSize {
			chunkIDs := ids[i:min(i+cacheBatchSize, len(ids))]

			dataMap, err := s.cache.GetBatch(ctx, chunkIDs)
			if err != nil {
				yield(catalog.CatalogItem{}, fmt.Errorf("failed to fetch cache batch: %w", err))
				return
			}

			for _, id := range chunkIDs {
				item, ok, err := s.cachedOrRepaired(ctx, id, dataMap)
				if err != nil {
					yield(catalog.CatalogItem{}, err)
					return
				}
				if !ok {
					continue
				}
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}

// cachedOrRepaired decodes a cached item, or reloads it from the db when the
// set references data that is gone. Items deleted from the db are dropped.
func (s *CatalogService) cachedOrRepaired(ctx context.Context, id string, dataMap map[string][]byte) (catalog.CatalogItem, bool, error) {
	if data, found := dataMap[id]; found {
		if item, err := unmarshalItem(data); err == nil {
			return item, true, nil
		}
	}

	s.logger.WarnContext(ctx, "cache inconsistency detected (missing data), repairing from db", "id", id)
	item, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		if err := s.cache.Remove(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "failed to drop stale cache entry", "id", id, "error", err)
		}
		return catalog.CatalogItem{}, false, nil
	}
	if err != nil {
		return catalog.CatalogItem{}, false, fmt.Errorf("failed to repair cache for id %s: %w", id, err)
	}
	s.cacheData(ctx, item)
	return item, true, nil
}

func (s *CatalogService) cacheIterator(ctx context.Context, input iter.Seq2[catalog.CatalogItem, error]) iter.Seq2[catalog.CatalogItem, error] {
	return func(yield func(catalog.CatalogItem, error) bool) {
		for item, err := range input {
			if err != nil {
				yield(catalog.CatalogItem{}, err)
				return
			}
			s.cacheItem(ctx, item)
			if !yield(item, nil) {
				return
			}
		}
	}
}

// cacheItem writes the item data and its place in the snapshot set.
func (s *CatalogService) cacheItem(ctx context.Context, item catalog.CatalogItem) {
	if !s.cacheData(ctx, item) {
		return
	}
	score := float64(item.CreatedAt.UnixMilli())
	if err := s.cache.AddToSet(ctx, item.ID, score); err != nil {
		s.logger.ErrorContext(ctx, "failed to update cache set", "id", item.ID, "error", err)
	}
}

func (s *CatalogService) cacheData(ctx context.Context, item catalog.CatalogItem) bool {
	data, err := json.Marshal(item)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to marshal item for cache", "id", item.ID, "error", err)
		return false
	}
	if err := s.cache.Set(ctx, item.ID, data); err != nil {
		s.logger.ErrorContext(ctx, "failed to set cache data", "id", item.ID, "error", err)
		return false
	}
	return true
}

func (s *CatalogService) resetCache(ctx context.Context) {
	if err := s.cache.Reset(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to reset catalog cache", "error", err)
	}
}

func unmarshalItem(data []byte) (catalog.CatalogItem, error) {
	var item catalog.CatalogItem
	err := json.Unmarshal(data, &item)
	return item, err
}

func collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	out := make([]T, 0)
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
