package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/silverbladeidn/inventopia-api/internal/models"
	"github.com/silverbladeidn/inventopia-api/internal/repository"
	appErrors "github.com/silverbladeidn/inventopia-api/pkg/errors"
)

type productStore interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error)
	ApplyAdjustment(ctx context.Context, adj repository.StockAdjustment) error
}

type movementReader interface {
	ListByProduct(ctx context.Context, productID string, limit int) ([]models.StockMovement, error)
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type stockNotifier interface {
	StockChanged(ctx context.Context, product models.Product)
}

// ProductService serves the catalog and applies direct stock mutations. All
// quantity arithmetic goes through the ledger; this layer owns the I/O around
// it: fetching the authoritative quantity, persisting the result, the audit
// movement, cache invalidation, and alerting.
type ProductService struct {
	repo      productStore
	movements movementReader
	cache     catalogCache
	notifier  stockNotifier
	guard     *stockGuard
	metrics   *MetricsService
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewProductService constructs the service. guard must be the instance shared
// with the request lifecycle so approvals and direct adjustments serialise on
// the same per-product locks.
func NewProductService(repo productStore, movements movementReader, cache catalogCache, notifier stockNotifier, guard *stockGuard, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if guard == nil {
		guard = newStockGuard()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ProductService{
		repo:      repo,
		movements: movements,
		cache:     cache,
		notifier:  notifier,
		guard:     guard,
		metrics:   metrics,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Guard exposes the shared per-product lock set for sibling services.
func (s *ProductService) Guard() *stockGuard {
	return s.guard
}

// Get returns one product, served from cache when possible. The second return
// reports a cache hit.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, bool, error) {
	key := productCacheKey(id)
	if s.cache != nil {
		var cached models.Product
		start := time.Now()
		err := s.cache.Get(ctx, key, &cached)
		s.metrics.RecordCacheOperation(err == nil, time.Since(start))
		if err == nil {
			return &cached, true, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("product cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.WithRef(appErrors.ErrNotFound, id)
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load product")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, product, s.cacheTTL); err != nil {
			s.logger.Warn("product cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return product, false, nil
}

// List returns a catalog page with pagination metadata.
func (s *ProductService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, *models.Pagination, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list products")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	return products, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// AdjustStock applies a direct stock mutation for an operator. The read,
// ledger computation, and conditional write happen under the product's lock;
// the repository additionally guards on the observed quantity.
func (s *ProductService) AdjustStock(ctx context.Context, productID string, op models.StockOperation, actorID string) (*models.Product, error) {
	release := s.guard.acquire(productID)
	defer release()

	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.WithRef(appErrors.ErrNotFound, productID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load product")
	}

	newQuantity, err := ApplyStockOperation(product.StockQuantity, op)
	if err != nil {
		return nil, err
	}

	before := product.StockQuantity
	product.StockQuantity = newQuantity
	product.RecomputeStatus()

	var notes *string
	if op.Notes != "" {
		notes = &op.Notes
	}
	adj := repository.StockAdjustment{
		ProductID:      productID,
		QuantityBefore: before,
		QuantityAfter:  newQuantity,
		Status:         product.Status,
		Movement: models.StockMovement{
			ProductID:      productID,
			Kind:           op.Kind,
			Amount:         op.Amount,
			QuantityBefore: before,
			QuantityAfter:  newQuantity,
			Reason:         op.Reason,
			Notes:          notes,
			ActorID:        actorID,
		},
	}
	if err := s.repo.ApplyAdjustment(ctx, adj); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "stock changed concurrently, retry the operation")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist stock adjustment")
	}

	s.invalidateCatalog(ctx, productID)
	s.metrics.RecordStockMovement(op.Kind)
	if s.notifier != nil {
		s.notifier.StockChanged(ctx, *product)
	}
	s.logger.Info("stock adjusted",
		zap.String("product_id", productID),
		zap.String("kind", string(op.Kind)),
		zap.Int("before", before),
		zap.Int("after", newQuantity),
		zap.String("actor_id", actorID),
	)
	return product, nil
}

// Movements returns a product's audit trail.
func (s *ProductService) Movements(ctx context.Context, productID string, limit int) ([]models.StockMovement, error) {
	movements, err := s.movements.ListByProduct(ctx, productID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list stock movements")
	}
	return movements, nil
}

func (s *ProductService) invalidateCatalog(ctx context.Context, productID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, productCacheKey(productID)); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.String("product_id", productID), zap.Error(err))
	}
}

func productCacheKey(id string) string {
	return fmt.Sprintf("catalog:product:%s", id)
}
