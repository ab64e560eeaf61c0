package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/silverbladeidn/inventopia-api/internal/models"
	"github.com/silverbladeidn/inventopia-api/pkg/jobs"
)

type alertLatch interface {
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// StockAlert is the payload carried by a low-stock job.
type StockAlert struct {
	ProductID string             `json:"product_id"`
	SKU       string             `json:"sku"`
	Name      string             `json:"name"`
	Quantity  int                `json:"quantity"`
	MinLevel  int                `json:"min_level"`
	Status    models.StockStatus `json:"status"`
}

// StockAlertNotifier watches stock changes and raises one alert per product
// while it stays below its minimum level. The Redis latch prevents repeats;
// it is released as soon as the product recovers.
type StockAlertNotifier struct {
	queue    *jobs.Queue
	latch    alertLatch
	latchTTL time.Duration
	logger   *zap.Logger
}

// NewStockAlertNotifier wires the notifier to a started queue.
func NewStockAlertNotifier(queue *jobs.Queue, latch alertLatch, latchTTL time.Duration, logger *zap.Logger) *StockAlertNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if latchTTL <= 0 {
		latchTTL = 6 * time.Hour
	}
	return &StockAlertNotifier{queue: queue, latch: latch, latchTTL: latchTTL, logger: logger}
}

// StockChanged inspects a product after its quantity moved.
func (n *StockAlertNotifier) StockChanged(ctx context.Context, product models.Product) {
	if n == nil {
		return
	}
	key := alertLatchKey(product.ID)

	if product.Status == models.StockStatusInStock {
		if n.latch != nil {
			if err := n.latch.Delete(ctx, key); err != nil {
				n.logger.Warn("failed to clear stock alert latch", zap.String("product_id", product.ID), zap.Error(err))
			}
		}
		return
	}

	if n.latch != nil {
		acquired, err := n.latch.SetNX(ctx, key, product.Status, n.latchTTL)
		if err != nil {
			n.logger.Warn("failed to latch stock alert", zap.String("product_id", product.ID), zap.Error(err))
			return
		}
		if !acquired {
			return
		}
	}

	if n.queue == nil {
		return
	}
	err := n.queue.Enqueue(jobs.Job{
		ID:   fmt.Sprintf("stock-alert-%s-%d", product.ID, time.Now().UnixNano()),
		Type: "stock_alert",
		Payload: StockAlert{
			ProductID: product.ID,
			SKU:       product.SKU,
			Name:      product.Name,
			Quantity:  product.StockQuantity,
			MinLevel:  product.MinStockLevel,
			Status:    product.Status,
		},
	})
	if err != nil {
		n.logger.Warn("failed to enqueue stock alert", zap.String("product_id", product.ID), zap.Error(err))
	}
}

// HandleAlertJob is the queue handler: it emits the alert as a structured log
// line for downstream collectors.
func HandleAlertJob(logger *zap.Logger) jobs.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(_ context.Context, job jobs.Job) error {
		alert, ok := job.Payload.(StockAlert)
		if !ok {
			return fmt.Errorf("unexpected payload for job %s", job.ID)
		}
		logger.Warn("low stock alert",
			zap.String("product_id", alert.ProductID),
			zap.String("sku", alert.SKU),
			zap.String("name", alert.Name),
			zap.Int("quantity", alert.Quantity),
			zap.Int("min_level", alert.MinLevel),
			zap.String("status", string(alert.Status)),
		)
		return nil
	}
}

func alertLatchKey(productID string) string {
	return "alerts:lowstock:" + productID
}
