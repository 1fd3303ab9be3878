package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	catalogv1 "github.com/vladislavdragonenkov/orders/api/catalog/v1"
	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// DefaultTimeout ограничивает один вызов каталога.
const DefaultTimeout = 5 * time.Second

// Client - gRPC-адаптер ProductCatalogClient поверх catalog.v1.ProductService.
type Client struct {
	rpc     catalogv1.ProductServiceClient
	timeout time.Duration
	logger  *log.Entry
}

// NewClient создаёт адаптер. timeout <= 0 заменяется DefaultTimeout.
func NewClient(conn grpc.ClientConnInterface, timeout time.Duration, logger *log.Entry) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.New().WithField("component", "catalog-client")
	}
	return &Client{
		rpc:     catalogv1.NewProductServiceClient(conn),
		timeout: timeout,
		logger:  logger,
	}
}

// Resolve запрашивает товары одним вызовом и проверяет, что найдены все id.
func (c *Client) Resolve(ctx context.Context, ids []int64) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.rpc.ValidateProducts(ctx, &catalogv1.ValidateProductsRequest{IDs: ids})
	if err != nil {
		c.logger.WithError(err).WithField("product_ids", ids).Warn("catalog call failed")
		return nil, fmt.Errorf("validate products: %w", err)
	}

	products := make([]domain.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		if p == nil {
			continue
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("product %d: parse price %q: %w", p.ID, p.Price, err)
		}
		products = append(products, domain.Product{ID: p.ID, Name: p.Name, Price: price})
	}

	if err := ensureComplete(ids, products); err != nil {
		return nil, err
	}
	return products, nil
}

// ensureComplete не даёт каталогу молча потерять часть идентификаторов.
func ensureComplete(ids []int64, products []domain.Product) error {
	found := make(map[int64]struct{}, len(products))
	for _, p := range products {
		found[p.ID] = struct{}{}
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", domain.ErrProductsUnresolved, missing)
	}
	return nil
}

var _ domain.ProductCatalogClient = (*Client)(nil)
