package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

const (
	opTimeout = 5 * time.Second

	pgUniqueViolation     = "23505"
	pgInvalidTextEncoding = "22P02"

	orderColumns = `id, total_amount, total_items, status, paid, paid_at, external_payment_ref, created_at, updated_at`
)

// querier покрывает *sql.DB и *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

type orderStore struct {
	db *sql.DB
}

// NewOrderStore создаёт PostgreSQL-реализацию OrderStore.
func NewOrderStore(store *Store) domain.OrderStore {
	return &orderStore{db: store.DB()}
}

func (r *orderStore) Create(ctx context.Context, order domain.Order) (err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, total_amount, total_items, status, paid, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		order.ID, order.TotalAmount, order.TotalItems, string(order.Status),
		order.Paid, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderAlreadyExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for pos, item := range order.Items {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, position, product_id, quantity, price
			) VALUES ($1,$2,$3,$4,$5,$6)
		`,
			item.ID, order.ID, pos, item.ProductID, item.Quantity, item.Price,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}
	return nil
}

func (r *orderStore) Get(ctx context.Context, id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return loadOrder(ctx, r.db, id)
}

func (r *orderStore) List(ctx context.Context, status *domain.OrderStatus, offset, limit int) (_ []domain.Order, _ int, err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// count и выборка страницы должны видеть один снимок.
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin read tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var filter any
	if status != nil {
		filter = string(*status)
	}

	var total int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders WHERE ($1::text IS NULL OR status = $1)
	`, filter).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY seq ASC
		OFFSET $2 LIMIT $3
	`, filter, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, limit)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}
	rows.Close()

	for i := range orders {
		items, err := loadItems(ctx, tx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}

	return orders, total, nil
}

func (r *orderStore) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, updatedAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3
	`, string(status), updatedAt, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrOrderNotFound
		}
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderStore) MarkPaid(ctx context.Context, result domain.PaymentResult) (_ domain.Order, err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    paid = TRUE,
		    paid_at = $2,
		    external_payment_ref = $3,
		    updated_at = $2
		WHERE id = $4
	`, string(domain.OrderStatusPaid), result.PaidAt, result.ExternalPaymentRef, result.OrderID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("mark order paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Order{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		err = domain.ErrOrderNotFound
		return domain.Order{}, err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO order_receipts (id, order_id, receipt_url, created_at)
		VALUES ($1,$2,$3,$4)
	`, result.ReceiptID, result.OrderID, result.ReceiptURL, result.PaidAt); err != nil {
		if isUniqueViolation(err) {
			err = domain.ErrReceiptAlreadyExists
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("insert order receipt: %w", err)
	}

	order, err := loadOrder(ctx, tx, result.OrderID)
	if err != nil {
		return domain.Order{}, err
	}

	if err = tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit mark paid: %w", err)
	}
	return order, nil
}

func loadOrder(ctx context.Context, q querier, id string) (domain.Order, error) {
	order, err := scanOrder(q.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, err
	}

	items, err := loadItems(ctx, q, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items

	receipt, err := loadReceipt(ctx, q, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Receipt = receipt

	return order, nil
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order  domain.Order
		status string
		paidAt sql.NullTime
		ref    sql.NullString
	)
	if err := row.Scan(
		&order.ID, &order.TotalAmount, &order.TotalItems, &status, &order.Paid,
		&paidAt, &ref, &order.CreatedAt, &order.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("scan order: %w", err)
	}
	order.Status = domain.OrderStatus(status)
	if paidAt.Valid {
		t := paidAt.Time
		order.PaidAt = &t
	}
	if ref.Valid {
		s := ref.String
		order.ExternalPaymentRef = &s
	}
	return order, nil
}

func loadItems(ctx context.Context, q querier, orderID string) ([]domain.OrderItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY position ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

func loadReceipt(ctx context.Context, q querier, orderID string) (*domain.OrderReceipt, error) {
	var receipt domain.OrderReceipt
	err := q.QueryRowContext(ctx, `
		SELECT id, order_id, receipt_url, created_at
		FROM order_receipts
		WHERE order_id = $1
	`, orderID).Scan(&receipt.ID, &receipt.OrderID, &receipt.ReceiptURL, &receipt.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load order receipt: %w", err)
	}
	return &receipt, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextEncoding
}

var _ domain.OrderStore = (*orderStore)(nil)
