package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteStore is the reference Store implementation.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an opened inventory database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// DB returns the underlying database handle.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func (s *SQLiteStore) productExists(ctx context.Context, q queryer, id string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM products WHERE id=?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Entity: "product", Ref: id}
	}
	if err != nil {
		return fmt.Errorf("lookup product: %w", err)
	}
	return nil
}

func (s *SQLiteStore) warehouseExists(ctx context.Context, q queryer, id string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM warehouses WHERE id=?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Entity: "warehouse", Ref: id}
	}
	if err != nil {
		return fmt.Errorf("lookup warehouse: %w", err)
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func quantityAt(ctx context.Context, q queryer, productID, warehouseID string) (int, error) {
	var qty int
	err := q.QueryRowContext(ctx,
		`SELECT quantity FROM stock_levels WHERE product_id=? AND warehouse_id=?`,
		productID, warehouseID).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read stock level: %w", err)
	}
	return qty, nil
}

func setQuantity(ctx context.Context, tx *sql.Tx, productID, warehouseID string, qty int) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO stock_levels(product_id, warehouse_id, quantity)
		VALUES(?, ?, ?)
		ON CONFLICT(product_id, warehouse_id) DO UPDATE SET quantity=excluded.quantity`,
		productID, warehouseID, qty)
	if err != nil {
		return fmt.Errorf("write stock level: %w", err)
	}
	return nil
}

func recordMovement(ctx context.Context, tx *sql.Tx, productID, warehouseID string, delta int, reason string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO stock_movements(created_at, product_id, warehouse_id, delta, reason)
		VALUES(?, ?, ?, ?, ?)`,
		nowUTC(), productID, warehouseID, delta, reason)
	if err != nil {
		return fmt.Errorf("record movement: %w", err)
	}
	return nil
}

// TransferStock moves quantity between warehouses in one transaction.
func (s *SQLiteStore) TransferStock(ctx context.Context, req Transfer) (TransferReceipt, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return TransferReceipt{}, fmt.Errorf("begin transfer: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.productExists(ctx, tx, req.ProductID); err != nil {
		return TransferReceipt{}, err
	}
	if err := s.warehouseExists(ctx, tx, req.FromWarehouseID); err != nil {
		return TransferReceipt{}, err
	}
	if err := s.warehouseExists(ctx, tx, req.ToWarehouseID); err != nil {
		return TransferReceipt{}, err
	}

	fromQty, err := quantityAt(ctx, tx, req.ProductID, req.FromWarehouseID)
	if err != nil {
		return TransferReceipt{}, err
	}
	if fromQty < req.Quantity {
		return TransferReceipt{}, &InsufficientStockError{
			ProductID:   req.ProductID,
			WarehouseID: req.FromWarehouseID,
			Requested:   req.Quantity,
			Available:   fromQty,
		}
	}
	toQty, err := quantityAt(ctx, tx, req.ProductID, req.ToWarehouseID)
	if err != nil {
		return TransferReceipt{}, err
	}

	if err := setQuantity(ctx, tx, req.ProductID, req.FromWarehouseID, fromQty-req.Quantity); err != nil {
		return TransferReceipt{}, err
	}
	if err := setQuantity(ctx, tx, req.ProductID, req.ToWarehouseID, toQty+req.Quantity); err != nil {
		return TransferReceipt{}, err
	}
	if err := recordMovement(ctx, tx, req.ProductID, req.FromWarehouseID, -req.Quantity, req.Reason); err != nil {
		return TransferReceipt{}, err
	}
	if err := recordMovement(ctx, tx, req.ProductID, req.ToWarehouseID, req.Quantity, req.Reason); err != nil {
		return TransferReceipt{}, err
	}

	if err := tx.Commit(); err != nil {
		return TransferReceipt{}, fmt.Errorf("commit transfer: %w", err)
	}
	return TransferReceipt{
		ProductID:   req.ProductID,
		From:        req.FromWarehouseID,
		To:          req.ToWarehouseID,
		Quantity:    req.Quantity,
		FromBalance: fromQty - req.Quantity,
		ToBalance:   toQty + req.Quantity,
	}, nil
}

// AdjustStock applies a signed delta to one stock level.
func (s *SQLiteStore) AdjustStock(ctx context.Context, req Adjustment) (AdjustReceipt, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return AdjustReceipt{}, fmt.Errorf("begin adjust: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.productExists(ctx, tx, req.ProductID); err != nil {
		return AdjustReceipt{}, err
	}
	if err := s.warehouseExists(ctx, tx, req.WarehouseID); err != nil {
		return AdjustReceipt{}, err
	}

	qty, err := quantityAt(ctx, tx, req.ProductID, req.WarehouseID)
	if err != nil {
		return AdjustReceipt{}, err
	}
	next := qty + req.Delta
	if next < 0 {
		return AdjustReceipt{}, &InsufficientStockError{
			ProductID:   req.ProductID,
			WarehouseID: req.WarehouseID,
			Requested:   -req.Delta,
			Available:   qty,
		}
	}

	if err := setQuantity(ctx, tx, req.ProductID, req.WarehouseID, next); err != nil {
		return AdjustReceipt{}, err
	}
	if err := recordMovement(ctx, tx, req.ProductID, req.WarehouseID, req.Delta, req.Reason); err != nil {
		return AdjustReceipt{}, err
	}

	if err := tx.Commit(); err != nil {
		return AdjustReceipt{}, fmt.Errorf("commit adjust: %w", err)
	}
	return AdjustReceipt{
		ProductID:   req.ProductID,
		WarehouseID: req.WarehouseID,
		Applied:     req.Delta,
		NewQuantity: next,
	}, nil
}

// CheckStock reports stock levels for a product, optionally scoped to
// one warehouse.
func (s *SQLiteStore) CheckStock(ctx context.Context, productID, warehouseID string) ([]StockLevel, error) {
	if err := s.productExists(ctx, s.db, productID); err != nil {
		return nil, err
	}

	query := `SELECT product_id, warehouse_id, quantity FROM stock_levels WHERE product_id=?`
	args := []any{productID}
	if warehouseID != "" {
		if err := s.warehouseExists(ctx, s.db, warehouseID); err != nil {
			return nil, err
		}
		query += ` AND warehouse_id=?`
		args = append(args, warehouseID)
	}
	query += ` ORDER BY warehouse_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stock: %w", err)
	}
	defer rows.Close()

	var levels []StockLevel
	for rows.Next() {
		var l StockLevel
		if err := rows.Scan(&l.ProductID, &l.WarehouseID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		levels = append(levels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock levels: %w", err)
	}
	return levels, nil
}

// SearchProduct finds products by substring match on id and name.
func (s *SQLiteStore) SearchProduct(ctx context.Context, query, category string) ([]Product, error) {
	like := "%" + query + "%"
	sqlQuery := `SELECT id, name, category FROM products WHERE (id LIKE ? OR name LIKE ?)`
	args := []any{like, like}
	if category != "" {
		sqlQuery += ` AND category=?`
		args = append(args, category)
	}
	sqlQuery += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// CreatePartsList stores a parts list and its items in one transaction.
func (s *SQLiteStore) CreatePartsList(ctx context.Context, req PartsListInput) (PartsList, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return PartsList{}, fmt.Errorf("begin parts list: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createdAt := time.Now().UTC().Truncate(time.Second)
	res, err := tx.ExecContext(ctx, `INSERT INTO parts_lists(created_at, job_number, customer_name, notes)
		VALUES(?, ?, ?, ?)`,
		createdAt.Format(time.RFC3339), req.JobNumber, req.CustomerName, req.Notes)
	if err != nil {
		return PartsList{}, fmt.Errorf("insert parts list: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return PartsList{}, fmt.Errorf("parts list id: %w", err)
	}

	for _, item := range req.Items {
		if err := s.productExists(ctx, tx, item.ProductID); err != nil {
			return PartsList{}, err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO parts_list_items(parts_list_id, product_id, quantity)
			VALUES(?, ?, ?)`, id, item.ProductID, item.Quantity); err != nil {
			return PartsList{}, fmt.Errorf("insert parts list item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return PartsList{}, fmt.Errorf("commit parts list: %w", err)
	}
	return PartsList{
		ID:           id,
		JobNumber:    req.JobNumber,
		CustomerName: req.CustomerName,
		Notes:        req.Notes,
		Items:        req.Items,
		CreatedAt:    createdAt,
	}, nil
}

// LowStockItems lists stock levels at or below threshold.
func (s *SQLiteStore) LowStockItems(ctx context.Context, threshold int, warehouseID string) ([]StockLevel, error) {
	query := `SELECT product_id, warehouse_id, quantity FROM stock_levels WHERE quantity <= ?`
	args := []any{threshold}
	if warehouseID != "" {
		if err := s.warehouseExists(ctx, s.db, warehouseID); err != nil {
			return nil, err
		}
		query += ` AND warehouse_id=?`
		args = append(args, warehouseID)
	}
	query += ` ORDER BY quantity, product_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query low stock: %w", err)
	}
	defer rows.Close()

	var levels []StockLevel
	for rows.Next() {
		var l StockLevel
		if err := rows.Scan(&l.ProductID, &l.WarehouseID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		levels = append(levels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate low stock: %w", err)
	}
	return levels, nil
}
