// Package inventory is the narrow interface to the inventory data
// store, plus a reference SQLite implementation. The orchestration core
// depends only on the Store interface; durable state and cross-session
// consistency belong to the implementation behind it.
package inventory

import (
	"context"
	"fmt"
	"time"
)

// Product is a catalogued product.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Warehouse is a stock location.
type Warehouse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StockLevel is the on-hand quantity of a product at a warehouse.
type StockLevel struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int    `json:"quantity"`
}

// Transfer moves quantity between two warehouses.
type Transfer struct {
	ProductID       string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        int
	Reason          string
}

// TransferReceipt reports the applied transfer and resulting levels.
type TransferReceipt struct {
	ProductID   string `json:"product_id"`
	From        string `json:"from_warehouse_id"`
	To          string `json:"to_warehouse_id"`
	Quantity    int    `json:"quantity"`
	FromBalance int    `json:"from_balance"`
	ToBalance   int    `json:"to_balance"`
}

// Adjustment changes the on-hand quantity at one warehouse.
type Adjustment struct {
	ProductID   string
	WarehouseID string
	Delta       int
	Reason      string
}

// AdjustReceipt reports the applied adjustment and resulting level.
type AdjustReceipt struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Applied     int    `json:"applied"`
	NewQuantity int    `json:"new_quantity"`
}

// PartsListItem is one line of a parts list.
type PartsListItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PartsListInput creates a parts list for a customer job.
type PartsListInput struct {
	JobNumber    string
	CustomerName string
	Notes        string
	Items        []PartsListItem
}

// PartsList is a stored parts list.
type PartsList struct {
	ID           int64           `json:"id"`
	JobNumber    string          `json:"job_number"`
	CustomerName string          `json:"customer_name"`
	Notes        string          `json:"notes,omitempty"`
	Items        []PartsListItem `json:"items"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Store is the fixed set of named operations the assistant can dispatch.
// Each call succeeds or fails atomically and returns structured data.
type Store interface {
	TransferStock(ctx context.Context, req Transfer) (TransferReceipt, error)
	AdjustStock(ctx context.Context, req Adjustment) (AdjustReceipt, error)
	CheckStock(ctx context.Context, productID, warehouseID string) ([]StockLevel, error)
	SearchProduct(ctx context.Context, query, category string) ([]Product, error)
	CreatePartsList(ctx context.Context, req PartsListInput) (PartsList, error)
	LowStockItems(ctx context.Context, threshold int, warehouseID string) ([]StockLevel, error)
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	Ref    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Ref)
}

// InsufficientStockError reports an operation that would drive stock
// negative.
type InsufficientStockError struct {
	ProductID   string
	WarehouseID string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock of %s at %s: requested %d, available %d",
		e.ProductID, e.WarehouseID, e.Requested, e.Available)
}
