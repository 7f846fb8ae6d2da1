package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockhand/internal/catalog"
	"stockhand/internal/command"
	"stockhand/internal/inventory"
)

// fakeStore satisfies inventory.Store with canned behavior and records
// the requests it receives.
type fakeStore struct {
	transfers   []inventory.Transfer
	adjustments []inventory.Adjustment
	err         error
}

func (f *fakeStore) TransferStock(_ context.Context, req inventory.Transfer) (inventory.TransferReceipt, error) {
	if f.err != nil {
		return inventory.TransferReceipt{}, f.err
	}
	f.transfers = append(f.transfers, req)
	return inventory.TransferReceipt{
		ProductID: req.ProductID,
		From:      req.FromWarehouseID,
		To:        req.ToWarehouseID,
		Quantity:  req.Quantity,
	}, nil
}

func (f *fakeStore) AdjustStock(_ context.Context, req inventory.Adjustment) (inventory.AdjustReceipt, error) {
	if f.err != nil {
		return inventory.AdjustReceipt{}, f.err
	}
	f.adjustments = append(f.adjustments, req)
	return inventory.AdjustReceipt{
		ProductID:   req.ProductID,
		WarehouseID: req.WarehouseID,
		Applied:     req.Delta,
		NewQuantity: 100 + req.Delta,
	}, nil
}

func (f *fakeStore) CheckStock(_ context.Context, productID, warehouseID string) ([]inventory.StockLevel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []inventory.StockLevel{{ProductID: productID, WarehouseID: "warehouse-1", Quantity: 42}}, nil
}

func (f *fakeStore) SearchProduct(_ context.Context, query, category string) ([]inventory.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []inventory.Product{{ID: "widget-A", Name: "Widget A"}}, nil
}

func (f *fakeStore) CreatePartsList(_ context.Context, req inventory.PartsListInput) (inventory.PartsList, error) {
	if f.err != nil {
		return inventory.PartsList{}, f.err
	}
	return inventory.PartsList{ID: 7, JobNumber: req.JobNumber, CustomerName: req.CustomerName, Items: req.Items}, nil
}

func (f *fakeStore) LowStockItems(_ context.Context, threshold int, warehouseID string) ([]inventory.StockLevel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

func newExecutor(t *testing.T, store inventory.Store) *Executor {
	t.Helper()
	e, err := New(catalog.MustDefault(), store)
	require.NoError(t, err)
	return e
}

func TestExecuteTransferPrecomputesInverse(t *testing.T) {
	store := &fakeStore{}
	e := newExecutor(t, store)

	out := e.Execute(context.Background(), command.ToolCall{
		Action: catalog.ToolTransferStock,
		Parameters: map[string]any{
			"product_id":        "widget-A",
			"from_warehouse_id": "warehouse-1",
			"to_warehouse_id":   "warehouse-2",
			"quantity":          10,
		},
	})
	require.True(t, out.Result.Success, out.Result.Message)
	require.True(t, out.Reversible)
	require.NotNil(t, out.Reverse)

	assert.Equal(t, catalog.ToolTransferStock, out.Reverse.Action)
	assert.Equal(t, "warehouse-2", out.Reverse.Parameters["from_warehouse_id"])
	assert.Equal(t, "warehouse-1", out.Reverse.Parameters["to_warehouse_id"])
	assert.Equal(t, 10, out.Reverse.Parameters["quantity"])
}

func TestExecuteAdjustInverseNegatesDelta(t *testing.T) {
	e := newExecutor(t, &fakeStore{})

	out := e.Execute(context.Background(), command.ToolCall{
		Action: catalog.ToolAdjustStock,
		Parameters: map[string]any{
			"product_id":      "bolt-M6",
			"warehouse_id":    "warehouse-1",
			"quantity_change": -25,
		},
	})
	require.True(t, out.Result.Success)
	require.True(t, out.Reversible)
	assert.Equal(t, 25, out.Reverse.Parameters["quantity_change"])
}

func TestExecuteCoercesNumericStrings(t *testing.T) {
	store := &fakeStore{}
	e := newExecutor(t, store)

	out := e.Execute(context.Background(), command.ToolCall{
		Action: catalog.ToolTransferStock,
		Parameters: map[string]any{
			"product_id":        "widget-A",
			"from_warehouse_id": "warehouse-1",
			"to_warehouse_id":   "warehouse-2",
			"quantity":          "10",
		},
	})
	require.True(t, out.Result.Success, out.Result.Message)
	require.Len(t, store.transfers, 1)
	assert.Equal(t, 10, store.transfers[0].Quantity)
}

func TestExecuteRejectsSameSourceAndDestination(t *testing.T) {
	store := &fakeStore{}
	e := newExecutor(t, store)

	out := e.Execute(context.Background(), command.ToolCall{
		Action: catalog.ToolTransferStock,
		Parameters: map[string]any{
			"product_id":        "widget-A",
			"from_warehouse_id": "warehouse-1",
			"to_warehouse_id":   "warehouse-1",
			"quantity":          5,
		},
	})
	assert.False(t, out.Result.Success)
	assert.Equal(t, command.KindValidation, out.Result.ErrorKind)
	assert.Contains(t, out.Result.Message, "must differ from from_warehouse_id")
	assert.Empty(t, store.transfers, "command must never be dispatched")
}

func TestExecuteRejectsNonPositiveQuantity(t *testing.T) {
	e := newExecutor(t, &fakeStore{})

	out := e.Execute(context.Background(), command.ToolCall{
		Action: catalog.ToolTransferStock,
		Parameters: map[string]any{
			"product_id":        "widget-A",
			"from_warehouse_id": "warehouse-1",
			"to_warehouse_id":   "warehouse-2",
			"quantity":          -3,
		},
	})
	assert.False(t, out.Result.Success)
	assert.Equal(t, command.KindValidation, out.Result.ErrorKind)
	assert.Contains(t, out.Result.Message, "quantity")
}

func TestExecuteMapsNotFound(t *testing.T) {
	e := newExecutor(t, &fakeStore{err: &inventory.NotFoundError{Entity: "product", Ref: "widget-Z"}})

	out := e.Execute(context.Background(), command.ToolCall{
		Action:     catalog.ToolCheckStock,
		Parameters: map[string]any{"product_id": "widget-Z"},
	})
	assert.False(t, out.Result.Success)
	assert.Equal(t, command.KindNotFound, out.Result.ErrorKind)
	assert.Contains(t, out.Result.Message, "widget-Z")
	assert.Contains(t, out.Result.Message, "create it")
}

func TestExecuteMapsInsufficientStock(t *testing.T) {
	e := newExecutor(t, &fakeStore{err: &inventory.InsufficientStockError{
		ProductID: "widget-A", WarehouseID: "warehouse-1", Requested: 50, Available: 8,
	}})

	out := e.Execute(context.Background(), command.ToolCall{
		Action: catalog.ToolTransferStock,
		Parameters: map[string]any{
			"product_id":        "widget-A",
			"from_warehouse_id": "warehouse-1",
			"to_warehouse_id":   "warehouse-2",
			"quantity":          50,
		},
	})
	assert.False(t, out.Result.Success)
	assert.Equal(t, command.KindExecution, out.Result.ErrorKind)
	assert.Contains(t, out.Result.Message, "insufficient stock")
}

func TestExecuteUnknownActionNeverDispatches(t *testing.T) {
	e := newExecutor(t, &fakeStore{})

	out := e.Execute(context.Background(), command.ToolCall{Action: "drop_all_tables"})
	assert.False(t, out.Result.Success)
	assert.Equal(t, command.KindValidation, out.Result.ErrorKind)
}

func TestQueriesAreNotReversible(t *testing.T) {
	e := newExecutor(t, &fakeStore{})

	out := e.Execute(context.Background(), command.ToolCall{
		Action:     catalog.ToolCheckStock,
		Parameters: map[string]any{"product_id": "widget-A"},
	})
	require.True(t, out.Result.Success)
	assert.False(t, out.Reversible)
	assert.Nil(t, out.Reverse)
}

func TestCreatePartsListDecodesItems(t *testing.T) {
	e := newExecutor(t, &fakeStore{})

	out := e.Execute(context.Background(), command.ToolCall{
		Action: catalog.ToolCreatePartsList,
		Parameters: map[string]any{
			"job_number":    "JOB-1042",
			"customer_name": "Acme Fabrication",
			"items": []any{
				map[string]any{"product_id": "bolt-M6", "quantity": 40},
				map[string]any{"product_id": "bearing-608", "quantity": "4"},
			},
		},
	})
	require.True(t, out.Result.Success, out.Result.Message)
	assert.False(t, out.Reversible)
}
