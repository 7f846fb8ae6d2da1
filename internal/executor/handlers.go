package executor

import (
	"context"
	"fmt"

	"stockhand/internal/catalog"
	"stockhand/internal/command"
	"stockhand/internal/inventory"
)

type transferArgs struct {
	ProductID       string `json:"product_id" validate:"required"`
	FromWarehouseID string `json:"from_warehouse_id" validate:"required"`
	ToWarehouseID   string `json:"to_warehouse_id" validate:"required,nefield=FromWarehouseID"`
	Quantity        int    `json:"quantity" validate:"required,gt=0"`
	Reason          string `json:"reason"`
}

func (e *Executor) transferStock(ctx context.Context, params map[string]any) (any, string, *command.ToolCall, error) {
	var args transferArgs
	if err := e.decode(params, &args); err != nil {
		return nil, "", nil, err
	}

	receipt, err := e.store.TransferStock(ctx, inventory.Transfer{
		ProductID:       args.ProductID,
		FromWarehouseID: args.FromWarehouseID,
		ToWarehouseID:   args.ToWarehouseID,
		Quantity:        args.Quantity,
		Reason:          args.Reason,
	})
	if err != nil {
		return nil, "", nil, err
	}

	// The inverse is built from the applied values, not recomputed later
	// from possibly-stale state.
	reverse := &command.ToolCall{
		Action: catalog.ToolTransferStock,
		Parameters: map[string]any{
			"product_id":        receipt.ProductID,
			"from_warehouse_id": receipt.To,
			"to_warehouse_id":   receipt.From,
			"quantity":          receipt.Quantity,
			"reason":            "undo transfer",
		},
	}
	summary := fmt.Sprintf("Moved %d %s from %s to %s (now %d at source, %d at destination).",
		receipt.Quantity, receipt.ProductID, receipt.From, receipt.To,
		receipt.FromBalance, receipt.ToBalance)
	return receipt, summary, reverse, nil
}

type adjustArgs struct {
	ProductID      string `json:"product_id" validate:"required"`
	WarehouseID    string `json:"warehouse_id" validate:"required"`
	QuantityChange int    `json:"quantity_change" validate:"required"`
	Reason         string `json:"reason"`
}

func (e *Executor) adjustStock(ctx context.Context, params map[string]any) (any, string, *command.ToolCall, error) {
	var args adjustArgs
	if err := e.decode(params, &args); err != nil {
		return nil, "", nil, err
	}

	receipt, err := e.store.AdjustStock(ctx, inventory.Adjustment{
		ProductID:   args.ProductID,
		WarehouseID: args.WarehouseID,
		Delta:       args.QuantityChange,
		Reason:      args.Reason,
	})
	if err != nil {
		return nil, "", nil, err
	}

	reverse := &command.ToolCall{
		Action: catalog.ToolAdjustStock,
		Parameters: map[string]any{
			"product_id":      receipt.ProductID,
			"warehouse_id":    receipt.WarehouseID,
			"quantity_change": -receipt.Applied,
			"reason":          "undo adjustment",
		},
	}
	verb := "Added"
	n := receipt.Applied
	if n < 0 {
		verb = "Removed"
		n = -n
	}
	summary := fmt.Sprintf("%s %d %s at %s (now %d on hand).",
		verb, n, receipt.ProductID, receipt.WarehouseID, receipt.NewQuantity)
	return receipt, summary, reverse, nil
}

type checkArgs struct {
	ProductID   string `json:"product_id" validate:"required"`
	WarehouseID string `json:"warehouse_id"`
}

func (e *Executor) checkStock(ctx context.Context, params map[string]any) (any, string, *command.ToolCall, error) {
	var args checkArgs
	if err := e.decode(params, &args); err != nil {
		return nil, "", nil, err
	}

	levels, err := e.store.CheckStock(ctx, args.ProductID, args.WarehouseID)
	if err != nil {
		return nil, "", nil, err
	}

	total := 0
	for _, l := range levels {
		total += l.Quantity
	}
	summary := fmt.Sprintf("%d %s on hand across %d location(s).", total, args.ProductID, len(levels))
	if len(levels) == 0 {
		summary = fmt.Sprintf("No stock records for %s.", args.ProductID)
	}
	return levels, summary, nil, nil
}

type searchArgs struct {
	Query    string `json:"query" validate:"required"`
	Category string `json:"category"`
}

func (e *Executor) searchProduct(ctx context.Context, params map[string]any) (any, string, *command.ToolCall, error) {
	var args searchArgs
	if err := e.decode(params, &args); err != nil {
		return nil, "", nil, err
	}

	products, err := e.store.SearchProduct(ctx, args.Query, args.Category)
	if err != nil {
		return nil, "", nil, err
	}
	return products, fmt.Sprintf("Found %d product(s) matching %q.", len(products), args.Query), nil, nil
}

type partsListItemArgs struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type partsListArgs struct {
	JobNumber    string              `json:"job_number" validate:"required"`
	CustomerName string              `json:"customer_name" validate:"required"`
	Notes        string              `json:"notes"`
	Items        []partsListItemArgs `json:"items" validate:"required,min=1,dive"`
}

func (e *Executor) createPartsList(ctx context.Context, params map[string]any) (any, string, *command.ToolCall, error) {
	var args partsListArgs
	if err := e.decode(params, &args); err != nil {
		return nil, "", nil, err
	}

	items := make([]inventory.PartsListItem, 0, len(args.Items))
	for _, it := range args.Items {
		items = append(items, inventory.PartsListItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	list, err := e.store.CreatePartsList(ctx, inventory.PartsListInput{
		JobNumber:    args.JobNumber,
		CustomerName: args.CustomerName,
		Notes:        args.Notes,
		Items:        items,
	})
	if err != nil {
		return nil, "", nil, err
	}
	summary := fmt.Sprintf("Created parts list #%d for job %s (%s) with %d item(s).",
		list.ID, list.JobNumber, list.CustomerName, len(list.Items))
	return list, summary, nil, nil
}

type lowStockArgs struct {
	Threshold   int    `json:"threshold" validate:"gte=0"`
	WarehouseID string `json:"warehouse_id"`
}

func (e *Executor) lowStockItems(ctx context.Context, params map[string]any) (any, string, *command.ToolCall, error) {
	var args lowStockArgs
	if err := e.decode(params, &args); err != nil {
		return nil, "", nil, err
	}
	if args.Threshold == 0 {
		args.Threshold = defaultLowStockThreshold
	}

	levels, err := e.store.LowStockItems(ctx, args.Threshold, args.WarehouseID)
	if err != nil {
		return nil, "", nil, err
	}
	return levels, fmt.Sprintf("%d item(s) at or below %d.", len(levels), args.Threshold), nil, nil
}
