package catalog

// Tool names known to the assistant.
const (
	ToolTransferStock   = "transfer_stock"
	ToolAdjustStock     = "adjust_stock"
	ToolCheckStock      = "check_stock"
	ToolSearchProduct   = "search_product"
	ToolCreatePartsList = "create_parts_list"
	ToolLowStockItems   = "get_low_stock_items"
)

// Default returns the built-in inventory tool catalog.
func Default() (*Catalog, error) {
	return New([]ToolSpec{
		{
			Name:        ToolTransferStock,
			Description: "Move a quantity of a product from one warehouse to another.",
			Fields: []Field{
				{Name: "product_id", Type: TypeString, Required: true, Description: "Product identifier or SKU."},
				{Name: "from_warehouse_id", Type: TypeString, Required: true, Description: "Source warehouse identifier."},
				{Name: "to_warehouse_id", Type: TypeString, Required: true, Description: "Destination warehouse identifier."},
				{Name: "quantity", Type: TypeInteger, Required: true, Description: "Units to move; must be positive."},
				{Name: "reason", Type: TypeString, Required: false, Description: "Optional note explaining the move."},
			},
		},
		{
			Name:        ToolAdjustStock,
			Description: "Increase or decrease the on-hand quantity of a product in a warehouse.",
			Fields: []Field{
				{Name: "product_id", Type: TypeString, Required: true, Description: "Product identifier or SKU."},
				{Name: "warehouse_id", Type: TypeString, Required: true, Description: "Warehouse identifier."},
				{Name: "quantity_change", Type: TypeInteger, Required: true, Description: "Signed delta; positive adds, negative removes."},
				{Name: "reason", Type: TypeString, Required: false, Description: "Optional note explaining the adjustment."},
			},
		},
		{
			Name:        ToolCheckStock,
			Description: "Report the on-hand quantity of a product, in one warehouse or all.",
			Fields: []Field{
				{Name: "product_id", Type: TypeString, Required: true, Description: "Product identifier or SKU."},
				{Name: "warehouse_id", Type: TypeString, Required: false, Description: "Restrict to one warehouse."},
			},
		},
		{
			Name:        ToolSearchProduct,
			Description: "Find products by free-text query, optionally within a category.",
			Fields: []Field{
				{Name: "query", Type: TypeString, Required: true, Description: "Search text matched against product names and IDs."},
				{Name: "category", Type: TypeString, Required: false, Description: "Restrict to one category."},
			},
		},
		{
			Name:        ToolCreatePartsList,
			Description: "Create a parts list for a customer job.",
			Fields: []Field{
				{Name: "job_number", Type: TypeString, Required: true, Description: "Job or work-order number."},
				{Name: "items", Type: TypeArray, Required: true, Description: "Line items, each {product_id, quantity}."},
				{Name: "customer_name", Type: TypeString, Required: true, Description: "Customer the job belongs to."},
				{Name: "notes", Type: TypeString, Required: false, Description: "Optional free-text notes."},
			},
		},
		{
			Name:        ToolLowStockItems,
			Description: "List stock levels at or below a threshold.",
			Fields: []Field{
				{Name: "threshold", Type: TypeInteger, Required: false, Description: "Quantity cutoff; defaults to 10."},
				{Name: "warehouse_id", Type: TypeString, Required: false, Description: "Restrict to one warehouse."},
			},
		},
	})
}

// MustDefault returns the built-in catalog or panics. The catalog is
// static, so a failure here is a programming error caught at startup.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}
