package api

// Product is a catalogue entry as returned by the autocomplete endpoint.
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	CategoryName  string  `json:"category_name,omitempty"`
	ImageURL      string  `json:"image_url,omitempty"`
	StockQuantity int     `json:"stock_quantity,omitempty"`
}

// Envelope is the part every action response shares.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CartResponse is returned by the cart endpoints.
type CartResponse struct {
	Envelope
	CartCount int `json:"cart_count"`
}

// AutocompleteResponse is returned by the autocomplete endpoint.
type AutocompleteResponse struct {
	Suggestions []Product `json:"suggestions"`
}

// AddRequest is the body of /api/cart/add.
type AddRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"gte=1"`
}

// UpdateRequest is the body of /api/cart/update. Quantity 0 removes the item.
type UpdateRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"gte=0"`
}

// RemoveRequest is the body of /api/cart/remove.
type RemoveRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// OrderStatuses lists the statuses an order can move to.
var OrderStatuses = []string{"pending", "processing", "shipped", "delivered", "cancelled"}

// StatusRequest is the body of /admin/orders/update-status.
type StatusRequest struct {
	OrderID int64  `json:"order_id" validate:"required,gt=0"`
	Status  string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

// BulkRequest is the body of /admin/bulk-action.
type BulkRequest struct {
	Action string   `json:"action" validate:"required"`
	Items  []string `json:"items" validate:"required,min=1,dive,required"`
}

// CartResult is the outcome of a successful cart action.
type CartResult struct {
	Message   string
	CartCount int
}
