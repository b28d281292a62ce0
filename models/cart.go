package models

// CartItem is one line of the cart record as it is stored.
type CartItem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`
	Quantity int     `json:"quantity"`
}

// Subtotal is price times quantity.
func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// AddItemRequest is the body of POST /api/cart/items.
type AddItemRequest struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// UpdateQuantityRequest is the body of PUT /api/cart/items/:id.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartResponse is the JSON view of a cart.
type CartResponse struct {
	Items []CartItem `json:"items"`
	Count int        `json:"count"`
	Total float64    `json:"total"`
	Badge BadgeView  `json:"badge"`
}

// BadgeView mirrors the navbar cart indicator.
type BadgeView struct {
	Count   int  `json:"count"`
	Visible bool `json:"visible"`
}
