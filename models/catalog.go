package models

// Product is the catalog entry returned by GET /products/.
type Product struct {
	ID            string  `json:"id" binding:"required"`
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	ImageURL      string  `json:"image_url,omitempty"`
	CategoryID    string  `json:"category_id,omitempty"`
	AuthorID      string  `json:"author_id,omitempty"`
	PublisherID   string  `json:"publisher_id,omitempty"`
	Description   string  `json:"description,omitempty"`
	StockQuantity int     `json:"stock_quantity,omitempty"`
}

// Category is an entry of GET /products/categories.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
}

// UserProfile is the payload of GET /users/me.
type UserProfile struct {
	ID          string `json:"id"`
	Fullname    string `json:"fullname"`
	Email       string `json:"email"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Role        string `json:"role"`
}
