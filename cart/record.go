package cart

import "github.com/yashrajoria/storefront/models"

// Record is the ordered list of cart lines. Operations never modify the
// receiver; they return the next record.
type Record []models.CartItem

func (r Record) index(id string) int {
	for i, item := range r {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (r Record) clone() Record {
	out := make(Record, len(r))
	copy(out, r)
	return out
}

// Add increments the quantity of an existing line or appends a new one.
func (r Record) Add(product models.Product, quantity int) Record {
	next := r.clone()
	if i := next.index(product.ID); i >= 0 {
		next[i].Quantity += quantity
		return next
	}
	return append(next, models.CartItem{
		ID:       product.ID,
		Title:    product.Title,
		Price:    product.Price,
		ImageURL: product.ImageURL,
		Quantity: quantity,
	})
}

// UpdateQuantity sets the quantity of line id; quantity <= 0 drops the line.
// ok is false when id is not in the record.
func (r Record) UpdateQuantity(id string, quantity int) (next Record, ok bool) {
	i := r.index(id)
	if i < 0 {
		return r, false
	}
	if quantity <= 0 {
		return r.without(i), true
	}
	next = r.clone()
	next[i].Quantity = quantity
	return next, true
}

// Remove drops line id. ok is false when it was not present.
func (r Record) Remove(id string) (next Record, ok bool) {
	i := r.index(id)
	if i < 0 {
		return r, false
	}
	return r.without(i), true
}

func (r Record) without(i int) Record {
	next := make(Record, 0, len(r)-1)
	next = append(next, r[:i]...)
	return append(next, r[i+1:]...)
}

// Count is the number of units across all lines.
func (r Record) Count() int {
	total := 0
	for _, item := range r {
		total += item.Quantity
	}
	return total
}

// Total is the sum of price times quantity.
func (r Record) Total() float64 {
	var total float64
	for _, item := range r {
		total += item.Subtotal()
	}
	return total
}
