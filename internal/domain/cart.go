package domain

type Cart struct {
	ID        int64  `db:"id"`
	UserID    string `db:"user_id"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
	Items     []CartItem
}

type CartItem struct {
	ID           int64   `db:"id"`
	CartID       int64   `db:"cart_id"`
	BookID       string  `db:"book_id"`
	Title        string  `db:"title"`
	Price        float64 `db:"price"`
	Quantity     int64   `db:"quantity"`
	PrimaryImage string  `db:"primary_image"`
}
