package dto

// BookRecord is the authoritative price/stock record returned by the book
// service. Client-supplied prices are never trusted over these.
type BookRecord struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Price        float64 `json:"price"`
	StockCount   int64   `json:"stock_count"`
	Availability bool    `json:"availability"`
	PrimaryImage string  `json:"primary_image"`
	Version      int64   `json:"_version"`
}

type BooksResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Books []BookRecord `json:"books"`
	} `json:"data"`
}

type StockAdjustmentRequest struct {
	Quantity int64 `json:"quantity"`
	Version  int64 `json:"_version,omitempty"`
}

type SalesAdjustmentRequest struct {
	Quantity int64 `json:"quantity"`
}

type SavedAddress struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Address     string `json:"address"`
	Ward        string `json:"ward"`
	District    string `json:"district"`
	City        string `json:"city"`
	PhoneNumber string `json:"phone_number"`
	FullName    string `json:"full_name"`
}

type AddressResponse struct {
	Status string `json:"status"`
	Data   struct {
		Address *SavedAddress `json:"address"`
	} `json:"data"`
}

type UserProfileResponse struct {
	Status string `json:"status"`
	Data   struct {
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	} `json:"data"`
}
