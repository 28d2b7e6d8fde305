package domain

type CompensationAction string

const (
	CompensationDecrementStock CompensationAction = "decrement_stock"
	CompensationRestoreStock   CompensationAction = "restore_stock"
	CompensationAdjustSales    CompensationAction = "adjust_sales"
)

type CompensationStatus string

const (
	CompensationOK     CompensationStatus = "ok"
	CompensationFailed CompensationStatus = "failed"
)

// CompensationRecord tracks one best-effort outbound inventory call and its
// outcome. Failed records are the hook for a later reconciliation pass; the
// core never blocks on them.
type CompensationRecord struct {
	ID        int64              `db:"id"`
	OrderID   int64              `db:"order_id"`
	Action    CompensationAction `db:"action"`
	BookID    string             `db:"book_id"`
	Quantity  int64              `db:"quantity"`
	Status    CompensationStatus `db:"status"`
	LastError *string            `db:"last_error"`
	CreatedAt int64              `db:"created_at"`
}
