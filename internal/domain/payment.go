package domain

type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "Pending"
	TransactionStatusSuccess  TransactionStatus = "Success"
	TransactionStatusFailed   TransactionStatus = "Failed"
	TransactionStatusRefunded TransactionStatus = "Refunded"
)

// Terminal transaction states are immutable once reached.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusSuccess || s == TransactionStatusRefunded
}

type AttemptStatus string

const (
	AttemptStatusActive    AttemptStatus = "ACTIVE"
	AttemptStatusCanceled  AttemptStatus = "CANCELED"
	AttemptStatusCompleted AttemptStatus = "COMPLETED"
)

// Payment is one attempt to collect money for an order. An order may
// accumulate several attempts over time, at most one of them active.
type Payment struct {
	ID                   int64             `db:"id"`
	OrderID              int64             `db:"order_id"`
	UserID               string            `db:"user_id"`
	Amount               float64           `db:"amount"`
	PaymentMethod        PaymentMethod     `db:"payment_method"`
	TransactionStatus    TransactionStatus `db:"transaction_status"`
	Status               AttemptStatus     `db:"status"`
	GatewayTransactionID *string           `db:"gateway_transaction_id"`
	GatewayResponseCode  *string           `db:"gateway_response_code"`
	GatewayMessage       *string           `db:"gateway_message"`
	BankCode             *string           `db:"bank_code"`
	CardType             *string           `db:"card_type"`
	PayDate              *int64            `db:"pay_date"`
	RawResponse          []byte            `db:"raw_response"`
	TxnRef               *string           `db:"txn_ref"`
	CreatedAt            int64             `db:"created_at"`
	UpdatedAt            int64             `db:"updated_at"`
}

// PaymentLog is the append-only audit record of one raw gateway callback.
// It is written for forensic replay only and never read by business logic.
type PaymentLog struct {
	ID        int64  `db:"id"`
	PaymentID int64  `db:"payment_id"`
	Request   []byte `db:"request"`
	Response  []byte `db:"response"`
	CreatedAt int64  `db:"created_at"`
}
