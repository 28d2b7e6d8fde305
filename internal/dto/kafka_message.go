package dto

type KafkaMessage struct {
	EventType string      `json:"event_type"`
	Data      interface{} `json:"data"`
}

// InventoryAdjustmentFailed is published when a best-effort stock or sales
// adjustment could not be delivered, so a reconciliation consumer can retry.
type InventoryAdjustmentFailed struct {
	OrderID  int64  `json:"order_id"`
	Action   string `json:"action"`
	BookID   string `json:"book_id"`
	Quantity int64  `json:"quantity"`
	Error    string `json:"error"`
}
