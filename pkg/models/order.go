package models

// PaymentMethod is the closed set of accepted payment methods.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "CASH"
	PaymentDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
)

// PaymentMethods lists every accepted payment method as strings, in the order
// they are documented.
func PaymentMethods() []string {
	return []string{
		string(PaymentCash),
		string(PaymentDebitCard),
		string(PaymentCreditCard),
	}
}

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
)

// Order represents a customer order. Total is computed from the referenced
// product prices at creation time and never recomputed afterwards.
type Order struct {
	ID         string        `json:"id"`
	Email      string        `json:"email"`
	ProductIDs []string      `json:"productIds"`
	Payment    PaymentMethod `json:"payment"`
	Status     OrderStatus   `json:"status"`
	Total      float64       `json:"total"`
	CreatedAt  int64         `json:"createdAt"`
}

// CreateOrderRequest is the request body for creating an order.
type CreateOrderRequest struct {
	Email      string   `json:"email" example:"customer@example.com"`
	ProductIDs []string `json:"productIds" example:"b5f8c1c2-7e2a-4f3d-9a51-2f1f6a2b9c0d"`
	Payment    string   `json:"payment" example:"CREDIT_CARD"`
}
