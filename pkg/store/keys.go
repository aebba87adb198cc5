package store

import "strings"

// Key scheme. Products live under their id; a separate reservation key per
// code enforces catalog-wide code uniqueness through conditional inserts,
// since the store offers no multi-key transactions. Orders are addressed by
// (email, orderId) so a prefix query lists a customer's orders.

const (
	// ProductPrefix matches every product item (and nothing else: the code
	// reservation keys use a different prefix).
	ProductPrefix = "product#"
	// OrderPrefix matches every order item.
	OrderPrefix = "order#"
)

// ProductKey addresses a product by id.
func ProductKey(id string) string {
	return "product#" + id
}

// ProductCodeKey addresses the uniqueness reservation for a product code.
func ProductCodeKey(code string) string {
	return "product-code#" + code
}

// OrderKey addresses an order by customer email and order id.
func OrderKey(email, orderID string) string {
	return "order#" + escapeKeyPart(email) + "#" + orderID
}

// OrderEmailPrefix matches every order of one customer.
func OrderEmailPrefix(email string) string {
	return "order#" + escapeKeyPart(email) + "#"
}

// escapeKeyPart neutralises the key separator inside a key segment. "#" is a
// legal character in an email local part, so an unescaped email could collide
// with another customer's key or prefix.
func escapeKeyPart(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	return strings.ReplaceAll(s, "#", "%23")
}
