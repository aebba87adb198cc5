package models

// Product represents a catalog product.
type Product struct {
	ID          string  `json:"id"`
	ProductName string  `json:"productName"`
	Code        string  `json:"code"`
	Model       string  `json:"model,omitempty"`
	ProductURL  string  `json:"productUrl,omitempty"`
	Price       float64 `json:"price"`
}

// ProductRequest is the request body for creating or updating a product.
// Optional fields are pointers so an update only touches what the caller sent.
type ProductRequest struct {
	ID          string   `json:"id,omitempty" example:"b5f8c1c2-7e2a-4f3d-9a51-2f1f6a2b9c0d"`
	ProductName string   `json:"productName" example:"Table"`
	Code        string   `json:"code" example:"T-01"`
	Model       *string  `json:"model,omitempty" example:"Oak 4-seat"`
	ProductURL  *string  `json:"productUrl,omitempty" example:"https://cdn.example.com/t01.png"`
	Price       *float64 `json:"price,omitempty" example:"150"`
}
