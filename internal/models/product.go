package models

type Product struct {
	ID    int64   `json:"id" db:"id"`
	Name  string  `json:"name" db:"name"`
	Price float64 `json:"price" db:"price"`
}

// ProductInput is the writable part of a product as submitted by clients
type ProductInput struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}
