package models

type Customer struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

// CustomerInput is the writable part of a customer as submitted by clients
type CustomerInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
