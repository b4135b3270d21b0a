package repositories

import (
	"context"
	"errors"

	"orderdesk/internal/common"
	"orderdesk/internal/models"
	"orderdesk/pkg/database"

	"github.com/jackc/pgx/v5"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]models.Customer, error)
}

type customerRepo struct {
	db database.DB
}

func NewCustomerRepo(db database.DB) CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (name, email)
		VALUES ($1, $2)
		RETURNING id
	`
	return r.db.QueryRow(ctx, query, customer.Name, customer.Email).Scan(&customer.ID)
}

func (r *customerRepo) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	customer := &models.Customer{}
	query := `SELECT id, name, email FROM customers WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&customer.ID, &customer.Name, &customer.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *customerRepo) Update(ctx context.Context, customer *models.Customer) (bool, error) {
	query := `UPDATE customers SET name = $1, email = $2 WHERE id = $3`
	tag, err := r.db.Exec(ctx, query, customer.Name, customer.Email, customer.ID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *customerRepo) Delete(ctx context.Context, id int64) (bool, error) {
	query := `DELETE FROM customers WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *customerRepo) List(ctx context.Context) ([]models.Customer, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, email FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
