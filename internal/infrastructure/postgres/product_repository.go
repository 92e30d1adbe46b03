package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, tenant_id, name, sku, unit, cost_price, selling_price, gst_rate, stock_quantity, min_stock_level, created_at, updated_at`

// Create persiste un producto del catálogo (alta inicial y seeds).
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.TenantID, p.Name, p.SKU, p.Unit, p.CostPrice, p.SellingPrice, p.GSTRate,
		p.StockQuantity, p.MinStockLevel, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto del tenant.
func (r *ProductRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

// List productos del tenant paginados por nombre.
func (r *ProductRepo) List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE tenant_id = $1 ORDER BY name, id LIMIT $2 OFFSET $3`,
		tenantID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var out []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(
			&p.ID, &p.TenantID, &p.Name, &p.SKU, &p.Unit, &p.CostPrice, &p.SellingPrice, &p.GSTRate,
			&p.StockQuantity, &p.MinStockLevel, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) get(ctx context.Context, query, tenantID, id string) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, query, tenantID, id).Scan(
		&p.ID, &p.TenantID, &p.Name, &p.SKU, &p.Unit, &p.CostPrice, &p.SellingPrice, &p.GSTRate,
		&p.StockQuantity, &p.MinStockLevel, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// UpdateStock escribe stock_quantity. Solo lo usa el libro de stock.
func (r *ProductRepo) UpdateStock(ctx context.Context, tenantID, id string, quantity decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET stock_quantity = $3, updated_at = now() WHERE tenant_id = $1 AND id = $2`,
		tenantID, id, quantity,
	)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("product", id)
	}
	return nil
}
