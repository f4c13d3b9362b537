package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/storefront/internal/model"
)

// productColumns はSELECT句で取得する商品カラムの並び。scanProductと対で管理する。
const productColumns = `id, title, description, price, category, image, rating_rate, rating_count, created_at, updated_at`

// PostgresProductRepo はPostgreSQLを使用した商品リポジトリ。
type PostgresProductRepo struct {
	db *sql.DB
}

// NewPostgresProductRepo はPostgresProductRepoを生成する。
func NewPostgresProductRepo(db *sql.DB) *PostgresProductRepo {
	return &PostgresProductRepo{db: db}
}

// FindByID は指定IDの商品を取得する。見つからない場合はnilを返す。
func (r *PostgresProductRepo) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`,
		id,
	)

	product, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List は検索条件に一致する商品のスライスとページネーション適用前の総件数を返す。
// WHERE句は条件の有無に応じて組み立て、ソートは最後に適用する。
func (r *PostgresProductRepo) List(ctx context.Context, q ProductQuery) ([]model.Product, int, error) {
	where, args := buildProductWhere(q)

	// 総件数はLIMIT/OFFSET適用前に同一条件で数える
	var total int
	countQuery := `SELECT COUNT(*) FROM products` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	listQuery := `SELECT ` + productColumns + ` FROM products` + where +
		` ORDER BY ` + orderClause(q.Sort) +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	listArgs := append(args, q.Limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate product rows: %w", err)
	}

	return products, total, nil
}

// Create は商品を作成し、採番されたIDとタイムスタンプをproductに書き戻す。
func (r *PostgresProductRepo) Create(ctx context.Context, product *model.Product) error {
	rate, count := ratingColumns(product.Rating)

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO products (title, description, price, category, image, rating_rate, rating_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		product.Title, product.Description, product.Price, product.Category, product.Image, rate, count,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// Update は商品の全フィールドを上書き更新し、updated_atをproductに書き戻す。
func (r *PostgresProductRepo) Update(ctx context.Context, product *model.Product) error {
	rate, count := ratingColumns(product.Rating)

	err := r.db.QueryRowContext(ctx,
		`UPDATE products
		 SET title = $1, description = $2, price = $3, category = $4, image = $5,
		     rating_rate = $6, rating_count = $7, updated_at = now()
		 WHERE id = $8
		 RETURNING updated_at`,
		product.Title, product.Description, product.Price, product.Category, product.Image,
		rate, count, product.ID,
	).Scan(&product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// Delete は指定IDの商品を削除する。削除対象が存在しない場合はfalseを返す。
func (r *PostgresProductRepo) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM products WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// buildProductWhere はProductQueryからWHERE句とプレースホルダー引数を組み立てる。
// 条件がひとつもない場合は空文字列を返す。各条件は構造的に独立しており、
// 適用順序が結果の意味を変えることはない。
func buildProductWhere(q ProductQuery) (string, []any) {
	conds := []string{}
	args := []any{}

	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		args = append(args, pattern)
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", n, n))
	}
	if q.Category != "" {
		args = append(args, q.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if q.MinPrice != nil {
		args = append(args, *q.MinPrice)
		conds = append(conds, fmt.Sprintf("price >= $%d", len(args)))
	}
	if q.MaxPrice != nil {
		args = append(args, *q.MaxPrice)
		conds = append(conds, fmt.Sprintf("price <= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderClause はProductSortをORDER BY句に変換する。
// 未対応の値はID降順に倒す（安定したデフォルト順）。
func orderClause(sort model.ProductSort) string {
	switch sort {
	case model.ProductSortPriceAsc:
		return "price ASC"
	case model.ProductSortPriceDesc:
		return "price DESC"
	case model.ProductSortNewest:
		return "created_at DESC"
	default:
		return "id DESC"
	}
}

// ratingColumns はRatingをNULL許容カラム値のペアに変換する。
func ratingColumns(rating *model.Rating) (sql.NullFloat64, sql.NullInt64) {
	if rating == nil {
		return sql.NullFloat64{}, sql.NullInt64{}
	}
	return sql.NullFloat64{Float64: rating.Rate, Valid: true},
		sql.NullInt64{Int64: int64(rating.Count), Valid: true}
}

// rowScanner は*sql.Rowと*sql.Rowsの共通Scanインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProduct はproductColumnsの並びで1行をProductに読み取る。
// rating_rate/rating_countが両方NULLの場合はRatingをnilにする。
func scanProduct(row rowScanner) (*model.Product, error) {
	product := &model.Product{}
	var rate sql.NullFloat64
	var count sql.NullInt64

	err := row.Scan(
		&product.ID, &product.Title, &product.Description, &product.Price,
		&product.Category, &product.Image, &rate, &count,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rate.Valid || count.Valid {
		product.Rating = &model.Rating{
			Rate:  rate.Float64,
			Count: int(count.Int64),
		}
	}

	return product, nil
}

// compile-time interface check
var _ ProductRepository = (*PostgresProductRepo)(nil)
