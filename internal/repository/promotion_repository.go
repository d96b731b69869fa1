package repository

import (
	"context"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const promotionColumns = "promotion_id, code, name, description, discount_percentage, discount_amount, valid_from, valid_to, usage_limit, used_count, is_active, created_at"

// PromotionRepo manages discount codes.
type PromotionRepo struct{ db DBTX }

func NewPromotionRepo(db DBTX) *PromotionRepo { return &PromotionRepo{db: db} }

func scanPromotion(row rowScanner, p *model.Promotion) error {
	return row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.DiscountPercentage, &p.DiscountAmount,
		&p.ValidFrom, &p.ValidTo, &p.UsageLimit, &p.UsedCount, &p.IsActive, &p.CreatedAt)
}

// Create inserts p. A taken code yields ErrDuplicate.
func (r *PromotionRepo) Create(ctx context.Context, p *model.Promotion) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO promotions (code, name, description, discount_percentage, discount_amount, valid_from, valid_to, usage_limit, used_count, is_active)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		p.Code, p.Name, p.Description, p.DiscountPercentage, p.DiscountAmount, p.ValidFrom, p.ValidTo,
		p.UsageLimit, p.UsedCount, p.IsActive)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return scanPromotion(r.db.QueryRowContext(ctx, "SELECT "+promotionColumns+" FROM promotions WHERE promotion_id=?", id), p)
}

func (r *PromotionRepo) GetByID(ctx context.Context, id uint64) (*model.Promotion, error) {
	var p model.Promotion
	if err := scanPromotion(r.db.QueryRowContext(ctx, "SELECT "+promotionColumns+" FROM promotions WHERE promotion_id=?", id), &p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// GetByCodeForUpdate reads the promotion by code and locks its row.
func (r *PromotionRepo) GetByCodeForUpdate(ctx context.Context, code string) (*model.Promotion, error) {
	var p model.Promotion
	if err := scanPromotion(r.db.QueryRowContext(ctx, "SELECT "+promotionColumns+" FROM promotions WHERE code=? FOR UPDATE", code), &p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// List returns promotions newest first, optionally filtered by is_active.
func (r *PromotionRepo) List(ctx context.Context, active *bool) ([]model.Promotion, error) {
	q := "SELECT " + promotionColumns + " FROM promotions"
	var args []any
	if active != nil {
		q += " WHERE is_active=?"
		args = append(args, *active)
	}
	rows, err := r.db.QueryContext(ctx, q+" ORDER BY created_at DESC, promotion_id DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Promotion{}
	for rows.Next() {
		var p model.Promotion
		if err := scanPromotion(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update writes every editable column. used_count is only changed by
// Consume and Release.
func (r *PromotionRepo) Update(ctx context.Context, p *model.Promotion) error {
	return mustAffect(r.db.ExecContext(ctx,
		`UPDATE promotions SET code=?, name=?, description=?, discount_percentage=?, discount_amount=?,
		 valid_from=?, valid_to=?, usage_limit=?, is_active=? WHERE promotion_id=?`,
		p.Code, p.Name, p.Description, p.DiscountPercentage, p.DiscountAmount, p.ValidFrom, p.ValidTo,
		p.UsageLimit, p.IsActive, p.ID))
}

func (r *PromotionRepo) Delete(ctx context.Context, id uint64) error {
	return mustAffect(r.db.ExecContext(ctx, "DELETE FROM promotions WHERE promotion_id=?", id))
}

func (r *PromotionRepo) Consume(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE promotions SET used_count = used_count + 1 WHERE promotion_id=? AND (usage_limit IS NULL OR used_count < usage_limit)",
		id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

func (r *PromotionRepo) Release(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE promotions SET used_count = used_count - 1 WHERE promotion_id=? AND used_count > 0", id)
	return err
}
