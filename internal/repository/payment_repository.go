package repository

import (
	"context"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const paymentColumns = "payment_id, booking_id, amount, payment_method, transaction_id, payment_status, payment_datetime, created_at"

// PaymentRepo manages the single payment row of each booking.
type PaymentRepo struct{ db DBTX }

func NewPaymentRepo(db DBTX) *PaymentRepo { return &PaymentRepo{db: db} }

func scanPayment(row rowScanner, p *model.Payment) error {
	return row.Scan(&p.ID, &p.BookingID, &p.Amount, &p.PaymentMethod, &p.TransactionID, &p.PaymentStatus,
		&p.PaymentDatetime, &p.CreatedAt)
}

// Create inserts p. A second payment for the same booking yields
// ErrDuplicate.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (booking_id, amount, payment_method, transaction_id, payment_status, payment_datetime)
		 VALUES (?,?,?,?,?,?)`,
		p.BookingID, p.Amount, p.PaymentMethod, p.TransactionID, p.PaymentStatus, p.PaymentDatetime)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return scanPayment(r.db.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM payments WHERE payment_id=?", id), p)
}

func (r *PaymentRepo) GetByBooking(ctx context.Context, bookingID uint64) (*model.Payment, error) {
	var p model.Payment
	if err := scanPayment(r.db.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM payments WHERE booking_id=?", bookingID), &p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PaymentRepo) Revenue(ctx context.Context, from, to time.Time) (float64, error) {
	// Payments of cancelled bookings stay COMPLETED but are not revenue.
	q := "SELECT COALESCE(SUM(p.amount), 0) FROM payments p" +
		" JOIN bookings b ON b.booking_id = p.booking_id" +
		" WHERE p.payment_status='COMPLETED' AND b.status <> 'CANCELLED'"
	var args []any
	if !from.IsZero() {
		q += " AND p.payment_datetime >= ?"
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		q += " AND p.payment_datetime < ?"
		args = append(args, to.UTC())
	}
	var sum float64
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}
