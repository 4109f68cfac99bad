package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hirehub/hirehub-server/internal/store"
)

// ==== ProposalStore implementation ====

// CreateProposal creates a pending proposal.
func (s *SQLiteStore) CreateProposal(ctx context.Context, p *store.Proposal) (*store.Proposal, error) {
	query := `
		INSERT INTO proposals (client_id, freelancer_id, service_id, proposed_price, status)
		VALUES (?, ?, ?, ?, 'Pending')
	`
	result, err := s.db.ExecContext(ctx, query, p.ClientID, p.FreelancerID, p.ServiceID, p.ProposedPrice)
	if err != nil {
		return nil, fmt.Errorf("insert proposal: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetProposalByID(ctx, id)
}

// GetProposalByID retrieves a proposal.
func (s *SQLiteStore) GetProposalByID(ctx context.Context, id int64) (*store.Proposal, error) {
	query := `
		SELECT id, client_id, freelancer_id, service_id, proposed_price, status, proposal_date
		FROM proposals
		WHERE id = ?
	`
	var p store.Proposal
	var status string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.ClientID,
		&p.FreelancerID,
		&p.ServiceID,
		&p.ProposedPrice,
		&status,
		&p.ProposalDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("proposal: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query proposal: %w", err)
	}
	p.Status = store.ProposalStatus(status)
	return &p, nil
}

// ListProposalsForFreelancer lists proposals addressed to a freelancer.
func (s *SQLiteStore) ListProposalsForFreelancer(ctx context.Context, freelancerID int64) ([]*store.Proposal, error) {
	query := `
		SELECT id, client_id, freelancer_id, service_id, proposed_price, status, proposal_date
		FROM proposals
		WHERE freelancer_id = ?
		ORDER BY proposal_date DESC
	`
	rows, err := s.db.QueryContext(ctx, query, freelancerID)
	if err != nil {
		return nil, fmt.Errorf("query proposals: %w", err)
	}
	defer rows.Close()

	var proposals []*store.Proposal
	for rows.Next() {
		var p store.Proposal
		var status string
		if err := rows.Scan(&p.ID, &p.ClientID, &p.FreelancerID, &p.ServiceID, &p.ProposedPrice, &status, &p.ProposalDate); err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		p.Status = store.ProposalStatus(status)
		proposals = append(proposals, &p)
	}

	return proposals, rows.Err()
}

// UpdateProposalStatus transitions a proposal.
func (s *SQLiteStore) UpdateProposalStatus(ctx context.Context, id int64, status store.ProposalStatus) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE proposals SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update proposal status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("proposal: %w", store.ErrNotFound)
	}
	return nil
}

// ==== OrderStore implementation ====

// CreateOrder creates a pending order.
func (s *SQLiteStore) CreateOrder(ctx context.Context, o *store.Order) (*store.Order, error) {
	query := `
		INSERT INTO orders (client_id, service_id, delivery_date, total_amount, status)
		VALUES (?, ?, ?, ?, 'Pending')
	`
	result, err := s.db.ExecContext(ctx, query, o.ClientID, o.ServiceID, o.DeliveryDate, o.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetOrderByID(ctx, id)
}

// GetOrderByID retrieves an order.
func (s *SQLiteStore) GetOrderByID(ctx context.Context, id int64) (*store.Order, error) {
	query := `
		SELECT id, client_id, service_id, order_date, delivery_date, total_amount, status
		FROM orders
		WHERE id = ?
	`
	var o store.Order
	var status string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&o.ID,
		&o.ClientID,
		&o.ServiceID,
		&o.OrderDate,
		&o.DeliveryDate,
		&o.TotalAmount,
		&status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query order: %w", err)
	}
	o.Status = store.OrderStatus(status)
	return &o, nil
}

// ListClientOrdersForService lists a client's orders for one service.
func (s *SQLiteStore) ListClientOrdersForService(ctx context.Context, clientID, serviceID int64) ([]*store.Order, error) {
	query := `
		SELECT id, client_id, service_id, order_date, delivery_date, total_amount, status
		FROM orders
		WHERE client_id = ? AND service_id = ?
		ORDER BY order_date DESC
	`
	rows, err := s.db.QueryContext(ctx, query, clientID, serviceID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*store.Order
	for rows.Next() {
		var o store.Order
		var status string
		if err := rows.Scan(&o.ID, &o.ClientID, &o.ServiceID, &o.OrderDate, &o.DeliveryDate, &o.TotalAmount, &status); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = store.OrderStatus(status)
		orders = append(orders, &o)
	}

	return orders, rows.Err()
}

// UpdateOrderStatus transitions an order.
func (s *SQLiteStore) UpdateOrderStatus(ctx context.Context, id int64, status store.OrderStatus) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("order: %w", store.ErrNotFound)
	}
	return nil
}

// ==== PaymentStore implementation ====

// CreatePayment creates a pending payment for an order.
func (s *SQLiteStore) CreatePayment(ctx context.Context, p *store.Payment) (*store.Payment, error) {
	query := `
		INSERT INTO payments (order_id, user_id, status, amount)
		VALUES (?, ?, 'Pending', ?)
	`
	result, err := s.db.ExecContext(ctx, query, p.OrderID, p.UserID, p.Amount)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.getPaymentByID(ctx, id)
}

func (s *SQLiteStore) getPaymentByID(ctx context.Context, id int64) (*store.Payment, error) {
	query := `
		SELECT id, order_id, user_id, status, amount, payment_date, khalti_token, khalti_transaction_id, is_verified
		FROM payments
		WHERE id = ?
	`
	return s.scanPayment(s.db.QueryRowContext(ctx, query, id))
}

func (s *SQLiteStore) scanPayment(row *sql.Row) (*store.Payment, error) {
	var p store.Payment
	var status string
	var token, txID sql.NullString
	err := row.Scan(
		&p.ID,
		&p.OrderID,
		&p.UserID,
		&status,
		&p.Amount,
		&p.PaymentDate,
		&token,
		&txID,
		&p.IsVerified,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payment: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query payment: %w", err)
	}
	p.Status = store.PaymentStatus(status)
	if token.Valid {
		p.KhaltiToken = &token.String
	}
	if txID.Valid {
		p.KhaltiTransactionID = &txID.String
	}
	return &p, nil
}

// GetPendingPaymentForOrder returns the pending payment for an order, if any.
func (s *SQLiteStore) GetPendingPaymentForOrder(ctx context.Context, orderID int64) (*store.Payment, error) {
	query := `
		SELECT id, order_id, user_id, status, amount, payment_date, khalti_token, khalti_transaction_id, is_verified
		FROM payments
		WHERE order_id = ? AND status = 'Pending'
		ORDER BY payment_date DESC
		LIMIT 1
	`
	return s.scanPayment(s.db.QueryRowContext(ctx, query, orderID))
}

// GetPaymentForOrderAmount returns a payment for an order matching the amount.
func (s *SQLiteStore) GetPaymentForOrderAmount(ctx context.Context, orderID int64, amount float64) (*store.Payment, error) {
	query := `
		SELECT id, order_id, user_id, status, amount, payment_date, khalti_token, khalti_transaction_id, is_verified
		FROM payments
		WHERE order_id = ? AND amount = ?
		ORDER BY payment_date DESC
		LIMIT 1
	`
	return s.scanPayment(s.db.QueryRowContext(ctx, query, orderID, amount))
}

// MarkPaymentVerified records a successful gateway verification.
func (s *SQLiteStore) MarkPaymentVerified(ctx context.Context, id int64, token, transactionID string) error {
	query := `
		UPDATE payments
		SET status = 'Completed', khalti_token = ?, khalti_transaction_id = ?, is_verified = 1
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query, token, transactionID, id)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("payment: %w", store.ErrNotFound)
	}
	return nil
}

// ==== ReviewStore implementation ====

// CreateReview records a client's review of a freelancer.
func (s *SQLiteStore) CreateReview(ctx context.Context, r *store.Review) (*store.Review, error) {
	query := `
		INSERT INTO reviews (freelancer_id, client_id, message, rating)
		VALUES (?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, r.FreelancerID, r.ClientID, r.Message, r.Rating)
	if err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	query = `
		SELECT id, freelancer_id, client_id, message, rating, created_at
		FROM reviews
		WHERE id = ?
	`
	var review store.Review
	err = s.db.QueryRowContext(ctx, query, id).Scan(
		&review.ID,
		&review.FreelancerID,
		&review.ClientID,
		&review.Message,
		&review.Rating,
		&review.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("query review: %w", err)
	}
	return &review, nil
}

// ListReviewsForFreelancer lists reviews for a freelancer, newest first.
func (s *SQLiteStore) ListReviewsForFreelancer(ctx context.Context, freelancerID int64) ([]*store.Review, error) {
	query := `
		SELECT id, freelancer_id, client_id, message, rating, created_at
		FROM reviews
		WHERE freelancer_id = ?
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, freelancerID)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*store.Review
	for rows.Next() {
		var r store.Review
		if err := rows.Scan(&r.ID, &r.FreelancerID, &r.ClientID, &r.Message, &r.Rating, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, &r)
	}

	return reviews, rows.Err()
}
