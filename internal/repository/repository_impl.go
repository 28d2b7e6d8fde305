package repository

import (
	"context"
	"database/sql"

	"github.com/bookify/order-service/internal/domain"
	pkgdto "github.com/bookify/order-service/pkg/dto"
	"github.com/bookify/order-service/pkg/errs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type OrderRepositoryImpl struct {
	db *sqlx.DB
	tx *sqlx.Tx
}

func CreateOrderRepository(db *sqlx.DB) OrderRepository {
	return &OrderRepositoryImpl{
		db: db,
	}
}

func (r *OrderRepositoryImpl) ext() sqlx.ExtContext {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// forUpdate appends a row lock inside a transaction so concurrent callbacks
// for the same payment or order are serialized.
func (r *OrderRepositoryImpl) forUpdate(query string) string {
	if r.tx != nil {
		return query + " FOR UPDATE"
	}
	return query
}

func (r *OrderRepositoryImpl) HandleTrx(ctx context.Context, fn func(ctx context.Context, repo OrderRepository) error) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	trxRepo := &OrderRepositoryImpl{
		tx: tx,
	}

	err = fn(ctx, trxRepo)

	return err
}

func (r *OrderRepositoryImpl) AddOrder(ctx context.Context, data domain.Order) (id int64, err error) {
	query := `INSERT INTO orders(user_id, user_email, total_amount, shipping_fee, final_amount, address, ward, district, city,
		phone_number, full_name, order_status, payment_method, payment_status, order_code, retry_count, notes, expires_at, created_at, updated_at)
		VALUES (:user_id, :user_email, :total_amount, :shipping_fee, :final_amount, :address, :ward, :district, :city,
		:phone_number, :full_name, :order_status, :payment_method, :payment_status, :order_code, :retry_count, :notes, :expires_at, :created_at, :updated_at) returning id`

	rows, err := sqlx.NamedQueryContext(ctx, r.ext(), query, data)
	if err != nil {
		log.Error().Err(err).Str("component", "AddOrder").Msg("")
		return
	}
	defer rows.Close()

	if rows.Next() {
		if err = rows.Scan(&data.ID); err != nil {
			log.Error().Err(err).Str("component", "AddOrder").Msg("")
			return
		}
	}

	return data.ID, nil
}

func (r *OrderRepositoryImpl) AddOrderItems(ctx context.Context, data []domain.OrderItem) (err error) {
	_, err = sqlx.NamedExecContext(ctx, r.ext(), `INSERT INTO order_items(order_id, book_id, title, original_price, price, quantity, primary_image, created_at, updated_at)
		VALUES (:order_id, :book_id, :title, :original_price, :price, :quantity, :primary_image, :created_at, :updated_at)`, data)
	if err != nil {
		log.Error().Err(err).Str("component", "AddOrderItems").Msg("")
		return
	}

	return nil
}

func (r *OrderRepositoryImpl) GetOrderByID(ctx context.Context, id int64) (data domain.Order, err error) {
	row := r.ext().QueryRowxContext(ctx, r.forUpdate("SELECT * FROM orders WHERE id = $1"), id)
	err = row.StructScan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return data, errs.ErrOrderNotFound
		}
		log.Error().Err(err).Str("component", "GetOrderByID").Msg("")
		return data, errs.ErrInternalServer
	}

	data.Items, err = r.getOrderItems(ctx, data.ID)

	return
}

func (r *OrderRepositoryImpl) getOrderItems(ctx context.Context, orderID int64) (items []domain.OrderItem, err error) {
	err = sqlx.SelectContext(ctx, r.ext(), &items, "SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	if err != nil {
		log.Error().Err(err).Str("component", "getOrderItems").Msg("")
		return nil, errs.ErrInternalServer
	}

	return
}

func (r *OrderRepositoryImpl) UpdateOrder(ctx context.Context, data domain.Order) (err error) {
	_, err = sqlx.NamedExecContext(ctx, r.ext(), `UPDATE orders SET user_email = :user_email, order_status = :order_status,
		payment_status = :payment_status, active_payment_id = :active_payment_id, retry_count = :retry_count, updated_at = :updated_at
		WHERE id = :id`, data)
	if err != nil {
		log.Error().Err(err).Str("component", "UpdateOrder").Msg("")
		return
	}

	return nil
}

func buildOrderFilter(filter pkgdto.Filter, args map[string]interface{}) string {
	query := " WHERE 1=1"

	if filter.Status != "" {
		query += " AND order_status = :order_status"
		args["order_status"] = filter.Status
	}
	if filter.UserID != "" {
		query += " AND user_id = :user_id"
		args["user_id"] = filter.UserID
	}
	if filter.Search != "" {
		query += " AND (order_code ILIKE :search OR id IN (SELECT order_id FROM order_items WHERE title ILIKE :search))"
		args["search"] = "%" + filter.Search + "%"
	}

	return query
}

func (r *OrderRepositoryImpl) GetOrders(ctx context.Context, filter pkgdto.Filter) (data []domain.Order, err error) {
	args := make(map[string]interface{})
	query := "SELECT * FROM orders" + buildOrderFilter(filter, args) + " ORDER BY created_at DESC"

	if filter.Limit != 0 && filter.Page != 0 {
		offset := (filter.Page - 1) * filter.Limit
		query += " LIMIT :limit OFFSET :offset"
		args["limit"] = filter.Limit
		args["offset"] = offset
	}

	query, argList, err := sqlx.Named(query, args)
	if err != nil {
		log.Error().Err(err).Str("component", "GetOrders").Msg("")
		return nil, err
	}

	err = sqlx.SelectContext(ctx, r.ext(), &data, r.ext().Rebind(query), argList...)
	if err != nil {
		log.Error().Err(err).Str("component", "GetOrders").Msg("")
		return nil, err
	}

	for idx := range data {
		data[idx].Items, err = r.getOrderItems(ctx, data[idx].ID)
		if err != nil {
			return nil, err
		}
	}

	return
}

func (r *OrderRepositoryImpl) CountOrders(ctx context.Context, filter pkgdto.Filter) (count int64, err error) {
	args := make(map[string]interface{})
	query := "SELECT COUNT(*) FROM orders" + buildOrderFilter(filter, args)

	query, argList, err := sqlx.Named(query, args)
	if err != nil {
		log.Error().Err(err).Str("component", "CountOrders").Msg("")
		return 0, err
	}

	err = sqlx.GetContext(ctx, r.ext(), &count, r.ext().Rebind(query), argList...)
	if err != nil {
		log.Error().Err(err).Str("component", "CountOrders").Msg("")
		return 0, err
	}

	return
}

func (r *OrderRepositoryImpl) GetExpiredPendingOrders(ctx context.Context, now int64) (data []domain.Order, err error) {
	err = sqlx.SelectContext(ctx, r.ext(), &data,
		"SELECT * FROM orders WHERE order_status = $1 AND payment_status = $2 AND expires_at < $3",
		domain.OrderStatusPending, domain.PaymentStatusUnpaid, now)
	if err != nil {
		log.Error().Err(err).Str("component", "GetExpiredPendingOrders").Msg("")
		return nil, err
	}

	for idx := range data {
		data[idx].Items, err = r.getOrderItems(ctx, data[idx].ID)
		if err != nil {
			return nil, err
		}
	}

	return
}

func (r *OrderRepositoryImpl) AddPayment(ctx context.Context, data domain.Payment) (id int64, err error) {
	rows, err := sqlx.NamedQueryContext(ctx, r.ext(), `INSERT INTO payments(order_id, user_id, amount, payment_method, transaction_status, status, txn_ref, created_at, updated_at)
		VALUES (:order_id, :user_id, :amount, :payment_method, :transaction_status, :status, :txn_ref, :created_at, :updated_at) returning id`, data)
	if err != nil {
		log.Error().Err(err).Str("component", "AddPayment").Msg("")
		return
	}
	defer rows.Close()

	if rows.Next() {
		if err = rows.Scan(&data.ID); err != nil {
			log.Error().Err(err).Str("component", "AddPayment").Msg("")
			return
		}
	}

	return data.ID, nil
}

func (r *OrderRepositoryImpl) GetPaymentByID(ctx context.Context, id int64) (data domain.Payment, err error) {
	row := r.ext().QueryRowxContext(ctx, r.forUpdate("SELECT * FROM payments WHERE id = $1"), id)
	err = row.StructScan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return data, errs.ErrPaymentNotFound
		}
		log.Error().Err(err).Str("component", "GetPaymentByID").Msg("")
		return data, errs.ErrInternalServer
	}

	return
}

func (r *OrderRepositoryImpl) GetPaymentByTxnRef(ctx context.Context, txnRef string) (data domain.Payment, err error) {
	row := r.ext().QueryRowxContext(ctx, r.forUpdate("SELECT * FROM payments WHERE txn_ref = $1"), txnRef)
	err = row.StructScan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return data, errs.ErrPaymentNotFound
		}
		log.Error().Err(err).Str("component", "GetPaymentByTxnRef").Msg("")
		return data, errs.ErrInternalServer
	}

	return
}

func (r *OrderRepositoryImpl) UpdatePayment(ctx context.Context, data domain.Payment) (err error) {
	_, err = sqlx.NamedExecContext(ctx, r.ext(), `UPDATE payments SET transaction_status = :transaction_status, status = :status,
		gateway_transaction_id = :gateway_transaction_id, gateway_response_code = :gateway_response_code, gateway_message = :gateway_message,
		bank_code = :bank_code, card_type = :card_type, pay_date = :pay_date, raw_response = :raw_response, txn_ref = :txn_ref,
		updated_at = :updated_at WHERE id = :id`, data)
	if err != nil {
		log.Error().Err(err).Str("component", "UpdatePayment").Msg("")
		return
	}

	return nil
}

func (r *OrderRepositoryImpl) AddPaymentLog(ctx context.Context, data domain.PaymentLog) (err error) {
	_, err = sqlx.NamedExecContext(ctx, r.ext(), `INSERT INTO payment_logs(payment_id, request, response, created_at)
		VALUES (:payment_id, :request, :response, :created_at)`, data)
	if err != nil {
		log.Error().Err(err).Str("component", "AddPaymentLog").Msg("")
		return
	}

	return nil
}

func (r *OrderRepositoryImpl) GetCartByUserID(ctx context.Context, userID string) (data domain.Cart, err error) {
	row := r.ext().QueryRowxContext(ctx, r.forUpdate("SELECT * FROM carts WHERE user_id = $1"), userID)
	err = row.StructScan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return data, errs.ErrCartEmpty
		}
		log.Error().Err(err).Str("component", "GetCartByUserID").Msg("")
		return data, errs.ErrInternalServer
	}

	err = sqlx.SelectContext(ctx, r.ext(), &data.Items, "SELECT * FROM cart_items WHERE cart_id = $1 ORDER BY id", data.ID)
	if err != nil {
		log.Error().Err(err).Str("component", "GetCartByUserID").Msg("")
		return data, errs.ErrInternalServer
	}

	return
}

func (r *OrderRepositoryImpl) RemoveCartItems(ctx context.Context, userID string, bookIDs []string) (err error) {
	_, err = r.ext().ExecContext(ctx,
		"DELETE FROM cart_items WHERE cart_id = (SELECT id FROM carts WHERE user_id = $1) AND book_id = ANY($2)",
		userID, pq.Array(bookIDs))
	if err != nil {
		log.Error().Err(err).Str("component", "RemoveCartItems").Msg("")
		return
	}

	return nil
}

func (r *OrderRepositoryImpl) DeleteCartIfEmpty(ctx context.Context, userID string) (err error) {
	_, err = r.ext().ExecContext(ctx,
		"DELETE FROM carts WHERE user_id = $1 AND NOT EXISTS (SELECT 1 FROM cart_items WHERE cart_id = carts.id)",
		userID)
	if err != nil {
		log.Error().Err(err).Str("component", "DeleteCartIfEmpty").Msg("")
		return
	}

	return nil
}

func (r *OrderRepositoryImpl) AddCompensationRecord(ctx context.Context, data domain.CompensationRecord) (err error) {
	_, err = sqlx.NamedExecContext(ctx, r.ext(), `INSERT INTO compensation_records(order_id, action, book_id, quantity, status, last_error, created_at)
		VALUES (:order_id, :action, :book_id, :quantity, :status, :last_error, :created_at)`, data)
	if err != nil {
		log.Error().Err(err).Str("component", "AddCompensationRecord").Msg("")
		return
	}

	return nil
}
