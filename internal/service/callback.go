package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/bookify/order-service/internal/domain"
	"github.com/bookify/order-service/internal/dto"
	paymentgateway "github.com/bookify/order-service/internal/infrastructure/payment-gateway"
	"github.com/bookify/order-service/internal/repository"
	"github.com/bookify/order-service/pkg/utils"
	"github.com/rs/zerolog/log"
)

// ProcessGatewayCallback applies the gateway's verdict for one transaction
// reference. The whole decision runs inside a single unit of work so a
// replayed or concurrent callback observes the already-committed outcome, and
// side effects (emails, inventory restores) only fire after the commit.
func (s *OrderServiceImpl) ProcessGatewayCallback(ctx context.Context, params map[string]string) (result dto.CallbackResult) {
	var postCommit []func()

	err := s.repository.HandleTrx(ctx, func(ctx context.Context, repo repository.OrderRepository) error {
		var trxErr error
		result, postCommit, trxErr = s.processCallback(ctx, repo, params)
		return trxErr
	})
	if err != nil {
		log.Error().Err(err).Str("component", "ProcessGatewayCallback").Msg("")
		return dto.CallbackResult{
			Code:     dto.CallbackCodeInternalError,
			Message:  "Internal Server Error",
			Redirect: s.config.FrontendURL + "/payment/error",
		}
	}

	for _, fn := range postCommit {
		fn()
	}

	return result
}

func (s *OrderServiceImpl) processCallback(ctx context.Context, repo repository.OrderRepository, params map[string]string) (result dto.CallbackResult, postCommit []func(), err error) {
	txnRef := params[paymentgateway.ParamTxnRef]
	if txnRef == "" {
		return dto.CallbackResult{
			Code:     dto.CallbackCodeInternalError,
			Message:  "Missing transaction reference",
			Redirect: s.config.FrontendURL + "/payment/error",
		}, nil, nil
	}

	payment, err := repo.GetPaymentByTxnRef(ctx, txnRef)
	if err != nil {
		return dto.CallbackResult{
			Code:     dto.CallbackCodeOrderNotFound,
			Message:  "Order not found",
			Redirect: s.config.FrontendURL + "/payment/error",
		}, nil, nil
	}

	order, err := repo.GetOrderByID(ctx, payment.OrderID)
	if err != nil {
		return dto.CallbackResult{
			Code:     dto.CallbackCodeOrderNotFound,
			Message:  "Order not found",
			Redirect: s.config.FrontendURL + "/payment/error",
		}, nil, nil
	}

	// Replay of a settled transaction: acknowledge without touching state.
	if payment.TransactionStatus == domain.TransactionStatusSuccess {
		return dto.CallbackResult{
			Code:     dto.CallbackCodeAlreadyConfirmed,
			Message:  "Order already confirmed",
			Redirect: fmt.Sprintf("%s/order-success?orderId=%d&status=already_paid", s.config.FrontendURL, order.ID),
		}, nil, nil
	}

	rawParams, err := json.Marshal(params)
	if err != nil {
		return result, nil, err
	}

	if !paymentgateway.VerifySignature(params, s.config.VNPayConfig.HashSecret) {
		now := time.Now().Unix()
		tamperMsg := "Signature verification failed"
		payment.TransactionStatus = domain.TransactionStatusFailed
		payment.GatewayMessage = &tamperMsg
		payment.RawResponse = rawParams
		payment.UpdatedAt = now
		if err = repo.UpdatePayment(ctx, payment); err != nil {
			return result, nil, err
		}

		log.Error().Str("component", "processCallback").Str("txnRef", txnRef).Msg("callback signature mismatch")

		return dto.CallbackResult{
			Code:     dto.CallbackCodeChecksumFailed,
			Message:  "Checksum failed",
			Redirect: s.config.FrontendURL + "/payment/error",
		}, nil, nil
	}

	if err = repo.AddPaymentLog(ctx, domain.PaymentLog{
		PaymentID: payment.ID,
		Request:   rawParams,
		CreatedAt: time.Now().Unix(),
	}); err != nil {
		return result, nil, err
	}

	responseCode := params[paymentgateway.ParamResponseCode]
	transactionStatus := params[paymentgateway.ParamTransactionStatus]

	callbackAmount, err := strconv.ParseFloat(params[paymentgateway.ParamAmount], 64)
	if err != nil {
		return result, nil, fmt.Errorf("error parsing callback amount %q: %v", params[paymentgateway.ParamAmount], err)
	}
	callbackAmount /= paymentgateway.AmountScale

	payDate := time.Now()
	if raw := params[paymentgateway.ParamPayDate]; raw != "" {
		if parsed, parseErr := utils.ParseVNPayDateTime(raw); parseErr == nil {
			payDate = parsed
		}
	}

	// Snapshot everything the gateway told us, whatever the verdict.
	now := time.Now().Unix()
	payDateUnix := payDate.Unix()
	gatewayMsg := paymentgateway.ResponseCodeMessage(responseCode, "Transaction failed")
	payment.GatewayResponseCode = &responseCode
	payment.GatewayMessage = &gatewayMsg
	payment.PayDate = &payDateUnix
	payment.RawResponse = rawParams
	payment.UpdatedAt = now
	if v := params[paymentgateway.ParamTransactionNo]; v != "" {
		payment.GatewayTransactionID = &v
	}
	if v := params[paymentgateway.ParamBankCode]; v != "" {
		payment.BankCode = &v
	}
	if v := params[paymentgateway.ParamCardType]; v != "" {
		payment.CardType = &v
	}

	// Payment completed after the order's deadline: the money flow is the
	// gateway's problem, ours is to release the reserved stock.
	if order.ExpiresAt < payDateUnix {
		payment.TransactionStatus = domain.TransactionStatusFailed
		payment.Status = domain.AttemptStatusCanceled
		if err = repo.UpdatePayment(ctx, payment); err != nil {
			return result, nil, err
		}

		order.OrderStatus = domain.OrderStatusCanceled
		order.UpdatedAt = now
		if err = repo.UpdateOrder(ctx, order); err != nil {
			return result, nil, err
		}

		restored := order
		postCommit = append(postCommit, func() {
			s.restoreOrderStock(context.Background(), "", restored, false)
			if email := s.resolveOrderEmail(context.Background(), "", restored); email != "" {
				s.notifier.SendPaymentResult(email, restored.OrderCode, domain.PaymentStatusUnpaid, payment.Amount, restored.PaymentMethod, restored.ID, "The payment window expired before the transaction completed.")
			}
		})

		return dto.CallbackResult{
			Code:     dto.CallbackCodeInternalError,
			Message:  "Transaction timeout",
			Redirect: fmt.Sprintf("%s/payment/failure?orderId=%d&code=timeout", s.config.FrontendURL, order.ID),
		}, postCommit, nil
	}

	if math.Abs(callbackAmount-payment.Amount) > amountTolerance {
		payment.TransactionStatus = domain.TransactionStatusFailed
		if err = repo.UpdatePayment(ctx, payment); err != nil {
			return result, nil, err
		}

		return dto.CallbackResult{
			Code:     dto.CallbackCodeAmountInvalid,
			Message:  "Amount invalid",
			Redirect: fmt.Sprintf("%s/payment/failure?orderId=%d&code=amount_mismatch", s.config.FrontendURL, order.ID),
		}, nil, nil
	}

	approved := responseCode == paymentgateway.ResponseCodeApproved &&
		transactionStatus == paymentgateway.ResponseCodeApproved

	if approved {
		payment.TransactionStatus = domain.TransactionStatusSuccess
		payment.Status = domain.AttemptStatusCompleted
		if err = repo.UpdatePayment(ctx, payment); err != nil {
			return result, nil, err
		}

		order.PaymentStatus = domain.PaymentStatusPaid
		order.OrderStatus = domain.OrderStatusProcessing
		order.UpdatedAt = now
		if err = repo.UpdateOrder(ctx, order); err != nil {
			return result, nil, err
		}

		paid := order
		postCommit = append(postCommit, func() {
			if email := s.resolveOrderEmail(context.Background(), "", paid); email != "" {
				s.notifier.SendPaymentResult(email, paid.OrderCode, domain.PaymentStatusPaid, payment.Amount, paid.PaymentMethod, paid.ID, "")
			}
		})

		return dto.CallbackResult{
			Code:     dto.CallbackCodeSuccess,
			Message:  "Confirm Success",
			Redirect: fmt.Sprintf("%s/order-success?orderId=%d", s.config.FrontendURL, order.ID),
		}, postCommit, nil
	}

	// Declined: only the attempt fails, the order stays open for a retry.
	payment.TransactionStatus = domain.TransactionStatusFailed
	if err = repo.UpdatePayment(ctx, payment); err != nil {
		return result, nil, err
	}

	declined := order
	postCommit = append(postCommit, func() {
		if email := s.resolveOrderEmail(context.Background(), "", declined); email != "" {
			s.notifier.SendPaymentResult(email, declined.OrderCode, domain.PaymentStatusUnpaid, payment.Amount, declined.PaymentMethod, declined.ID, gatewayMsg)
		}
	})

	return dto.CallbackResult{
		Code:     responseCode,
		Message:  "Transaction failed",
		Redirect: fmt.Sprintf("%s/payment/failure?orderId=%d&code=%s", s.config.FrontendURL, order.ID, responseCode),
	}, postCommit, nil
}
