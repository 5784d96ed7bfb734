package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bistro/internal/errors"
	"bistro/internal/gateway"
	"bistro/internal/model"
	"bistro/internal/repository"
)

// MinPaymentAmount is the smallest amount forwarded to the provider.
var MinPaymentAmount = decimal.RequireFromString("0.50")

const defaultCurrency = "eur"

// PaymentIntentInput is a client request to start a payment.
type PaymentIntentInput struct {
	Amount             decimal.Decimal
	Currency           string
	PaymentMethodTypes []string
	OrderID            *uint
}

// PaymentIntentResult is returned to the client to confirm payment.
type PaymentIntentResult struct {
	ClientSecret string `json:"clientSecret"`
	PaymentID    uint   `json:"paymentId"`
}

// PaymentService forwards payment intents to the configured provider.
type PaymentService interface {
	CreateIntent(ctx context.Context, actor Actor, in PaymentIntentInput) (*PaymentIntentResult, error)
}

type paymentService struct {
	gateway     gateway.IntentCreator
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	log         *zap.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	gw gateway.IntentCreator,
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	log *zap.Logger,
) PaymentService {
	return &paymentService{
		gateway:     gw,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		log:         log,
	}
}

func (s *paymentService) CreateIntent(ctx context.Context, actor Actor, in PaymentIntentInput) (*PaymentIntentResult, error) {
	currency := strings.ToLower(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	if in.Amount.LessThan(MinPaymentAmount) {
		return nil, errors.Wrap(errors.ErrAmountTooSmall, "minimum amount is %s %s",
			MinPaymentAmount.StringFixed(2), strings.ToUpper(currency))
	}
	methodTypes := in.PaymentMethodTypes
	if len(methodTypes) == 0 {
		methodTypes = []string{"card"}
	}

	metadata := map[string]string{"user_id": strconv.FormatUint(uint64(actor.UserID), 10)}
	if in.OrderID != nil {
		order, err := s.orderRepo.FindByID(ctx, *in.OrderID)
		if err != nil {
			return nil, lookupErr(err, "order")
		}
		if !actor.Owns(order.UserID) {
			return nil, errors.Wrap(errors.ErrNotFound, "order not found")
		}
		metadata["order_id"] = strconv.FormatUint(uint64(order.ID), 10)
	}

	payment := &model.Payment{
		UserID:   actor.UserID,
		OrderID:  in.OrderID,
		Provider: s.gateway.Name(),
		Amount:   in.Amount.Round(2),
		Currency: currency,
	}

	intent, gwErr := s.gateway.CreateIntent(ctx, gateway.IntentRequest{
		Amount:             in.Amount,
		Currency:           currency,
		PaymentMethodTypes: methodTypes,
		Description:        "Restaurant order payment",
		Metadata:           metadata,
	})
	if gwErr != nil {
		payment.Status = model.PaymentStatusFailed
		payment.Error = gwErr.Error()
	} else {
		payment.Status = model.PaymentStatusCreated
		payment.ProviderRef = intent.ID
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		s.log.Error("record payment failed", zap.Error(err), zap.Uint("user_id", actor.UserID))
		if gwErr == nil {
			return nil, fmt.Errorf("record payment: %w", err)
		}
	}

	if gwErr != nil {
		s.log.Warn("payment intent rejected",
			zap.String("provider", s.gateway.Name()),
			zap.Uint("user_id", actor.UserID),
			zap.Error(gwErr))
		return nil, errors.Wrap(errors.ErrPaymentFailed, "payment provider error")
	}

	return &PaymentIntentResult{ClientSecret: intent.ClientSecret, PaymentID: payment.ID}, nil
}
