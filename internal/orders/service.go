package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopease/shopease-engine/internal/apiclient"
	"github.com/shopease/shopease-engine/internal/cart"
	"github.com/shopease/shopease-engine/internal/checkout"
	pkgerrors "github.com/shopease/shopease-engine/pkg/errors"
	"github.com/shopease/shopease-engine/pkg/logger"
	"github.com/shopease/shopease-engine/pkg/metrics"
)

// API is the slice of the storefront client the order service consumes.
type API interface {
	PlaceOrder(ctx context.Context, req apiclient.PlaceOrderRequest) (apiclient.PlaceOrderResponse, error)
	GetOrder(ctx context.Context, orderID string) (apiclient.OrderRecord, error)
	CancelOrder(ctx context.Context, orderID string) error
}

// PlaceInput carries everything the checkout flow collected.
type PlaceInput struct {
	Lines   []cart.Line
	Address checkout.Address
	Payment checkout.Payment
	Totals  checkout.Totals
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	API     API
	Logger  *logger.Logger
	Metrics *metrics.EngineMetrics
}

// Service places, fetches, and cancels orders. It never touches cart or
// session state; callers clear the cart only after a successful placement.
type Service struct {
	api     API
	logg    *logger.Logger
	metrics *metrics.EngineMetrics
	newKey  func() string
}

// NewService builds the order service.
func NewService(params ServiceParams) (*Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "api client is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Service{
		api:     params.API,
		logg:    params.Logger,
		metrics: params.Metrics,
		newKey:  uuid.NewString,
	}, nil
}

// Place validates the checkout forms and submits the order. Validation or
// transport failures leave everything as it was so the user can retry.
func (s *Service) Place(ctx context.Context, input PlaceInput) (string, error) {
	if len(input.Lines) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if err := checkout.ValidateAddress(input.Address); err != nil {
		return "", err
	}
	if err := checkout.ValidatePayment(input.Payment); err != nil {
		return "", err
	}

	req := apiclient.PlaceOrderRequest{
		IdempotencyKey: s.newKey(),
		Items:          orderItems(input.Lines),
		Address: apiclient.OrderAddress{
			FullName: input.Address.FullName,
			Phone:    input.Address.Phone,
			Line1:    input.Address.Line1,
			City:     input.Address.City,
			Pincode:  input.Address.Pincode,
		},
		Totals: apiclient.OrderTotals{
			Subtotal:       input.Totals.Subtotal,
			DeliveryFee:    input.Totals.DeliveryFee,
			DiscountAmount: input.Totals.DiscountAmount,
			Total:          input.Totals.Total,
		},
		PaymentMethod: input.Payment.Method,
	}

	resp, err := s.api.PlaceOrder(ctx, req)
	if err != nil {
		s.logg.Error(ctx, "placing order failed", err)
		return "", err
	}
	if resp.OrderID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "order response missing order id")
	}

	s.logg.Info(s.logg.WithOrderID(ctx, resp.OrderID), "order placed")
	return resp.OrderID, nil
}

// Get fetches one order by ID.
func (s *Service) Get(ctx context.Context, orderID string) (apiclient.OrderRecord, error) {
	if orderID == "" {
		return apiclient.OrderRecord{}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return s.api.GetOrder(ctx, orderID)
}

// Cancel requests cancellation of one order.
func (s *Service) Cancel(ctx context.Context, orderID string) error {
	if orderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if err := s.api.CancelOrder(ctx, orderID); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithOrderID(ctx, orderID), "order cancellation requested")
	return nil
}

func orderItems(lines []cart.Line) []apiclient.OrderItem {
	items := make([]apiclient.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, apiclient.OrderItem{
			ProductID: line.ProductID,
			Title:     line.Title,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return items
}
