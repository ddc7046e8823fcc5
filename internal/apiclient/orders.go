package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/shopease/shopease-engine/pkg/enums"
	"github.com/shopspring/decimal"
)

// OrderItem is one line of a placed order.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// OrderAddress is the delivery address submitted with an order.
type OrderAddress struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Line1    string `json:"address"`
	City     string `json:"city"`
	Pincode  string `json:"pincode"`
}

// OrderTotals is the computed summary submitted with an order.
type OrderTotals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Total          decimal.Decimal `json:"total"`
}

// PlaceOrderRequest is the POST /orders payload.
type PlaceOrderRequest struct {
	IdempotencyKey string              `json:"idempotencyKey"`
	Items          []OrderItem         `json:"items"`
	Address        OrderAddress        `json:"address"`
	Totals         OrderTotals         `json:"totals"`
	PaymentMethod  enums.PaymentMethod `json:"paymentMethod"`
}

// PlaceOrderResponse acknowledges a placed order.
type PlaceOrderResponse struct {
	OrderID string `json:"orderId"`
}

// OrderRecord is the order document returned by GET /orders/{id}.
type OrderRecord struct {
	OrderID     string            `json:"orderId"`
	Status      enums.OrderStatus `json:"status"`
	Items       []OrderItem       `json:"items"`
	Address     OrderAddress      `json:"address"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	DeliveryFee decimal.Decimal   `json:"deliveryFee"`
	Discount    decimal.Decimal   `json:"discount"`
	PlacedAt    time.Time         `json:"placedAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// PlaceOrder submits the order.
func (c *Client) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (PlaceOrderResponse, error) {
	var resp PlaceOrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", req, &resp); err != nil {
		return PlaceOrderResponse{}, err
	}
	return resp, nil
}

// GetOrder fetches one order by ID.
func (c *Client) GetOrder(ctx context.Context, orderID string) (OrderRecord, error) {
	var record OrderRecord
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, &record); err != nil {
		return OrderRecord{}, err
	}
	return record, nil
}

// CancelOrder requests cancellation of one order.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(orderID)+"/cancel", nil, nil)
}
