package events

import (
	"time"

	"github.com/printpoint/storefront/internal/order"
)

const EventTypeOrderCreated = "OrderCreated"

type OrderLine struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	ProductSKU  string `json:"productSku"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
}

// OrderCreated is published after a checkout commits. Monetary fields are
// decimal strings so consumers never round.
type OrderCreated struct {
	EventType   string      `json:"eventType"`
	OrderID     string      `json:"orderId"`
	OrderNumber string      `json:"orderNumber"`
	UserID      string      `json:"userId,omitempty"`
	Subtotal    string      `json:"subtotal"`
	Total       string      `json:"total"`
	Items       []OrderLine `json:"items"`
	Timestamp   time.Time   `json:"timestamp"`
}

func NewOrderCreated(o *order.Order) OrderCreated {
	ev := OrderCreated{
		EventType:   EventTypeOrderCreated,
		OrderID:     o.ID,
		OrderNumber: o.Number,
		UserID:      o.UserID,
		Subtotal:    o.Subtotal.StringFixed(2),
		Total:       o.Total.StringFixed(2),
		Timestamp:   time.Now().UTC(),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, OrderLine{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			ProductSKU:  it.ProductSKU,
			Quantity:    it.Quantity,
			Price:       it.Price.StringFixed(2),
		})
	}
	return ev
}
