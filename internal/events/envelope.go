package events

import (
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/gymshop/internal/domain/receipt"
)

const (
	// Exchange is the topic exchange storefront events are published to.
	Exchange = "storefront.events"
	// ReceiptIssuedRoutingKey is the routing key of ReceiptIssued events.
	ReceiptIssuedRoutingKey = "receipt.issued.v1"

	receiptIssuedName    = "ReceiptIssued"
	receiptIssuedVersion = 1
	producerName         = "storefront"
)

// Envelope wraps every published event payload.
type Envelope[T any] struct {
	EventName     string    `json:"eventName"`
	EventVersion  int       `json:"eventVersion"`
	EventID       string    `json:"eventId"`
	CorrelationID string    `json:"correlationId,omitempty"`
	Producer      string    `json:"producer"`
	PartitionKey  string    `json:"partitionKey"`
	OccurredAt    time.Time `json:"occurredAt"`
	Payload       T         `json:"payload"`
}

// Validate checks the envelope identity fields.
func (e Envelope[T]) Validate(name string, version int) error {
	if e.EventName != name {
		return errors.Errorf("unexpected eventName: %s", e.EventName)
	}
	if e.EventVersion != version {
		return errors.Errorf("unexpected eventVersion: %d", e.EventVersion)
	}
	if e.PartitionKey == "" {
		return errors.New("missing partitionKey")
	}
	return nil
}

// ReceiptIssued is the payload published after a successful checkout.
type ReceiptIssued struct {
	ReceiptID  int64               `json:"receiptId"`
	TotalPrice decimal.Decimal     `json:"totalPrice"`
	IssuedAt   time.Time           `json:"issuedAt"`
	Items      []ReceiptIssuedItem `json:"items"`
}

// ReceiptIssuedItem is one line of a ReceiptIssued payload.
type ReceiptIssuedItem struct {
	ProductID int             `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// NewReceiptIssued builds the envelope for an issued receipt.
func NewReceiptIssued(r *receipt.Receipt, correlationID string, now time.Time) Envelope[ReceiptIssued] {
	items := make([]ReceiptIssuedItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = ReceiptIssuedItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}
	return Envelope[ReceiptIssued]{
		EventName:     receiptIssuedName,
		EventVersion:  receiptIssuedVersion,
		EventID:       uuid.NewString(),
		CorrelationID: correlationID,
		Producer:      producerName,
		PartitionKey:  strconv.FormatInt(r.ID, 10),
		OccurredAt:    now.UTC(),
		Payload: ReceiptIssued{
			ReceiptID:  r.ID,
			TotalPrice: r.TotalPrice,
			IssuedAt:   r.Date,
			Items:      items,
		},
	}
}
