package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quotedesk/quotedesk-backend/pkg/enums"
	"github.com/quotedesk/quotedesk-backend/pkg/types"
)

// Quote is the persisted lifecycle record for one submission. Product,
// variants, draft order, and customer all live in Shopify; this row tracks
// which state the orchestration has reached.
type Quote struct {
	ID     uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Status enums.QuoteStatus `gorm:"column:status;not null;default:submitted;index"`

	CustomerID    int64  `gorm:"column:customer_id;not null;index"`
	CustomerEmail string `gorm:"column:customer_email"`
	CustomerName  string `gorm:"column:customer_name"`

	ProductID   int64  `gorm:"column:product_id;not null;uniqueIndex"`
	Vendor      string `gorm:"column:vendor"`
	ProductType string `gorm:"column:product_type"`
	Title       string `gorm:"column:title"`

	VariantIDs VariantIDList `gorm:"column:variant_ids;type:jsonb"`

	OrderNumber   string                  `gorm:"column:order_number"`
	PaymentMethod *enums.PaymentMethodTag `gorm:"column:payment_method"`
	Payout        *types.PayoutDetails    `gorm:"column:payout;type:jsonb"`

	LabelURL       string `gorm:"column:label_url"`
	TrackingNumber string `gorm:"column:tracking_number"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Quote) TableName() string { return "quotes" }

// BeforeCreate assigns the id in code so the model works on every dialect.
func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
