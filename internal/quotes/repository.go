package quotes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quotedesk/quotedesk-backend/pkg/db/models"
	"github.com/quotedesk/quotedesk-backend/pkg/enums"
	pkgerrors "github.com/quotedesk/quotedesk-backend/pkg/errors"
)

// Repository is the data access layer for quote rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InsertTx creates the quote row inside the caller's transaction.
func (r *Repository) InsertTx(tx *gorm.DB, quote *models.Quote) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(quote).Error
}

// ByProductID loads the quote tracking the given Shopify product.
func (r *Repository) ByProductID(ctx context.Context, productID int64) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&quote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no quote for product %d", productID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading quote")
	}
	return &quote, nil
}

// ByID loads a quote by primary key.
func (r *Repository) ByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&quote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading quote")
	}
	return &quote, nil
}

// TransitionTx moves a quote from one status to another, applying updates
// in the same statement. The WHERE guard on the current status makes
// concurrent transitions lose cleanly instead of double-applying.
func (r *Repository) TransitionTx(tx *gorm.DB, id uuid.UUID, from, to enums.QuoteStatus, updates map[string]any) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if !from.CanTransitionTo(to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("quote cannot move from %s to %s", from, to))
	}

	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to

	res := tx.Model(&models.Quote{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "updating quote status")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("quote is no longer %s", from))
	}
	return nil
}
