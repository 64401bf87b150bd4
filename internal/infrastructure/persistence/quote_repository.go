package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/agence/backoffice/internal/domain/ticketing"
	"github.com/agence/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormQuoteRepository implements QuoteRepository using GORM
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

// FindByID finds a quote by its ID
func (r *GormQuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*ticketing.Quote, error) {
	var model models.QuoteModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Quote %s not found", id)
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByReference finds a quote by its business reference
func (r *GormQuoteRepository) FindByReference(ctx context.Context, reference string) (*ticketing.Quote, error) {
	var model models.QuoteModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("reference = ?", reference).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Quote %s not found", reference)
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAll finds quotes matching the filter
func (r *GormQuoteRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ticketing.Quote, error) {
	var rows []models.QuoteModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.QuoteModel{}).Preload("Lines"), filter)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	quotes := make([]ticketing.Quote, len(rows))
	for i := range rows {
		item, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		quotes[i] = *item
	}
	return quotes, nil
}

// Count counts quotes matching the filter
func (r *GormQuoteRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.QuoteModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts a new quote with its lines
func (r *GormQuoteRepository) Save(ctx context.Context, quote *ticketing.Quote) error {
	model := models.QuoteModelFromDomain(quote)
	return r.db.WithContext(ctx).Create(model).Error
}

// SaveWithLock updates the quote with optimistic locking. Quote lines are
// frozen at creation, so only the header columns are written.
func (r *GormQuoteRepository) SaveWithLock(ctx context.Context, quote *ticketing.Quote) error {
	originalVersion := quote.Version
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return updateQuoteWithLock(tx, quote)
	})
	if err != nil {
		quote.Version = originalVersion
	}
	return err
}

// updateQuoteWithLock writes the quote header columns if the stored version
// still matches, then bumps the in-memory version
func updateQuoteWithLock(tx *gorm.DB, quote *ticketing.Quote) error {
	var currentVersion int
	res := tx.Model(&models.QuoteModel{}).
		Where("id = ?", quote.ID).
		Select("version").
		Scan(&currentVersion)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound.WithMessage("Quote %s not found", quote.ID)
	}

	if currentVersion != quote.Version {
		return shared.NewStaleAggregateError("The quote has been modified by another user")
	}

	quote.Version++
	quote.UpdatedAt = time.Now()

	result := tx.Model(&models.QuoteModel{}).
		Where("id = ? AND version = ?", quote.ID, currentVersion).
		Updates(map[string]interface{}{
			"client_name":           quote.ClientName,
			"status":                quote.Status,
			"total_amount":          quote.TotalAmount,
			"total_commission":      quote.TotalCommission,
			"cancel_reason":         quote.CancelReason,
			"pdf_ref":               quote.PDFRef,
			"commission_report_ref": quote.CommissionReportRef,
			"ticket_header_id":      quote.TicketHeaderID,
			"sent_at":               quote.SentAt,
			"approved_at":           quote.ApprovedAt,
			"direction_sent_at":     quote.DirectionSentAt,
			"cancelled_at":          quote.CancelledAt,
			"version":               quote.Version,
			"updated_at":            quote.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return shared.NewStaleAggregateError("The quote has been modified by another user")
	}
	return nil
}

// GenerateReference generates the next quote reference (DEV-YYYY-NNNNN)
func (r *GormQuoteRepository) GenerateReference(ctx context.Context) (string, error) {
	return nextYearlyNumber(ctx, r.db, models.QuoteModel{}.TableName(), "reference", "DEV")
}

// applyFilter applies filter options to the query
func (r *GormQuoteRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, QuoteSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormQuoteRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(reference) LIKE ? OR LOWER(client_name) LIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "prospection_header_id":
			query = query.Where("prospection_header_id = ?", value)
		}
	}

	return query
}
