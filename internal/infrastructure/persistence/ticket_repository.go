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
	"gorm.io/gorm/clause"
)

// GormTicketRepository implements TicketRepository using GORM.
// The header, its lines and their revisions are read and written as one unit.
type GormTicketRepository struct {
	db *gorm.DB
}

// NewGormTicketRepository creates a new GormTicketRepository
func NewGormTicketRepository(db *gorm.DB) *GormTicketRepository {
	return &GormTicketRepository{db: db}
}

func (r *GormTicketRepository) withLines(query *gorm.DB) *gorm.DB {
	return query.Preload("Lines").Preload("Lines.Revisions")
}

// FindByID finds a ticket header with its lines and their revisions
func (r *GormTicketRepository) FindByID(ctx context.Context, id uuid.UUID) (*ticketing.TicketHeader, error) {
	var model models.TicketHeaderModel
	if err := r.withLines(r.db.WithContext(ctx)).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Ticket %s not found", id)
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByQuoteID finds the ticket created from a quote
func (r *GormTicketRepository) FindByQuoteID(ctx context.Context, quoteID uuid.UUID) (*ticketing.TicketHeader, error) {
	var model models.TicketHeaderModel
	if err := r.withLines(r.db.WithContext(ctx)).
		Where("quote_id = ?", quoteID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("No ticket for quote %s", quoteID)
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAll finds ticket headers matching the filter
func (r *GormTicketRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ticketing.TicketHeader, error) {
	var rows []models.TicketHeaderModel
	query := r.applyFilter(r.withLines(r.db.WithContext(ctx).Model(&models.TicketHeaderModel{})), filter)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	headers := make([]ticketing.TicketHeader, len(rows))
	for i := range rows {
		item, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		headers[i] = *item
	}
	return headers, nil
}

// Count counts ticket headers matching the filter
func (r *GormTicketRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.TicketHeaderModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SaveWithLock writes the header and every line with optimistic locking on
// the header version. Revisions are append-only: existing ones are kept as is.
func (r *GormTicketRepository) SaveWithLock(ctx context.Context, header *ticketing.TicketHeader) error {
	originalVersion := header.Version
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		res := tx.Model(&models.TicketHeaderModel{}).
			Where("id = ?", header.ID).
			Select("version").
			Scan(&currentVersion)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return shared.ErrNotFound.WithMessage("Ticket %s not found", header.ID)
		}

		if currentVersion != header.Version {
			return shared.NewStaleAggregateError("The ticket has been modified by another user")
		}

		header.Version++
		header.UpdatedAt = time.Now()

		result := tx.Model(&models.TicketHeaderModel{}).
			Where("id = ? AND version = ?", header.ID, currentVersion).
			Updates(map[string]interface{}{
				"ticket_number":        header.TicketNumber,
				"status":               header.Status,
				"total_compagnie":      header.TotalCompagnie,
				"commission_propose":   header.CommissionPropose,
				"commission_appliquer": header.CommissionAppliquer,
				"total_commission":     header.TotalCommission,
				"invoice_reference":    header.InvoiceReference,
				"raison_annul":         header.RaisonAnnul,
				"approved_at":          header.ApprovedAt,
				"emitted_at":           header.EmittedAt,
				"invoiced_at":          header.InvoicedAt,
				"settled_at":           header.SettledAt,
				"cancelled_at":         header.CancelledAt,
				"version":              header.Version,
				"updated_at":           header.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return shared.NewStaleAggregateError("The ticket has been modified by another user")
		}

		for _, line := range header.Lines {
			line.HeaderID = header.ID
			if err := saveTicketLine(tx, models.TicketLineModelFromDomain(line)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		header.Version = originalVersion
	}
	return err
}

// CreateFromQuote inserts the ticket and links it to its quote in one
// transaction. The quote update is version checked, so two concurrent
// creations from the same quote cannot both commit.
func (r *GormTicketRepository) CreateFromQuote(ctx context.Context, header *ticketing.TicketHeader, quote *ticketing.Quote) error {
	originalVersion := quote.Version
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateQuoteWithLock(tx, quote); err != nil {
			return err
		}

		model := models.TicketHeaderModelFromDomain(header)
		lines := model.Lines
		model.Lines = nil
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		for i := range lines {
			if err := saveTicketLine(tx, &lines[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		quote.Version = originalVersion
	}
	return err
}

// GenerateTicketNumber generates the next header ticket number (BIL-YYYY-NNNNN)
func (r *GormTicketRepository) GenerateTicketNumber(ctx context.Context) (string, error) {
	return nextYearlyNumber(ctx, r.db, models.TicketHeaderModel{}.TableName(), "ticket_number", "BIL")
}

// saveTicketLine upserts a line and inserts the revisions not stored yet
func saveTicketLine(tx *gorm.DB, line *models.TicketLineModel) error {
	revisions := line.Revisions
	line.Revisions = nil
	if err := tx.Omit(clause.Associations).Save(line).Error; err != nil {
		return err
	}
	if len(revisions) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "line_id"}, {Name: "sequence"}},
		DoNothing: true,
	}).Create(&revisions).Error
}

// applyFilter applies filter options to the query
func (r *GormTicketRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, TicketSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormTicketRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(ticket_number) LIKE ? OR LOWER(quote_reference) LIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "quote_id":
			query = query.Where("quote_id = ?", value)
		}
	}

	return query
}
