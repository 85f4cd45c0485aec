package transactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"finapi/models"
)

// Service mediates every read and write of transactions through the
// caller's identity. The caller id is an explicit parameter on each
// operation; the service keeps no per-request state.
type Service struct {
	db  *gorm.DB
	log *logrus.Logger
	loc *time.Location
}

// NewService wires the service to its store. loc is the deployment time
// zone used to stamp creation dates; nil means UTC.
func NewService(db *gorm.DB, log *logrus.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{db: db, log: log, loc: loc}
}

// List returns all transactions owned by caller, oldest first. Other
// owners' records are never included.
func (s *Service) List(ctx context.Context, caller uint) ([]models.Transaction, error) {
	var items []models.Transaction
	if err := s.db.WithContext(ctx).Where("user_id = ?", caller).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return items, nil
}

// find fetches by primary key and then applies the ownership predicate.
// A record owned by someone else surfaces exactly like a missing one.
func (s *Service) find(ctx context.Context, caller, id uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load transaction %d: %w", id, err)
	}
	if !t.OwnedBy(caller) {
		return nil, ErrNotFound
	}
	return &t, nil
}

// Get returns the caller's transaction with the given id, or ErrNotFound.
func (s *Service) Get(ctx context.Context, caller, id uint) (*models.Transaction, error) {
	return s.find(ctx, caller, id)
}

// Create validates in, forces the owner to caller regardless of payload
// content, stamps today's date and persists the new transaction.
func (s *Service) Create(ctx context.Context, caller uint, in Input) (*models.Transaction, error) {
	f, verr := in.validate(false)
	if verr != nil {
		return nil, verr
	}
	t := models.Transaction{
		UserID:      caller,
		Amount:      f.amount,
		Category:    f.category,
		Description: f.description,
		Date:        today(s.loc),
	}
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": caller, "transaction_id": t.ID}).Info("transaction created")
	return &t, nil
}

// Update resolves the transaction through the same owner-scoped lookup
// as Get, then applies the supplied fields. id, owner and date are not
// part of Input and can never change here. When partial is false, amount
// and category are required.
func (s *Service) Update(ctx context.Context, caller, id uint, in Input, partial bool) (*models.Transaction, error) {
	t, err := s.find(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	f, verr := in.validate(partial)
	if verr != nil {
		return nil, verr
	}
	if f.hasAmount {
		t.Amount = f.amount
	}
	if f.hasCategory {
		t.Category = f.category
	}
	if f.hasDescription {
		t.Description = f.description
	}
	if err := s.db.WithContext(ctx).Save(t).Error; err != nil {
		return nil, fmt.Errorf("update transaction %d: %w", id, err)
	}
	s.log.WithFields(logrus.Fields{"user_id": caller, "transaction_id": t.ID}).Info("transaction updated")
	return t, nil
}

// Delete removes the caller's transaction. Deleting an id twice yields
// ErrNotFound the second time.
func (s *Service) Delete(ctx context.Context, caller, id uint) error {
	t, err := s.find(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(t).Error; err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	s.log.WithFields(logrus.Fields{"user_id": caller, "transaction_id": id}).Info("transaction deleted")
	return nil
}

// today truncates now to a calendar date in the deployment time zone.
func today(loc *time.Location) time.Time {
	n := time.Now().In(loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}
