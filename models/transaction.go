package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction categories. Any other value is rejected at validation time.
const (
	CategoryIncome  = "income"
	CategoryExpense = "expense"
)

// Transaction represents a single income or expense entry belonging to a user.
// Amount is signed; the category alone conveys direction. Description keeps
// the NULL / empty-string distinction, hence the pointer.
type Transaction struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      uint            `gorm:"index;not null"`
	User        User            `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Amount      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Category    string          `gorm:"size:10;not null"`
	Description *string
	Date        time.Time `gorm:"type:date;not null"`
}

// OwnedBy reports whether the transaction belongs to the given user. All
// reads and writes go through this predicate before touching the record.
func (t *Transaction) OwnedBy(userID uint) bool {
	return t.UserID == userID
}
