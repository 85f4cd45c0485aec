package transactions

import (
	"finapi/models"
)

// Representation is the wire form of a transaction. Amount is rendered
// with exactly two decimal places; description is null when the stored
// value is NULL.
type Representation struct {
	ID          uint    `json:"id"`
	Amount      string  `json:"amount"`
	Category    string  `json:"category"`
	Description *string `json:"description"`
	Date        string  `json:"date"`
	User        uint    `json:"user"`
}

// Serialize converts a stored transaction into its wire form.
func Serialize(t *models.Transaction) Representation {
	return Representation{
		ID:          t.ID,
		Amount:      t.Amount.StringFixed(2),
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date.Format("2006-01-02"),
		User:        t.UserID,
	}
}

// SerializeList converts a slice of transactions, preserving order. It
// returns an empty slice, never nil, so an empty collection encodes as [].
func SerializeList(items []models.Transaction) []Representation {
	out := make([]Representation, 0, len(items))
	for i := range items {
		out = append(out, Serialize(&items[i]))
	}
	return out
}
