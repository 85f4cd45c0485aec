package transactions

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finapi/models"
)

func TestSerializeRendersTwoDecimalPlaces(t *testing.T) {
	amt, _ := decimal.NewFromString("100.5")
	tx := models.Transaction{
		ID:       3,
		UserID:   9,
		Amount:   amt,
		Category: models.CategoryIncome,
		Date:     time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	}
	rep := Serialize(&tx)
	if rep.Amount != "100.50" {
		t.Fatalf("expected amount 100.50 got %s", rep.Amount)
	}
	if rep.Date != "2026-08-31" {
		t.Fatalf("expected ISO date got %s", rep.Date)
	}
	if rep.User != 9 || rep.ID != 3 {
		t.Fatalf("owner/id mangled: %+v", rep)
	}
}

func TestSerializeDescriptionNullVsEmpty(t *testing.T) {
	tx := models.Transaction{Amount: decimal.Zero, Category: models.CategoryExpense, Date: time.Now()}

	raw, _ := json.Marshal(Serialize(&tx))
	var got map[string]json.RawMessage
	_ = json.Unmarshal(raw, &got)
	if string(got["description"]) != "null" {
		t.Fatalf("NULL description should encode as null, got %s", got["description"])
	}

	empty := ""
	tx.Description = &empty
	raw, _ = json.Marshal(Serialize(&tx))
	_ = json.Unmarshal(raw, &got)
	if string(got["description"]) != `""` {
		t.Fatalf("empty description should encode as \"\", got %s", got["description"])
	}
}

func TestSerializeListEmptyIsNotNil(t *testing.T) {
	raw, _ := json.Marshal(SerializeList(nil))
	if string(raw) != "[]" {
		t.Fatalf("empty list should encode as [], got %s", raw)
	}
}
