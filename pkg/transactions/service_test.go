package transactions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"finapi/models"
)

// Service tests need a live Postgres and are opt-in, same switch as the
// server integration tests.
func setupService(t *testing.T) (*Service, *gorm.DB) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		t.Fatal("DB_DSN must be set when DB_DSN_TEST=1")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Transaction{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	return NewService(db, log, nil), db
}

func makeUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	u := models.User{Username: "svc_" + hex.EncodeToString(b), HashedPassword: []byte("x")}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { db.Unscoped().Delete(&u) })
	return u
}

func mustCreate(t *testing.T, svc *Service, caller uint, body string) *models.Transaction {
	t.Helper()
	in := decodeInput(t, body)
	tx, err := svc.Create(context.Background(), caller, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return tx
}

func TestCreateForcesOwnerAndAssignsDate(t *testing.T) {
	svc, db := setupService(t)
	owner := makeUser(t, db)

	// payload tries to impersonate another user and pick its own id
	tx := mustCreate(t, svc, owner.ID, `{"id": 424242, "user": 1, "amount": "100.50", "category": "income", "description": "Freelance payment"}`)
	if tx.UserID != owner.ID {
		t.Fatalf("owner not forced to caller: got %d want %d", tx.UserID, owner.ID)
	}
	if tx.ID == 424242 {
		t.Fatal("client-supplied id must not be honored")
	}
	if tx.Date.IsZero() {
		t.Fatal("date not assigned")
	}

	got, err := svc.Get(context.Background(), owner.ID, tx.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount.StringFixed(2) != "100.50" || got.Category != models.CategoryIncome {
		t.Fatalf("round-trip mismatch: %s %s", got.Amount, got.Category)
	}
	if got.Description == nil || *got.Description != "Freelance payment" {
		t.Fatalf("description mismatch: %v", got.Description)
	}
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	svc, db := setupService(t)
	owner := makeUser(t, db)
	other := makeUser(t, db)
	tx := mustCreate(t, svc, owner.ID, `{"amount": "300.00", "category": "income"}`)

	if _, err := svc.Get(context.Background(), other.ID, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get by non-owner: want ErrNotFound got %v", err)
	}
	in := decodeInput(t, `{"amount": "999.00", "category": "expense"}`)
	if _, err := svc.Update(context.Background(), other.ID, tx.ID, in, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update by non-owner: want ErrNotFound got %v", err)
	}
	if err := svc.Delete(context.Background(), other.ID, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete by non-owner: want ErrNotFound got %v", err)
	}

	// and the record is untouched
	got, err := svc.Get(context.Background(), owner.ID, tx.ID)
	if err != nil {
		t.Fatalf("owner get after attacks: %v", err)
	}
	if got.Amount.StringFixed(2) != "300.00" || got.UserID != owner.ID {
		t.Fatalf("record modified by non-owner: %+v", got)
	}
}

func TestListReturnsExactlyOwnSet(t *testing.T) {
	svc, db := setupService(t)
	u1 := makeUser(t, db)
	u2 := makeUser(t, db)

	a := mustCreate(t, svc, u1.ID, `{"amount": "100.00", "category": "income"}`)
	b := mustCreate(t, svc, u1.ID, `{"amount": "200.00", "category": "expense"}`)
	c := mustCreate(t, svc, u2.ID, `{"amount": "300.00", "category": "income"}`)

	items, err := svc.List(context.Background(), u1.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 transactions got %d", len(items))
	}
	if items[0].ID != a.ID || items[1].ID != b.ID {
		t.Fatalf("unexpected order/membership: %d %d", items[0].ID, items[1].ID)
	}
	for _, it := range items {
		if it.ID == c.ID {
			t.Fatal("other owner's transaction leaked into list")
		}
	}
}

func TestPartialUpdateTouchesOnlySuppliedFields(t *testing.T) {
	svc, db := setupService(t)
	owner := makeUser(t, db)
	tx := mustCreate(t, svc, owner.ID, `{"amount": "100.00", "category": "income", "description": "Original"}`)

	in := decodeInput(t, `{"amount": "200.00"}`)
	got, err := svc.Update(context.Background(), owner.ID, tx.ID, in, true)
	if err != nil {
		t.Fatalf("partial update: %v", err)
	}
	if got.Amount.StringFixed(2) != "200.00" {
		t.Fatalf("amount not updated: %s", got.Amount)
	}
	if got.Category != models.CategoryIncome || got.Description == nil || *got.Description != "Original" {
		t.Fatalf("untouched fields changed: %+v", got)
	}
	if got.ID != tx.ID || !got.Date.Equal(tx.Date) {
		t.Fatalf("immutable fields changed: %+v", got)
	}
}

func TestDeleteIsNotIdempotent(t *testing.T) {
	svc, db := setupService(t)
	owner := makeUser(t, db)
	tx := mustCreate(t, svc, owner.ID, `{"amount": "10.00", "category": "expense"}`)

	if err := svc.Delete(context.Background(), owner.ID, tx.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.Delete(context.Background(), owner.ID, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound got %v", err)
	}
}

func TestUserDeleteCascadesToTransactions(t *testing.T) {
	svc, db := setupService(t)
	owner := makeUser(t, db)
	for i := 0; i < 3; i++ {
		mustCreate(t, svc, owner.ID, `{"amount": "10.00", "category": "expense"}`)
	}

	if err := db.Unscoped().Delete(&models.User{}, owner.ID).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}
	var count int64
	if err := db.Model(&models.Transaction{}).Where("user_id = ?", owner.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 orphan transactions, got %d", count)
	}
}
