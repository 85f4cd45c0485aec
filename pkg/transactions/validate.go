package transactions

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"finapi/models"
)

// Input is the client-writable subset of a transaction. Fields are kept
// as raw JSON so that absent, null and malformed values stay
// distinguishable and every field error can be reported in a single
// pass. Keys such as id, user and date have no member here and are
// dropped by the decoder before validation ever sees them.
type Input struct {
	Amount      json.RawMessage `json:"amount"`
	Category    json.RawMessage `json:"category"`
	Description json.RawMessage `json:"description"`
}

// fields is the validated form of an Input. The has* flags record which
// fields the client actually supplied, which drives partial updates.
type fields struct {
	amount         decimal.Decimal
	category       string
	description    *string
	hasAmount      bool
	hasCategory    bool
	hasDescription bool
}

// amountLimit is exclusive: numeric(10,2) holds magnitudes strictly
// below 10^8.
var amountLimit = decimal.New(1, 8)

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// validate checks the supplied fields and collects all errors. When
// partial is true, absent fields are skipped instead of required.
func (in Input) validate(partial bool) (fields, ValidationError) {
	var f fields
	errs := ValidationError{}

	switch {
	case in.Amount == nil:
		if !partial {
			errs.add("amount", "this field is required")
		}
	case isNull(in.Amount):
		errs.add("amount", "this field may not be null")
	default:
		var d decimal.Decimal
		if err := json.Unmarshal(in.Amount, &d); err != nil {
			errs.add("amount", "a valid number is required")
			break
		}
		if d.Exponent() < -2 {
			errs.add("amount", "ensure that there are no more than 2 decimal places")
		}
		if d.Abs().Cmp(amountLimit) >= 0 {
			errs.add("amount", "ensure that there are no more than 10 digits in total")
		}
		if len(errs["amount"]) == 0 {
			f.amount = d
			f.hasAmount = true
		}
	}

	switch {
	case in.Category == nil:
		if !partial {
			errs.add("category", "this field is required")
		}
	case isNull(in.Category):
		errs.add("category", "this field may not be null")
	default:
		var s string
		if err := json.Unmarshal(in.Category, &s); err != nil {
			errs.add("category", fmt.Sprintf("%s is not a valid choice", in.Category))
			break
		}
		if s != models.CategoryIncome && s != models.CategoryExpense {
			errs.add("category", fmt.Sprintf("%q is not a valid choice", s))
			break
		}
		f.category = s
		f.hasCategory = true
	}

	switch {
	case in.Description == nil:
		// not supplied; create leaves it NULL, update leaves it alone
	case isNull(in.Description):
		f.hasDescription = true
	default:
		var s string
		if err := json.Unmarshal(in.Description, &s); err != nil {
			errs.add("description", "not a valid string")
			break
		}
		f.description = &s
		f.hasDescription = true
	}

	if len(errs) > 0 {
		return fields{}, errs
	}
	return f, nil
}
