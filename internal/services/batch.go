package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/stocksync/internal/dto"
)

// Column widths in internal/models. Postgres rejects anything longer, which
// would fail the whole unit of work on every retry.
const (
	maxUserIDLength = 128
	maxKeyLength    = 128
	maxNameLength   = 255
	maxPhoneLength  = 64
	maxStatusLength = 32
)

// ValidateUserID returns the trimmed id or a ValidationError.
func ValidateUserID(userID string) (string, error) {
	id := strings.TrimSpace(userID)
	if id == "" {
		return "", newValidationError("userId", "is required")
	}
	if err := checkLength("userId", id, maxUserIDLength); err != nil {
		return "", err
	}
	return id, nil
}

// DecodeBatch checks a sync request against the per-entity record schemas.
// Collections that are absent or not arrays are skipped; a settings value
// that is not an object is skipped the same way. Any malformed record inside
// an array rejects the whole request.
func DecodeBatch(req *dto.SyncRequest) (*dto.SyncBatch, error) {
	if req == nil {
		return nil, newValidationError("userId", "is required")
	}
	userID, err := ValidateUserID(req.UserID)
	if err != nil {
		return nil, err
	}

	batch := &dto.SyncBatch{UserID: userID}

	if isJSON(req.Transactions, '[') {
		if batch.Transactions, err = decodeRecords[dto.TransactionRecord](req.Transactions, "transactions"); err != nil {
			return nil, err
		}
		for i, rec := range batch.Transactions {
			if err := validateTransaction(i, rec); err != nil {
				return nil, err
			}
		}
	}

	if isJSON(req.Loans, '[') {
		if batch.Loans, err = decodeRecords[dto.LoanRecord](req.Loans, "loans"); err != nil {
			return nil, err
		}
		for i, rec := range batch.Loans {
			if err := validateLoan(i, rec); err != nil {
				return nil, err
			}
		}
	}

	if isJSON(req.Products, '[') {
		if batch.Products, err = decodeRecords[dto.ProductRecord](req.Products, "products"); err != nil {
			return nil, err
		}
		for i, rec := range batch.Products {
			if err := validateProduct(i, rec); err != nil {
				return nil, err
			}
		}
	}

	if isJSON(req.Settings, '{') {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(req.Settings, &probe); err != nil {
			return nil, newValidationError("settings", "malformed object: %v", err)
		}
		batch.Settings = bytes.TrimSpace(req.Settings)
	}

	return batch, nil
}

func decodeRecords[T any](raw json.RawMessage, field string) ([]T, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, newValidationError(field, "malformed array: %v", err)
	}
	records := make([]T, 0, len(items))
	for i, item := range items {
		var rec T
		if !isJSON(item, '{') {
			return nil, newValidationError(fmt.Sprintf("%s[%d]", field, i), "must be an object")
		}
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, newValidationError(fmt.Sprintf("%s[%d]", field, i), "malformed record: %v", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func validateTransaction(i int, rec dto.TransactionRecord) error {
	field := func(name string) string { return fmt.Sprintf("transactions[%d].%s", i, name) }
	if !rec.Date.Valid {
		return newValidationError(field("date"), "is required")
	}
	name := strings.TrimSpace(rec.ProductName)
	if name == "" {
		return newValidationError(field("productName"), "is required")
	}
	return firstError(
		checkLength(field("productName"), name, maxNameLength),
		checkLength(field("id"), rec.ID.String(), maxKeyLength),
		checkLength(field("productId"), rec.ProductID.String(), maxKeyLength),
	)
}

func validateLoan(i int, rec dto.LoanRecord) error {
	field := func(name string) string { return fmt.Sprintf("loans[%d].%s", i, name) }
	if rec.ID.String() == "" {
		return newValidationError(field("id"), "is required")
	}
	if !isListOrNull(rec.Products) {
		return newValidationError(field("products"), "must be an array")
	}
	if !isListOrNull(rec.Reminders) {
		return newValidationError(field("reminders"), "must be an array")
	}
	return firstError(
		checkLength(field("id"), rec.ID.String(), maxKeyLength),
		checkLength(field("fullName"), rec.FullName, maxNameLength),
		checkLength(field("phone"), rec.Phone.String(), maxPhoneLength),
		checkLength(field("nationalId"), rec.NationalID.String(), maxPhoneLength),
		checkLength(field("status"), rec.Status, maxStatusLength),
	)
}

func validateProduct(i int, rec dto.ProductRecord) error {
	name := strings.TrimSpace(rec.Name)
	if name == "" {
		return newValidationError(fmt.Sprintf("products[%d].name", i), "is required")
	}
	return checkLength(fmt.Sprintf("products[%d].name", i), name, maxNameLength)
}

// checkLength counts characters, as varchar(n) does.
func checkLength(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return newValidationError(field, "must be at most %d characters", limit)
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// isJSON reports whether raw is a JSON value starting with open ('[' or '{').
func isJSON(raw json.RawMessage, open byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == open
}

func isListOrNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || string(trimmed) == "null" || trimmed[0] == '['
}
