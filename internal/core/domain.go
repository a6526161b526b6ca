package core

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryTypeExpense CategoryType = "expense"
	CategoryTypeIncome  CategoryType = "income"
)

// DateLayout is the canonical date format for all persisted transactions.
const DateLayout = "2006-01-02"

type (
	CategoryType string

	// Transaction is a persisted ledger entry. Amount is signed:
	// negative = outflow, positive = inflow, regardless of how the
	// source statement expressed it.
	Transaction struct {
		ID          string
		UserID      string
		BankID      *string
		CategoryID  *string
		Date        string // YYYY-MM-DD
		Description string
		Amount      decimal.Decimal
		Currency    string
		CreatedAt   time.Time
	}

	Bank struct {
		ID        string
		UserID    string
		Name      string
		Color     string
		CreatedAt time.Time
	}

	Category struct {
		ID          string
		UserID      string
		Name        string
		Type        CategoryType
		Color       string
		Icon        string
		Description string
		IsSystem    bool
		CreatedAt   time.Time
	}

	Currency struct {
		ID        string
		UserID    string
		Code      string // RON, EUR, USD, MDL
		Name      string
		Symbol    string
		CreatedAt time.Time
	}

	// UserKeyword is a per-user classification override: when Keyword is a
	// case-insensitive substring of a transaction description, the
	// transaction belongs to CategoryID. Deleted together with its category.
	UserKeyword struct {
		ID         string
		UserID     string
		Keyword    string
		CategoryID string
		CreatedAt  time.Time
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrEmptyKeyword     = errors.New("empty keyword")
	ErrEmptyName        = errors.New("empty name")
)

var currencyCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

func (t Transaction) Validate() error {
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	if !currencyCodeRe.MatchString(t.Currency) {
		return ErrInvalidCurrency
	}
	return nil
}

// Month returns the YYYY-MM prefix of the transaction date.
func (t Transaction) Month() string {
	if len(t.Date) < 7 {
		return t.Date
	}
	return t.Date[:7]
}

// IsExpense reports whether the transaction is an outflow.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

func (b Bank) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	switch c.Type {
	case CategoryTypeExpense, CategoryTypeIncome:
	default:
		return errors.New("invalid category type")
	}
	return nil
}

func (c Currency) Validate() error {
	if !currencyCodeRe.MatchString(c.Code) {
		return ErrInvalidCurrency
	}
	return nil
}

func (k UserKeyword) Validate() error {
	if strings.TrimSpace(k.Keyword) == "" {
		return ErrEmptyKeyword
	}
	if k.CategoryID == "" {
		return errors.New("keyword requires a category")
	}
	return nil
}
