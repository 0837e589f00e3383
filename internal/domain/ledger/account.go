package ledger

import (
	"strings"

	"github.com/erp/ledger/internal/domain/shared"
)

// AccountType classifies an account in the chart of accounts
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// String returns the string representation
func (t AccountType) String() string {
	return string(t)
}

// TypeForCode derives the account type from the hierarchical code prefix:
// 1xxx assets, 2xxx liabilities, 3xxx equity, 4xxx revenue, 5xxx expenses.
func TypeForCode(code string) (AccountType, bool) {
	if code == "" {
		return "", false
	}
	switch code[0] {
	case '1':
		return AccountTypeAsset, true
	case '2':
		return AccountTypeLiability, true
	case '3':
		return AccountTypeEquity, true
	case '4':
		return AccountTypeRevenue, true
	case '5':
		return AccountTypeExpense, true
	}
	return "", false
}

// Well-known account codes used by the auto-posting engine.
const (
	CodeCash               = "1100"
	CodeBank               = "1110"
	CodeAccountsReceivable = "1200"
	CodeChecksReceivable   = "1210"
	CodeInventory          = "1300"
	CodeAccountsPayable    = "2100"
	CodeChecksPayable      = "2110"
	CodeOpeningEquity      = "3100"
	CodeRevenue            = "4100"
	CodeServiceRevenue     = "4110"
	CodePartnerRevenue     = "4120"
	CodeExchangeRevenue    = "4130"
	CodeCOGS               = "5100"
	CodeGeneralExpense     = "5200"
	CodeFreightExpense     = "5210"
	CodeSalaryExpense      = "5220"
	CodeRentExpense        = "5230"
)

// Account is an entry in the chart of accounts. Once a posted entry
// references the account its code and type are immutable.
type Account struct {
	shared.BaseEntity
	Code   string
	Name   string
	Type   AccountType
	Active bool
}

// NewAccount creates a chart-of-accounts entry. The code must carry a
// valid hierarchical prefix and the derived type must match.
func NewAccount(code, name string, accountType AccountType) (*Account, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account name cannot be empty")
	}
	derived, ok := TypeForCode(code)
	if !ok {
		return nil, shared.NewDomainErrorf("INVALID_INPUT", "Account code %q has no valid type prefix", code)
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_INPUT", "Invalid account type %q", accountType)
	}
	if derived != accountType {
		return nil, shared.NewDomainErrorf("INVALID_INPUT",
			"Account code %q implies type %s, got %s", code, derived, accountType)
	}
	return &Account{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       name,
		Type:       accountType,
		Active:     true,
	}, nil
}

// Deactivate marks the account inactive. Inactive accounts are rejected
// at posting time but keep their history.
func (a *Account) Deactivate() {
	a.Active = false
}

// Activate marks the account active again
func (a *Account) Activate() {
	a.Active = true
}

// DefaultChart returns the built-in chart of accounts the posting engine
// depends on. Installations may extend it but not remove referenced codes.
func DefaultChart() []Account {
	mk := func(code, name string) Account {
		t, _ := TypeForCode(code)
		return Account{
			BaseEntity: shared.NewBaseEntity(),
			Code:       code,
			Name:       name,
			Type:       t,
			Active:     true,
		}
	}
	return []Account{
		mk(CodeCash, "Cash"),
		mk(CodeBank, "Bank"),
		mk(CodeAccountsReceivable, "Accounts Receivable"),
		mk(CodeChecksReceivable, "Checks Receivable"),
		mk(CodeInventory, "Inventory"),
		mk(CodeAccountsPayable, "Accounts Payable"),
		mk(CodeChecksPayable, "Checks Payable"),
		mk(CodeOpeningEquity, "Opening Balance Equity"),
		mk(CodeRevenue, "Sales Revenue"),
		mk(CodeServiceRevenue, "Service Revenue"),
		mk(CodePartnerRevenue, "Partner Revenue"),
		mk(CodeExchangeRevenue, "Exchange Revenue"),
		mk(CodeCOGS, "Cost of Goods Sold"),
		mk(CodeGeneralExpense, "General Expenses"),
		mk(CodeFreightExpense, "Freight and Customs"),
		mk(CodeSalaryExpense, "Salaries"),
		mk(CodeRentExpense, "Rent"),
	}
}
