package types

import "github.com/shopspring/decimal"

// Canonical column names, in output order.
const (
	ColumnName       = "name"
	ColumnDepartment = "department"
	ColumnAmount     = "amount"
	ColumnDate       = "date"
)

// CanonicalColumns lists the required columns in the order they are written.
var CanonicalColumns = []string{ColumnName, ColumnDepartment, ColumnAmount, ColumnDate}

// UnknownLabel replaces a missing name or department.
const UnknownLabel = "Unknown"

// CanonicalRecord is one cleaned row. Every field is always populated.
type CanonicalRecord struct {
	Name       string
	Department string
	Amount     decimal.Decimal
	Date       Date
}

// SummaryRow is the total amount for one department.
type SummaryRow struct {
	Department  string
	TotalAmount decimal.Decimal
}
