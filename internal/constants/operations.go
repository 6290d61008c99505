package constants

// Privileged operations. Names match the privilege reference data rows;
// the validator compares them case-insensitively (uppercase-normalized).
const (
	BookTrade  = "BOOK_TRADE"
	AmendTrade = "AMEND_TRADE"
	ViewTrade  = "VIEW_TRADE"
)

// User profile types. Superuser bypasses the privilege table entirely.
const (
	RoleTrader       = "TRADER"
	RoleSales        = "SALES"
	RoleTraderSales  = "TRADER_SALES"
	RoleMiddleOffice = "MIDDLE_OFFICE"
	RoleSupport      = "SUPPORT"
	RoleAdmin        = "ADMIN"
	RoleSuperuser    = "SUPERUSER"
)

// Trade statuses.
const (
	StatusNew        = "NEW"
	StatusAmended    = "AMENDED"
	StatusTerminated = "TERMINATED"
	StatusCancelled  = "CANCELLED"
)

// Leg rate types and directions.
const (
	LegTypeFixed    = "Fixed"
	LegTypeFloating = "Floating"
	PayDirection    = "PAY"
	RecDirection    = "RECEIVE"
)
