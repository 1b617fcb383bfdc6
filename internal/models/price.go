package models

import (
	"database/sql/driver"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// PriceScale is the number of fractional digits a price carries.
const PriceScale = 2

// Price is a fixed-point amount with two fractional digits. It is stored as
// DECIMAL(10,2) where the database has one and as text on SQLite, so no value
// ever passes through float64.
type Price struct {
	decimal.Decimal
}

func NewPrice(d decimal.Decimal) Price {
	return Price{Decimal: d.Round(PriceScale)}
}

// MustPrice parses s and panics on malformed input. Intended for tests and constants.
func MustPrice(s string) Price {
	return NewPrice(decimal.RequireFromString(s))
}

func (p Price) String() string {
	return p.StringFixed(PriceScale)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

func (p Price) Value() (driver.Value, error) {
	return p.String(), nil
}

func (Price) GormDataType() string {
	return "decimal"
}

func (Price) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "sqlite":
		return "text"
	default:
		return "decimal(10,2)"
	}
}
