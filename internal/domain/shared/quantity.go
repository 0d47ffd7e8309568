package shared

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// UnlimitedMarker is the textual form of an unlimited quantity.
const UnlimitedMarker = "m"

// legacyUnlimitedMarker was written by older clients and reads as unlimited.
const legacyUnlimitedMarker = "+"

var (
	ErrInvalidQuantity     = errors.New("quantity must be 'm' or a positive multiple of 0.25")
	ErrNegativeQuantity    = errors.New("quantity cannot be negative")
	ErrFractionalQuarter   = errors.New("quantity must be a multiple of 0.25")
	ErrUnsupportedQuantity = errors.New("unsupported quantity representation")
)

// Quantity is an amount of whole items counted in quarter steps, or the
// unlimited sentinel meaning the item never runs out.
type Quantity struct {
	quarters  int64
	unlimited bool
}

// Quarters returns a quantity of n quarter units.
func Quarters(n int64) Quantity {
	return Quantity{quarters: n}
}

// Whole returns a quantity of n whole items.
func Whole(n int64) Quantity {
	return Quantity{quarters: n * 4}
}

// Unlimited returns the unlimited sentinel.
func Unlimited() Quantity {
	return Quantity{unlimited: true}
}

// QuantityFromFloat converts f to a quantity. f must be a multiple of 0.25.
func QuantityFromFloat(f float64) (Quantity, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Quantity{}, ErrInvalidQuantity
	}
	scaled := f * 4
	rounded := math.Round(scaled)
	if math.Abs(scaled-rounded) > 1e-9 {
		return Quantity{}, ErrFractionalQuarter
	}
	return Quarters(int64(rounded)), nil
}

// ParseQuantity parses user input: "m" (or the legacy "+") for unlimited, or
// a strictly positive decimal that is a multiple of 0.25. A comma is accepted
// as decimal separator.
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case UnlimitedMarker, legacyUnlimitedMarker:
		return Unlimited(), nil
	case "":
		return Quantity{}, ErrInvalidQuantity
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || f <= 0 {
		return Quantity{}, ErrInvalidQuantity
	}
	return QuantityFromFloat(f)
}

// IsUnlimited reports whether q is the unlimited sentinel.
func (q Quantity) IsUnlimited() bool { return q.unlimited }

// IsPositive reports whether q is unlimited or strictly above zero.
func (q Quantity) IsPositive() bool { return q.unlimited || q.quarters > 0 }

// IsZero reports whether q is a finite zero.
func (q Quantity) IsZero() bool { return !q.unlimited && q.quarters == 0 }

// QuarterUnits returns the finite amount in quarters. Unlimited returns 0.
func (q Quantity) QuarterUnits() int64 {
	if q.unlimited {
		return 0
	}
	return q.quarters
}

// Float64 returns the finite amount in whole items. Unlimited returns +Inf.
func (q Quantity) Float64() float64 {
	if q.unlimited {
		return math.Inf(1)
	}
	return float64(q.quarters) / 4
}

// Add returns q+o. Anything added to unlimited stays unlimited.
func (q Quantity) Add(o Quantity) Quantity {
	if q.unlimited || o.unlimited {
		return Unlimited()
	}
	return Quarters(q.quarters + o.quarters)
}

// SubFloor returns max(q-o, 0). Unlimited minus a finite amount stays
// unlimited; anything minus unlimited is zero.
func (q Quantity) SubFloor(o Quantity) Quantity {
	if o.unlimited {
		return Quantity{}
	}
	if q.unlimited {
		return q
	}
	if o.quarters >= q.quarters {
		return Quantity{}
	}
	return Quarters(q.quarters - o.quarters)
}

// Equal reports whether q and o denote the same amount.
func (q Quantity) Equal(o Quantity) bool {
	return q.unlimited == o.unlimited && (q.unlimited || q.quarters == o.quarters)
}

// String renders q as "m" or a plain decimal such as "1.25".
func (q Quantity) String() string {
	if q.unlimited {
		return UnlimitedMarker
	}
	return strconv.FormatFloat(q.Float64(), 'f', -1, 64)
}

// MarshalJSON encodes unlimited as "m" and finite amounts as a number.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if q.unlimited {
		return json.Marshal(UnlimitedMarker)
	}
	return []byte(q.String()), nil
}

// UnmarshalJSON accepts a non-negative number, or a string following
// ParseQuantity.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var (
		parsed Quantity
		err    error
	)
	if text, ok := raw.(string); ok {
		parsed, err = ParseQuantity(text)
	} else {
		parsed, err = quantityFromAny(raw)
	}
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// Value stores the textual form so unlimited fits in the same column.
func (q Quantity) Value() (driver.Value, error) {
	return q.String(), nil
}

// Scan reads a quantity written by Value, or a bare numeric column.
func (q *Quantity) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*q = Quantity{}
		return nil
	case []byte:
		return q.Scan(string(v))
	}
	parsed, err := quantityFromAny(value)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// QuantityFromAny converts decoded JSON or driver values into a quantity.
func QuantityFromAny(value interface{}) (Quantity, error) {
	return quantityFromAny(value)
}

func quantityFromAny(value interface{}) (Quantity, error) {
	switch v := value.(type) {
	case string:
		s := strings.TrimSpace(strings.ToLower(v))
		if s == UnlimitedMarker || s == legacyUnlimitedMarker {
			return Unlimited(), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Quantity{}, fmt.Errorf("%w: %q", ErrInvalidQuantity, v)
		}
		return nonNegative(f)
	case float64:
		return nonNegative(v)
	case float32:
		return nonNegative(float64(v))
	case int64:
		return nonNegative(float64(v))
	case int:
		return nonNegative(float64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Quantity{}, err
		}
		return nonNegative(f)
	default:
		return Quantity{}, fmt.Errorf("%w: %T", ErrUnsupportedQuantity, value)
	}
}

func nonNegative(f float64) (Quantity, error) {
	if f < 0 {
		return Quantity{}, ErrNegativeQuantity
	}
	return QuantityFromFloat(f)
}
