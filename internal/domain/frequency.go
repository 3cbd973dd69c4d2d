package domain

import (
	"database/sql/driver"
	"fmt"
)

// Frequency is the payment cadence of a contract, expressed as the number
// of calendar months a single billing period spans.
type Frequency int

const (
	FrequencyMonthly      Frequency = 1
	FrequencyQuarterly    Frequency = 3
	FrequencySemiAnnually Frequency = 6
	FrequencyAnnually     Frequency = 12
)

// MonthsPerPeriod returns how many calendar months one period covers.
func (f Frequency) MonthsPerPeriod() int {
	return int(f)
}

// PeriodUnit returns the plural human name of the period, used in
// validation messages.
func (f Frequency) PeriodUnit() string {
	switch f {
	case FrequencyMonthly:
		return "months"
	case FrequencyQuarterly:
		return "quarters"
	case FrequencySemiAnnually:
		return "half-years"
	case FrequencyAnnually:
		return "years"
	default:
		return "periods"
	}
}

func (f Frequency) String() string {
	switch f {
	case FrequencyMonthly:
		return "monthly"
	case FrequencyQuarterly:
		return "quarterly"
	case FrequencySemiAnnually:
		return "semi_annually"
	case FrequencyAnnually:
		return "annually"
	default:
		return fmt.Sprintf("frequency(%d)", int(f))
	}
}

// Valid reports whether f is one of the four supported tiers.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencySemiAnnually, FrequencyAnnually:
		return true
	}
	return false
}

// ParseFrequency converts a wire/db string into a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	switch s {
	case "monthly":
		return FrequencyMonthly, nil
	case "quarterly":
		return FrequencyQuarterly, nil
	case "semi_annually":
		return FrequencySemiAnnually, nil
	case "annually":
		return FrequencyAnnually, nil
	default:
		return 0, fmt.Errorf("unknown payment frequency %q", s)
	}
}

// Value stores the frequency as its string name.
func (f Frequency) Value() (driver.Value, error) {
	return f.String(), nil
}

// Scan reads the frequency back from its stored string name.
func (f *Frequency) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Frequency", src)
	}
	parsed, err := ParseFrequency(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// MarshalJSON encodes the frequency as its string name.
func (f Frequency) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.String() + `"`), nil
}

// UnmarshalJSON decodes a string name into a Frequency.
func (f *Frequency) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseFrequency(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
