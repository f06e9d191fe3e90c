package model

import (
    "bytes"
    "encoding/json"
    "fmt"
    "math"
    "strconv"
    "strings"
)

// Centimos is an amount of Peruvian soles expressed in céntimos.  Prices
// are kept as integers so totals never accumulate floating point error;
// the card widget also expects amounts in minor units.
type Centimos int64

// ParseSoles converts a decimal string such as "50", "80.5" or "S/.60.00"
// into céntimos, rounding half up on the third decimal.  The digits are
// read as text so "0.285" is 29 céntimos, not whatever its float64
// neighbour rounds to.
func ParseSoles(s string) (Centimos, error) {
    s = strings.TrimSpace(s)
    s = strings.TrimPrefix(s, "S/.")
    s = strings.TrimPrefix(s, "S/")
    s = strings.TrimSpace(s)
    if s == "" {
        return 0, fmt.Errorf("empty amount")
    }
    whole, frac, _ := strings.Cut(strings.TrimPrefix(s, "+"), ".")
    if (whole == "" && frac == "") || !digits(whole) || !digits(frac) {
        return 0, fmt.Errorf("invalid amount %q", s)
    }
    var soles int64
    if whole != "" {
        n, err := strconv.ParseInt(whole, 10, 64)
        if err != nil || n > math.MaxInt64/100-1 {
            return 0, fmt.Errorf("invalid amount %q", s)
        }
        soles = n
    }
    frac += "000"
    cents := int64(frac[0]-'0')*10 + int64(frac[1]-'0')
    if frac[2] >= '5' {
        cents++
    }
    return Centimos(soles*100 + cents), nil
}

func digits(s string) bool {
    for i := 0; i < len(s); i++ {
        if s[i] < '0' || s[i] > '9' {
            return false
        }
    }
    return true
}

// String renders the amount in soles with two decimals, e.g. "80.00".
func (c Centimos) String() string {
    sign := ""
    v := int64(c)
    if v < 0 {
        sign = "-"
        v = -v
    }
    return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Soles returns the amount as a float number of soles.  Used only when
// rendering JSON for clients that expect a plain number.
func (c Centimos) Soles() float64 { return float64(c) / 100 }

// UnmarshalJSON accepts both JSON numbers (50, 80.5) and decimal strings
// ("50.00").  The backend serialises numeric columns either way.
func (c *Centimos) UnmarshalJSON(b []byte) error {
    b = bytes.TrimSpace(b)
    if bytes.Equal(b, []byte("null")) {
        *c = 0
        return nil
    }
    if len(b) > 0 && b[0] == '"' {
        var s string
        if err := json.Unmarshal(b, &s); err != nil {
            return err
        }
        v, err := ParseSoles(s)
        if err != nil {
            return err
        }
        *c = v
        return nil
    }
    v, err := ParseSoles(string(b))
    if err != nil {
        return err
    }
    *c = v
    return nil
}

// MarshalJSON writes the amount as a number of soles.
func (c Centimos) MarshalJSON() ([]byte, error) {
    return []byte(c.String()), nil
}
