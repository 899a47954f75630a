package handlers

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/models"
)

// number is a request field that accepts a JSON number or a numeric string
// such as "10". Values that are neither decode without error and are
// reported as field errors by the handler.
type number struct {
	set   bool
	ok    bool
	value float64
}

func (n *number) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	n.set = true
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return nil
	}
	f, err := num.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n.value, n.ok = f, true
	return nil
}

// int returns the value as a whole number. 50 and 50.0 are accepted, 50.5 is
// not. Magnitudes beyond int32 are clamped so range checks still reject them.
func (n number) int() (int, bool) {
	if !n.ok || n.value != math.Trunc(n.value) {
		return 0, false
	}
	switch {
	case n.value > math.MaxInt32:
		return math.MaxInt32, true
	case n.value < math.MinInt32:
		return math.MinInt32, true
	}
	return int(n.value), true
}

// intField reads n into a whole number, recording field errors on v. Absent
// values yield 0 unless required is set.
func intField(v *models.ValidationError, field string, n number, required bool) int {
	switch {
	case !n.set:
		if required {
			v.Add(field, "is required")
		}
		return 0
	case !n.ok:
		v.Add(field, "must be a number")
		return 0
	}
	i, ok := n.int()
	if !ok {
		v.Add(field, "must be a whole number")
	}
	return i
}
