package normalizer

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int64
		wantErr error
	}{
		{"int", 42, 42, nil},
		{"whole float", 603.0, 603, nil},
		{"numeric string", " 42 ", 42, nil},
		{"float string", "7.0", 7, nil},
		{"json number", json.Number("12345678901234567"), 12345678901234567, nil},
		{"fraction", 1.5, 0, ErrNotIntegral},
		{"fraction string", "7.5", 0, ErrNotIntegral},
		{"too large float", 1e30, 0, ErrOverflow},
		{"too small float", -1e30, 0, ErrOverflow},
		{"two to the 63", math.Pow(2, 63), 0, ErrOverflow},
		{"too large string", "1e30", 0, ErrOverflow},
		{"too large uint", uint64(math.MaxUint64), 0, ErrOverflow},
		{"not numeric", "abc", 0, ErrNotNumeric},
		{"nan", math.NaN(), 0, ErrNotNumeric},
		{"bool", true, 0, ErrNotNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toInt(tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("toInt(%v) error = %v, want %v", tt.value, err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("toInt(%v) returned unexpected error: %v", tt.value, err)
			}

			if got != tt.want {
				t.Errorf("toInt(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}
