package domain

import (
	"errors"
	"testing"
)

func TestNormalizeProductID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{name: "canonical id", raw: "64a0c2f1e7b9a4d1c3f0a001", want: "64a0c2f1e7b9a4d1c3f0a001"},
		{name: "uppercase hex", raw: "64A0C2F1E7B9A4D1C3F0A001", want: "64a0c2f1e7b9a4d1c3f0a001"},
		{name: "surrounding whitespace", raw: "  64a0c2f1e7b9a4d1c3f0a001\n", want: "64a0c2f1e7b9a4d1c3f0a001"},
		{name: "too short", raw: "64a0c2f1", wantErr: ErrMalformedProductID},
		{name: "non hex", raw: "zzzzzzzzzzzzzzzzzzzzzzzz", wantErr: ErrMalformedProductID},
		{name: "empty", raw: "", wantErr: ErrMalformedProductID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeProductID(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
