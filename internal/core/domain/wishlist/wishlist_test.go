package wishlist

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateItemID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "uuid", id: "6f1d2c3e-0000-4000-8000-000000000001", wantErr: false},
		{name: "empty", id: "", wantErr: true},
		{name: "too long", id: strings.Repeat("x", 129), wantErr: true},
		{name: "route name items", id: "items", wantErr: true},
		{name: "route name events", id: "events", wantErr: true},
		{name: "route name refresh", id: "refresh", wantErr: true},
		{name: "contains route name", id: "items-2", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItemID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateItemID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidItem) {
				t.Errorf("expected ErrInvalidItem, got %v", err)
			}
		})
	}
}

func TestChange_String(t *testing.T) {
	if got := (Change{Kind: ChangeCleared}).String(); got != "cleared" {
		t.Errorf("got %q", got)
	}
	if got := (Change{Kind: ChangeAdded, ItemID: "a", Member: true}).String(); got != "added a (member=true)" {
		t.Errorf("got %q", got)
	}
}
