package listings

import (
	"errors"
	"testing"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng string
		wantErr  error
		wantNil  bool
	}{
		{name: "blank", wantNil: true},
		{name: "valid", lat: "18.5204", lng: "73.8567"},
		{name: "half", lat: "18.5", wantErr: errHalfLocation},
		{name: "garbage", lat: "north", lng: "73", wantErr: errHalfLocation},
		{name: "lat out of range", lat: "91", lng: "73", wantErr: errFarLocation},
		{name: "lng out of range", lat: "18", lng: "-181", wantErr: errFarLocation},
		{name: "nan", lat: "NaN", lng: "nan", wantErr: errFarLocation},
		{name: "nan lng only", lat: "18.5", lng: "NaN", wantErr: errFarLocation},
		{name: "infinite", lat: "+Inf", lng: "73", wantErr: errFarLocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := parseLocation(tt.lat, tt.lng)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if loc != nil {
					t.Errorf("loc = %+v, want nil on error", loc)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil != (loc == nil) {
				t.Fatalf("loc = %+v, wantNil %v", loc, tt.wantNil)
			}
		})
	}
}
