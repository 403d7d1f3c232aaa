package interfaces

import (
	"errors"
	"testing"

	"github.com/opd-ai/kadtopo/limits"
)

func TestRoutingConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  RoutingConfig
		wantErr error
	}{
		{
			name:    "defaults",
			config:  *DefaultRoutingConfig(),
			wantErr: nil,
		},
		{
			name:    "zero bucket size",
			config:  RoutingConfig{BucketSize: 0, Alpha: 3},
			wantErr: limits.ErrBucketSize,
		},
		{
			name:    "alpha too large",
			config:  RoutingConfig{BucketSize: 16, Alpha: limits.MaxAlpha + 1},
			wantErr: limits.ErrAlpha,
		},
		{
			name:    "bounded drain",
			config:  RoutingConfig{BucketSize: 8, Alpha: 1, MaxMessagesPerDrain: 1000},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	negative := RoutingConfig{BucketSize: 16, Alpha: 3, MaxMessagesPerDrain: -1}
	if err := negative.Validate(); err == nil {
		t.Error("expected error for negative drain bound")
	}
}
