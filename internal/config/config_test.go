package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuestConfigDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 10, cfg.Guest.MessageLimit)
	assert.Equal(t, 50, cfg.Guest.ChatRatePerHour)
}

func TestGuestMessageLimitOverride(t *testing.T) {
	t.Setenv("GUEST_MESSAGE_LIMIT", "25")

	cfg := Load()
	assert.Equal(t, 25, cfg.Guest.MessageLimit)
}

func TestGuestMessageLimitRejectsGarbage(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not a number", "plenty"},
		{"zero", "0"},
		{"negative", "-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GUEST_MESSAGE_LIMIT", tt.value)

			cfg := Load()
			assert.Equal(t, 10, cfg.Guest.MessageLimit)
		})
	}
}
