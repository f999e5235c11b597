package service

import (
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateAlert(t *testing.T) {
	tests := []struct {
		percentage string
		wantLevel  domain.AlertLevel
		wantTitle  string
		wantMsg    string
	}{
		{"0", domain.AlertLevelNone, "", ""},
		{"85", domain.AlertLevelNone, "", ""},
		{"89.9999", domain.AlertLevelNone, "", ""},
		{"90", domain.AlertLevelWarning, "Budget Warning", "You've used 90.0% of your monthly budget."},
		{"99.9", domain.AlertLevelWarning, "Budget Warning", "You've used 99.9% of your monthly budget."},
		{"100", domain.AlertLevelExceeded, "Budget Exceeded", "You have exceeded your monthly budget!"},
		{"150", domain.AlertLevelExceeded, "Budget Exceeded", "You have exceeded your monthly budget!"},
	}

	for _, tt := range tests {
		t.Run(tt.percentage, func(t *testing.T) {
			alert := EvaluateAlert(dec(tt.percentage))

			if tt.wantLevel == domain.AlertLevelNone {
				assert.Nil(t, alert)
				return
			}
			require.NotNil(t, alert)
			assert.Equal(t, tt.wantLevel, alert.Level)
			assert.Equal(t, tt.wantTitle, alert.Title)
			assert.Equal(t, tt.wantMsg, alert.Message)
		})
	}
}

func TestEvaluateAlert_RoundsMessageToOneDecimal(t *testing.T) {
	alert := EvaluateAlert(dec("92.3456"))
	require.NotNil(t, alert)
	assert.Equal(t, "You've used 92.3% of your monthly budget.", alert.Message)
	assert.True(t, alert.Percentage.Equal(dec("92.3456")))
}

func TestAlertGuard_SuppressesRepeats(t *testing.T) {
	guard := NewAlertGuard(true)
	warning := EvaluateAlert(dec("91"))
	exceeded := EvaluateAlert(dec("120"))

	assert.True(t, guard.Allow(warning))
	assert.False(t, guard.Allow(warning), "same level must not fire twice")
	assert.True(t, guard.Allow(exceeded))
	assert.False(t, guard.Allow(exceeded))

	// dropping back to warning is a level change
	assert.True(t, guard.Allow(warning))

	// falling below the threshold re-arms
	assert.False(t, guard.Allow(nil))
	assert.True(t, guard.Allow(warning))
}

func TestAlertGuard_Disabled(t *testing.T) {
	guard := NewAlertGuard(false)
	warning := EvaluateAlert(dec("95"))

	assert.True(t, guard.Allow(warning))
	assert.True(t, guard.Allow(warning))
	assert.False(t, guard.Allow(nil))
}

func TestAlertGuard_Reset(t *testing.T) {
	guard := NewAlertGuard(true)
	exceeded := EvaluateAlert(dec("100"))

	assert.True(t, guard.Allow(exceeded))
	guard.Reset()
	assert.True(t, guard.Allow(exceeded))
}
