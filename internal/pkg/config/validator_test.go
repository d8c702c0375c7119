package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateCronSchedule(t *testing.T) {
	valid := []string{"*/5 * * * *", "0 * * * *", "30 5 * * 1-5", "15,45 */2 * * *"}
	for _, s := range valid {
		assert.NoError(t, ValidateCronSchedule(s), s)
	}

	invalid := []string{"", "0 0", "0 0 * * * * *", "60 0 * * *", "every minute"}
	for _, s := range invalid {
		err := ValidateCronSchedule(s)
		if assert.Error(t, err, s) {
			assert.Contains(t, err.Error(), "invalid cron schedule")
		}
	}
}

func TestValidateTimezone(t *testing.T) {
	for _, tz := range []string{"UTC", "Asia/Seoul", "Europe/Berlin"} {
		assert.NoError(t, ValidateTimezone(tz), tz)
	}
	assert.ErrorContains(t, ValidateTimezone(""), "cannot be empty")
	assert.ErrorContains(t, ValidateTimezone("Mars/Olympus"), "invalid timezone")
}

func TestValidateDuration(t *testing.T) {
	tests := []struct {
		name    string
		d       time.Duration
		min     time.Duration
		max     time.Duration
		wantErr string
	}{
		{name: "inside", d: time.Minute, min: time.Second, max: time.Hour},
		{name: "at min", d: time.Second, min: time.Second, max: time.Hour},
		{name: "at max", d: time.Hour, min: time.Second, max: time.Hour},
		{name: "below", d: time.Millisecond, min: time.Second, max: time.Hour, wantErr: "below minimum"},
		{name: "above", d: 2 * time.Hour, min: time.Second, max: time.Hour, wantErr: "exceeds maximum"},
		{name: "bad range", d: time.Minute, min: time.Hour, max: time.Second, wantErr: "invalid range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDuration(tt.d, tt.min, tt.max)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateIntRange(t *testing.T) {
	assert.NoError(t, ValidateIntRange(5, 1, 10))
	assert.NoError(t, ValidateIntRange(1, 1, 1))
	assert.ErrorContains(t, ValidateIntRange(0, 1, 10), "below minimum")
	assert.ErrorContains(t, ValidateIntRange(11, 1, 10), "exceeds maximum")
	assert.ErrorContains(t, ValidateIntRange(5, 10, 1), "invalid range")
}

func TestValidatePositiveDuration(t *testing.T) {
	assert.NoError(t, ValidatePositiveDuration(time.Nanosecond))
	assert.Error(t, ValidatePositiveDuration(0))
	assert.ErrorContains(t, ValidatePositiveDuration(-time.Second), "must be positive")
}

func TestValidateRatio(t *testing.T) {
	assert.NoError(t, ValidateRatio(0))
	assert.NoError(t, ValidateRatio(0.25))
	assert.NoError(t, ValidateRatio(1))
	assert.Error(t, ValidateRatio(-0.1))
	assert.Error(t, ValidateRatio(1.5))
}

func TestValidateOneOf(t *testing.T) {
	assert.NoError(t, ValidateOneOf("sqlite", "memory", "postgres", "sqlite"))
	assert.EqualError(t, ValidateOneOf("mysql", "memory", "postgres"),
		`value "mysql" must be one of [memory, postgres]`)
}
