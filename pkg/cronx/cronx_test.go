package cronx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec    string
		isValid bool
	}{
		{"0 */5 * * * *", true},
		{" 0 * * * * * ", true},
		{"@every 30s", true},
		{"@hourly", true},
		{"*/5 * * * *", false},
		{"", false},
		{"not a cron", false},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			err := Validate(tt.spec)
			if tt.isValid {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "Cron 표현식")
			}
		})
	}
}

func TestStandardParser_NextSchedule(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	sched, err := StandardParser().Parse("0 */5 * * * *")
	require.NoError(t, err)
	assert.Equal(t, base.Add(5*time.Minute), sched.Next(base))

	sched, err = StandardParser().Parse("@every 30s")
	require.NoError(t, err)
	assert.Equal(t, base.Add(30*time.Second), sched.Next(base))
}
