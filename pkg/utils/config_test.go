package utils

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	// no .env present
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "seat-coordinator", config.App.Name)
	assert.Equal(t, "8000", config.App.Port)

	assert.False(t, config.Database.Enabled())

	assert.Equal(t, 5, config.Reservation.HoldTTLMinutes)
	assert.Equal(t, "S001", config.Reservation.DefaultSession)

	assert.Equal(t, []string{"J", "I", "H", "G", "F", "E", "D", "C", "B", "A"}, config.Layout.Rows)
	assert.Equal(t, 20, config.Layout.SeatsPerRow)
	assert.Equal(t, []string{"A01", "A02", "A17", "A18"}, config.Layout.WheelchairSeats)

	assert.Equal(t, 64, config.WS.SendBuffer)
	assert.EqualValues(t, 4096, config.WS.MaxMessageBytes)
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, splitCSV("A, B"))
	assert.Equal(t, []string{"A"}, splitCSV("A,,"))
	assert.Empty(t, splitCSV(""))
}
