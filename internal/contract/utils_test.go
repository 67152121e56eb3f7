package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{
			name:     "smallest value possible",
			input:    0.0,
			expected: WeakValue,
		},
		{
			name:     "negative similarity",
			input:    -0.4,
			expected: WeakValue,
		},
		{
			name:     "just before fair",
			input:    0.49,
			expected: WeakValue,
		},
		{
			name:     "exactly fair",
			input:    0.5,
			expected: FairValue,
		},
		{
			name:     "exactly strong",
			input:    0.75,
			expected: StrongValue,
		},
		{
			name:     "just before top match",
			input:    0.899,
			expected: StrongValue,
		},
		{
			name:     "exactly top match",
			input:    0.9,
			expected: TopMatchValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainLabel(tt.input))
		})
	}
}

func TestGetColorLabel(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		label string
	}{
		{"weak", 0.3, WeakValue},
		{"fair", 0.6, FairValue},
		{"strong", 0.8, StrongValue},
		{"top", 0.95, TopMatchValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, GetColorLabel(tt.score), tt.label)
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestGetHistoryDBFilePath(t *testing.T) {
	path := GetHistoryDBFilePath()
	assert.NotEmpty(t, path)
	assert.Contains(t, path, ".peakfinder_history.db")

	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, homeDir), "path %s should start with home dir %s", path, homeDir)
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "Gunung", TruncateText("Gunung", 10))
	assert.Equal(t, "Gunung ...", TruncateText("Gunung Semeru", 10))
	assert.Equal(t, "Gunung Semeru", TruncateText("Gunung Semeru", 3), "tiny widths are ignored")
}

func TestParseBoolString(t *testing.T) {
	for _, in := range []string{"yes", "TRUE", "1"} {
		got, err := ParseBoolString(in)
		require.NoError(t, err)
		assert.True(t, got, in)
	}
	for _, in := range []string{"no", "False", "0"} {
		got, err := ParseBoolString(in)
		require.NoError(t, err)
		assert.False(t, got, in)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
