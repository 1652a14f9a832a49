package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTextID(t *testing.T) {
	pattern := regexp.MustCompile(`^PND-\d{5}-\d{4}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := NewTextID(PendingPrefix)
		require.NoError(t, err)
		assert.Regexp(t, pattern, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 1)
}
