package utils

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingReference(t *testing.T) {
	seen := map[string]bool{}
	for n := 0; n < 50; n++ {
		ref := NewBookingReference()
		assert.True(t, strings.HasPrefix(ref, "BK-"))
		assert.Len(t, ref, 13)
		assert.Equal(t, ref, strings.ToUpper(ref))
		assert.False(t, seen[ref])
		seen[ref] = true
	}
}

func TestGenerateTicketQRWritesToTempDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TEMP_DIR", dir)

	out, err := GenerateTicketQR("BK-TESTREF001")
	require.Nil(t, err)

	assert.True(t, strings.HasPrefix(out, dir))
	info, err := os.Stat(out)
	require.Nil(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
