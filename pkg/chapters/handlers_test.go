package chapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImageOrder(t *testing.T) {
	t.Parallel()

	t.Run("numeric entries are explicit orders", func(tt *testing.T) {
		order := parseImageOrder("3")
		require.NotNil(tt, order)
		assert.Equal(tt, 3, *order)

		zero := parseImageOrder("0")
		require.NotNil(tt, zero)
		assert.Equal(tt, 0, *zero)
	})

	t.Run("blank and non-numeric entries fall back to assignment", func(tt *testing.T) {
		assert.Nil(tt, parseImageOrder(""))
		assert.Nil(tt, parseImageOrder("fig-two"))
		assert.Nil(tt, parseImageOrder("1.5"))
	})
}
