package internaltypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelFromString(t *testing.T) {
	for _, val := range []string{EMAIL, WHATSAPP, PUSH} {
		c, err := ChannelFromString(val)
		require.NoError(t, err)
		assert.Equal(t, val, c.String())
	}

	_, err := ChannelFromString("SMS")
	assert.ErrorIs(t, err, ErrInvalidChannelValue)
}

func TestStatusFromString(t *testing.T) {
	for _, val := range []string{SENT, FAILED, SKIPPED} {
		s, err := StatusFromString(val)
		require.NoError(t, err)
		assert.Equal(t, val, s.String())
	}

	_, err := StatusFromString("PENDING")
	assert.ErrorIs(t, err, ErrInvalidStatusValue)
}

func TestPlanTierFromString(t *testing.T) {
	p, err := PlanTierFromString(PRO)
	require.NoError(t, err)
	assert.Equal(t, PlanPro, p)

	_, err = PlanTierFromString("GOLD")
	assert.ErrorIs(t, err, ErrInvalidPlanValue)
}

func TestDocumentKindDisplay(t *testing.T) {
	tests := map[string]string{
		SOAT:     "SOAT",
		TECNO:    "Tecnomecánica",
		SEGURO:   "Seguro",
		IMPUESTO: "Impuesto",
		OTRO:     "Otro",
	}
	for val, display := range tests {
		k, err := DocumentKindFromString(val)
		require.NoError(t, err)
		assert.Equal(t, display, k.Display())
	}

	_, err := DocumentKindFromString("LICENCIA")
	assert.ErrorIs(t, err, ErrInvalidKindValue)
}
