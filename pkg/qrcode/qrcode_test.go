package qrcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountFromEMVPayload(t *testing.T) {
	fullPayload := "000201" + "010211" +
		"29370016A00000067701011101130066812345678" +
		"5303764" + "540542.50" + "5802TH" + "6304ABCD"

	tests := []struct {
		name       string
		payload    string
		wantAmount float64
		wantOK     bool
	}{
		{
			name:       "full promptpay payload",
			payload:    fullPayload,
			wantAmount: 42.50,
			wantOK:     true,
		},
		{
			name:       "integer amount",
			payload:    "000201" + "5403100",
			wantAmount: 100,
			wantOK:     true,
		},
		{
			name:    "no amount tag",
			payload: "000201" + "010211" + "5802TH",
			wantOK:  false,
		},
		{
			name:    "length field not numeric",
			payload: "00xx01",
			wantOK:  false,
		},
		{
			name:    "value truncated",
			payload: "540542.",
			wantOK:  false,
		},
		{
			name:    "empty payload",
			payload: "",
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			amount, ok := AmountFromEMVPayload(tt.payload)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.wantAmount, amount, 0.001)
			}
		})
	}
}

func TestGenerateAndDecodeRoundTrip(t *testing.T) {
	filename, err := Generate("0812345678", 42.5)
	require.NoError(t, err)
	t.Cleanup(func() { Remove(filename) })

	payload, err := DecodeFile(filename)
	require.NoError(t, err)

	amount, ok := AmountFromEMVPayload(payload)
	require.True(t, ok, "generated payload should carry an amount tag")
	assert.InDelta(t, 42.5, amount, 0.001)
}
