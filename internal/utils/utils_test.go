package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMentionIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "plain mention", content: "pay <@123456789012345678> now", want: []string{"123456789012345678"}},
		{name: "nickname mention", content: "<@!42> owes <@7>", want: []string{"42", "7"}},
		{name: "no mentions", content: "nothing here", want: nil},
		{name: "mixed text", content: "!bill\n<@1>\n100 dinner <@2> <@3>", want: []string{"1", "2", "3"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ExtractMentionIDs(tc.content))
		})
	}
}

func TestExtractTxID(t *testing.T) {
	t.Parallel()

	id, ok := ExtractTxID("กรุณาชำระ 100.00 บาท (TxID: 57)")
	require.True(t, ok)
	assert.Equal(t, 57, id)

	_, ok = ExtractTxID("no id in here")
	assert.False(t, ok)
}

func TestExtractTxIDs(t *testing.T) {
	t.Parallel()

	ids, ok := ExtractTxIDs("ยอดรวม 350.00 บาท (TxIDs: 3,17, 29)")
	require.True(t, ok)
	assert.Equal(t, []int{3, 17, 29}, ids)

	_, ok = ExtractTxIDs("(TxID: 5)")
	assert.False(t, ok)
}

func TestExtractSettlePayID(t *testing.T) {
	t.Parallel()

	id, ok := ExtractSettlePayID("เคลียร์หนี้รอบนี้ (SettlePayID: 9)")
	require.True(t, ok)
	assert.Equal(t, 9, id)

	_, ok = ExtractSettlePayID("(TxID: 9)")
	assert.False(t, ok)
}

func TestIsValidPromptPayID(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidPromptPayID("0812345678"))
	assert.True(t, IsValidPromptPayID("1234567890123"))
	assert.True(t, IsValidPromptPayID("ewallet-12345"))
	assert.False(t, IsValidPromptPayID("081-234-5678"))
	assert.False(t, IsValidPromptPayID("12345"))
	assert.False(t, IsValidPromptPayID(""))
}

func TestFormatNumberWithCommas(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		num  float64
		want string
	}{
		{name: "small", num: 5, want: "5.00"},
		{name: "hundreds", num: 750.5, want: "750.50"},
		{name: "thousands", num: 2320, want: "2,320.00"},
		{name: "millions", num: 1234567.89, want: "1,234,567.89"},
		{name: "negative", num: -2320, want: "-2,320.00"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, FormatNumberWithCommas(tc.num))
		})
	}
}
