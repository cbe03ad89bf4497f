package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeThemes(t *testing.T) {
	assert.Equal(t, "This course belongs to theme A.", DescribeThemes([]string{"A"}))
	assert.Equal(t, "This course belongs to themes A, B.", DescribeThemes([]string{"A", "B"}))
	assert.Equal(t, NoTheme, DescribeThemes(nil))
}

func TestParseThemes(t *testing.T) {
	tests := []struct {
		payload string
		want    []string
	}{
		{`["A"]`, []string{"A"}},
		{`["A", "B"]`, []string{"A", "B"}},
		{`['Creative Expression', 'Global Citizenship']`, []string{"Creative Expression", "Global Citizenship"}},
		{`[1, 2]`, []string{"1", "2"}},
		{`['It\'s', "x"]`, []string{"It's", "x"}},
		{`('A',)`, []string{"A"}},
		{`[]`, []string{}},
		{`  `, nil},
	}
	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			got, err := ParseThemes(tt.payload)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), len(got))
			for i := range tt.want {
				assert.Equal(t, tt.want[i], got[i])
			}
		})
	}
}

func TestParseThemes_Malformed(t *testing.T) {
	for _, payload := range []string{`A`, `['A'`, `['A' 'B']`, `[{"a": 1}]`, `['A'] extra`, `[abc]`} {
		t.Run(payload, func(t *testing.T) {
			_, err := ParseThemes(payload)
			assert.Error(t, err)
		})
	}
}

func TestDescribeRecordThemes_DataFormatError(t *testing.T) {
	payload := "Creative Expression"
	_, err := describeRecordThemes(3, &payload)

	var dfe *DataFormatError
	require.True(t, errors.As(err, &dfe))
	assert.Equal(t, 3, dfe.Record)
	assert.Equal(t, ColumnThemes, dfe.Field)
	assert.ErrorIs(t, err, ErrDataFormat)
}
