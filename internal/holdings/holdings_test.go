package holdings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/cryptoquery/internal/apperror"
	"github.com/fd1az/cryptoquery/internal/asset"
)

func TestParse_SortedAndCanonical(t *testing.T) {
	in := `{"eth": 2.5, "BTC": "0.1", "antv1": 10}`

	entries, err := Parse(strings.NewReader(in), asset.DefaultRegistry())
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, []string{"ANTv1", "BTC", "ETH"}, Symbols(entries))
	assert.True(t, entries[1].Quantity.Equal(decimal.RequireFromString("0.1")))
	assert.True(t, entries[2].Quantity.Equal(decimal.RequireFromString("2.5")))
}

func TestParse_MergesCaseVariants(t *testing.T) {
	entries, err := Parse(strings.NewReader(`{"btc": 1, "BTC": 2}`), asset.DefaultRegistry())
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.True(t, entries[0].Quantity.Equal(decimal.NewFromInt(3)))
}

func TestParse_UnknownSymbolKeptVerbatim(t *testing.T) {
	entries, err := Parse(strings.NewReader(`{"Foo": 1}`), asset.DefaultRegistry())
	require.NoError(t, err)
	assert.Equal(t, "Foo", entries[0].Symbol)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code apperror.Code
	}{
		{"not json", `BTC=1`, apperror.CodeHoldingsLoadFailed},
		{"array", `[1,2]`, apperror.CodeHoldingsLoadFailed},
		{"zero", `{"BTC": 0}`, apperror.CodeInvalidHolding},
		{"negative", `{"BTC": -1}`, apperror.CodeInvalidHolding},
		{"blank symbol", `{" ": 1}`, apperror.CodeInvalidHolding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in), nil)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperror.GetCode(err))
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holdings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"XRP": 100}`), 0o600))

	entries, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"XRP"}, Symbols(entries))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"), nil)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeHoldingsLoadFailed, apperror.GetCode(err))
}
