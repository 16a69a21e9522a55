package utils_test

import (
	"testing"

	"github.com/jrsteele09/go-ems-server/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id, err := utils.ParseID(" 42 ")
	require.NoError(t, err)
	require.Equal(t, int64(42), id)

	_, err = utils.ParseID("0")
	require.Error(t, err)

	_, err = utils.ParseID("abc")
	require.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := utils.ParseDate("2024-02-29")
	require.NoError(t, err)
	require.Equal(t, "2024-02-29", d)

	_, err = utils.ParseDate("2023-02-29")
	require.Error(t, err)

	_, err = utils.ParseDate("29/02/2024")
	require.Error(t, err)
}

func TestRound2(t *testing.T) {
	require.Equal(t, 9.0, utils.Round2(9))
	require.Equal(t, 1.33, utils.Round2(4.0/3.0))
	require.Equal(t, 8.75, utils.Round2(31500.0/3600.0))
}

func TestToStringSlice(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, utils.ToStringSlice([]any{"a", 1, "b", nil}))
}
