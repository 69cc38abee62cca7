package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/pkg/contracts/domain"
)

func TestMergeTables(t *testing.T) {
	a, err := domain.NewTable([]string{"Sales", "Region"}, [][]domain.Value{
		{domain.String("1"), domain.String("East")},
	})
	require.NoError(t, err)
	b, err := domain.NewTable([]string{"Region", "Profit"}, [][]domain.Value{
		{domain.String("West"), domain.String("5")},
		{domain.String("South"), domain.Missing()},
	})
	require.NoError(t, err)

	merged, err := MergeTables(a, b)
	require.NoError(t, err)

	assert.Equal(t, []string{"Sales", "Region", "Profit"}, merged.Columns())
	assert.Equal(t, 3, merged.Len())
	assert.True(t, merged.Get(0, "Profit").IsMissing())
	assert.True(t, merged.Get(1, "Sales").IsMissing())
	assert.Equal(t, "West", merged.Get(1, "Region").String())
	assert.Equal(t, "5", merged.Get(1, "Profit").String())
}

func TestMergeTablesEdgeCases(t *testing.T) {
	_, err := MergeTables()
	assert.ErrorIs(t, err, ErrNothingToMerge)

	single, err := domain.NewTable([]string{"A"}, [][]domain.Value{{domain.Number(1)}})
	require.NoError(t, err)
	got, err := MergeTables(single)
	require.NoError(t, err)
	assert.Same(t, single, got)
}
