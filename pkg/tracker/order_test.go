package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileOrderAcrossColumns(t *testing.T) {
	// Column 1 holds [10,20,30]; drag 30 to the head of empty column 2.
	columns := map[uint][]uint{
		1: {10, 20, 30},
		2: {},
	}
	batch, err := ReconcileOrder(columns, Move{
		IssueID:    30,
		FromColumn: 1, FromIndex: 2,
		ToColumn: 2, ToIndex: 0,
	})
	require.NoError(t, err)

	assert.Equal(t, []OrderUpdate{
		{IssueID: 10, ColumnID: 1, Order: 0},
		{IssueID: 20, ColumnID: 1, Order: 1},
		{IssueID: 30, ColumnID: 2, Order: 0},
	}, batch)
}

func TestReconcileOrderWithinColumn(t *testing.T) {
	columns := map[uint][]uint{
		1: {10, 20, 30, 40},
	}
	batch, err := ReconcileOrder(columns, Move{
		IssueID:    40,
		FromColumn: 1, FromIndex: 3,
		ToColumn: 1, ToIndex: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, []OrderUpdate{
		{IssueID: 10, ColumnID: 1, Order: 0},
		{IssueID: 40, ColumnID: 1, Order: 1},
		{IssueID: 20, ColumnID: 1, Order: 2},
		{IssueID: 30, ColumnID: 1, Order: 3},
	}, batch)
}

func TestReconcileOrderSamePositionIsNoop(t *testing.T) {
	columns := map[uint][]uint{1: {10, 20}}
	batch, err := ReconcileOrder(columns, Move{
		IssueID:    20,
		FromColumn: 1, FromIndex: 1,
		ToColumn: 1, ToIndex: 1,
	})
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestReconcileOrderIntoMiddle(t *testing.T) {
	columns := map[uint][]uint{
		1: {10, 20},
		2: {30, 40, 50},
	}
	batch, err := ReconcileOrder(columns, Move{
		IssueID:    10,
		FromColumn: 1, FromIndex: 0,
		ToColumn: 2, ToIndex: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, []OrderUpdate{
		{IssueID: 20, ColumnID: 1, Order: 0},
		{IssueID: 30, ColumnID: 2, Order: 0},
		{IssueID: 10, ColumnID: 2, Order: 1},
		{IssueID: 40, ColumnID: 2, Order: 2},
		{IssueID: 50, ColumnID: 2, Order: 3},
	}, batch)
}

func TestReconcileOrderAppendsAtEnd(t *testing.T) {
	columns := map[uint][]uint{
		1: {10},
		2: {20, 30},
	}
	batch, err := ReconcileOrder(columns, Move{
		IssueID:    10,
		FromColumn: 1, FromIndex: 0,
		ToColumn: 2, ToIndex: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, []OrderUpdate{
		{IssueID: 20, ColumnID: 2, Order: 0},
		{IssueID: 30, ColumnID: 2, Order: 1},
		{IssueID: 10, ColumnID: 2, Order: 2},
	}, batch)
}

func TestReconcileOrderDense(t *testing.T) {
	// Post-condition: every touched column ends up with orders 0..n-1.
	columns := map[uint][]uint{
		1: {1, 2, 3, 4, 5},
		2: {6, 7},
	}
	batch, err := ReconcileOrder(columns, Move{
		IssueID:    3,
		FromColumn: 1, FromIndex: 2,
		ToColumn: 2, ToIndex: 1,
	})
	require.NoError(t, err)

	perColumn := map[uint][]int{}
	for _, u := range batch {
		perColumn[u.ColumnID] = append(perColumn[u.ColumnID], u.Order)
	}
	require.Len(t, perColumn, 2)
	assert.Equal(t, []int{0, 1, 2, 3}, perColumn[1])
	assert.Equal(t, []int{0, 1, 2}, perColumn[2])
}

func TestReconcileOrderRejectsBadInput(t *testing.T) {
	columns := map[uint][]uint{1: {10, 20}}

	_, err := ReconcileOrder(columns, Move{IssueID: 10, FromColumn: 9, FromIndex: 0, ToColumn: 1, ToIndex: 0})
	assert.Error(t, err)

	_, err = ReconcileOrder(columns, Move{IssueID: 10, FromColumn: 1, FromIndex: 5, ToColumn: 1, ToIndex: 0})
	assert.Error(t, err)

	_, err = ReconcileOrder(columns, Move{IssueID: 99, FromColumn: 1, FromIndex: 0, ToColumn: 1, ToIndex: 1})
	assert.Error(t, err)

	_, err = ReconcileOrder(columns, Move{IssueID: 10, FromColumn: 1, FromIndex: 0, ToColumn: 1, ToIndex: 7})
	assert.Error(t, err)
}
