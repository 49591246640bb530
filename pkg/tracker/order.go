package tracker

import "fmt"

// OrderUpdate is one row of the batch emitted after a move: the issue's
// new order and (possibly unchanged) column.
type OrderUpdate struct {
	IssueID  uint
	ColumnID uint
	Order    int
}

// Move describes a drag-and-drop of a single issue between board positions.
type Move struct {
	IssueID    uint
	FromColumn uint
	FromIndex  int
	ToColumn   uint
	ToIndex    int
}

// ReconcileOrder recomputes the order of every issue in the columns touched
// by a move. columns maps column id to its issue ids in display order.
//
// It returns the minimal update batch: only the touched columns appear, and
// within each one the orders are exactly 0..n-1. Moving an issue onto its
// own position returns an empty batch.
func ReconcileOrder(columns map[uint][]uint, move Move) ([]OrderUpdate, error) {
	if move.FromColumn == move.ToColumn && move.FromIndex == move.ToIndex {
		return nil, nil
	}

	source, ok := columns[move.FromColumn]
	if !ok {
		return nil, fmt.Errorf("source column %d not on board", move.FromColumn)
	}
	dest, ok := columns[move.ToColumn]
	if !ok {
		return nil, fmt.Errorf("destination column %d not on board", move.ToColumn)
	}
	if move.FromIndex < 0 || move.FromIndex >= len(source) {
		return nil, fmt.Errorf("source index %d out of range", move.FromIndex)
	}
	if source[move.FromIndex] != move.IssueID {
		return nil, fmt.Errorf("issue %d not at source position", move.IssueID)
	}

	if move.FromColumn == move.ToColumn {
		if move.ToIndex < 0 || move.ToIndex >= len(source) {
			return nil, fmt.Errorf("destination index %d out of range", move.ToIndex)
		}
		reordered := spliceMove(source, move.FromIndex, move.ToIndex)
		return renumber(move.FromColumn, reordered), nil
	}

	if move.ToIndex < 0 || move.ToIndex > len(dest) {
		return nil, fmt.Errorf("destination index %d out of range", move.ToIndex)
	}

	newSource := make([]uint, 0, len(source)-1)
	newSource = append(newSource, source[:move.FromIndex]...)
	newSource = append(newSource, source[move.FromIndex+1:]...)

	newDest := make([]uint, 0, len(dest)+1)
	newDest = append(newDest, dest[:move.ToIndex]...)
	newDest = append(newDest, move.IssueID)
	newDest = append(newDest, dest[move.ToIndex:]...)

	batch := renumber(move.FromColumn, newSource)
	batch = append(batch, renumber(move.ToColumn, newDest)...)
	return batch, nil
}

func spliceMove(ids []uint, from, to int) []uint {
	out := make([]uint, 0, len(ids))
	out = append(out, ids[:from]...)
	out = append(out, ids[from+1:]...)
	tail := append([]uint{ids[from]}, out[to:]...)
	return append(out[:to:to], tail...)
}

func renumber(columnID uint, ids []uint) []OrderUpdate {
	updates := make([]OrderUpdate, len(ids))
	for i, id := range ids {
		updates[i] = OrderUpdate{IssueID: id, ColumnID: columnID, Order: i}
	}
	return updates
}
