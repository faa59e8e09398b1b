package domain

// Column is one kanban column.
type Column[T any] struct {
	Stage string
	Items []T
	Count int
	// Sum adds the item values; missing values count as zero.
	Sum float64
}

// Board is a grouping in canonical stage order. Items whose stage is not in
// the order land in Unknown rather than in a column.
type Board[T any] struct {
	Columns []Column[T]
	Unknown []T
}

// GroupByStage builds a board with one column per stage in order, including
// empty columns. valueOf may be nil when there is nothing to sum.
func GroupByStage[T any](items []T, order []string, stageOf func(T) string, valueOf func(T) *float64) Board[T] {
	board := Board[T]{Columns: make([]Column[T], len(order))}
	index := make(map[string]int, len(order))
	for i, stage := range order {
		board.Columns[i] = Column[T]{Stage: stage, Items: []T{}}
		index[stage] = i
	}

	for _, item := range items {
		i, ok := index[stageOf(item)]
		if !ok {
			board.Unknown = append(board.Unknown, item)
			continue
		}
		col := &board.Columns[i]
		col.Items = append(col.Items, item)
		col.Count++
		if valueOf != nil {
			if v := valueOf(item); v != nil {
				col.Sum += *v
			}
		}
	}
	return board
}
