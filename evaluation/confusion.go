package evaluation

// ConfusionMatrix counts reference/hypothesis co-occurrences over the sorted
// reference tags. Rows are reference tags, columns hypothesis tags.
type ConfusionMatrix struct {
	Labels []string `json:"labels"`
	Counts [][]int  `json:"counts"`
	// Other counts, per row, predictions of tags outside Labels.
	Other []int `json:"other"`
}

func newConfusionMatrix(labels []string, pairs map[[2]string]int) *ConfusionMatrix {
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	m := &ConfusionMatrix{
		Labels: labels,
		Counts: make([][]int, len(labels)),
		Other:  make([]int, len(labels)),
	}
	for i := range m.Counts {
		m.Counts[i] = make([]int, len(labels))
	}
	for pair, n := range pairs {
		row, ok := index[pair[0]]
		if !ok {
			continue
		}
		if col, ok := index[pair[1]]; ok {
			m.Counts[row][col] += n
		} else {
			m.Other[row] += n
		}
	}
	return m
}

// Cell returns the number of tokens with reference tag ref predicted as hyp.
func (m *ConfusionMatrix) Cell(ref, hyp string) int {
	row, col := m.indexOf(ref), m.indexOf(hyp)
	if row < 0 || col < 0 {
		return 0
	}
	return m.Counts[row][col]
}

// RowTotal returns the support of the reference tag at row i.
func (m *ConfusionMatrix) RowTotal(i int) int {
	total := m.Other[i]
	for _, n := range m.Counts[i] {
		total += n
	}
	return total
}

func (m *ConfusionMatrix) indexOf(label string) int {
	for i, l := range m.Labels {
		if l == label {
			return i
		}
	}
	return -1
}
