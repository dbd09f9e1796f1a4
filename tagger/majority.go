package tagger

// Majority predicts the most frequent training label for every token.
type Majority struct {
	Label  int         `json:"label"`
	Counts map[int]int `json:"counts"`
	fitted bool
}

// Kind implements Classifier.
func (m *Majority) Kind() string { return KindMajority }

// Fit implements Classifier. Ties go to the label seen first.
func (m *Majority) Fit(x []Features, y []int) error {
	if err := checkFit(x, y); err != nil {
		return err
	}
	m.Label, m.Counts = majority(y)
	m.fitted = true
	return nil
}

// Predict implements Classifier.
func (m *Majority) Predict(x []Features) ([]int, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	out := make([]int, len(x))
	for i := range out {
		out[i] = m.Label
	}
	return out, nil
}

func (m *Majority) restored() { m.fitted = true }

func majority(y []int) (int, map[int]int) {
	counts := make(map[int]int)
	var order []int
	for _, label := range y {
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}
	best := order[0]
	for _, label := range order[1:] {
		if counts[label] > counts[best] {
			best = label
		}
	}
	return best, counts
}
