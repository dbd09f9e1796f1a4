package tagger

import "fmt"

// Memorization remembers the last label seen for each word feature. Words
// never seen in training get the majority label.
type Memorization struct {
	Memo     map[string]int `json:"memo"`
	Fallback int            `json:"fallback"`
	fitted   bool
}

// Kind implements Classifier.
func (m *Memorization) Kind() string { return KindMemo }

// Fit implements Classifier.
func (m *Memorization) Fit(x []Features, y []int) error {
	if err := checkFit(x, y); err != nil {
		return err
	}
	m.Memo = make(map[string]int)
	for i, f := range x {
		if key, ok := memoKey(f); ok {
			m.Memo[key] = y[i]
		}
	}
	m.Fallback, _ = majority(y)
	m.fitted = true
	return nil
}

// Predict implements Classifier.
func (m *Memorization) Predict(x []Features) ([]int, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	out := make([]int, len(x))
	for i, f := range x {
		out[i] = m.Fallback
		if key, ok := memoKey(f); ok {
			if label, seen := m.Memo[key]; seen {
				out[i] = label
			}
		}
	}
	return out, nil
}

func (m *Memorization) restored() { m.fitted = true }

func memoKey(f Features) (string, bool) {
	v, ok := f[featureWord]
	if !ok {
		return "", false
	}
	return fmt.Sprint(v), true
}
