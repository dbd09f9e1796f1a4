package evaluation

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// WriteReport writes one row per reference tag, then the predicted-only tags,
// then the overall and macro rows.
func WriteReport(w io.Writer, r *Result, m Metric) error {
	var b strings.Builder
	if m == MetricAll {
		fmt.Fprintf(&b, "%10s  %6s  %6s  %6s  %7s\n", "tag", "prec", "recall", "f1", "support")
	} else {
		fmt.Fprintf(&b, "%10s  %6s  %7s\n", "tag", string(m), "support")
	}
	row := func(name string, s Score) {
		if m == MetricAll {
			fmt.Fprintf(&b, "%10s  %6.2f  %6.2f  %6.2f  %7d\n", name, s.Precision, s.Recall, s.F1, s.Support)
		} else {
			fmt.Fprintf(&b, "%10s  %6.2f  %7d\n", name, s.Value(m), s.Support)
		}
	}
	for _, tag := range r.Tags {
		row(tag, r.Scores[tag])
	}
	for _, tag := range r.predictedOnly() {
		row(tag, r.Scores[tag])
	}
	row(Overall, r.Scores[Overall])
	row("macro", r.Macro)
	fmt.Fprintf(&b, "\nAccuracy: %.1f%% (%d/%d)\n", r.Accuracy()*100, r.Correct, r.Total)
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteConfusion renders the confusion matrix as a grid labeled by tag.
func WriteConfusion(w io.Writer, r *Result) error {
	cm := r.Confusion
	if cm == nil || len(cm.Labels) == 0 {
		return nil
	}
	width := 5
	for _, l := range cm.Labels {
		width = max(width, len(l))
	}

	var b strings.Builder
	b.WriteString("Confusion matrix (rows=reference, cols=hypothesis):\n")
	fmt.Fprintf(&b, "%*s", width, "")
	for _, l := range cm.Labels {
		fmt.Fprintf(&b, " %*s", width, l)
	}
	fmt.Fprintf(&b, " %*s  total  acc%%\n", width, "other")

	for i, l := range cm.Labels {
		fmt.Fprintf(&b, "%*s", width, l)
		for _, n := range cm.Counts[i] {
			if n == 0 {
				fmt.Fprintf(&b, " %*s", width, ".")
			} else {
				fmt.Fprintf(&b, " %*d", width, n)
			}
		}
		fmt.Fprintf(&b, " %*d", width, cm.Other[i])
		total := cm.RowTotal(i)
		acc := 0.0
		if total > 0 {
			acc = float64(cm.Counts[i][i]) / float64(total) * 100
		}
		fmt.Fprintf(&b, "  %5d %5.1f\n", total, acc)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteMismatches lists every misaligned position.
func WriteMismatches(w io.Writer, mismatches []Mismatch) error {
	var b strings.Builder
	for _, mm := range mismatches {
		fmt.Fprintf(&b, "Wrong tag: %-20s\t%-20s\t%-5s\t%-5s\n",
			mm.ReferenceWord, mm.HypothesisWord, mm.ReferenceTag, mm.HypothesisTag)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Result) predictedOnly() []string {
	var out []string
	for tag, s := range r.Scores {
		if tag != Overall && s.Support == 0 {
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}
