package evaluation

import "fmt"

// Metric selects which scores a report shows.
type Metric string

const (
	MetricAll       Metric = "all"
	MetricPrecision Metric = "precision"
	MetricRecall    Metric = "recall"
	MetricF1        Metric = "f1"
)

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case MetricAll, MetricPrecision, MetricRecall, MetricF1:
		return m, nil
	}
	return "", fmt.Errorf("metric can only be all, precision, recall or f1; got %q", s)
}

// Value returns a single metric of the score. MetricAll yields F1.
func (s Score) Value(m Metric) float64 {
	switch m {
	case MetricPrecision:
		return s.Precision
	case MetricRecall:
		return s.Recall
	default:
		return s.F1
	}
}
