// Package evaluation scores a hypothesis tagging against a reference with
// per-tag and aggregate precision, recall and F1, and a confusion matrix.
package evaluation

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/happyhackingspace/nertag/corpus"
)

// Overall is the reserved key holding the support-weighted aggregate. No
// tag may use it.
const Overall = "overall"

// ErrReservedTag is returned when a tag collides with Overall.
var ErrReservedTag = errors.New("tag uses reserved name " + Overall)

// ErrLengthMismatch is returned when reference and hypothesis differ in length.
var ErrLengthMismatch = errors.New("length mismatch")

// LengthMismatchError reports the two lengths.
type LengthMismatchError struct {
	Reference  int
	Hypothesis int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%v: reference has %d tokens, hypothesis has %d", ErrLengthMismatch, e.Reference, e.Hypothesis)
}

func (e *LengthMismatchError) Unwrap() error {
	return ErrLengthMismatch
}

// Score holds the metrics of one tag or aggregate.
type Score struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	// Support is the number of reference tokens carrying the tag.
	Support int `json:"support"`
}

// Mismatch is a position where reference and hypothesis disagree.
type Mismatch struct {
	Index          int    `json:"index"`
	ReferenceWord  string `json:"reference_word,omitempty"`
	HypothesisWord string `json:"hypothesis_word,omitempty"`
	ReferenceTag   string `json:"reference_tag"`
	HypothesisTag  string `json:"hypothesis_tag"`
}

// Result is the outcome of one evaluation. It is not modified after being
// returned.
type Result struct {
	// Tags lists the distinct reference tags, sorted.
	Tags []string `json:"tags"`
	// Scores is keyed by tag and by Overall. Tags predicted but absent from
	// the reference get an entry with zero support.
	Scores map[string]Score `json:"scores"`
	// Macro is the unweighted mean over reference tags.
	Macro     Score            `json:"macro"`
	Confusion *ConfusionMatrix `json:"confusion"`
	Total     int              `json:"total"`
	Correct   int              `json:"correct"`

	Mismatches []Mismatch `json:"mismatches,omitempty"`
}

// Precision returns the per-tag and overall precision.
func (r *Result) Precision() map[string]float64 { return r.project(MetricPrecision) }

// Recall returns the per-tag and overall recall.
func (r *Result) Recall() map[string]float64 { return r.project(MetricRecall) }

// F1 returns the per-tag and overall F1.
func (r *Result) F1() map[string]float64 { return r.project(MetricF1) }

func (r *Result) project(m Metric) map[string]float64 {
	out := make(map[string]float64, len(r.Scores))
	for tag, s := range r.Scores {
		out[tag] = s.Value(m)
	}
	return out
}

// Accuracy returns the fraction of positions tagged correctly.
func (r *Result) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// Config controls optional outputs of an evaluation.
type Config struct {
	// RecordMismatches fills Result.Mismatches.
	RecordMismatches bool
}

// Evaluate compares two aligned tag sequences.
func Evaluate(reference, hypothesis []string, config Config) (*Result, error) {
	if len(reference) != len(hypothesis) {
		return nil, &LengthMismatchError{Reference: len(reference), Hypothesis: len(hypothesis)}
	}
	return evaluate(len(reference), func(i int) (string, string, string, string) {
		return reference[i], hypothesis[i], "", ""
	}, config)
}

// EvaluatePairs compares two aligned token sequences. Words are only used to
// describe mismatches.
func EvaluatePairs(reference, hypothesis []corpus.WordTagPair, config Config) (*Result, error) {
	if len(reference) != len(hypothesis) {
		return nil, &LengthMismatchError{Reference: len(reference), Hypothesis: len(hypothesis)}
	}
	return evaluate(len(reference), func(i int) (string, string, string, string) {
		return reference[i].Tag, hypothesis[i].Tag, reference[i].Word, hypothesis[i].Word
	}, config)
}

func evaluate(n int, at func(i int) (refTag, hypTag, refWord, hypWord string), config Config) (*Result, error) {
	for i := range n {
		if ref, hyp, _, _ := at(i); ref == Overall || hyp == Overall {
			return nil, fmt.Errorf("token %d: %w", i, ErrReservedTag)
		}
	}

	refCount := make(map[string]int)
	hypCount := make(map[string]int)
	truePos := make(map[string]int)
	pairs := make(map[[2]string]int)

	result := &Result{Total: n}
	for i := range n {
		ref, hyp, refWord, hypWord := at(i)
		refCount[ref]++
		hypCount[hyp]++
		pairs[[2]string{ref, hyp}]++
		if ref == hyp {
			truePos[ref]++
			result.Correct++
		} else if config.RecordMismatches {
			result.Mismatches = append(result.Mismatches, Mismatch{
				Index:          i,
				ReferenceWord:  refWord,
				HypothesisWord: hypWord,
				ReferenceTag:   ref,
				HypothesisTag:  hyp,
			})
		}
	}

	result.Tags = sortedKeys(refCount)
	result.Scores = make(map[string]Score, len(refCount)+1)
	for _, tag := range result.Tags {
		result.Scores[tag] = tagScore(tag, truePos[tag], hypCount[tag], refCount[tag])
	}
	for _, tag := range sortedKeys(hypCount) {
		if _, ok := refCount[tag]; !ok {
			slog.Debug("Tag absent from reference, recall undefined", "tag", tag)
			result.Scores[tag] = Score{}
		}
	}

	result.Scores[Overall] = weightedAverage(result.Tags, result.Scores, n)
	result.Macro = macroAverage(result.Tags, result.Scores)
	result.Confusion = newConfusionMatrix(result.Tags, pairs)
	return result, nil
}

func tagScore(tag string, tp, predicted, support int) Score {
	s := Score{Support: support}
	if predicted > 0 {
		s.Precision = float64(tp) / float64(predicted)
	} else {
		slog.Debug("Tag never predicted, precision undefined", "tag", tag)
	}
	if support > 0 {
		s.Recall = float64(tp) / float64(support)
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}

func weightedAverage(tags []string, scores map[string]Score, total int) Score {
	avg := Score{Support: total}
	if total == 0 {
		return avg
	}
	for _, tag := range tags {
		s := scores[tag]
		w := float64(s.Support) / float64(total)
		avg.Precision += w * s.Precision
		avg.Recall += w * s.Recall
		avg.F1 += w * s.F1
	}
	return avg
}

func macroAverage(tags []string, scores map[string]Score) Score {
	var avg Score
	if len(tags) == 0 {
		return avg
	}
	for _, tag := range tags {
		s := scores[tag]
		avg.Precision += s.Precision
		avg.Recall += s.Recall
		avg.F1 += s.F1
		avg.Support += s.Support
	}
	n := float64(len(tags))
	avg.Precision /= n
	avg.Recall /= n
	avg.F1 /= n
	return avg
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
