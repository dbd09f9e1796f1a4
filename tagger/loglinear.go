package tagger

import (
	"log/slog"
	"math"

	"github.com/happyhackingspace/nertag/internal/vectorizer"
)

// LogLinearConfig holds training settings for LogLinear.
type LogLinearConfig struct {
	// C is the inverse L2 regularization strength.
	C       float64 `json:"c"`
	MaxIter int     `json:"max_iter"`
	// History is the number of L-BFGS correction pairs kept.
	History int `json:"history"`
	// Tolerance stops training once the largest gradient component falls
	// below it.
	Tolerance float64 `json:"tolerance"`
	// Progress, when set, is called after every iteration.
	Progress func(iter int, loss float64) `json:"-"`
}

// DefaultLogLinearConfig returns default training config.
func DefaultLogLinearConfig() LogLinearConfig {
	return LogLinearConfig{
		C:         5.0,
		MaxIter:   100,
		History:   10,
		Tolerance: 1e-5,
	}
}

// LogLinear is a multinomial logistic regression classifier trained with
// L-BFGS.
type LogLinear struct {
	Config     LogLinearConfig            `json:"config"`
	Vectorizer *vectorizer.DictVectorizer `json:"vectorizer"`
	Labels     []int                      `json:"labels"`
	Coef       [][]float64                `json:"coef"`      // [numClasses][numFeatures]
	Intercept  []float64                  `json:"intercept"` // [numClasses]
	Iterations int                        `json:"iterations"`
}

// NewLogLinear returns an unfitted LogLinear classifier.
func NewLogLinear(config LogLinearConfig) *LogLinear {
	return &LogLinear{Config: config}
}

// Kind implements Classifier.
func (m *LogLinear) Kind() string { return KindLogLinear }

// Fit implements Classifier.
func (m *LogLinear) Fit(x []Features, y []int) error {
	if err := checkFit(x, y); err != nil {
		return err
	}

	dv := vectorizer.NewDictVectorizer()
	xData := dv.FitTransform(featureMaps(x))
	m.Vectorizer = dv

	classOf := make(map[int]int)
	m.Labels = nil
	for _, label := range y {
		if _, ok := classOf[label]; !ok {
			classOf[label] = len(m.Labels)
			m.Labels = append(m.Labels, label)
		}
	}
	classes := make([]int, len(y))
	for j, label := range y {
		classes[j] = classOf[label]
	}

	reg := m.Config.C
	if reg <= 0 {
		reg = 5.0
	}
	history := m.Config.History
	if history <= 0 {
		history = 10
	}

	numClasses := len(m.Labels)
	totalDim := dv.VocabSize()
	numParams := numClasses * (totalDim + 1)
	params := make([]float64, numParams)

	lbfgs := newLogRegLBFGS(history)
	loss, grad := logRegObjective(xData, classes, params, numClasses, totalDim, reg)
	m.Iterations = 0
	for iter := range m.Config.MaxIter {
		dir := lbfgs.computeDirection(grad, numParams)
		step := logRegLineSearch(xData, classes, params, dir, numClasses, totalDim, reg, loss)
		if step == 0 {
			break
		}

		prevParams := make([]float64, numParams)
		copy(prevParams, params)
		for i := range numParams {
			params[i] += step * dir[i]
		}

		newLoss, newGrad := logRegObjective(xData, classes, params, numClasses, totalDim, reg)
		s := make([]float64, numParams)
		yVec := make([]float64, numParams)
		for i := range numParams {
			s[i] = params[i] - prevParams[i]
			yVec[i] = newGrad[i] - grad[i]
		}
		lbfgs.update(s, yVec)
		loss, grad = newLoss, newGrad
		m.Iterations = iter + 1

		if iter%10 == 0 {
			slog.Debug("loglinear", "iter", iter, "loss", loss)
		}
		if m.Config.Progress != nil {
			m.Config.Progress(iter, loss)
		}

		maxGrad := 0.0
		for _, g := range grad {
			maxGrad = math.Max(maxGrad, math.Abs(g))
		}
		if maxGrad < m.Config.Tolerance {
			break
		}
	}

	m.Coef = make([][]float64, numClasses)
	m.Intercept = make([]float64, numClasses)
	for c := range numClasses {
		m.Coef[c] = make([]float64, totalDim)
		offset := c * (totalDim + 1)
		copy(m.Coef[c], params[offset:offset+totalDim])
		m.Intercept[c] = params[offset+totalDim]
	}
	return nil
}

// Predict implements Classifier.
func (m *LogLinear) Predict(x []Features) ([]int, error) {
	if m.Vectorizer == nil || len(m.Labels) == 0 {
		return nil, ErrNotFitted
	}
	out := make([]int, len(x))
	for i, f := range x {
		probs := m.proba(f)
		best := 0
		for k := range probs {
			if probs[k] > probs[best] {
				best = k
			}
		}
		out[i] = m.Labels[best]
	}
	return out, nil
}

func (m *LogLinear) proba(f Features) []float64 {
	sv := m.Vectorizer.Transform(f)
	logits := make([]float64, len(m.Labels))
	for k := range logits {
		logits[k] = sv.Dot(m.Coef[k]) + m.Intercept[k]
	}
	return softmax(logits)
}

func featureMaps(x []Features) []map[string]any {
	out := make([]map[string]any, len(x))
	for i, f := range x {
		out[i] = f
	}
	return out
}

func logRegObjective(x []vectorizer.SparseVector, y []int, params []float64, numClasses, totalDim int, c float64) (float64, []float64) {
	grad := make([]float64, len(params))
	loss := 0.0
	logits := make([]float64, numClasses)

	for j := range x {
		for k := range numClasses {
			offset := k * (totalDim + 1)
			logits[k] = x[j].Dot(params[offset:offset+totalDim]) + params[offset+totalDim]
		}

		probs := softmax(logits)

		if probs[y[j]] > 0 {
			loss -= math.Log(probs[y[j]])
		} else {
			loss += 100
		}

		for k := range numClasses {
			offset := k * (totalDim + 1)
			diff := probs[k]
			if k == y[j] {
				diff -= 1.0
			}
			x[j].AddTo(grad[offset:offset+totalDim], diff)
			grad[offset+totalDim] += diff
		}
	}

	regCoeff := 1.0 / c
	for k := range numClasses {
		offset := k * (totalDim + 1)
		for i := range totalDim {
			loss += 0.5 * regCoeff * params[offset+i] * params[offset+i]
			grad[offset+i] += regCoeff * params[offset+i]
		}
	}

	return loss, grad
}

// logRegLineSearch halves the step until the loss decreases. It returns 0
// when no step within 20 halvings improves the loss.
func logRegLineSearch(x []vectorizer.SparseVector, y []int, params, dir []float64, numClasses, totalDim int, c, currentLoss float64) float64 {
	step := 1.0
	n := len(params)
	wNew := make([]float64, n)

	for range 20 {
		for i := range n {
			wNew[i] = params[i] + step*dir[i]
		}
		newLoss, _ := logRegObjective(x, y, wNew, numClasses, totalDim, c)
		if newLoss < currentLoss {
			return step
		}
		step *= 0.5
	}
	return 0
}

func softmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, l := range logits[1:] {
		if l > maxLogit {
			maxLogit = l
		}
	}
	probs := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		probs[i] = math.Exp(l - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

type logRegLBFGS struct {
	m    int
	s    [][]float64
	y    [][]float64
	rho  []float64
	k    int
	size int
}

func newLogRegLBFGS(m int) *logRegLBFGS {
	return &logRegLBFGS{
		m:   m,
		s:   make([][]float64, m),
		y:   make([][]float64, m),
		rho: make([]float64, m),
	}
}

func (l *logRegLBFGS) update(s, y []float64) {
	sy := dot(s, y)
	if sy <= 0 {
		return
	}
	idx := l.k % l.m
	l.s[idx] = s
	l.y[idx] = y
	l.rho[idx] = 1.0 / sy
	l.k++
	if l.size < l.m {
		l.size++
	}
}

// slot maps the i-th stored pair, oldest first, to its ring index.
func (l *logRegLBFGS) slot(i int) int {
	return (l.k - l.size + i) % l.m
}

func (l *logRegLBFGS) computeDirection(grad []float64, n int) []float64 {
	q := make([]float64, n)
	copy(q, grad)

	if l.size == 0 {
		for i := range q {
			q[i] = -q[i]
		}
		return q
	}

	alpha := make([]float64, l.size)
	for i := l.size - 1; i >= 0; i-- {
		idx := l.slot(i)
		a := l.rho[idx] * dot(l.s[idx], q)
		alpha[i] = a
		for j := range n {
			q[j] -= a * l.y[idx][j]
		}
	}

	latest := l.slot(l.size - 1)
	if yy := dot(l.y[latest], l.y[latest]); yy > 0 {
		gamma := dot(l.s[latest], l.y[latest]) / yy
		for i := range q {
			q[i] *= gamma
		}
	}

	for i := range l.size {
		idx := l.slot(i)
		beta := l.rho[idx] * dot(l.y[idx], q)
		for j := range n {
			q[j] += (alpha[i] - beta) * l.s[idx][j]
		}
	}

	for i := range q {
		q[i] = -q[i]
	}
	return q
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
