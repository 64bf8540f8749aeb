package dataset

import (
	"math/rand"
	"strings"

	"github.com/Tutortoise/gerald-loader/labels"
	"github.com/Tutortoise/gerald-loader/models"

	"github.com/pkg/errors"
)

const (
	SubsetAll   = "all"
	SubsetTrain = "train"
	SubsetVal   = "val"
	SubsetTest  = "test"

	valPrefix = "val_"
)

type subset struct {
	stems       []string
	annotations []*models.Annotation
}

func (s *subset) filter(keep func(*models.Annotation) bool) {
	var stems []string
	var annotations []*models.Annotation
	for i, an := range s.annotations {
		if keep(an) {
			stems = append(stems, s.stems[i])
			annotations = append(annotations, an)
		}
	}
	s.stems = stems
	s.annotations = annotations
}

// selectSubset resolves a subset name against the table. Names are
// all, train, val, test, a weather or light condition, or val_<condition>.
func selectSubset(t *Table, name string, nTrain, nTest int, rng *rand.Rand) (subset, error) {
	if nTrain > t.Len() {
		nTrain = t.Len()
	}
	full := subset{stems: t.Stems, annotations: t.Annotations}
	val := subset{stems: t.Stems[nTrain:], annotations: t.Annotations[nTrain:]}

	switch name {
	case SubsetAll:
		return full, nil
	case SubsetTrain:
		return subset{stems: t.Stems[:nTrain], annotations: t.Annotations[:nTrain]}, nil
	case SubsetVal:
		return val, nil
	case SubsetTest:
		return drawWithReplacement(full, nTest, rng), nil
	}

	base := full
	cond := name
	if strings.HasPrefix(name, valPrefix) {
		base = val
		cond = strings.TrimPrefix(name, valPrefix)
	}

	keep, ok := conditionFilter(cond)
	if !ok {
		return subset{}, errors.Wrapf(ErrInvalidSubsetName, "subset %q", name)
	}
	base.filter(keep)
	return base, nil
}

// conditionFilter matches the lower-case weather names first, so "unknown"
// selects images with unknown weather.
func conditionFilter(name string) (func(*models.Annotation) bool, bool) {
	for _, w := range labels.AllWeather() {
		if name == strings.ToLower(w.String()) {
			w := w
			return func(an *models.Annotation) bool { return an.Weather == w }, true
		}
	}
	for _, l := range labels.AllLight() {
		if name == strings.ToLower(l.String()) {
			l := l
			return func(an *models.Annotation) bool { return an.Light == l }, true
		}
	}
	return nil, false
}

func drawWithReplacement(s subset, n int, rng *rand.Rand) subset {
	if len(s.stems) == 0 || n <= 0 {
		return subset{}
	}
	out := subset{
		stems:       make([]string, n),
		annotations: make([]*models.Annotation, n),
	}
	for i := 0; i < n; i++ {
		j := rng.Intn(len(s.stems))
		out.stems[i] = s.stems[j]
		out.annotations[i] = s.annotations[j]
	}
	return out
}
