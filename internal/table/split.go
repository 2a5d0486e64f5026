package table

import (
	"math"
	"math/rand"

	"featurestore/internal/errors"
)

// TrainTestSplit shuffles row positions with a source seeded by seed and
// holds out ceil(testRatio*n) rows for testing. The same table, ratio and
// seed always produce the same partitions.
func TrainTestSplit(t *Table, testRatio float64, seed int64) (train, test *Table, err error) {
	n := t.Len()
	if n < 2 {
		return nil, nil, errors.Newf(errors.ErrEmptyResult, "not enough data to split, rows found: %d", n)
	}
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, errors.Newf(errors.ErrConfiguration, "test ratio must be in (0,1), got %g", testRatio)
	}

	nTest := int(math.Ceil(testRatio * float64(n)))
	nTrain := n - nTest
	if nTest == 0 || nTrain == 0 {
		return nil, nil, errors.Newf(errors.ErrEmptyResult,
			"split of %d rows at ratio %g leaves an empty partition (train=%d, test=%d)", n, testRatio, nTrain, nTest)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return t.Select(perm[nTest:]), t.Select(perm[:nTest]), nil
}
