package optimize

// Fold is one walk-forward split. The backtest runs over the contiguous
// window [TrainStart, TestEnd); TestStart marks where out-of-sample bars
// begin.
type Fold struct {
	TrainStart int
	TrainEnd   int
	TestStart  int
	TestEnd    int
}

// Splits derives the walk-forward folds for a series of n bars. folds is
// clamped to at least 1 and oosFrac to [0.05, 0.8]. Each fold holds out
// test bars of length max(5, ⌊n·oosFrac⌋) directly after its training
// window; training windows advance by max(10, ⌊anchor/folds⌋) bars and
// windows of 20 bars or fewer are skipped. When every candidate is skipped
// the whole span becomes a single fold.
func Splits(n, folds int, oosFrac float64) []Fold {
	if folds < 1 {
		folds = 1
	}
	if oosFrac < 0.05 {
		oosFrac = 0.05
	}
	if oosFrac > 0.8 {
		oosFrac = 0.8
	}

	testLen := int(float64(n) * oosFrac)
	if testLen < 5 {
		testLen = 5
	}
	anchor := n - testLen

	step := anchor / folds
	if step < 10 {
		step = 10
	}

	var splits []Fold
	for start := 0; start < anchor; start += step {
		trainEnd := start + step
		if trainEnd > anchor {
			trainEnd = anchor
		}
		if trainEnd <= start+20 {
			continue
		}
		testEnd := trainEnd + testLen
		if testEnd > n {
			testEnd = n
		}
		splits = append(splits, Fold{
			TrainStart: start,
			TrainEnd:   trainEnd,
			TestStart:  trainEnd,
			TestEnd:    testEnd,
		})
	}
	if len(splits) == 0 {
		splits = append(splits, Fold{TrainStart: 0, TrainEnd: anchor, TestStart: anchor, TestEnd: n})
	}
	return splits
}
