package optimize

import "testing"

func TestSplitsInvariant(t *testing.T) {
	cases := []struct {
		n     int
		folds int
		oos   float64
	}{
		{150, 3, 0.2},
		{200, 2, 0.2},
		{1000, 3, 0.2},
		{1000, 10, 0.05},
		{300, 1, 0.8},
		{252, 5, 0.3},
		{150, 0, 0.0}, // clamped to folds=1, oos=0.05
		{500, 3, 2.0}, // clamped to oos=0.8
	}
	for _, c := range cases {
		splits := Splits(c.n, c.folds, c.oos)
		if len(splits) == 0 {
			t.Errorf("Splits(%d,%d,%v) emitted no folds", c.n, c.folds, c.oos)
		}
		for _, f := range splits {
			if !(f.TrainStart < f.TrainEnd && f.TrainEnd == f.TestStart && f.TestStart < f.TestEnd && f.TestEnd <= c.n) {
				t.Errorf("Splits(%d,%d,%v): bad fold %+v", c.n, c.folds, c.oos, f)
			}
		}
	}
}

func TestSplitsDegenerateStillEmitsFold(t *testing.T) {
	splits := Splits(100, 10, 0.2)
	if len(splits) < 1 {
		t.Fatalf("Splits(100,10,0.2) = no folds, want at least the fallback")
	}
}

func TestSplitsFallbackFold(t *testing.T) {
	// anchor 80, step max(10, 80/10)=10, every window is 10 bars <= 20,
	// so only the fallback fold survives.
	splits := Splits(100, 10, 0.2)
	want := Fold{TrainStart: 0, TrainEnd: 80, TestStart: 80, TestEnd: 100}
	if len(splits) != 1 || splits[0] != want {
		t.Errorf("Splits(100,10,0.2) = %v, want [%+v]", splits, want)
	}
}

func TestSplitsKnownLayout(t *testing.T) {
	// n=200, folds=2, oos=0.2: testLen 40, anchor 160, step 80.
	splits := Splits(200, 2, 0.2)
	want := []Fold{
		{TrainStart: 0, TrainEnd: 80, TestStart: 80, TestEnd: 120},
		{TrainStart: 80, TrainEnd: 160, TestStart: 160, TestEnd: 200},
	}
	if len(splits) != len(want) {
		t.Fatalf("len(splits) = %d, want %d (%v)", len(splits), len(want), splits)
	}
	for i := range want {
		if splits[i] != want[i] {
			t.Errorf("splits[%d] = %+v, want %+v", i, splits[i], want[i])
		}
	}
}

func TestSplitsTestWindowCapped(t *testing.T) {
	// The last fold's test window is clipped at n.
	for _, n := range []int{157, 361, 997} {
		for _, f := range Splits(n, 3, 0.25) {
			if f.TestEnd > n {
				t.Errorf("n=%d: TestEnd %d > n", n, f.TestEnd)
			}
		}
	}
}
