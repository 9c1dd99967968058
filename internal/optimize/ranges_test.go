package optimize

import (
	"reflect"
	"testing"
)

func TestParseRangesTripletExpansion(t *testing.T) {
	r, err := ParseRanges(`{"fast":[8,20,4]}`)
	if err != nil {
		t.Fatalf("ParseRanges: %v", err)
	}
	want := []any{8.0, 12.0, 16.0, 20.0}
	if got := r.Values("fast"); !reflect.DeepEqual(got, want) {
		t.Errorf("fast = %v, want %v", got, want)
	}
}

func TestParseRangesWrongSignStep(t *testing.T) {
	r, err := ParseRanges(`{"x":[1,5,-1]}`)
	if err != nil {
		t.Fatalf("ParseRanges: %v", err)
	}
	if got := r.Values("x"); len(got) != 0 {
		t.Errorf("x = %v, want empty", got)
	}
}

func TestParseRangesZeroStep(t *testing.T) {
	r, err := ParseRanges(`{"x":[0,10,0]}`)
	if err != nil {
		t.Fatalf("ParseRanges: %v", err)
	}
	if got := r.Values("x"); len(got) != 0 {
		t.Errorf("x = %v, want empty (zero step must not loop)", got)
	}
}

func TestParseRangesDescendingTriplet(t *testing.T) {
	r, err := ParseRanges(`{"slow":[60,20,-10]}`)
	if err != nil {
		t.Fatalf("ParseRanges: %v", err)
	}
	want := []any{60.0, 50.0, 40.0, 30.0, 20.0}
	if got := r.Values("slow"); !reflect.DeepEqual(got, want) {
		t.Errorf("slow = %v, want %v", got, want)
	}
}

func TestParseRangesDiscreteLists(t *testing.T) {
	tests := []struct {
		name string
		spec string
		key  string
		want []any
	}{
		{"two values", `{"a":[1,2]}`, "a", []any{1.0, 2.0}},
		{"oversized step reads as choices", `{"b":[10,20,30]}`, "b", []any{10.0, 20.0, 30.0}},
		{"floats", `{"bb_k":[1.5,2.0,2.5]}`, "bb_k", []any{1.5, 2.0, 2.5}},
		{"mixed types", `{"m":[true,"x",3]}`, "m", []any{true, "x", 3.0}},
		{"scalar", `{"stake":5}`, "stake", []any{5.0}},
		{"bool scalar", `{"use_regime":true}`, "use_regime", []any{true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRanges(tt.spec)
			if err != nil {
				t.Fatalf("ParseRanges(%s): %v", tt.spec, err)
			}
			if got := r.Values(tt.key); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Values(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestParseRangesKeyOrder(t *testing.T) {
	r, err := ParseRanges(`{"slow":[20,60,10],"fast":[8,20,4],"ema_trend":[100,200,50]}`)
	if err != nil {
		t.Fatalf("ParseRanges: %v", err)
	}
	want := []string{"slow", "fast", "ema_trend"}
	if got := r.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want insertion order %v", got, want)
	}
}

func TestParseRangesBlank(t *testing.T) {
	r, err := ParseRanges("  ")
	if err != nil {
		t.Fatalf("ParseRanges: %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestParseRangesRejectsMalformed(t *testing.T) {
	for _, spec := range []string{`[1,2,3]`, `{"a":{"b":1}}`, `{"a":[[1]]}`, `{"a":`} {
		if _, err := ParseRanges(spec); err == nil {
			t.Errorf("ParseRanges(%s) = nil error, want error", spec)
		}
	}
}

func TestEncodeParams(t *testing.T) {
	keys := []string{"fast", "bb_k", "use_regime", "tag"}
	values := map[string]any{"fast": 8.0, "bb_k": 1.5, "use_regime": true, "tag": "a"}
	want := `{"fast": 8, "bb_k": 1.5, "use_regime": true, "tag": "a"}`
	if got := encodeParams(keys, values); got != want {
		t.Errorf("encodeParams = %s, want %s", got, want)
	}
}

func TestGridCardinality(t *testing.T) {
	r, err := ParseRanges(`{"a":[1,2],"b":[10,20,30]}`)
	if err != nil {
		t.Fatalf("ParseRanges: %v", err)
	}
	grid := Grid(r)
	if len(grid) != 6 {
		t.Fatalf("len(grid) = %d, want 6", len(grid))
	}
	seen := map[[2]float64]bool{}
	for _, c := range grid {
		pair := [2]float64{c["a"].(float64), c["b"].(float64)}
		if seen[pair] {
			t.Errorf("pair %v enumerated twice", pair)
		}
		seen[pair] = true
	}
}

func TestGridNestedLoopOrder(t *testing.T) {
	r, err := ParseRanges(`{"a":[1,2],"b":[10,20,30]}`)
	if err != nil {
		t.Fatalf("ParseRanges: %v", err)
	}
	grid := Grid(r)
	want := [][2]float64{{1, 10}, {1, 20}, {1, 30}, {2, 10}, {2, 20}, {2, 30}}
	for i, w := range want {
		got := [2]float64{grid[i]["a"].(float64), grid[i]["b"].(float64)}
		if got != w {
			t.Errorf("grid[%d] = %v, want %v", i, got, w)
		}
	}
}

func TestGridDeterminism(t *testing.T) {
	spec := `{"fast":[8,20,4],"slow":[20,60,10]}`
	r1, _ := ParseRanges(spec)
	r2, _ := ParseRanges(spec)
	g1, g2 := Grid(r1), Grid(r2)
	if !reflect.DeepEqual(g1, g2) {
		t.Errorf("two builds of the same spec differ")
	}
}

func TestGridEmpty(t *testing.T) {
	for _, spec := range []string{``, `{"x":[1,5,-1]}`, `{"a":[1,2],"x":[0,10,0]}`} {
		r, err := ParseRanges(spec)
		if err != nil {
			t.Fatalf("ParseRanges(%s): %v", spec, err)
		}
		if grid := Grid(r); len(grid) != 0 {
			t.Errorf("Grid(%s) = %d combos, want 0", spec, len(grid))
		}
	}
}
