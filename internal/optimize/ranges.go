package optimize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Ranges is a parsed parameter range specification. Key order is the JSON
// insertion order, which fixes the grid enumeration order, so the spec is
// decoded token by token rather than into a map.
type Ranges struct {
	keys   []string
	values map[string][]any
}

// Keys returns the parameter names in specification order.
func (r *Ranges) Keys() []string { return r.keys }

// Values returns the expanded value list for a key.
func (r *Ranges) Values(key string) []any { return r.values[key] }

// Len returns the number of parameters.
func (r *Ranges) Len() int { return len(r.keys) }

// ParseRanges decodes a range specification such as
// {"fast":[8,20,4],"slow":[20,60,10]} or {"bb_k":[1.5,2.0,2.5]}.
// A three-number list reading as [start, stop, step] (see asTriplet) is an
// arithmetic sequence inclusive of every endpoint reachable by stepping,
// values rounded to six decimals. A zero step, or a step whose sign walks
// away from stop, expands to an empty sequence. Any other list holds
// literal discrete values, and a
// bare scalar is a one-element list. A blank spec parses to zero keys.
func ParseRanges(spec string) (*Ranges, error) {
	r := &Ranges{values: make(map[string][]any)}
	if strings.TrimSpace(spec) == "" {
		return r, nil
	}

	dec := json.NewDecoder(strings.NewReader(spec))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse ranges: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("parse ranges: top-level value must be an object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse ranges: %w", err)
		}
		key := keyTok.(string)

		vals, err := decodeSpec(dec)
		if err != nil {
			return nil, fmt.Errorf("parse ranges: key %q: %w", key, err)
		}
		if _, dup := r.values[key]; !dup {
			r.keys = append(r.keys, key)
		}
		r.values[key] = vals
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse ranges: %w", err)
	}
	return r, nil
}

// decodeSpec consumes one value from the decoder and expands it into the
// discrete value list it denotes.
func decodeSpec(dec *json.Decoder) ([]any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	d, isDelim := tok.(json.Delim)
	if !isDelim {
		return []any{tokenValue(tok)}, nil
	}
	if d != '[' {
		return nil, fmt.Errorf("nested objects are not a valid range value")
	}

	var list []any
	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if _, nested := t.(json.Delim); nested {
			return nil, fmt.Errorf("range lists must be flat")
		}
		list = append(list, tokenValue(t))
	}
	if _, err := dec.Token(); err != nil { // closing ']'
		return nil, err
	}

	if start, stop, step, ok := asTriplet(list); ok {
		return expandTriplet(start, stop, step), nil
	}
	return list, nil
}

func tokenValue(tok json.Token) any {
	switch v := tok.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return v.String()
		}
		return f
	default:
		return v
	}
}

// asTriplet decides whether a three-number list denotes [start, stop, step]
// or three discrete values. A step whose magnitude exceeds the start-stop
// span could never take a second step inside the range, so such lists read
// as discrete values: [8,20,4] is a sequence, [10,20,30] is three choices.
// Zero and wrong-sign steps still classify as triplets and expand empty.
func asTriplet(list []any) (start, stop, step float64, ok bool) {
	if len(list) != 3 {
		return 0, 0, 0, false
	}
	nums := make([]float64, 3)
	for i, v := range list {
		f, isNum := v.(float64)
		if !isNum {
			return 0, 0, 0, false
		}
		nums[i] = f
	}
	start, stop, step = nums[0], nums[1], nums[2]
	if math.Abs(step) > math.Abs(stop-start) {
		return 0, 0, 0, false
	}
	return start, stop, step, true
}

// expandTriplet walks start toward stop by step. The loop condition keys on
// the step sign, so a zero step terminates immediately instead of spinning.
func expandTriplet(start, stop, step float64) []any {
	var seq []any
	v := start
	for (step > 0 && v <= stop) || (step < 0 && v >= stop) {
		seq = append(seq, math.Round(v*1e6)/1e6)
		v += step
	}
	return seq
}

// encodeParams renders a combination as compact JSON in key order. Numbers
// use the shortest round-trip form so integral values print without a
// decimal point.
func encodeParams(keys []string, values map[string]any) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Quote(k))
		b.WriteString(": ")
		switch v := values[k].(type) {
		case float64:
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		case bool:
			b.WriteString(strconv.FormatBool(v))
		case string:
			b.WriteString(strconv.Quote(v))
		case nil:
			b.WriteString("null")
		default:
			b.WriteString(fmt.Sprintf("%v", v))
		}
	}
	b.WriteByte('}')
	return b.String()
}
