package coeqwal

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/matzehuels/tierviz/pkg/layout"
)

const (
	typeSingleValue = "single_value"
	typeMultiValue  = "multi_value"
)

type tiersResponse struct {
	Tiers ordered[tierGroup] `json:"tiers"`
}

type tierGroup struct {
	Name  string             `json:"name"`
	Type  string             `json:"type"`
	Level float64            `json:"level"`
	Data  ordered[tierCount] `json:"data"`
}

type tierCount struct {
	Value float64 `json:"value"`
}

// scenarioTiers is the cached, label-independent form of a response.
type scenarioTiers struct {
	Categories []string   `json:"categories"`
	Units      []tierUnit `json:"units"`
}

type tierUnit struct {
	Category string `json:"category"`
	Level    int    `json:"level"`
	Index    int    `json:"index"`
}

// flatten expands every group into one unit per objective. Categories
// list every group, including those of unknown type that produce no units.
func (r tiersResponse) flatten() scenarioTiers {
	var s scenarioTiers
	s.Categories = make([]string, 0, len(r.Tiers))
	for _, e := range r.Tiers {
		g := e.Value
		s.Categories = append(s.Categories, g.Name)
		switch g.Type {
		case typeSingleValue:
			s.Units = append(s.Units, tierUnit{Category: g.Name, Level: int(g.Level)})
		case typeMultiValue:
			counter := 0
			for _, d := range g.Data {
				level := 0
				if k, err := strconv.Atoi(d.Key); err == nil {
					level = k + 1
				}
				for range unitCount(d.Value.Value) {
					s.Units = append(s.Units, tierUnit{Category: g.Name, Level: level, Index: counter})
					counter++
				}
			}
		}
	}
	return s
}

// unitCount is the number of iterations of `for (i = 0; i < v; i++)`.
func unitCount(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	return int(math.Ceil(v))
}

func (s scenarioTiers) objectives(tiers []string) []layout.Objective {
	objs := make([]layout.Objective, len(s.Units))
	for i, u := range s.Units {
		objs[i] = layout.Objective{
			Tier:                tierLabel(tiers, u.Level),
			Category:            u.Category,
			WithinCategoryIndex: u.Index,
		}
	}
	return Enrich(objs)
}

// tierLabel maps a 1-based level to its label, or "" when out of range.
func tierLabel(tiers []string, level int) string {
	if level < 1 || level > len(tiers) {
		return ""
	}
	return tiers[level-1]
}

type entry[T any] struct {
	Key   string
	Value T
}

// ordered decodes a JSON object into a slice of entries in JavaScript
// property order.
type ordered[T any] []entry[T]

func (o *ordered[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	var out ordered[T]
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var v T
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		out = append(out, entry[T]{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	// Duplicate keys: the last value wins but keeps the first position.
	dedup := out[:0]
	pos := make(map[string]int, len(out))
	for _, e := range out {
		if i, ok := pos[e.Key]; ok {
			dedup[i].Value = e.Value
			continue
		}
		pos[e.Key] = len(dedup)
		dedup = append(dedup, e)
	}

	slices.SortStableFunc(dedup, func(a, b entry[T]) int {
		ai, aok := arrayIndex(a.Key)
		bi, bok := arrayIndex(b.Key)
		switch {
		case aok && bok:
			return cmp.Compare(ai, bi)
		case aok:
			return -1
		case bok:
			return 1
		}
		return 0
	})
	*o = dedup
	return nil
}

// arrayIndex reports whether k is a canonical array index ("0", "17",
// not "07" or "-1"), which JavaScript enumerates before other keys.
func arrayIndex(k string) (int64, bool) {
	if k == "" || (len(k) > 1 && k[0] == '0') {
		return 0, false
	}
	for _, r := range k {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(k, 10, 64)
	if err != nil || n >= math.MaxUint32 {
		return 0, false
	}
	return n, true
}
