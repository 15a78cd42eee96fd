// Package tuning holds the static registry of named instrument tunings.
package tuning

import "sort"

// Default is the tuning key assumed when a document does not name one.
const Default = "E_STANDARD"

// Tuning is an immutable named tuning. Strings lists open-string pitch
// labels from the highest string (index 0) downward; instruments with fewer
// strings use a prefix of the list.
type Tuning struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Offset  int      `json:"offset"`
	Strings []string `json:"strings"`
}

// StringName returns the label of string i, or "?" past the end of the table.
func (t Tuning) StringName(i int) string {
	if i < 0 || i >= len(t.Strings) {
		return "?"
	}
	return t.Strings[i]
}

var registry = map[string]Tuning{
	"E_STANDARD": {
		Name: "E Standard", Offset: 0,
		Strings: []string{"e", "B", "G", "D", "A", "E", "B", "F#"},
	},
	"EB_STANDARD": {
		Name: "Eb Standard", Offset: -1,
		Strings: []string{"eb", "Bb", "Gb", "Db", "Ab", "Eb", "Bb", "F"},
	},
	"D_STANDARD": {
		Name: "D Standard", Offset: -2,
		Strings: []string{"d", "A", "F", "C", "G", "D", "A", "E"},
	},
	"CS_STANDARD": {
		Name: "C# Standard", Offset: -3,
		Strings: []string{"c#", "G#", "E", "B", "F#", "C#", "G#", "D#"},
	},
	"C_STANDARD": {
		Name: "C Standard", Offset: -4,
		Strings: []string{"c", "G", "D#", "A#", "F", "C", "G", "D"},
	},
	"B_STANDARD": {
		Name: "B Standard", Offset: -5,
		Strings: []string{"b", "F#", "D", "A", "E", "B", "F#", "C#"},
	},
	"DROP_D": {
		Name: "Drop D", Offset: 0,
		Strings: []string{"e", "B", "G", "D", "A", "D", "B", "F#"},
	},
	"DROP_C": {
		Name: "Drop C", Offset: -2,
		Strings: []string{"d", "A", "F", "C", "G", "C", "G", "D"},
	},
}

func init() {
	for k, t := range registry {
		t.Key = k
		registry[k] = t
	}
}

// Lookup returns the tuning registered under key.
func Lookup(key string) (Tuning, bool) {
	t, ok := registry[key]
	return t, ok
}

// Resolve returns the tuning for key, falling back to Default for unknown keys.
func Resolve(key string) Tuning {
	if t, ok := registry[key]; ok {
		return t
	}
	return registry[Default]
}

// All returns every registered tuning ordered from highest to lowest offset,
// then by key.
func All() []Tuning {
	out := make([]Tuning, 0, len(registry))
	for _, t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Offset != out[j].Offset {
			return out[i].Offset > out[j].Offset
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Keys returns the registered keys in the order of All.
func Keys() []string {
	all := All()
	keys := make([]string, len(all))
	for i, t := range all {
		keys[i] = t.Key
	}
	return keys
}

// FindByName matches a free-text tuning hint ("Drop D", "eb standard",
// "half step down") against the registry.
func FindByName(hint string) (Tuning, bool) {
	norm := normalize(hint)
	if norm == "" {
		return Tuning{}, false
	}
	if alias, ok := aliases[norm]; ok {
		norm = alias
	}
	for k, t := range registry {
		if normalize(k) == norm || normalize(t.Name) == norm {
			return t, true
		}
	}
	return Tuning{}, false
}

var aliases = map[string]string{
	"standard":           "estandard",
	"e":                  "estandard",
	"halfstepdown":       "ebstandard",
	"halfstepdowntuning": "ebstandard",
	"d#standard":         "ebstandard",
	"wholestepdown":      "dstandard",
	"dbstandard":         "c#standard",
	"csstandard":         "c#standard",
	"dropd":              "dropd",
	"dropc":              "dropc",
}

func normalize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ' || r == '_' || r == '-' || r == '\t' || r == '(' || r == ')':
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
