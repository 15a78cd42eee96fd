// Package drumtab parses, edits and serializes drum grids stored as text,
// one "<code>|<pattern>|" line per instrument.
package drumtab

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Alphabet is the ordered set of cell symbols a click cycles through.
const Alphabet = "-xobXO#"

// Empty is the empty-cell symbol.
const Empty = '-'

// DefaultColumns is the pattern length given to the first row of an empty grid.
const DefaultColumns = 16

// Row is one instrument line of a drum grid.
type Row struct {
	Instrument string `json:"instrument"`
	ShortCode  string `json:"shortCode"`
	Pattern    string `json:"pattern"`
}

// Instrument is a registry entry mapping a short code to a display name.
type Instrument struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var defaults = []Instrument{
	{Code: "CC", Name: "Crash"},
	{Code: "RC", Name: "Ride"},
	{Code: "HH", Name: "Hi-Hat"},
	{Code: "HT", Name: "High Tom"},
	{Code: "MT", Name: "Mid Tom"},
	{Code: "SD", Name: "Snare"},
	{Code: "FT", Name: "Floor Tom"},
	{Code: "BD", Name: "Bass Drum"},
}

// Instruments returns the default instrument registry in kit order.
func Instruments() []Instrument {
	out := make([]Instrument, len(defaults))
	copy(out, defaults)
	return out
}

// InstrumentName returns the display name for code, or code itself when it
// is not in the registry.
func InstrumentName(code string) string {
	return lookupName(code, nil)
}

// lookupName resolves code against custom first, then the registry.
func lookupName(code string, custom []Instrument) string {
	for _, in := range custom {
		if in.Code == code {
			return in.Name
		}
	}
	for _, in := range defaults {
		if strings.EqualFold(in.Code, code) {
			return in.Name
		}
	}
	return code
}

// Custom returns the instruments of rows whose names the registry cannot
// recover from the short code alone, one per code. ParseWith(Serialize(rows),
// Custom(rows)) reproduces rows.
func Custom(rows []Row) []Instrument {
	var out []Instrument
	seen := map[string]bool{}
	for _, r := range rows {
		if seen[r.ShortCode] || r.Instrument == InstrumentName(r.ShortCode) {
			continue
		}
		seen[r.ShortCode] = true
		out = append(out, Instrument{Code: r.ShortCode, Name: r.Instrument})
	}
	return out
}

var lineRe = regexp.MustCompile(`^([^|]+)\|([^|]*)\|\s*$`)

// Parse reads a drum grid. Lines that do not look like "<text>|<text>|" are
// skipped.
func Parse(content string) []Row {
	return ParseWith(content, nil)
}

// ParseWith is Parse with block-specific instrument names taking precedence
// over the registry.
func ParseWith(content string, custom []Instrument) []Row {
	var rows []Row
	for _, line := range strings.Split(content, "\n") {
		m := lineRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		code := strings.TrimSpace(m[1])
		if code == "" {
			continue
		}
		rows = append(rows, Row{
			Instrument: lookupName(code, custom),
			ShortCode:  code,
			Pattern:    m[2],
		})
	}
	return rows
}

// Serialize writes rows back to text with every short code padded to the
// widest one so the bars line up.
func Serialize(rows []Row) string {
	w := 0
	for _, r := range rows {
		w = max(w, len(r.ShortCode))
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = fmt.Sprintf("%-*s|%s|", w, r.ShortCode, r.Pattern)
	}
	return strings.Join(lines, "\n")
}

// Columns returns the pattern length of the grid: the longest row, or
// DefaultColumns when there are no rows.
func Columns(rows []Row) int {
	n := 0
	for _, r := range rows {
		n = max(n, len([]rune(r.Pattern)))
	}
	if n == 0 {
		return DefaultColumns
	}
	return n
}

// Next returns the symbol that follows c in Alphabet, wrapping at the end.
// Symbols outside the alphabet restart the cycle.
func Next(c rune) rune {
	sym := []rune(Alphabet)
	for i, s := range sym {
		if s == c {
			return sym[(i+1)%len(sym)]
		}
	}
	return sym[0]
}

// CycleCell advances the symbol at (row, col). Out-of-range cells are a
// no-op and report false.
func CycleCell(rows []Row, row, col int) bool {
	if row < 0 || row >= len(rows) || col < 0 {
		return false
	}
	p := []rune(rows[row].Pattern)
	if col >= len(p) {
		return false
	}
	p[col] = Next(p[col])
	rows[row].Pattern = string(p)
	return true
}

// ErrPipe is returned for names or codes containing the bar separator.
var ErrPipe = errors.New("must not contain '|'")

// AddInstrument appends a row for a new instrument, padded with empty cells
// to the current column count.
func AddInstrument(rows []Row, name, code string) ([]Row, error) {
	r := Row{Instrument: strings.TrimSpace(name), ShortCode: strings.TrimSpace(code)}
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Instrument, validation.Required, validation.By(noPipe)),
		validation.Field(&r.ShortCode, validation.Required, validation.By(noPipe)),
	)
	if err != nil {
		return rows, fmt.Errorf("drumtab: add instrument: %w", err)
	}
	r.Pattern = strings.Repeat(string(Empty), Columns(rows))
	return append(rows, r), nil
}

func noPipe(v interface{}) error {
	if s, _ := v.(string); strings.Contains(s, "|") {
		return ErrPipe
	}
	return nil
}

// SetColumns resizes every pattern to n cells, truncating or padding with
// empty cells.
func SetColumns(rows []Row, n int) {
	if n < 0 {
		n = 0
	}
	for i := range rows {
		p := []rune(rows[i].Pattern)
		if len(p) >= n {
			rows[i].Pattern = string(p[:n])
			continue
		}
		rows[i].Pattern = string(p) + strings.Repeat(string(Empty), n-len(p))
	}
}

// CycleContent is CycleCell over serialized block content. The content is
// returned unchanged when the cell does not exist.
func CycleContent(content string, row, col int) (string, bool) {
	rows := Parse(content)
	if !CycleCell(rows, row, col) {
		return content, false
	}
	return Serialize(rows), true
}
