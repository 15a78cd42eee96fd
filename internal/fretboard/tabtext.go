package fretboard

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/starford/chordbook/internal/song"
	"github.com/starford/chordbook/internal/tuning"
)

// OutOfRange is rendered instead of a staff when a tab block has notes but
// none of them can be shown under the current context.
const OutOfRange = "(notes out of range for current settings)"

const emptyStaffWidth = 16

// RenderTabText renders b as ASCII tablature under ctx. Notes are sorted by
// horizontal position and bucketed into character columns; every occupied
// column is as wide as its widest fret token.
func RenderTabText(b *song.Tab, ctx song.Context, g Geometry) string {
	strs := b.StringCount()
	tu := tuning.Resolve(ctx.Tuning)

	type cell struct {
		col   int
		str   int
		token string
	}
	var cells []cell
	order := make([]int, len(b.Notes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return b.Notes[order[i]].Position < b.Notes[order[j]].Position
	})
	for _, i := range order {
		n := b.Notes[i]
		token, _, ok := noteToken(n, ctx, strs)
		if !ok {
			continue
		}
		cells = append(cells, cell{col: g.Column(n.Position), str: n.String, token: token})
	}

	lines := make([]strings.Builder, strs)
	for i := range lines {
		lines[i].WriteString(fmt.Sprintf("%-2s|", tu.StringName(i)))
	}

	if len(cells) == 0 {
		if len(b.Notes) > 0 {
			return OutOfRange
		}
		for i := range lines {
			lines[i].WriteString(strings.Repeat("-", emptyStaffWidth))
			lines[i].WriteString("|")
		}
		return join(lines)
	}

	cursor := 0
	for start := 0; start < len(cells); {
		col := cells[start].col
		end := start
		for end < len(cells) && cells[end].col == col {
			end++
		}
		if cursor < col {
			pad := strings.Repeat("-", col-cursor)
			for i := range lines {
				lines[i].WriteString(pad)
			}
			cursor = col
		}

		// Several notes on one string in the same column are emitted as
		// consecutive sub-columns in position order.
		perString := make([][]string, strs)
		depth := 0
		for _, c := range cells[start:end] {
			perString[c.str] = append(perString[c.str], c.token)
			depth = max(depth, len(perString[c.str]))
		}
		for k := 0; k < depth; k++ {
			width := 0
			for s := range perString {
				if k < len(perString[s]) {
					width = max(width, len(perString[s][k]))
				}
			}
			for s := range lines {
				tok := ""
				if k < len(perString[s]) {
					tok = perString[s][k]
				}
				lines[s].WriteString(tok)
				lines[s].WriteString(strings.Repeat("-", width-len(tok)+1))
			}
			cursor += width + 1
		}
		start = end
	}

	for i := range lines {
		lines[i].WriteString("|")
	}
	return join(lines)
}

// noteToken renders the visible text of n under ctx. ok is false when the
// note is out of range for ctx or its string does not exist.
func noteToken(n song.Note, ctx song.Context, strs int) (token string, fret int, ok bool) {
	if n.String < 0 || n.String >= strs {
		return "", 0, false
	}
	fret = DisplayedFret(n.Fret, ctx)
	if fret < 0 {
		return "", 0, false
	}
	token = strconv.Itoa(fret) + n.Notation
	if n.Notation == song.NotationBend && n.BendTarget != nil {
		if bt := DisplayedFret(*n.BendTarget, ctx); bt >= 0 {
			token += strconv.Itoa(bt)
		}
	}
	return token, fret, true
}

func join(lines []strings.Builder) string {
	out := make([]string, len(lines))
	for i := range lines {
		out[i] = lines[i].String()
	}
	return strings.Join(out, "\n")
}
