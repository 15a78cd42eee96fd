// Package importer converts pasted plain-text song sheets into song blocks.
// It recognises section headers, ASCII tab staves, drum grids and
// chord-over-lyric line pairs, and reads capo, tuning, title and artist
// hints either inline or from a YAML frontmatter header.
package importer

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/starford/chordbook/internal/chordline"
	"github.com/starford/chordbook/internal/drumtab"
	"github.com/starford/chordbook/internal/fretboard"
	"github.com/starford/chordbook/internal/song"
	"github.com/starford/chordbook/internal/tuning"
)

// Result is the outcome of an import.
type Result struct {
	Title    string       `json:"title,omitempty"`
	Artist   string       `json:"artist,omitempty"`
	Duration string       `json:"duration,omitempty"`
	Context  song.Context `json:"context"`
	Blocks   []song.Block `json:"-"`
}

// Song assembles the result into a new song document.
func (r *Result) Song() *song.Song {
	s := song.New(r.Title)
	s.Artist = r.Artist
	s.Duration = r.Duration
	s.SetContext(r.Context)
	s.Blocks = r.Blocks
	return s
}

var (
	hintRe       = regexp.MustCompile(`(?i)^\s*(capo|tuning|title|artist)\s*[:=]\s*(.*?)\s*$`)
	capoValueRe  = regexp.MustCompile(`\d+`)
	bracketRe    = regexp.MustCompile(`^\s*\[([^\[\]]+)\]\s*$`)
	keywordRe    = regexp.MustCompile(`(?i)^\s*((?:pre-?)?chorus|intro|verse|bridge|outro|solo|interlude|instrumental|hook|refrain|breakdown|riff|coda|tag)(\s*\d+)?\s*:?\s*(\(.*\))?\s*$`)
	staffRe      = regexp.MustCompile(`^\s*([A-Za-z]{1,3}[#b]?)?\s*\|(.*)$`)
	chordWordRe  = regexp.MustCompile(`^\(?[A-G][#b]?(m|M|maj|min|dim|aug|sus|add|\+|°)?[0-9]*((sus|add|maj|no)[0-9]*|[#b+-][0-9]+)*(/[A-G][#b]?)?\)?$`)
	staffBodyRe  = regexp.MustCompile(`^[-0-9hpbrxoXO#/\\~|()<>.*= ]+$`)
	fretTokenRe  = regexp.MustCompile(`\d+`)
	repeatMarkRe = regexp.MustCompile(`^(x\d+|\d+x|\||/|-|%|\.{2,})$`)
)

// Import parses text under the given diagram geometry. Tab positions are
// derived from character columns through g.
func Import(text string, g fretboard.Geometry) *Result {
	text = norm.NFC.String(strings.ReplaceAll(text, "\r\n", "\n"))
	text = strings.ReplaceAll(text, "\t", "    ")

	res := &Result{Context: song.DefaultContext()}
	if fm, body := splitFrontmatter(text); fm != nil {
		fm.apply(res)
		text = body
	}
	lines := strings.Split(text, "\n")

	body := make([]string, 0, len(lines))
	for _, l := range lines {
		if !readHint(res, l) {
			body = append(body, l)
		}
	}

	b := &builder{g: g, ctx: res.Context, first: map[string]string{}}
	for i := 0; i < len(body); i++ {
		l := body[i]
		if label, ok := header(l); ok {
			b.endSection()
			b.label, b.hasHeader = label, true
			continue
		}
		if isStaffLine(l) {
			j := i
			for j < len(body) && isStaffLine(body[j]) {
				j++
			}
			b.staves(body[i:j])
			i = j - 1
			continue
		}
		if isChordLine(l) {
			if i+1 < len(body) && isLyricLine(body[i+1]) {
				b.lyrics = append(b.lyrics, Merge(l, body[i+1]))
				i++
				continue
			}
			b.lyrics = append(b.lyrics, strings.TrimRight(Merge(l, ""), " "))
			continue
		}
		b.lyrics = append(b.lyrics, strings.TrimRight(l, " "))
	}
	b.endSection()

	res.Blocks = b.blocks
	return res
}

func readHint(res *Result, line string) bool {
	m := hintRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	val := m[2]
	switch strings.ToLower(m[1]) {
	case "capo":
		if d := capoValueRe.FindString(val); d != "" {
			res.Context.Capo, _ = strconv.Atoi(d)
		} else if strings.EqualFold(val, "none") || strings.EqualFold(val, "no") {
			res.Context.Capo = 0
		}
	case "tuning":
		if t, ok := tuning.FindByName(val); ok {
			res.Context.Tuning = t.Key
		}
	case "title":
		res.Title = val
	case "artist":
		res.Artist = val
	}
	return true
}

func header(line string) (string, bool) {
	if m := bracketRe.FindStringSubmatch(line); m != nil {
		inner := strings.TrimSpace(m[1])
		if !chordWordRe.MatchString(inner) {
			return inner, true
		}
		return "", false
	}
	if keywordRe.MatchString(line) {
		label := strings.TrimSpace(line)
		label = strings.TrimSuffix(label, ":")
		return strings.TrimSpace(label), true
	}
	return "", false
}

// isStaffLine matches "e|---3---|" style lines: a short name, a bar and a
// body of dashes, frets and technique marks. Drum grid lines share the shape.
func isStaffLine(line string) bool {
	m := staffRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	body := strings.TrimRight(m[2], " ")
	return strings.Contains(body, "-") && staffBodyRe.MatchString(body)
}

func isDrumLine(line string) bool {
	i := strings.IndexByte(line, '|')
	if i <= 0 {
		return false
	}
	code := strings.TrimSpace(line[:i])
	return len(code) >= 2 && drumtab.InstrumentName(code) != code
}

func isChordLine(line string) bool {
	fields := strings.Fields(line)
	chords := 0
	for _, f := range fields {
		switch {
		case chordWordRe.MatchString(f):
			chords++
		case repeatMarkRe.MatchString(strings.ToLower(f)):
		default:
			return false
		}
	}
	return chords > 0
}

func isLyricLine(line string) bool {
	if strings.TrimSpace(line) == "" || isChordLine(line) || isStaffLine(line) {
		return false
	}
	_, isHeader := header(line)
	return !isHeader
}

// Merge folds a chord line into the lyric line beneath it, inserting each
// chord as a [chord] annotation at the lyric column under the chord.
// Columns are counted in display width; short lyric lines are padded.
func Merge(chords, lyric string) string {
	type at struct {
		col   int
		chord string
	}
	var marks []at
	col := 0
	for _, f := range strings.Fields(chords) {
		idx := strings.Index(chords[col:], f) + col
		if chordWordRe.MatchString(f) {
			marks = append(marks, at{col: chordline.Width(chords[:idx]), chord: strings.Trim(f, "()")})
		}
		col = idx + len(f)
	}

	var b strings.Builder
	runes := []rune(lyric)
	pos, w := 0, 0
	for _, m := range marks {
		for pos < len(runes) && w < m.col {
			b.WriteRune(runes[pos])
			w += chordline.Width(string(runes[pos]))
			pos++
		}
		for w < m.col {
			b.WriteByte(' ')
			w++
		}
		b.WriteString("[" + m.chord + "]")
	}
	b.WriteString(string(runes[pos:]))
	return b.String()
}

type builder struct {
	g      fretboard.Geometry
	ctx    song.Context
	blocks []song.Block
	first  map[string]string

	label     string
	hasHeader bool
	lyrics    []string
	produced  int
}

func (b *builder) emit(blk song.Block, fallback string) {
	if blk.BlockLabel() == "" {
		blk.SetLabel(fallback)
		if b.hasHeader {
			blk.SetLabel(b.label)
		}
	}
	id := song.NewID()
	switch v := blk.(type) {
	case *song.Lyrics:
		v.ID = id
	case *song.Tab:
		v.ID = id
	case *song.DrumTab:
		v.ID = id
	case *song.Reference:
		v.ID = id
	}
	b.blocks = append(b.blocks, blk)
	b.produced++
	if blk.Kind() == song.KindReference {
		return
	}
	key := strings.ToLower(blk.BlockLabel())
	if _, seen := b.first[key]; !seen {
		b.first[key] = id
	}
}

func (b *builder) flushLyrics() {
	lines := b.lyrics
	b.lyrics = nil
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return
	}
	b.emit(&song.Lyrics{Content: strings.Join(lines, "\n")}, "Lyrics")
}

// endSection closes the current section. A header with no content of its
// own that repeats an earlier label becomes a reference to that section.
func (b *builder) endSection() {
	b.flushLyrics()
	if b.hasHeader && b.produced == 0 {
		if id, ok := b.first[strings.ToLower(b.label)]; ok {
			b.emit(&song.Reference{OriginalID: id}, b.label)
		} else {
			b.emit(&song.Lyrics{}, b.label)
		}
	}
	b.label, b.hasHeader, b.produced = "", false, 0
}

// staves turns a run of bar lines into tab and drum blocks. Runs longer than
// the widest instrument are split into staves of six.
func (b *builder) staves(lines []string) {
	b.flushLyrics()
	for len(lines) > 0 {
		if isDrumLine(lines[0]) {
			n := 0
			for n < len(lines) && isDrumLine(lines[n]) {
				n++
			}
			content := drumtab.Serialize(drumtab.Parse(strings.Join(lines[:n], "\n")))
			b.emit(&song.DrumTab{Content: content}, "Drums")
			lines = lines[n:]
			continue
		}
		n := 0
		for n < len(lines) && !isDrumLine(lines[n]) {
			n++
		}
		staff := lines[:n]
		lines = lines[n:]
		for len(staff) > song.MaxStrings {
			b.emit(b.tab(staff[:song.DefaultStrings]), "Tab")
			staff = staff[song.DefaultStrings:]
		}
		b.emit(b.tab(staff), "Tab")
	}
}

// tab reads fret numbers off a staff. Each line is one string, highest
// first; a number's character column after the first bar becomes its
// horizontal position. Frets are read as played under the hinted context.
func (b *builder) tab(staff []string) *song.Tab {
	t := &song.Tab{Strings: max(song.MinStrings, min(len(staff), song.MaxStrings))}
	for str, line := range staff {
		bar := strings.IndexByte(line, '|')
		body := line[bar+1:]
		consumed := 0
		for _, loc := range fretTokenRe.FindAllStringIndex(body, -1) {
			if loc[0] < consumed {
				continue
			}
			fret, err := strconv.Atoi(body[loc[0]:loc[1]])
			if err != nil {
				continue
			}
			pos := b.g.PositionForColumn(loc[0])
			i := fretboard.AddNote(t, str, fret, pos, b.ctx)
			if i < 0 {
				continue
			}
			notation, target, n := notationAfter(body[loc[1]:])
			consumed = loc[1] + n
			if notation != "" {
				fretboard.SetNotation(t, i, notation, target, b.ctx)
			}
		}
	}
	return t
}

// notationAfter reads a technique marker directly following a fret number.
// A bend target, if any, is returned with the marker along with the number
// of bytes consumed.
func notationAfter(rest string) (string, *int, int) {
	if rest == "" {
		return "", nil, 0
	}
	switch rest[0] {
	case 'h':
		return song.NotationHammerOn, nil, 1
	case 'p':
		return song.NotationPullOff, nil, 1
	case '/':
		return song.NotationSlide, nil, 1
	case 'b':
		end := 1
		for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
			end++
		}
		if end == 1 {
			return song.NotationBend, nil, 1
		}
		v, _ := strconv.Atoi(rest[1:end])
		return song.NotationBend, &v, end
	}
	return "", nil, 0
}
