package render

// Chunk is the part of a section placed on one page. Continued is set on
// every chunk after the first of a split section.
type Chunk struct {
	Section   Section
	Lines     []Line
	Continued bool
}

// Page is one printed page. Header is only set on the first page.
type Page struct {
	Number int
	Header []string
	Chunks []Chunk
}

// Paginate lays out out on pages of linesPerPage lines. A section is never
// split when it fits on a page of its own; it moves to the next page
// instead. Sections longer than a page start on a fresh page and continue
// across as many pages as they need. Each section costs its heading plus
// its visible lines, and sections on the same page are separated by a blank
// line. linesPerPage <= 0 puts everything on one page.
func Paginate(out Output, linesPerPage int) []Page {
	head := HeaderLines(out)
	first := Page{Number: 1, Header: head}
	if linesPerPage <= 0 {
		for _, s := range out.Sections {
			first.Chunks = append(first.Chunks, Chunk{Section: s, Lines: Visible(s)})
		}
		return []Page{first}
	}
	n := max(linesPerPage, 2)

	pages := []Page{first}
	used := len(head)
	cur := func() *Page { return &pages[len(pages)-1] }
	newPage := func() {
		pages = append(pages, Page{Number: len(pages) + 1})
		used = 0
	}

	for _, s := range out.Sections {
		lines := Visible(s)
		h := 1 + len(lines)
		gap := 0
		if used > 0 {
			gap = 1
		}
		if used+gap+h <= n {
			cur().Chunks = append(cur().Chunks, Chunk{Section: s, Lines: lines})
			used += gap + h
			continue
		}
		if used > 0 {
			newPage()
		}
		for i := 0; i < len(lines) || i == 0; {
			if used > 0 {
				newPage()
			}
			end := min(len(lines), i+n-1)
			cur().Chunks = append(cur().Chunks, Chunk{Section: s, Lines: lines[i:end], Continued: i > 0})
			used = 1 + end - i
			i = end
			if end == len(lines) {
				break
			}
		}
	}
	return pages
}
