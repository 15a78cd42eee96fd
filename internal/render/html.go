package render

import (
	"bytes"
	"fmt"
	"html/template"
)

var pageTmpl = template.Must(template.New("song").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{if .Title}}{{.Title}}{{else}}Untitled{{end}}</title>
<style>
body { font-family: monospace; }
.chords { color: #b03a2e; font-weight: bold; }
.notice { font-style: italic; color: #777; }
section { break-inside: avoid; page-break-inside: avoid; margin-bottom: 1.2em; }
pre { margin: 0; }
</style>
</head>
<body>
{{- if .Title}}
<h1>{{.Title}}</h1>
{{- end}}
{{- if .Artist}}
<h2>{{.Artist}}</h2>
{{- end}}
{{- range .Sections}}
<section class="block {{.Kind}}{{if .Placeholder}} placeholder{{end}}" data-id="{{.ID}}">
<h3>{{.Label}}</h3>
{{- range .Lines}}
<pre class="{{.Kind}}">{{.Text}}</pre>
{{- end}}
</section>
{{- end}}
</body>
</html>
`))

type htmlSection struct {
	Section
	Lines []Line
}

// HTML renders out as a standalone HTML page. Sections carry CSS that
// keeps them on one printed page where the browser can.
func HTML(out Output) ([]byte, error) {
	secs := make([]htmlSection, len(out.Sections))
	for i, s := range out.Sections {
		secs[i] = htmlSection{Section: s, Lines: Visible(s)}
	}
	data := struct {
		Title, Artist string
		Sections      []htmlSection
	}{out.Title, out.Artist, secs}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render: html: %w", err)
	}
	return buf.Bytes(), nil
}
