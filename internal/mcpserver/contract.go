package mcpserver

// BlockFormatContract describes the song document shape that LLM consumers
// should follow when creating or updating songs.
const BlockFormatContract = `# Chordbook Song Document Format

Every song is stored as one JSON document with this shape.

` + "```" + `json
{
  "id": null,
  "title": "Song title",
  "artist": "Artist",
  "duration": "3:45",
  "audio_url": null,
  "tuning": "E_STANDARD",
  "capo": 0,
  "transpose": 0,
  "song_blocks": [
    {"id": "v1", "type": "lyrics", "label": "Verse 1", "content": "[Am]Words under [C]chords"},
    {"id": "i1", "type": "tab", "label": "Intro", "strings": 6,
     "notes": [{"string": 0, "fret": 3, "position": 0, "notation": "h"}]},
    {"id": "g1", "type": "drum_tab", "label": "Groove", "content": "HH|x-x-x-x-|\nSD|----o---|\nBD|o-------|"},
    {"id": "v2", "type": "reference", "label": "Verse 2", "originalId": "v1"}
  ]
}
` + "```" + `

## Rules

1. **Block ids** are unique within a song. Leave ` + "`" + `id` + "`" + ` out and one is assigned.
2. **Tuning** is one of the keys returned by ` + "`" + `list_tunings` + "`" + `. Missing means E_STANDARD.
3. **Capo** is a fret number, 0 or more. **Transpose** is semitones and may be negative;
   it is applied when rendering and never rewrites stored chords or frets.
4. **Lyrics** carry chords inline as ` + "`" + `[Chord]` + "`" + ` right before the syllable they fall on.
   Roots are A-G with an optional # or b; everything after the root is kept verbatim.
5. **Tab notes**: ` + "`" + `string` + "`" + ` 0 is the highest string. ` + "`" + `fret` + "`" + ` is the position on a
   standard-tuned neck without capo (the tuning offset and capo already added).
   ` + "`" + `position` + "`" + ` orders notes left to right. ` + "`" + `strings` + "`" + ` is 6, 7 or 8.
   ` + "`" + `notation` + "`" + ` is one of h, p, b, / ; bends may carry ` + "`" + `bendTarget` + "`" + `.
6. **Drum tabs** are lines of ` + "`" + `CODE|pattern|` + "`" + `. Cells use ` + "`" + `-xobXO#` + "`" + `.
   Known codes: CC, RC, HH, HT, MT, SD, FT, BD. Other codes are named in the block's
   optional ` + "`" + `instruments` + "`" + ` list: ` + "`" + `[{"code": "CB", "name": "Cowbell"}]` + "`" + `.
7. **References** repeat another block's content under their own label. They must
   point at a lyrics, tab or drum block, never at another reference.

## Plain-text import

` + "`" + `import_song` + "`" + ` accepts chord sheets: ` + "`" + `[Verse]` + "`" + ` headers, a chord line above each lyric
line, ASCII tab staves (` + "`" + `e|---3---|` + "`" + `), drum grids and ` + "`" + `capo: 2` + "`" + ` / ` + "`" + `tuning: Drop D` + "`" + `
/ ` + "`" + `title:` + "`" + ` / ` + "`" + `artist:` + "`" + ` hint lines.

## Audio

Attach recordings with the ` + "`" + `attach_audio` + "`" + ` tool (mp3, ogg, wav, flac, m4a). The song's
` + "`" + `audio_url` + "`" + ` is set to ` + "`" + `/media/<filename>` + "`" + `.
`
