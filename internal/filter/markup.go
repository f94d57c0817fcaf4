package filter

const (
	highlightOpen  = "<b>"
	highlightClose = "</b>"
)

// Segment is a run of title text, either plain or highlighted.
type Segment struct {
	Text      string
	Highlight bool
}

// Highlight wraps every case-insensitive occurrence of query in title.
func Highlight(title, query string) string {
	if query == "" {
		return title
	}
	return newMatcher(query).highlight(title)
}

// Segments splits a canonical title into plain and highlighted runs, one
// highlighted run per case-insensitive occurrence of query. Renderers use it
// instead of parsing markup, so titles that contain "<b>" show as written.
func Segments(title, query string) []Segment {
	if title == "" {
		return nil
	}
	if query == "" {
		return []Segment{{Text: title}}
	}

	var segments []Segment
	last := 0
	for _, loc := range newMatcher(query).re.FindAllStringIndex(title, -1) {
		if loc[0] > last {
			segments = append(segments, Segment{Text: title[last:loc[0]]})
		}
		segments = append(segments, Segment{Text: title[loc[0]:loc[1]], Highlight: true})
		last = loc[1]
	}
	if last < len(title) {
		segments = append(segments, Segment{Text: title[last:]})
	}
	return segments
}
