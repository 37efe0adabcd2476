package routes

import "strings"

// ParamMarker is the leading character that marks a path segment as a named
// route parameter ("_id" → ":id").
const ParamMarker = "_"

// IndexName is the file name that collapses onto its parent's path.
const IndexName = "index"

// SegmentKind classifies a single path component.
type SegmentKind int

const (
	SegmentStatic SegmentKind = iota
	SegmentDynamic
	SegmentIndex
)

// String returns the string representation of the SegmentKind
func (k SegmentKind) String() string {
	switch k {
	case SegmentStatic:
		return "static"
	case SegmentDynamic:
		return "dynamic"
	case SegmentIndex:
		return "index"
	default:
		return "unknown"
	}
}

// Segment is one component of a page file path.
type Segment struct {
	// Raw is the segment exactly as it appears in the file path
	Raw string
	// Name is Raw with the first param marker removed
	Name string
	// PathText is Raw with the first param marker replaced by ':'
	PathText string
	Kind     SegmentKind
}

// Tokenize splits a page path (pages root removed, extension stripped) into
// segments. Only the first marker of a segment is interpreted; any further
// marker characters are kept as literal text.
func Tokenize(path string) []Segment {
	path = strings.Trim(collapseSlashes(path), "/")
	if path == "" {
		return nil
	}

	parts := strings.Split(path, "/")
	segments := make([]Segment, 0, len(parts))
	for _, raw := range parts {
		segments = append(segments, newSegment(raw))
	}
	return segments
}

func newSegment(raw string) Segment {
	seg := Segment{
		Raw:      raw,
		Name:     strings.Replace(raw, ParamMarker, "", 1),
		PathText: strings.Replace(raw, ParamMarker, ":", 1),
		Kind:     SegmentStatic,
	}

	switch {
	case raw == IndexName:
		seg.Kind = SegmentIndex
	case strings.Contains(raw, ParamMarker):
		seg.Kind = SegmentDynamic
	}
	return seg
}

// collapseSlashes turns runs of '/' into a single '/'.
func collapseSlashes(path string) string {
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	return path
}
