package source

// File represents a single source file keyed by a stable FileID, carrying
// its original contents for enclosing-line lookups when rendering
// diagnostics.
type File struct {
	id       string
	filename string
	contents []rune
}

// NewFile constructs a source file from its raw bytes.
func NewFile(id, filename string, contents []byte) *File {
	return &File{id, filename, []rune(string(contents))}
}

// ID returns the stable file identifier.
func (f *File) ID() string { return f.id }

// Filename returns the path this file was loaded from.
func (f *File) Filename() string { return f.filename }

// Contents returns the full rune slice of this file.
func (f *File) Contents() []rune { return f.contents }

// Line describes one physical line within a File.
type Line struct {
	text   []rune
	span   Span
	number int
}

// String renders the text of this line.
func (l Line) String() string { return string(l.text[l.span.start:l.span.end]) }

// Number returns the 1-based line number.
func (l Line) Number() int { return l.number }

// FindFirstEnclosingLine returns the first physical line enclosing the start
// of span. If span lies beyond the end of the file, the last line is
// returned.
func (f *File) FindFirstEnclosingLine(span Span) Line {
	index := span.start
	num := 1
	start := 0

	for i := 0; i < len(f.contents); i++ {
		if i == index {
			end := findEndOfLine(index, f.contents)
			return Line{f.contents, Span{start, end}, num}
		} else if f.contents[i] == '\n' {
			num++
			start = i + 1
		}
	}

	return Line{f.contents, Span{start, len(f.contents)}, num}
}

func findEndOfLine(index int, text []rune) int {
	for i := index; i < len(text); i++ {
		if text[i] == '\n' {
			return i
		}
	}

	return len(text)
}
