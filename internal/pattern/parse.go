package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a malformed pattern expression. It is deliberately a
// plain error (rather than a source.Diagnostic) because pattern parsing has
// no span information of its own; callers attach the owning expr_id's span
// when converting this into a Diagnostic.
type ParseError struct {
	Raw string
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %s", e.Raw, e.Msg)
}

// Parse tokenizes a raw pattern-bearing string into an Expr. Top-level ';'
// characters (outside of '<...>') split the expression into segments;
// within a segment, literal runs and '<...>' groups alternate freely.
func Parse(raw string) (Expr, error) {
	segments, err := splitSegments(raw)
	if err != nil {
		return Expr{}, err
	}

	out := Expr{Raw: raw, Segments: make([]Segment, len(segments))}

	for i, s := range segments {
		seg, err := parseSegment(s)
		if err != nil {
			return Expr{}, err
		}

		out.Segments[i] = seg
	}

	return out, nil
}

// splitSegments splits raw on top-level ';' characters, i.e. those not
// nested inside a '<...>' group.
func splitSegments(raw string) ([]string, error) {
	var (
		segments []string
		depth    int
		start    int
	)

	for i, r := range raw {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return nil, &ParseError{raw, "unbalanced '>'"}
			}
		case ';':
			if depth == 0 {
				segments = append(segments, raw[start:i])
				start = i + 1
			}
		}
	}

	if depth != 0 {
		return nil, &ParseError{raw, "unbalanced '<'"}
	}

	segments = append(segments, raw[start:])

	return segments, nil
}

// parseSegment tokenizes a single (non-spliced) piece of a pattern
// expression into alternating literal and group tokens.
func parseSegment(raw string) (Segment, error) {
	var (
		seg     Segment
		literal strings.Builder
	)

	flushLiteral := func() {
		if literal.Len() > 0 {
			seg = append(seg, Token{Literal: literal.String()})
			literal.Reset()
		}
	}

	runes := []rune(raw)
	i := 0

	for i < len(runes) {
		if runes[i] != '<' {
			literal.WriteRune(runes[i])
			i++

			continue
		}
		// Find the matching '>' at the same nesting depth (groups do not
		// nest, per ADR-0008).
		end := -1

		for j := i + 1; j < len(runes); j++ {
			if runes[j] == '<' {
				return nil, &ParseError{raw, "nested groups are not permitted"}
			}

			if runes[j] == '>' {
				end = j

				break
			}
		}

		if end < 0 {
			return nil, &ParseError{raw, "unbalanced '<'"}
		}

		flushLiteral()

		group, err := parseGroup(string(runes[i+1 : end]))
		if err != nil {
			return nil, &ParseError{raw, err.Error()}
		}

		seg = append(seg, Token{IsGroup: true, Group: group})
		i = end + 1
	}

	flushLiteral()

	return seg, nil
}

// parseGroup parses the text between '<' and '>' (exclusive) into a Group.
func parseGroup(body string) (Group, error) {
	if body == "" {
		return Group{}, fmt.Errorf("empty group")
	}

	if strings.HasPrefix(body, "@") {
		name := body[1:]
		if name == "" {
			return Group{}, fmt.Errorf("named reference missing a name")
		}

		return Group{Kind: GroupNamedRef, Name: name}, nil
	}

	hasBar := strings.Contains(body, "|")
	colonCount := strings.Count(body, ":")

	if colonCount > 1 {
		return Group{}, fmt.Errorf("at most one ':' permitted in a group")
	}

	if hasBar && colonCount == 1 {
		return Group{}, fmt.Errorf("mixing '|' and ':' in one group is invalid")
	}

	if colonCount == 1 {
		parts := strings.SplitN(body, ":", 2)

		start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return Group{}, fmt.Errorf("invalid range start %q", parts[0])
		}

		end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return Group{}, fmt.Errorf("invalid range end %q", parts[1])
		}

		return Group{Kind: GroupRange, RangeStart: start, RangeEnd: end}, nil
	}
	// Enum group: one or more '|'-separated literal alternatives. A bare
	// <literal> with no '|' is treated as a degenerate single-alternative
	// enum.
	alts := strings.Split(body, "|")

	return Group{Kind: GroupEnum, Enum: alts}, nil
}
