// ABOUTME: Server-Sent Events support shared by the dev server, its Go clients, and tests.
// ABOUTME: One Event type serves both directions: Format writes wire text, Parser reads streams.
package sse

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Event types published by the dev server's change feed.
const (
	TypeBuildStarted   = "build.started"
	TypeBuildCompleted = "build.completed"
	TypeBuildFailed    = "build.failed"
	TypeReload         = "reload"
	TypeWatchError     = "watch.error"
)

// Event is a single Server-Sent Event.
type Event struct {
	Type  string // from "event:" line, defaults to "message"
	Data  string // from "data:" line(s), multi-line joined with newlines
	ID    string // from "id:" line
	Retry int    // from "retry:" line, -1 if not set
}

// Format renders the event as SSE wire text. Multi-line data becomes one
// "data:" line per segment so Parser round-trips it.
func (e Event) Format() string {
	var buf strings.Builder
	if e.ID != "" {
		fmt.Fprintf(&buf, "id: %s\n", e.ID)
	}
	typ := e.Type
	if typ == "" {
		typ = "message"
	}
	fmt.Fprintf(&buf, "event: %s\n", typ)
	for _, line := range strings.Split(e.Data, "\n") {
		fmt.Fprintf(&buf, "data: %s\n", line)
	}
	if e.Retry > 0 {
		fmt.Fprintf(&buf, "retry: %d\n", e.Retry)
	}
	buf.WriteString("\n")
	return buf.String()
}

// Parser reads SSE events from an io.Reader per the EventSource wire format.
type Parser struct {
	s    *bufio.Scanner
	done bool

	// Accumulation state for the event being built.
	eventType string
	dataLines []string
	hasData   bool
	id        string
	retry     int
}

// NewParser creates a parser reading from r.
func NewParser(r io.Reader) *Parser {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), 1024*1024)
	s.Split(scanEventLines)
	return &Parser{s: s, retry: -1}
}

// Next returns the next event from the stream, or io.EOF when it ends.
// A pending event at EOF is dispatched before io.EOF is reported.
func (p *Parser) Next() (Event, error) {
	if p.done {
		return Event{}, io.EOF
	}

	for p.s.Scan() {
		line := p.s.Text()

		// A blank line dispatches the current event. Consecutive blanks
		// with nothing accumulated are skipped.
		if line == "" {
			if !p.hasData {
				continue
			}
			evt := p.build()
			p.reset()
			return evt, nil
		}

		// Comment lines start with ':'.
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := splitField(line)
		p.apply(field, value)
	}

	p.done = true
	if err := p.s.Err(); err != nil {
		return Event{}, err
	}
	if p.hasData {
		evt := p.build()
		p.reset()
		return evt, nil
	}
	return Event{}, io.EOF
}

// splitField splits an SSE line at the first colon. A missing colon makes the
// whole line the field name. A single leading space in the value is stripped.
func splitField(line string) (field, value string) {
	idx := strings.IndexByte(line, ':')
	if idx == -1 {
		return line, ""
	}
	field, value = line[:idx], line[idx+1:]
	if len(value) > 0 && value[0] == ' ' {
		value = value[1:]
	}
	return field, value
}

func (p *Parser) apply(field, value string) {
	switch field {
	case "event":
		p.eventType = value
	case "data":
		p.dataLines = append(p.dataLines, value)
		p.hasData = true
	case "id":
		p.id = value
	case "retry":
		if n, err := strconv.Atoi(value); err == nil {
			p.retry = n
		}
		// Invalid retry values are ignored per the SSE spec.
	default:
		// Unknown fields are ignored.
	}
}

func (p *Parser) build() Event {
	typ := p.eventType
	if typ == "" {
		typ = "message"
	}
	return Event{
		Type:  typ,
		Data:  strings.Join(p.dataLines, "\n"),
		ID:    p.id,
		Retry: p.retry,
	}
}

func (p *Parser) reset() {
	p.eventType = ""
	p.dataLines = nil
	p.hasData = false
	p.id = ""
	p.retry = -1
}

// scanEventLines is a bufio.SplitFunc that terminates lines on CR, LF, or
// CRLF. bufio.ScanLines only handles LF and CRLF; EventSource also allows a
// bare CR.
func scanEventLines(data []byte, atEOF bool) (int, []byte, error) {
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\n':
			return i + 1, data[:i], nil
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if atEOF {
				return i + 1, data[:i], nil
			}
			// Could be the first half of CRLF; wait for more input.
			return 0, nil, nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}
