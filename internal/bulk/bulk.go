// Package bulk reads and writes the Elasticsearch/OpenSearch _bulk NDJSON
// format: an action line followed by the document line, once per event.
package bulk

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/signin"
)

// ActionLine is the index directive written before every document when no
// target index is named; the index comes from the _bulk URL instead.
const ActionLine = `{"index":{}}`

// ErrBadAction is returned when an action line is not an index directive.
var ErrBadAction = errors.New("expected index action line")

type action struct {
	Index *indexMeta `json:"index"`
}

type indexMeta struct {
	Index string `json:"_index,omitempty"`
}

// Writer emits action/document line pairs.
type Writer struct {
	w      *bufio.Writer
	action []byte
	count  int
}

// NewWriter returns a Writer. A non-empty index is embedded in every action line.
func NewWriter(w io.Writer, index string) (*Writer, error) {
	line := []byte(ActionLine)
	if index != "" {
		var err error
		line, err = json.Marshal(action{Index: &indexMeta{Index: index}})
		if err != nil {
			return nil, fmt.Errorf("encode action line: %w", err)
		}
	}
	return &Writer{w: bufio.NewWriter(w), action: line}, nil
}

// Write appends one event.
func (bw *Writer) Write(ev *signin.Event) error {
	doc, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", ev.Event.ID, err)
	}
	if _, err := bw.w.Write(bw.action); err != nil {
		return err
	}
	if err := bw.w.WriteByte('\n'); err != nil {
		return err
	}
	if _, err := bw.w.Write(doc); err != nil {
		return err
	}
	if err := bw.w.WriteByte('\n'); err != nil {
		return err
	}
	bw.count++
	return nil
}

// WriteAll appends every event in order.
func (bw *Writer) WriteAll(events []signin.Event) error {
	for i := range events {
		if err := bw.Write(&events[i]); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes any buffered data.
func (bw *Writer) Flush() error {
	return bw.w.Flush()
}

// Count returns the number of events written.
func (bw *Writer) Count() int {
	return bw.count
}

// Encode writes events to w as a complete bulk body.
func Encode(w io.Writer, index string, events []signin.Event) error {
	bw, err := NewWriter(w, index)
	if err != nil {
		return err
	}
	if err := bw.WriteAll(events); err != nil {
		return err
	}
	return bw.Flush()
}

// Reader parses a bulk stream back into events.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	return &Reader{sc: sc}
}

// Next returns the next event, or io.EOF at a clean end of stream.
func (br *Reader) Next() (signin.Event, error) {
	var ev signin.Event

	actionLine, ok, err := br.scan()
	if err != nil {
		return ev, err
	}
	if !ok {
		return ev, io.EOF
	}
	var a action
	if err := json.Unmarshal(actionLine, &a); err != nil || a.Index == nil {
		return ev, fmt.Errorf("line %d: %w", br.line, ErrBadAction)
	}

	docLine, ok, err := br.scan()
	if err != nil {
		return ev, err
	}
	if !ok {
		return ev, fmt.Errorf("line %d: action without document: %w", br.line, io.ErrUnexpectedEOF)
	}
	if err := json.Unmarshal(docLine, &ev); err != nil {
		return ev, fmt.Errorf("line %d: decode document: %w", br.line, err)
	}
	return ev, nil
}

// scan returns the next non-blank line.
func (br *Reader) scan() ([]byte, bool, error) {
	for br.sc.Scan() {
		br.line++
		if len(br.sc.Bytes()) == 0 {
			continue
		}
		return br.sc.Bytes(), true, nil
	}
	return nil, false, br.sc.Err()
}

// ReadAll reads every event from r.
func ReadAll(r io.Reader) ([]signin.Event, error) {
	br := NewReader(r)
	var events []signin.Event
	for {
		ev, err := br.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
}
