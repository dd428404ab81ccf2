package backend

import (
	"bufio"
	"io"
	"strings"
)

// sseEvent is one server-sent event frame. Name is empty for default
// (unnamed) messages.
type sseEvent struct {
	Name string
	Data string
}

// sseScanner incrementally parses the text/event-stream wire format:
// "event:"/"data:" field lines accumulated until a blank line dispatches
// the frame. Comment lines (leading colon) and unknown fields (id, retry)
// are skipped.
type sseScanner struct {
	scanner *bufio.Scanner
}

const maxEventSize = 1 << 20

func newSSEScanner(r io.Reader) *sseScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	return &sseScanner{scanner: sc}
}

// Next returns the next complete frame, or io.EOF when the stream ends.
func (s *sseScanner) Next() (*sseEvent, error) {
	ev := &sseEvent{}
	var data []string

	for s.scanner.Scan() {
		line := strings.TrimSuffix(s.scanner.Text(), "\r")

		if line == "" {
			if ev.Name != "" || len(data) > 0 {
				ev.Data = strings.Join(data, "\n")
				return ev, nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, found := strings.Cut(line, ":")
		if !found {
			field, value = line, ""
		}
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			ev.Name = value
		case "data":
			data = append(data, value)
		}
	}

	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
