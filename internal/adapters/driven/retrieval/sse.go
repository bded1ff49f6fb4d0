package retrieval

import (
	"bufio"
	"io"
	"strings"
)

// maxEventSize bounds a single event; done events carry the whole document.
const maxEventSize = 16 << 20

// sseEvent is one dispatched server-sent event.
type sseEvent struct {
	Name string
	Data string
}

// readEvents parses a text/event-stream body and calls fn for every event.
// Events without a name are reported as "message". Reading stops at EOF or
// when fn returns an error.
func readEvents(r io.Reader, fn func(sseEvent) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	var name string
	var data []string
	dispatch := func() error {
		if len(data) == 0 {
			name = ""
			return nil
		}
		ev := sseEvent{Name: name, Data: strings.Join(data, "\n")}
		if ev.Name == "" {
			ev.Name = "message"
		}
		name, data = "", nil
		return fn(ev)
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if err := dispatch(); err != nil {
				return err
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			name = value
		case "data":
			data = append(data, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return dispatch()
}
