// Package gesture reads and writes pointer gesture scripts.
//
// A script is newline delimited JSON with one pointer event per line:
//
//	{"type":"down","x":100,"y":100}
//	{"type":"move","x":300,"y":200,"shift":true}
//	{"type":"up","x":300,"y":200}
//
// Blank lines and lines starting with '#' are ignored. A script may also be a
// single JSON array of such objects.
package gesture

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/menta2k/image-selector/pkg/types"
)

// ErrUnknownKind is returned for events whose type is not down, move or up
var ErrUnknownKind = errors.New("gesture: unknown event type")

// Parse reads a whole script
func Parse(r io.Reader) ([]types.PointerEvent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		return parseArray(string(trimmed))
	}

	var events []types.PointerEvent
	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		ev, err := ParseEvent(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan script: %w", err)
	}
	return events, nil
}

// ParseEvent parses a single JSON event object
func ParseEvent(raw string) (types.PointerEvent, error) {
	if !gjson.Valid(raw) {
		return types.PointerEvent{}, fmt.Errorf("invalid JSON: %q", raw)
	}
	return eventFromResult(gjson.Parse(raw))
}

func parseArray(raw string) ([]types.PointerEvent, error) {
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("invalid JSON array")
	}

	var events []types.PointerEvent
	var perr error
	gjson.Parse(raw).ForEach(func(key, value gjson.Result) bool {
		ev, err := eventFromResult(value)
		if err != nil {
			perr = fmt.Errorf("event %d: %w", key.Int(), err)
			return false
		}
		events = append(events, ev)
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return events, nil
}

func eventFromResult(res gjson.Result) (types.PointerEvent, error) {
	if !res.IsObject() {
		return types.PointerEvent{}, fmt.Errorf("event must be an object")
	}

	kind, err := parseKind(res.Get("type").String())
	if err != nil {
		return types.PointerEvent{}, err
	}
	x, y := res.Get("x"), res.Get("y")
	if !x.Exists() || !y.Exists() {
		return types.PointerEvent{}, fmt.Errorf("event %s is missing x or y", kind)
	}

	return types.PointerEvent{
		Kind: kind,
		X:    x.Float(),
		Y:    y.Float(),
		Mods: types.Modifiers{
			Ctrl:  res.Get("ctrl").Bool(),
			Shift: res.Get("shift").Bool(),
		},
	}, nil
}

func parseKind(s string) (types.EventKind, error) {
	switch strings.ToLower(s) {
	case "down", "mousedown", "pointerdown":
		return types.PointerDown, nil
	case "move", "mousemove", "pointermove":
		return types.PointerMove, nil
	case "up", "mouseup", "pointerup":
		return types.PointerUp, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// FormatEvent encodes ev as a single JSON line. Modifier keys are only
// written when held.
func FormatEvent(ev types.PointerEvent) (string, error) {
	line := "{}"
	var err error
	if line, err = sjson.Set(line, "type", ev.Kind.String()); err != nil {
		return "", err
	}
	if line, err = sjson.Set(line, "x", ev.X); err != nil {
		return "", err
	}
	if line, err = sjson.Set(line, "y", ev.Y); err != nil {
		return "", err
	}
	if ev.Mods.Ctrl {
		if line, err = sjson.Set(line, "ctrl", true); err != nil {
			return "", err
		}
	}
	if ev.Mods.Shift {
		if line, err = sjson.Set(line, "shift", true); err != nil {
			return "", err
		}
	}
	return line, nil
}

// Write encodes events as a script
func Write(w io.Writer, events []types.PointerEvent) error {
	for _, ev := range events {
		line, err := FormatEvent(ev)
		if err != nil {
			return fmt.Errorf("failed to encode %s event: %w", ev.Kind, err)
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// Drag synthesizes a down, steps moves and an up between two points.
// Intermediate positions are rounded to whole pixels.
func Drag(from, to types.Point, steps int, mods types.Modifiers) []types.PointerEvent {
	if steps < 1 {
		steps = 1
	}
	events := make([]types.PointerEvent, 0, steps+2)
	events = append(events, types.PointerEvent{Kind: types.PointerDown, X: from.X, Y: from.Y, Mods: mods})
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		events = append(events, types.PointerEvent{
			Kind: types.PointerMove,
			X:    math.Round(from.X + (to.X-from.X)*t),
			Y:    math.Round(from.Y + (to.Y-from.Y)*t),
			Mods: mods,
		})
	}
	events = append(events, types.PointerEvent{Kind: types.PointerUp, X: to.X, Y: to.Y, Mods: mods})
	return events
}

// Feed delivers events on the returned channel in order and closes it when
// done or when ctx is cancelled
func Feed(ctx context.Context, events []types.PointerEvent) <-chan types.PointerEvent {
	ch := make(chan types.PointerEvent)
	go func() {
		defer close(ch)
		for _, ev := range events {
			select {
			case <-ctx.Done():
				return
			case ch <- ev:
			}
		}
	}()
	return ch
}
