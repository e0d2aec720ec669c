package parser

import (
	"bufio"
	"bytes"
	"sort"
	"strconv"

	"github.com/ChickenPige0n/prpr/internal/curve"
	"github.com/ChickenPige0n/prpr/internal/game"
)

// PecParser reads the PEC text format: a leading global offset in
// milliseconds, then one command per line. Times are absolute beats
// resolved against the chart's bp table.
type PecParser struct{}

const (
	pecHalfWidth  = 1024.0
	pecHalfHeight = 700.0

	// pec inherits the legacy 150 ms offset shift
	pecOffsetShift = 0.15

	// one pec speed unit in normalized screen units per second
	pecSpeedRatio = 0.3
)

type pecEvent struct {
	t0, t1 float64 // beats
	v0, v1 float64
	easing curve.Easing
	step   bool // instantaneous, only v1 applies
}

type pecLine struct {
	x, y, rot, alpha, speed []pecEvent
	notes                   []*game.Note
}

type pecReader struct {
	lineNo int
	fields []string
	pos    int
}

func (r *pecReader) float() (float64, error) {
	if r.pos >= len(r.fields) {
		return 0, malformed(FormatPec, "line %d: missing argument", r.lineNo)
	}
	v, err := strconv.ParseFloat(r.fields[r.pos], 64)
	if nil != err {
		return 0, malformed(FormatPec, "line %d: %q is not a number", r.lineNo, r.fields[r.pos])
	}
	r.pos++
	return v, nil
}

func (r *pecReader) int() (int, error) {
	v, err := r.float()
	return int(v), err
}

func (r *pecReader) easing() (curve.Easing, error) {
	et, err := r.int()
	if nil != err {
		return 0, err
	}
	if et <= 0 {
		return curve.Linear, nil
	}
	e := curve.Easing(et - 1)
	if !e.Valid() {
		return 0, outOfRange(FormatPec, "line %d: easing type %d", r.lineNo, et)
	}
	return e, nil
}

func emitChannel(events []pecEvent, bpm bpmTable, def float64) curve.Sequence {
	sort.SliceStable(events, func(i, j int) bool { return events[i].t0 < events[j].t0 })
	seq := curve.Sequence{}
	for _, e := range events {
		if e.step {
			seq = appendStep(seq, bpm.seconds(e.t0), e.v1)
		} else {
			seq = appendEvent(seq, bpm.seconds(e.t0), bpm.seconds(e.t1), e.v0, e.v1, e.easing)
		}
	}
	return finish(seq, def)
}

func (p *PecParser) Parse(data []byte) (*game.Chart, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var changes []bpmChange
	lines := map[int]*pecLine{}
	maxLine := -1

	at := func(id int) *pecLine {
		if id > maxLine {
			maxLine = id
		}
		l, ok := lines[id]
		if !ok {
			l = &pecLine{}
			lines[id] = l
		}
		return l
	}

	offsetSeen := false
	offset := 0.0
	var lastNote *game.Note
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		fields := splitPec(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		r := &pecReader{lineNo: lineNo, fields: fields, pos: 1}

		if !offsetSeen {
			r.pos = 0
			off, err := r.float()
			if nil != err {
				return nil, err
			}
			offset = off/1000 - pecOffsetShift
			offsetSeen = true
			continue
		}

		cmd := fields[0]
		switch cmd {
		case "bp":
			beat, err := r.float()
			if nil != err {
				return nil, err
			}
			bpm, err := r.float()
			if nil != err {
				return nil, err
			}
			if bpm <= 0 {
				return nil, outOfRange(FormatPec, "line %d: bpm %v", lineNo, bpm)
			}
			changes = append(changes, bpmChange{Beat: beat, BPM: bpm})

		case "n1", "n2", "n3", "n4":
			id, err := r.int()
			if nil != err {
				return nil, err
			}
			start, err := r.float()
			if nil != err {
				return nil, err
			}
			end := start
			if cmd == "n2" {
				if end, err = r.float(); nil != err {
					return nil, err
				}
			}
			x, err := r.float()
			if nil != err {
				return nil, err
			}
			side, err := r.int()
			if nil != err {
				return nil, err
			}
			if side != 1 && side != 2 {
				return nil, outOfRange(FormatPec, "line %d: side flag %d", lineNo, side)
			}
			fake := false
			if r.pos < len(fields) {
				f, err := r.int()
				if nil != err {
					return nil, err
				}
				fake = f != 0
			}
			kinds := map[string]game.NoteKind{"n1": game.Tap, "n2": game.Hold, "n3": game.Flick, "n4": game.Drag}
			lastNote = &game.Note{
				Kind:    kinds[cmd],
				Time:    start, // beats until resolved below
				TimeEnd: end,
				PosX:    x / pecHalfWidth,
				Above:   side == 1,
				Speed:   1,
				Fake:    fake,
				Window:  game.StandardWindow,
				Line:    id,
			}
			at(id).notes = append(at(id).notes, lastNote)

		case "#", "&":
			v, err := r.float()
			if nil != err {
				return nil, err
			}
			if lastNote == nil {
				return nil, malformed(FormatPec, "line %d: %q modifier with no note", lineNo, cmd)
			}
			if cmd == "#" {
				lastNote.Speed = v
			}
			// "&" is the visual size modifier; the model has no note
			// scale, so it is consumed and dropped.

		case "cv":
			id, err := r.int()
			if nil != err {
				return nil, err
			}
			beat, err := r.float()
			if nil != err {
				return nil, err
			}
			v, err := r.float()
			if nil != err {
				return nil, err
			}
			l := at(id)
			l.speed = append(l.speed, pecEvent{t0: beat, v1: v * pecSpeedRatio, step: true})

		case "cp", "cd", "ca":
			id, err := r.int()
			if nil != err {
				return nil, err
			}
			beat, err := r.float()
			if nil != err {
				return nil, err
			}
			l := at(id)
			switch cmd {
			case "cp":
				x, err := r.float()
				if nil != err {
					return nil, err
				}
				y, err := r.float()
				if nil != err {
					return nil, err
				}
				l.x = append(l.x, pecEvent{t0: beat, v1: x/pecHalfWidth - 1, step: true})
				l.y = append(l.y, pecEvent{t0: beat, v1: y/pecHalfHeight - 1, step: true})
			case "cd":
				deg, err := r.float()
				if nil != err {
					return nil, err
				}
				l.rot = append(l.rot, pecEvent{t0: beat, v1: deg, step: true})
			case "ca":
				a, err := r.float()
				if nil != err {
					return nil, err
				}
				l.alpha = append(l.alpha, pecEvent{t0: beat, v1: a / 255, step: true})
			}

		case "cm", "cr", "cf":
			id, err := r.int()
			if nil != err {
				return nil, err
			}
			t0, err := r.float()
			if nil != err {
				return nil, err
			}
			t1, err := r.float()
			if nil != err {
				return nil, err
			}
			l := at(id)
			switch cmd {
			case "cm":
				x, err := r.float()
				if nil != err {
					return nil, err
				}
				y, err := r.float()
				if nil != err {
					return nil, err
				}
				easing, err := r.easing()
				if nil != err {
					return nil, err
				}
				l.x = append(l.x, pecEvent{t0: t0, t1: t1, v1: x/pecHalfWidth - 1, easing: easing})
				l.y = append(l.y, pecEvent{t0: t0, t1: t1, v1: y/pecHalfHeight - 1, easing: easing})
			case "cr":
				deg, err := r.float()
				if nil != err {
					return nil, err
				}
				easing, err := r.easing()
				if nil != err {
					return nil, err
				}
				l.rot = append(l.rot, pecEvent{t0: t0, t1: t1, v1: deg, easing: easing})
			case "cf":
				a, err := r.float()
				if nil != err {
					return nil, err
				}
				l.alpha = append(l.alpha, pecEvent{t0: t0, t1: t1, v1: a / 255, easing: curve.Linear})
			}

		default:
			return nil, unsupported(FormatPec, "line %d: command %q", lineNo, cmd)
		}
	}
	if err := scanner.Err(); nil != err {
		return nil, malformed(FormatPec, "read: %v", err)
	}
	if !offsetSeen {
		return nil, malformed(FormatPec, "empty chart")
	}

	bpm := newBPMTable(changes)
	if !bpm.valid() {
		return nil, outOfRange(FormatPec, "no positive bp entries")
	}

	chart := &game.Chart{
		Offset: offset,
		Aspect: 16.0 / 9,
	}
	for id := 0; id <= maxLine; id++ {
		src := lines[id]
		if src == nil {
			src = &pecLine{}
		}
		line := &game.Line{
			X:      emitChannel(resolveTargets(src.x), bpm, 0),
			Y:      emitChannel(resolveTargets(src.y), bpm, 0),
			Rotate: emitChannel(resolveTargets(src.rot), bpm, 0),
			Alpha:  emitChannel(resolveTargets(src.alpha), bpm, 0),
			Speed:  emitChannel(src.speed, bpm, pecSpeedRatio*2),
			Parent: game.NoParent,
		}
		for _, n := range src.notes {
			n.Line = id
			n.Time = bpm.seconds(n.Time)
			if n.Kind == game.Hold {
				n.TimeEnd = bpm.seconds(n.TimeEnd)
			} else {
				n.TimeEnd = n.Time
			}
			line.Notes = append(line.Notes, n)
		}
		line.SortNotes()
		chart.Lines = append(chart.Lines, line)
	}
	return validate(FormatPec, chart)
}

// resolveTargets fills each eased event's start value from the end of
// the previous event on the channel; pec only authors destinations.
func resolveTargets(events []pecEvent) []pecEvent {
	sort.SliceStable(events, func(i, j int) bool { return events[i].t0 < events[j].t0 })
	last := 0.0
	for i := range events {
		if !events[i].step {
			events[i].v0 = last
		}
		last = events[i].v1
	}
	return events
}

// splitPec tokenizes one pec line; the '#' and '&' modifiers may be
// glued to their value.
func splitPec(s string) []string {
	fields := []string{}
	cur := []byte{}
	flush := func() {
		if len(cur) > 0 {
			fields = append(fields, string(cur))
			cur = cur[:0]
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			flush()
		case (c == '#' || c == '&') && len(fields) == 0 && len(cur) == 0:
			fields = append(fields, string(c))
		default:
			cur = append(cur, c)
		}
	}
	flush()
	return fields
}
