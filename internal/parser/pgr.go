package parser

import (
	"math"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/ChickenPige0n/prpr/internal/curve"
	"github.com/ChickenPige0n/prpr/internal/game"
)

// PgrParser reads the official Phigros JSON chart format. Each judge
// line carries a single BPM; event and note times are counted in
// 1/32-beat units of that BPM.
type PgrParser struct{}

const (
	// one pgr speed unit in normalized screen units per second
	pgrSpeedRatio = 0.6
	// lane offsets are counted in 1/9 screen half-widths
	pgrPosRatio = 1.0 / 9
)

type pgrLineEvent struct {
	t0, t1 float64
	x0, y0 float64 // second pair only used by move events
	x1, y1 float64
}

func pgrEvents(arr gjson.Result, r float64, packed bool) []pgrLineEvent {
	var events []pgrLineEvent
	arr.ForEach(func(_, ev gjson.Result) bool {
		e := pgrLineEvent{
			t0: ev.Get("startTime").Float() * r,
			t1: ev.Get("endTime").Float() * r,
		}
		if packed {
			// format v1 packs both coordinates into one integer
			s, en := ev.Get("start").Float(), ev.Get("end").Float()
			e.x0, e.y0 = math.Trunc(s/1000)/880, math.Mod(s, 1000)/520
			e.x1, e.y1 = math.Trunc(en/1000)/880, math.Mod(en, 1000)/520
		} else {
			e.x0, e.y0 = ev.Get("start").Float(), ev.Get("start2").Float()
			e.x1, e.y1 = ev.Get("end").Float(), ev.Get("end2").Float()
		}
		events = append(events, e)
		return true
	})
	sort.SliceStable(events, func(i, j int) bool { return events[i].t0 < events[j].t0 })
	return events
}

func pgrValueEvents(arr gjson.Result, r, scale float64) curve.Sequence {
	seq := curve.Sequence{}
	var events []pgrLineEvent
	arr.ForEach(func(_, ev gjson.Result) bool {
		events = append(events, pgrLineEvent{
			t0: ev.Get("startTime").Float() * r,
			t1: ev.Get("endTime").Float() * r,
			x0: ev.Get("start").Float() * scale,
			x1: ev.Get("end").Float() * scale,
		})
		return true
	})
	sort.SliceStable(events, func(i, j int) bool { return events[i].t0 < events[j].t0 })
	for _, e := range events {
		seq = appendEvent(seq, e.t0, e.t1, e.x0, e.x1, curve.Linear)
	}
	return seq
}

func pgrSpeedEvents(arr gjson.Result, r float64) curve.Sequence {
	seq := curve.Sequence{}
	var events []pgrLineEvent
	arr.ForEach(func(_, ev gjson.Result) bool {
		events = append(events, pgrLineEvent{
			t0: ev.Get("startTime").Float() * r,
			x0: ev.Get("value").Float() * pgrSpeedRatio,
		})
		return true
	})
	sort.SliceStable(events, func(i, j int) bool { return events[i].t0 < events[j].t0 })
	for _, e := range events {
		seq = appendStep(seq, e.t0, e.x0)
	}
	return seq
}

func (p *PgrParser) parseNotes(arr gjson.Result, r float64, above bool, index int, line *game.Line) error {
	var ferr error
	arr.ForEach(func(_, nv gjson.Result) bool {
		var kind game.NoteKind
		switch nv.Get("type").Int() {
		case 1:
			kind = game.Tap
		case 2:
			kind = game.Drag
		case 3:
			kind = game.Hold
		case 4:
			kind = game.Flick
		default:
			ferr = outOfRange(FormatPgr, "line %d: note type %d", index, nv.Get("type").Int())
			return false
		}
		speed := nv.Get("speed").Float()
		if speed == 0 {
			speed = 1
		}
		note := &game.Note{
			Kind:   kind,
			Time:   nv.Get("time").Float() * r,
			PosX:   nv.Get("positionX").Float() * pgrPosRatio,
			Above:  above,
			Speed:  speed,
			Window: game.StandardWindow,
			Line:   index,
		}
		note.TimeEnd = note.Time
		if kind == game.Hold {
			note.TimeEnd = note.Time + nv.Get("holdTime").Float()*r
		}
		line.Notes = append(line.Notes, note)
		return true
	})
	return ferr
}

func (p *PgrParser) Parse(data []byte) (*game.Chart, error) {
	if !gjson.ValidBytes(data) {
		return nil, malformed(FormatPgr, "not valid json")
	}
	root := gjson.ParseBytes(data)
	version := root.Get("formatVersion").Int()
	if version != 1 && version != 3 {
		return nil, unsupported(FormatPgr, "format version %d", version)
	}

	chart := &game.Chart{
		Offset: root.Get("offset").Float(),
		Aspect: 16.0 / 9,
	}

	lineList := root.Get("judgeLineList")
	if !lineList.IsArray() {
		return nil, malformed(FormatPgr, "missing judgeLineList")
	}

	var ferr error
	index := 0
	lineList.ForEach(func(_, v gjson.Result) bool {
		bpm := v.Get("bpm").Float()
		if bpm <= 0 {
			ferr = outOfRange(FormatPgr, "line %d: bpm %v", index, bpm)
			return false
		}
		// pgr times are 1/32 beats: 60 / bpm / 32 seconds each
		r := 1.875 / bpm

		line := &game.Line{
			Rotate: pgrValueEvents(v.Get("judgeLineRotateEvents"), r, 1),
			Alpha:  pgrValueEvents(v.Get("judgeLineDisappearEvents"), r, 1),
			Speed:  pgrSpeedEvents(v.Get("speedEvents"), r),
			Parent: game.NoParent,
		}
		moves := pgrEvents(v.Get("judgeLineMoveEvents"), r, version == 1)
		x, y := curve.Sequence{}, curve.Sequence{}
		for _, e := range moves {
			x = appendEvent(x, e.t0, e.t1, e.x0*2-1, e.x1*2-1, curve.Linear)
			y = appendEvent(y, e.t0, e.t1, e.y0*2-1, e.y1*2-1, curve.Linear)
		}
		line.X = finish(x, 0)
		line.Y = finish(y, 0)
		line.Rotate = finish(line.Rotate, 0)
		line.Alpha = finish(line.Alpha, 1)
		line.Speed = finish(line.Speed, pgrSpeedRatio)

		if err := p.parseNotes(v.Get("notesAbove"), r, true, index, line); nil != err {
			ferr = err
			return false
		}
		if err := p.parseNotes(v.Get("notesBelow"), r, false, index, line); nil != err {
			ferr = err
			return false
		}
		line.SortNotes()
		chart.Lines = append(chart.Lines, line)
		index++
		return true
	})
	if nil != ferr {
		return nil, ferr
	}

	if want := root.Get("numOfNotes"); want.Exists() && int(want.Int()) != chart.NoteCount() {
		return nil, malformed(FormatPgr, "numOfNotes %d does not match %d parsed", want.Int(), chart.NoteCount())
	}
	return validate(FormatPgr, chart)
}
