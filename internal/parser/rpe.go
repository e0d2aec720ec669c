package parser

import (
	"sort"

	"github.com/tidwall/gjson"

	"github.com/ChickenPige0n/prpr/internal/curve"
	"github.com/ChickenPige0n/prpr/internal/game"
)

// RpeParser reads the RPE editor's JSON chart format. Times are beat
// triples [bar, numerator, denominator] resolved against the chart's
// BPM list.
type RpeParser struct{}

const (
	rpeHalfWidth  = 675.0
	rpeHalfHeight = 450.0

	// one RPE speed unit in normalized screen units per second
	rpeSpeedRatio = 2.0 / 15.0
)

// rpeBeats resolves a [bar, num, den] triple into absolute beats.
func rpeBeats(v gjson.Result) (float64, error) {
	if !v.IsArray() {
		if v.Type == gjson.Number {
			return v.Float(), nil
		}
		return 0, malformed(FormatRpe, "beat value %q is not a triple", v.Raw)
	}
	parts := v.Array()
	if len(parts) != 3 {
		return 0, malformed(FormatRpe, "beat triple has %d elements", len(parts))
	}
	den := parts[2].Float()
	if den == 0 {
		return 0, outOfRange(FormatRpe, "beat denominator is zero")
	}
	return parts[0].Float() + parts[1].Float()/den, nil
}

func rpeEasing(v gjson.Result) (curve.Easing, error) {
	et := v.Int()
	if et <= 0 {
		return curve.Linear, nil
	}
	e := curve.Easing(et - 1)
	if !e.Valid() {
		return 0, outOfRange(FormatRpe, "easing type %d", et)
	}
	return e, nil
}

type rpeEvent struct {
	t0, t1 float64
	v0, v1 float64
	easing curve.Easing
}

// rpeEvents decodes one channel of one event layer into seconds.
func rpeEvents(arr gjson.Result, bpm bpmTable, scale float64) ([]rpeEvent, error) {
	var events []rpeEvent
	var ferr error
	arr.ForEach(func(_, ev gjson.Result) bool {
		t0, err := rpeBeats(ev.Get("startTime"))
		if nil != err {
			ferr = err
			return false
		}
		t1, err := rpeBeats(ev.Get("endTime"))
		if nil != err {
			ferr = err
			return false
		}
		easing, err := rpeEasing(ev.Get("easingType"))
		if nil != err {
			ferr = err
			return false
		}
		events = append(events, rpeEvent{
			t0:     bpm.seconds(t0),
			t1:     bpm.seconds(t1),
			v0:     ev.Get("start").Float() * scale,
			v1:     ev.Get("end").Float() * scale,
			easing: easing,
		})
		return true
	})
	if nil != ferr {
		return nil, ferr
	}
	// RPE does not promise event ordering inside a layer
	sort.SliceStable(events, func(i, j int) bool { return events[i].t0 < events[j].t0 })
	return events, nil
}

func rpeChannel(arr gjson.Result, bpm bpmTable, scale float64) (curve.Sequence, error) {
	events, err := rpeEvents(arr, bpm, scale)
	if nil != err {
		return nil, err
	}
	seq := curve.Sequence{}
	for _, ev := range events {
		seq = appendEvent(seq, ev.t0, ev.t1, ev.v0, ev.v1, ev.easing)
	}
	return seq, nil
}

func (p *RpeParser) parseLine(index int, v gjson.Result, bpm bpmTable) (*game.Line, error) {
	if ui := v.Get("attachUI"); ui.Exists() && ui.String() != "" {
		return nil, unsupported(FormatRpe, "line %d is attached to UI element %q", index, ui.String())
	}

	channels := map[string][]curve.Sequence{}
	scales := map[string]float64{
		"moveXEvents":  1 / rpeHalfWidth,
		"moveYEvents":  1 / rpeHalfHeight,
		"rotateEvents": 1,
		"alphaEvents":  1.0 / 255,
		"speedEvents":  rpeSpeedRatio,
	}
	var ferr error
	v.Get("eventLayers").ForEach(func(_, layer gjson.Result) bool {
		if layer.Type == gjson.Null {
			return true
		}
		for name, scale := range scales {
			seq, err := rpeChannel(layer.Get(name), bpm, scale)
			if nil != err {
				ferr = err
				return false
			}
			channels[name] = append(channels[name], seq)
		}
		return true
	})
	if nil != ferr {
		return nil, ferr
	}

	line := &game.Line{
		X:      mergeSum(channels["moveXEvents"], 0),
		Y:      mergeSum(channels["moveYEvents"], 0),
		Rotate: mergeSum(channels["rotateEvents"], 0),
		Alpha:  mergeSum(channels["alphaEvents"], 0),
		Speed:  mergeSum(channels["speedEvents"], rpeSpeedRatio*10),
		Parent: game.NoParent,
	}
	if father := v.Get("father"); father.Exists() && father.Int() >= 0 {
		line.Parent = int(father.Int())
	}

	v.Get("notes").ForEach(func(_, nv gjson.Result) bool {
		var kind game.NoteKind
		switch nv.Get("type").Int() {
		case 1:
			kind = game.Tap
		case 2:
			kind = game.Hold
		case 3:
			kind = game.Flick
		case 4:
			kind = game.Drag
		default:
			ferr = outOfRange(FormatRpe, "line %d: note type %d", index, nv.Get("type").Int())
			return false
		}
		start, err := rpeBeats(nv.Get("startTime"))
		if nil != err {
			ferr = err
			return false
		}
		end, err := rpeBeats(nv.Get("endTime"))
		if nil != err {
			ferr = err
			return false
		}
		speed := nv.Get("speed").Float()
		if speed == 0 {
			speed = 1
		}
		note := &game.Note{
			Kind:   kind,
			Time:   bpm.seconds(start),
			PosX:   nv.Get("positionX").Float() / rpeHalfWidth,
			Above:  nv.Get("above").Int() == 1,
			Speed:  speed,
			Fake:   nv.Get("isFake").Int() != 0,
			Window: game.StandardWindow,
			Line:   index,
		}
		note.TimeEnd = note.Time
		if kind == game.Hold {
			note.TimeEnd = bpm.seconds(end)
		}
		line.Notes = append(line.Notes, note)
		return true
	})
	if nil != ferr {
		return nil, ferr
	}
	line.SortNotes()
	return line, nil
}

func (p *RpeParser) Parse(data []byte) (*game.Chart, error) {
	if !gjson.ValidBytes(data) {
		return nil, malformed(FormatRpe, "not valid json")
	}
	root := gjson.ParseBytes(data)
	meta := root.Get("META")
	if !meta.Exists() {
		return nil, malformed(FormatRpe, "missing META block")
	}

	var changes []bpmChange
	var ferr error
	bpmList := root.Get("BPMList")
	if !bpmList.IsArray() {
		return nil, malformed(FormatRpe, "missing BPMList")
	}
	bpmList.ForEach(func(_, v gjson.Result) bool {
		beat, err := rpeBeats(v.Get("startTime"))
		if nil != err {
			ferr = err
			return false
		}
		changes = append(changes, bpmChange{Beat: beat, BPM: v.Get("bpm").Float()})
		return true
	})
	if nil != ferr {
		return nil, ferr
	}
	bpm := newBPMTable(changes)
	if !bpm.valid() {
		return nil, outOfRange(FormatRpe, "BPMList is empty or non-positive")
	}

	chart := &game.Chart{
		Name:        meta.Get("name").String(),
		Level:       meta.Get("level").String(),
		Charter:     meta.Get("charter").String(),
		Composer:    meta.Get("composer").String(),
		Illustrator: meta.Get("illustration").String(),
		Offset:      meta.Get("offset").Float() / 1000,
		Aspect:      16.0 / 9,
	}

	lineList := root.Get("judgeLineList")
	if !lineList.IsArray() {
		return nil, malformed(FormatRpe, "missing judgeLineList")
	}
	index := 0
	lineList.ForEach(func(_, v gjson.Result) bool {
		line, err := p.parseLine(index, v, bpm)
		if nil != err {
			ferr = err
			return false
		}
		chart.Lines = append(chart.Lines, line)
		index++
		return true
	})
	if nil != ferr {
		return nil, ferr
	}
	return validate(FormatRpe, chart)
}
