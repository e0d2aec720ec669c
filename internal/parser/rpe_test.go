package parser

import (
	"math"
	"testing"

	"github.com/ChickenPige0n/prpr/internal/game"
)

const rpeMinimal = `{
	"META": {"name": "synthetic", "level": "IN Lv.13", "offset": 250},
	"BPMList": [{"startTime": [0, 0, 1], "bpm": 120}],
	"judgeLineList": [
		{
			"eventLayers": [
				{
					"moveXEvents": [{"startTime": [0, 0, 1], "endTime": [4, 0, 1], "start": -675, "end": 675, "easingType": 1}],
					"moveYEvents": [{"startTime": [0, 0, 1], "endTime": [4, 0, 1], "start": 0, "end": 0, "easingType": 1}],
					"rotateEvents": [{"startTime": [0, 0, 1], "endTime": [4, 0, 1], "start": 0, "end": 90, "easingType": 2}],
					"alphaEvents": [{"startTime": [0, 0, 1], "endTime": [4, 0, 1], "start": 255, "end": 255, "easingType": 1}],
					"speedEvents": [{"startTime": [0, 0, 1], "endTime": [4, 0, 1], "start": 10, "end": 10}]
				}
			],
			"notes": [
				{"type": 1, "startTime": [2, 0, 1], "endTime": [2, 0, 1], "positionX": 337.5, "above": 1, "speed": 1},
				{"type": 2, "startTime": [4, 0, 1], "endTime": [6, 0, 1], "positionX": 0, "above": 0, "speed": 1}
			]
		}
	]
}`

func TestRpeRoundTrip(t *testing.T) {
	chart, err := (&RpeParser{}).Parse([]byte(rpeMinimal))
	if nil != err {
		t.Fatal(err)
	}
	if chart.Name != "synthetic" || chart.Level != "IN Lv.13" {
		t.Fatal("metadata", chart.Name, chart.Level)
	}
	if chart.Offset != 0.25 {
		t.Fatal("offset", chart.Offset)
	}
	if len(chart.Lines) != 1 {
		t.Fatal("line count", len(chart.Lines))
	}
	line := chart.Lines[0]
	if len(line.Notes) != 2 {
		t.Fatal("note count", len(line.Notes))
	}

	// 120 bpm: two beats land at exactly one second
	tap := line.Notes[0]
	if tap.Kind != game.Tap || tap.Time != 1.0 || !tap.Above {
		t.Fatal("tap", tap)
	}
	if math.Abs(tap.PosX-0.5) > 1e-9 {
		t.Fatal("tap position", tap.PosX)
	}
	hold := line.Notes[1]
	if hold.Kind != game.Hold || hold.Time != 2.0 || hold.TimeEnd != 3.0 || hold.Above {
		t.Fatal("hold", hold)
	}

	// x sweeps the full stage over four beats
	if v := line.X.Eval(0); v != -1 {
		t.Fatal("x at start", v)
	}
	if v := line.X.Eval(2); v != 1 {
		t.Fatal("x at end", v)
	}
	if v := line.Alpha.Eval(1); v != 1 {
		t.Fatal("alpha", v)
	}
}

var rpeErrorTests = map[string]ErrorKind{
	`not json at all`: MalformedStructure,
	`{"BPMList": [], "judgeLineList": []}`: MalformedStructure, // no META
	`{"META": {}, "BPMList": [], "judgeLineList": []}`: OutOfRangeValue, // empty bpm list
	`{"META": {}, "BPMList": [{"startTime": [0,0,1], "bpm": -10}], "judgeLineList": []}`: OutOfRangeValue,
	`{"META": {}, "BPMList": [{"startTime": [0,0,0], "bpm": 120}], "judgeLineList": []}`: OutOfRangeValue, // zero denominator
	`{"META": {}, "BPMList": [{"startTime": [0,0,1], "bpm": 120}],
	  "judgeLineList": [{"eventLayers": [{"moveXEvents": [{"startTime": [0,0,1], "endTime": [1,0,1], "easingType": 99}]}]}]}`: OutOfRangeValue,
	`{"META": {}, "BPMList": [{"startTime": [0,0,1], "bpm": 120}],
	  "judgeLineList": [{"attachUI": "combo", "eventLayers": []}]}`: UnsupportedFeature,
	`{"META": {}, "BPMList": [{"startTime": [0,0,1], "bpm": 120}],
	  "judgeLineList": [{"eventLayers": [], "notes": [{"type": 9, "startTime": [0,0,1], "endTime": [0,0,1]}]}]}`: OutOfRangeValue,
}

func TestRpeErrors(t *testing.T) {
	for in, kind := range rpeErrorTests {
		_, err := (&RpeParser{}).Parse([]byte(in))
		pe, ok := err.(*ParseError)
		if !ok {
			t.Log("input   ", in)
			t.Log("expected", kind)
			t.Log("got     ", err)
			t.Fail()
			continue
		}
		if pe.Kind != kind {
			t.Log("input   ", in)
			t.Log("expected", kind)
			t.Log("got     ", pe)
			t.Fail()
		}
	}
}

func TestRpeDetect(t *testing.T) {
	if f := Detect("chart.json", []byte(rpeMinimal)); f != FormatRpe {
		t.Fatal("detected", f)
	}
}
