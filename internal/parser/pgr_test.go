package parser

import (
	"math"
	"testing"

	"github.com/ChickenPige0n/prpr/internal/game"
)

const pgrV3 = `{
	"formatVersion": 3,
	"offset": 0.05,
	"numOfNotes": 2,
	"judgeLineList": [
		{
			"bpm": 120,
			"judgeLineMoveEvents": [{"startTime": 0, "endTime": 128, "start": 0, "start2": 0.5, "end": 1, "end2": 0.5}],
			"judgeLineRotateEvents": [{"startTime": 0, "endTime": 128, "start": 0, "end": 0}],
			"judgeLineDisappearEvents": [{"startTime": 0, "endTime": 128, "start": 1, "end": 1}],
			"speedEvents": [{"startTime": 0, "value": 2}],
			"notesAbove": [
				{"type": 1, "time": 64, "positionX": 4.5, "holdTime": 0, "speed": 1},
				{"type": 3, "time": 128, "positionX": 0, "holdTime": 64, "speed": 1}
			],
			"notesBelow": []
		}
	]
}`

func TestPgrRoundTrip(t *testing.T) {
	chart, err := (&PgrParser{}).Parse([]byte(pgrV3))
	if nil != err {
		t.Fatal(err)
	}
	if chart.Offset != 0.05 {
		t.Fatal("offset", chart.Offset)
	}
	line := chart.Lines[0]
	if len(line.Notes) != 2 {
		t.Fatal("note count", len(line.Notes))
	}

	// 64 thirty-second-beat units at 120 bpm is exactly one second
	tap := line.Notes[0]
	if tap.Kind != game.Tap || tap.Time != 1.0 || !tap.Above {
		t.Fatal("tap", tap)
	}
	if math.Abs(tap.PosX-0.5) > 1e-9 {
		t.Fatal("tap position", tap.PosX)
	}
	hold := line.Notes[1]
	if hold.Kind != game.Hold || hold.Time != 2.0 || hold.TimeEnd != 3.0 {
		t.Fatal("hold", hold)
	}

	// move events map [0,1] screen space onto [-1,1]
	if v := line.X.Eval(0); v != -1 {
		t.Fatal("x at start", v)
	}
	if v := line.X.Eval(2); v != 1 {
		t.Fatal("x at end", v)
	}
	if v := line.Y.Eval(1); v != 0 {
		t.Fatal("y", v)
	}
	if v := line.Speed.Eval(0.5); v != 2*pgrSpeedRatio {
		t.Fatal("speed", v)
	}
}

func TestPgrPackedMoves(t *testing.T) {
	// format v1 packs x*1000+y into one integer
	in := `{
		"formatVersion": 1,
		"judgeLineList": [
			{
				"bpm": 120,
				"judgeLineMoveEvents": [{"startTime": 0, "endTime": 64, "start": 440260, "end": 440260}],
				"notesAbove": [], "notesBelow": []
			}
		]
	}`
	chart, err := (&PgrParser{}).Parse([]byte(in))
	if nil != err {
		t.Fatal(err)
	}
	line := chart.Lines[0]
	if v := line.X.Eval(0.5); math.Abs(v) > 1e-9 {
		t.Fatal("x", v)
	}
	if v := line.Y.Eval(0.5); math.Abs(v) > 1e-9 {
		t.Fatal("y", v)
	}
}

var pgrErrorTests = map[string]ErrorKind{
	`{{{`: MalformedStructure,
	`{"formatVersion": 2, "judgeLineList": []}`:                    UnsupportedFeature,
	`{"formatVersion": 3, "judgeLineList": [{"bpm": 0}]}`:          OutOfRangeValue,
	`{"formatVersion": 3, "judgeLineList": [{"bpm": -120}]}`:       OutOfRangeValue,
	`{"formatVersion": 3, "numOfNotes": 5, "judgeLineList": [{"bpm": 120}]}`: MalformedStructure,
	`{"formatVersion": 3, "judgeLineList": [{"bpm": 120, "notesAbove": [{"type": 9, "time": 0}]}]}`: OutOfRangeValue,
}

func TestPgrErrors(t *testing.T) {
	for in, kind := range pgrErrorTests {
		_, err := (&PgrParser{}).Parse([]byte(in))
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

func TestPgrDetect(t *testing.T) {
	if f := Detect("chart.json", []byte(pgrV3)); f != FormatPgr {
		t.Fatal("detected", f)
	}
}
