package judge

import (
	"reflect"
	"testing"

	"github.com/ChickenPige0n/prpr/internal/game"
	"github.com/ChickenPige0n/prpr/internal/testdata"
)

func press(id int, t, x float64) game.Input {
	return game.Input{Kind: game.Press, ID: id, X: x, Time: t}
}

func release(id int, t float64) game.Input {
	return game.Input{Kind: game.Release, ID: id, Time: t}
}

func TestAutoplayFullCombo(t *testing.T) {
	chart := testdata.TwoNoteChart()
	j := New(chart, Options{Autoplay: true})
	j.Update(4.0, nil)

	if !j.Finished() {
		t.Fatal("not finished")
	}
	if j.Count(game.Perfect) != 2 || j.Combo() != 2 {
		t.Fatal("perfects", j.Count(game.Perfect), "combo", j.Combo())
	}
	if !j.FullCombo() {
		t.Fatal("not a full combo")
	}
	if j.Score() != 1000000 {
		t.Fatal("score", j.Score())
	}
	if j.Accuracy() != 1 {
		t.Fatal("accuracy", j.Accuracy())
	}
}

func TestManualPerfectRun(t *testing.T) {
	j := New(testdata.TwoNoteChart(), DefaultOptions())
	j.Update(1.0, []game.Input{press(1, 1.0, 0)})
	j.Update(2.0, []game.Input{press(2, 2.0, 0)})
	if j.Outcome(0, 1) != game.Held {
		t.Fatal("hold not started", j.Outcome(0, 1))
	}
	// combo counts the hold only once it completes
	if j.Combo() != 1 {
		t.Fatal("combo mid-hold", j.Combo())
	}
	j.Update(3.5, []game.Input{release(2, 3.05)})

	if j.Outcome(0, 0) != game.Perfect || j.Outcome(0, 1) != game.Perfect {
		t.Fatal("outcomes", j.Outcome(0, 0), j.Outcome(0, 1))
	}
	if j.JudgedAt(0, 1) != 3.0 {
		t.Fatal("hold resolved at", j.JudgedAt(0, 1))
	}
	if j.Combo() != 2 || j.Score() != 1000000 {
		t.Fatal("combo", j.Combo(), "score", j.Score())
	}

	want := []Judgment{
		{Line: 0, Note: 0, Outcome: game.Perfect, Time: 1.0},
		{Line: 0, Note: 1, Outcome: game.Held, Time: 2.0},
		{Line: 0, Note: 1, Outcome: game.Perfect, Time: 3.0},
	}
	if !reflect.DeepEqual(j.Log(), want) {
		t.Fatal("log", j.Log())
	}
}

func TestEarlyReleaseBreaksHold(t *testing.T) {
	j := New(testdata.TwoNoteChart(), DefaultOptions())
	j.Update(1.0, []game.Input{press(1, 1.0, 0)})
	j.Update(2.0, []game.Input{press(2, 2.0, 0)})
	j.Update(2.5, []game.Input{release(2, 2.5)})
	j.Update(4.0, nil)

	if j.Outcome(0, 1) != game.HoldBreak {
		t.Fatal("hold outcome", j.Outcome(0, 1))
	}
	if j.JudgedAt(0, 1) != 2.5 {
		t.Fatal("broken at", j.JudgedAt(0, 1))
	}
	if j.Combo() != 0 || j.MaxCombo() != 1 {
		t.Fatal("combo", j.Combo(), "max", j.MaxCombo())
	}
	if j.FullCombo() {
		t.Fatal("full combo survived a break")
	}
}

func TestSyntheticReleaseKeepsHold(t *testing.T) {
	// hosts without key-up events fabricate an early release; it ends
	// the touch but must not break the hold
	chart := testdata.Chart(testdata.FlatLine(testdata.Hold(2.0, 3.0)))
	j := New(chart, DefaultOptions())
	j.Update(2.0, []game.Input{press(1, 2.0, 0)})
	fake := release(1, 2.15)
	fake.Synthetic = true
	j.Update(2.2, []game.Input{fake})
	j.Update(4.0, nil)

	if j.Outcome(0, 0) != game.Perfect {
		t.Fatal("outcome", j.Outcome(0, 0))
	}
	if j.JudgedAt(0, 0) != 3.0 || j.Combo() != 1 {
		t.Fatal("resolved at", j.JudgedAt(0, 0), "combo", j.Combo())
	}
}

func TestLateReleaseCompletesHold(t *testing.T) {
	// release inside the tail tolerance is close enough
	j := New(testdata.TwoNoteChart(), DefaultOptions())
	j.Update(1.0, []game.Input{press(1, 1.0, 0)})
	j.Update(2.0, []game.Input{press(2, 2.0, 0)})
	j.Update(2.9, []game.Input{release(2, 2.9)})
	j.Update(4.0, nil)

	if j.Outcome(0, 1) != game.Perfect {
		t.Fatal("hold outcome", j.Outcome(0, 1))
	}
	if j.Combo() != 2 {
		t.Fatal("combo", j.Combo())
	}
}

func TestMissTiming(t *testing.T) {
	chart := testdata.Chart(testdata.FlatLine(testdata.Tap(1.0)))
	j := New(chart, DefaultOptions())

	j.Update(1.0+game.StandardWindow.Bad, nil)
	if j.Outcome(0, 0) != game.Unjudged {
		t.Fatal("missed while still reachable", j.Outcome(0, 0))
	}
	j.Update(1.0+game.StandardWindow.Bad+0.001, nil)
	if j.Outcome(0, 0) != game.Miss {
		t.Fatal("outcome", j.Outcome(0, 0))
	}
	if j.JudgedAt(0, 0) != 1.0+game.StandardWindow.Bad {
		t.Fatal("miss timestamped at", j.JudgedAt(0, 0))
	}
	if j.Combo() != 0 || !j.Finished() {
		t.Fatal("combo", j.Combo(), "finished", j.Finished())
	}
}

var gradeTests = map[float64]game.Outcome{
	0.00:  game.Perfect,
	0.08:  game.Perfect,
	-0.05: game.Perfect,
	0.10:  game.Good,
	-0.16: game.Good,
	0.20:  game.Bad,
	0.30:  game.Miss, // expired before the press lands
}

func TestPressGrading(t *testing.T) {
	for dt, want := range gradeTests {
		chart := testdata.Chart(testdata.FlatLine(testdata.Tap(1.0)))
		j := New(chart, DefaultOptions())
		at := 1.0 + dt
		j.Update(at, []game.Input{press(1, at, 0)})
		if got := j.Outcome(0, 0); got != want {
			t.Log("offset  ", dt)
			t.Log("expected", want)
			t.Log("got     ", got)
			t.Fail()
		}
	}
}

func TestPressTieBreakEarliest(t *testing.T) {
	chart := testdata.Chart(testdata.FlatLine(testdata.Tap(1.0), testdata.Tap(1.1)))
	j := New(chart, DefaultOptions())
	j.Update(1.05, []game.Input{press(1, 1.05, 0)})

	if j.Outcome(0, 0) == game.Unjudged {
		t.Fatal("earlier note not taken")
	}
	if j.Outcome(0, 1) != game.Unjudged {
		t.Fatal("later note taken instead")
	}
}

func TestPressTieBreakClosest(t *testing.T) {
	a, b := testdata.Tap(1.0), testdata.Tap(1.0)
	a.PosX, b.PosX = 0.1, 0.3
	chart := testdata.Chart(testdata.FlatLine(a, b))
	j := New(chart, DefaultOptions())
	j.Update(1.0, []game.Input{press(1, 1.0, 0.28)})

	if j.Outcome(0, 1) == game.Unjudged {
		t.Fatal("closer note not taken")
	}
	if j.Outcome(0, 0) != game.Unjudged {
		t.Fatal("farther note taken instead")
	}
}

func TestPressOutsideToleranceIgnored(t *testing.T) {
	chart := testdata.Chart(testdata.FlatLine(testdata.Tap(1.0)))
	j := New(chart, DefaultOptions())
	j.Update(1.0, []game.Input{press(1, 1.0, 0.9)})
	if j.Outcome(0, 0) != game.Unjudged {
		t.Fatal("matched a distant press", j.Outcome(0, 0))
	}
}

func TestDragJudgedByProximity(t *testing.T) {
	drag := &game.Note{Kind: game.Drag, Time: 1.0, TimeEnd: 1.0, Speed: 1, Above: true, Window: game.StandardWindow}
	chart := testdata.Chart(testdata.FlatLine(drag))
	j := New(chart, DefaultOptions())

	// a finger resting near the lane is enough, no press timing needed
	j.Update(0.5, []game.Input{press(1, 0.5, 0.05)})
	j.Update(1.5, nil)

	if j.Outcome(0, 0) != game.Perfect {
		t.Fatal("outcome", j.Outcome(0, 0))
	}
	if j.JudgedAt(0, 0) != 1.0 {
		t.Fatal("judged at", j.JudgedAt(0, 0))
	}
}

func TestDragMissesWithoutTouch(t *testing.T) {
	drag := &game.Note{Kind: game.Drag, Time: 1.0, TimeEnd: 1.0, Speed: 1, Above: true, Window: game.StandardWindow}
	chart := testdata.Chart(testdata.FlatLine(drag))
	j := New(chart, DefaultOptions())
	j.Update(2.0, nil)
	if j.Outcome(0, 0) != game.Miss {
		t.Fatal("outcome", j.Outcome(0, 0))
	}
}

func TestFakeNotesNeverJudged(t *testing.T) {
	fake := testdata.Tap(1.0)
	fake.Fake = true
	chart := testdata.Chart(testdata.FlatLine(fake, testdata.Tap(2.0)))
	j := New(chart, Options{Autoplay: true})
	j.Update(3.0, nil)

	if j.Outcome(0, 0) != game.Unjudged {
		t.Fatal("fake note judged", j.Outcome(0, 0))
	}
	if !j.Finished() || j.Combo() != 1 {
		t.Fatal("finished", j.Finished(), "combo", j.Combo())
	}
}

func TestReleaseWithoutPressIgnored(t *testing.T) {
	j := New(testdata.TwoNoteChart(), DefaultOptions())
	j.Update(0.5, []game.Input{release(9, 0.5)})
	if len(j.Log()) != 0 {
		t.Fatal("phantom release produced judgments")
	}
}

func TestDeterministicReplay(t *testing.T) {
	inputs := []game.Input{
		press(1, 1.0, 0),
		release(1, 1.1),
		press(2, 2.01, 0.1),
		release(2, 3.02),
	}

	run := func(frames []float64) []Judgment {
		j := New(testdata.TwoNoteChart(), DefaultOptions())
		used := 0
		for _, t := range frames {
			var batch []game.Input
			for used < len(inputs) && inputs[used].Time <= t {
				batch = append(batch, inputs[used])
				used++
			}
			j.Update(t, batch)
		}
		return j.Log()
	}

	fine := run([]float64{0.5, 1.0, 1.5, 2.1, 2.5, 3.1, 4.0})
	coarse := run([]float64{4.0})
	if !reflect.DeepEqual(fine, coarse) {
		t.Log("fine  ", fine)
		t.Log("coarse", coarse)
		t.Fatal("judgment sequence depends on frame pacing")
	}
}

func TestReset(t *testing.T) {
	j := New(testdata.TwoNoteChart(), Options{Autoplay: true})
	j.Update(4.0, nil)
	j.Reset()

	if j.Combo() != 0 || j.Outcome(0, 0) != game.Unjudged || len(j.Log()) != 0 {
		t.Fatal("state survived reset")
	}
	j.Update(4.0, nil)
	if j.Score() != 1000000 {
		t.Fatal("score after reset", j.Score())
	}
}

func TestScoreWeighting(t *testing.T) {
	// one perfect, one good, combo unbroken over two notes:
	// 900000 * (1 + 0.65) / 2 + 100000 = 842500
	j := New(testdata.TwoNoteChart(), DefaultOptions())
	j.Update(1.1, []game.Input{press(1, 1.1, 0)})
	j.Update(2.0, []game.Input{press(2, 2.0, 0)})
	j.Update(4.0, nil)

	if j.Count(game.Good) != 1 || j.Count(game.Perfect) != 1 {
		t.Fatal("counts", j.Count(game.Good), j.Count(game.Perfect))
	}
	if j.Score() != 842500 {
		t.Fatal("score", j.Score())
	}
	sum := j.Summarize()
	if sum.Score != 842500 || sum.MaxCombo != 2 || sum.Total != 2 {
		t.Fatal("summary", sum)
	}
}
