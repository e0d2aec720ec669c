package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"

	"github.com/ChickenPige0n/prpr/internal/clock"
	"github.com/ChickenPige0n/prpr/internal/config"
	"github.com/ChickenPige0n/prpr/internal/game"
	"github.com/ChickenPige0n/prpr/internal/judge"
	"github.com/ChickenPige0n/prpr/internal/parser"
	"github.com/ChickenPige0n/prpr/internal/render"
	"github.com/ChickenPige0n/prpr/internal/score"
	"github.com/ChickenPige0n/prpr/internal/simulator"
	"github.com/ChickenPige0n/prpr/internal/theme"
)

// pendingRelease synthesizes key-up events the terminal cannot report.
type pendingRelease struct {
	id   int
	x, y float64
	at   float64
}

type Program struct {
	Renderer *render.DefaultRenderer
	Theme    *theme.DefaultTheme
	Store    *score.DefaultStore

	chart   *game.Chart
	judge   *judge.Judge
	clock   *clock.Synchronizer
	sim     simulator.Options
	simSess *simulator.Session

	audioFile, chartFile string
	streamer             beep.StreamSeekCloser
	format               beep.Format

	inputs   []game.Input // whole-session log, persisted as the replay
	pending  []pendingRelease
	nextID   int
	popped   int // judgments already turned into hit markers
	sideCol  int
	columns  int
	rows     int
}

func (p *Program) Init() error {
	p.Renderer = &render.DefaultRenderer{}
	p.Theme = &theme.DefaultTheme{}
	p.Store = &score.DefaultStore{}

	if err := filepath.Walk(*config.Directory, func(fp string, info os.FileInfo, err error) error {
		if nil != err {
			return err
		}
		switch path.Ext(info.Name()) {
		case ".mp3", ".ogg":
			p.audioFile = fp
		case ".json", ".pec":
			p.chartFile = fp
		}
		return nil
	}); nil != err {
		return fmt.Errorf("unable to walk song directory: %w", err)
	}
	if p.audioFile == "" || p.chartFile == "" {
		return errors.New("unable to find chart and .mp3/.ogg file in given directory")
	}

	data, err := os.ReadFile(p.chartFile)
	if nil != err {
		return err
	}
	format := parser.Format(*config.Format)
	if format == "" {
		format = parser.Detect(p.chartFile, data)
	}
	psr, err := parser.New(format)
	if nil != err {
		return err
	}
	p.chart, err = psr.Parse(data)
	if nil != err {
		return err
	}

	if *config.Aspect > 0 {
		p.chart.Aspect = *config.Aspect
	}

	if err := p.Store.Init(); nil != err {
		return err
	}

	opts := judge.DefaultOptions()
	opts.Autoplay = *config.Autoplay
	p.judge = judge.New(p.chart, opts)
	p.clock = clock.New(p.chart.Offset+config.Offset.Seconds(), *config.AdjustTime)
	p.sim = simulator.DefaultOptions()
	p.sim.SpeedScale = *config.SpeedScale
	p.sim.ShowLateMisses = *config.ShowLateMisses
	p.sim.Afterglow = opts.Afterglow
	p.simSess = simulator.NewSession(p.chart)
	return nil
}

func (p *Program) Deinit() {
	if p.streamer != nil {
		p.streamer.Close()
	}
	p.Store.Deinit()
}

func (p *Program) StartAudio() error {
	f, err := os.Open(p.audioFile)
	if nil != err {
		return err
	}
	if path.Ext(p.audioFile) == ".ogg" {
		p.streamer, p.format, err = vorbis.Decode(f)
	} else {
		p.streamer, p.format, err = mp3.Decode(f)
	}
	if nil != err {
		return err
	}

	// scaling the output rate implements the playback rate; position
	// divided by the original rate stays in chart time
	sr := beep.SampleRate(math.Round(float64(p.format.SampleRate) * *config.Rate))
	if err := speaker.Init(sr, sr.N(time.Second/60)); nil != err {
		return err
	}
	go func() {
		time.Sleep(*config.Delay)
		speaker.Play(p.streamer)
	}()
	return nil
}

// audioPosition snapshots the playback position in chart seconds.
func (p *Program) audioPosition() float64 {
	speaker.Lock()
	n := p.streamer.Position()
	speaker.Unlock()
	return p.format.SampleRate.D(n).Seconds()
}

// Press records a key press as a normalized press/release pair; the
// release is synthesized because terminal keyboards report no key-up.
func (p *Program) Press(t, x float64) []game.Input {
	id := p.nextID
	p.nextID++
	in := game.Input{Kind: game.Press, ID: id, X: x, Y: 0, Time: t}
	p.pending = append(p.pending, pendingRelease{id: id, x: x, at: t + 0.15})
	p.inputs = append(p.inputs, in)
	return []game.Input{in}
}

// dueReleases pops synthesized releases that have come due.
func (p *Program) dueReleases(t float64) []game.Input {
	due := []game.Input{}
	kept := p.pending[:0]
	for _, pr := range p.pending {
		if pr.at > t {
			kept = append(kept, pr)
			continue
		}
		in := game.Input{Kind: game.Release, ID: pr.id, X: pr.x, Y: pr.y, Time: pr.at, Synthetic: true}
		due = append(due, in)
		p.inputs = append(p.inputs, in)
	}
	p.pending = kept
	return due
}

// cell projects a normalized point onto the terminal grid.
func (p *Program) cell(x, y float64) (col, row int) {
	col = int(math.Round((x + 1) / 2 * float64(p.columns-1)))
	row = int(math.Round((1 - (y+1)/2) * float64(p.rows-1)))
	return col + 1, row + 1
}

func (p *Program) Render(fs simulator.FrameState) {
	r := p.Renderer
	for li := range fs.Lines {
		tr := &fs.Lines[li]
		if tr.Alpha <= 0 {
			continue
		}
		col, row := p.cell(tr.X, tr.Y)
		r.Fill(row, col-1, p.Theme.LineSymbol())
		r.Fill(row, col, p.Theme.LineSymbol())
		r.Fill(row, col+1, p.Theme.LineSymbol())
	}
	for i := range fs.Notes {
		n := &fs.Notes[i]
		if !n.Visible {
			continue
		}
		col, row := p.cell(n.X, n.Y)
		if col < 1 || col > p.columns || row < 1 || row > p.rows {
			continue
		}
		r.FillColor(row, col, p.Theme.NoteColor(n.Kind, n.Outcome), p.Theme.NoteSymbol(n.Kind))
	}

	// pop a hit marker where each freshly resolved note sat
	judgments := p.judge.Log()
	for ; p.popped < len(judgments); p.popped++ {
		jd := judgments[p.popped]
		if jd.Outcome == game.Held {
			continue
		}
		n := p.chart.Lines[jd.Line].Notes[jd.Note]
		tr := &fs.Lines[jd.Line]
		rot := tr.Rotate * math.Pi / 180
		col, row := p.cell(tr.X+n.PosX*math.Cos(rot), tr.Y+n.PosX*math.Sin(rot))
		if col >= 1 && col <= p.columns && row >= 1 && row <= p.rows {
			r.AddDecoration(col, row, p.Theme.JudgementSymbol(jd.Outcome), 45)
		}
	}

	if *config.Autoplay {
		r.Fill(1, p.sideCol, "       [ AUTOPLAY ]")
	}
	r.Fill(2, p.sideCol, fmt.Sprintf("      Score:  %07d", p.judge.Score()))
	r.Fill(3, p.sideCol, fmt.Sprintf("      Combo:  %6d", p.judge.Combo()))
	r.Fill(4, p.sideCol, fmt.Sprintf("   Accuracy:  %6.2f%%", p.judge.Accuracy()*100))
	r.Fill(5, p.sideCol, fmt.Sprintf("      Notes:  %6d", p.chart.NoteCount()))
	for i, o := range []game.Outcome{game.Perfect, game.Good, game.Bad, game.Miss, game.HoldBreak} {
		r.Fill(7+i, p.sideCol, fmt.Sprintf("%s:  %6d", p.Theme.JudgementName(o), p.judge.Count(o)))
	}
}
