package main

import (
	"fmt"
	"log"
	"time"

	"github.com/eiannone/keyboard"

	"github.com/ChickenPige0n/prpr/internal/config"
	"github.com/ChickenPige0n/prpr/internal/game"
	"github.com/ChickenPige0n/prpr/internal/score"
)

func main() {
	if err := run(); nil != err {
		log.Fatalln(err)
	}
}

func run() error {
	p := &Program{}
	if err := p.Init(); nil != err {
		return err
	}
	defer p.Deinit()

	keyChannel, err := keyboard.GetKeys(128)
	if nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	defer func() {
		if err := keyboard.Close(); nil != err {
			log.Println("unable to close keyboard:", err)
		}
	}()

	if err := p.StartAudio(); nil != err {
		return err
	}

	if err := p.Renderer.Init(); nil != err {
		return err
	}
	defer func() {
		// Restore the terminal state
		if err := p.Renderer.Deinit(); nil != err {
			log.Println("unable to restore terminal:", err)
		}
	}()
	p.columns, p.rows = p.Renderer.Size()
	p.sideCol = p.columns - 28
	if p.sideCol < 2 {
		p.sideCol = 2
	}

	endTime := p.chart.Duration() + game.StandardWindow.Bad + 1

	p.Renderer.RenderLoop(*config.Delay, *config.FramePeriod, func(now time.Time, duration time.Duration) bool {
		p.clock.Update(p.audioPosition(), duration.Seconds())
		t := p.clock.Now(duration.Seconds())

		inputs := p.dueReleases(t)
		for i := 0; i < len(keyChannel); i++ {
			key := <-keyChannel
			if key.Key == keyboard.KeyEsc {
				return false
			}
			if x, ok := config.KeyLane(key.Rune); ok {
				inputs = append(inputs, p.Press(t, x)...)
			}
		}

		p.judge.Update(t, inputs)
		p.Render(p.simSess.Frame(p.judge, t, p.sim))

		return t <= endTime
	})

	summary := p.judge.Summarize()
	if err := p.Store.Save(p.chart, &score.Record{
		Rate:   *config.Rate,
		Score:  summary.Score,
		Inputs: p.inputs,
	}); nil != err {
		log.Println("unable to save session:", err)
	}

	fmt.Printf("score %07d  accuracy %.2f%%  max combo %d/%d\n",
		summary.Score, summary.Accuracy*100, summary.MaxCombo, summary.Total)
	fmt.Printf("perfect %d  good %d  bad %d  miss %d  break %d\n",
		summary.Perfect, summary.Good, summary.Bad, summary.Miss, summary.Breaks)

	best, err := p.Store.Best(p.chart)
	if nil != err {
		log.Println("unable to load best session:", err)
	} else if best != nil {
		fmt.Printf("best %07d at rate %.2f\n", best.Score, best.Rate)
	}
	return nil
}
