package theme

import (
	"image/color"

	"github.com/ChickenPige0n/prpr/internal/game"
)

type DefaultTheme struct{}

var (
	noteSyms = map[game.NoteKind]string{
		game.Tap:   "⬤",
		game.Hold:  "▐",
		game.Drag:  "◆",
		game.Flick: "▲",
	}
	kindColors = map[game.NoteKind]color.RGBA{
		game.Tap:   {0, 118, 236, 255},   // blue
		game.Hold:  {173, 236, 236, 255}, // light blue
		game.Drag:  {236, 195, 0, 255},   // yellow
		game.Flick: {236, 30, 0, 255},    // red
	}
	outcomeColors = map[game.Outcome]color.RGBA{
		game.Perfect:   {236, 195, 0, 255},
		game.Good:      {0, 236, 128, 255},
		game.Bad:       {106, 0, 236, 255},
		game.Miss:      {106, 106, 106, 255},
		game.HoldBreak: {106, 106, 106, 255},
	}
	outcomeSyms = map[game.Outcome]string{
		game.Perfect:   "\033[1;33m✦\033[0m",
		game.Good:      "\033[1;32m✧\033[0m",
		game.Bad:       "\033[1;35m▿\033[0m",
		game.Miss:      "\033[1;31m✗\033[0m",
		game.HoldBreak: "\033[1;31m✗\033[0m",
	}
	outcomeNames = map[game.Outcome]string{
		game.Perfect:   "    \033[1;33mPerfect\033[0m",
		game.Good:      "       \033[1;32mGood\033[0m",
		game.Bad:       "        \033[1;35mBad\033[0m",
		game.Miss:      "       \033[1;31mMiss\033[0m",
		game.HoldBreak: "      \033[1;31mBreak\033[0m",
	}
)

func (t *DefaultTheme) NoteSymbol(kind game.NoteKind) string {
	s, ok := noteSyms[kind]
	if !ok {
		return "?"
	}
	return s
}

func (t *DefaultTheme) NoteColor(kind game.NoteKind, outcome game.Outcome) color.RGBA {
	if c, ok := outcomeColors[outcome]; ok {
		return c
	}
	if c, ok := kindColors[kind]; ok {
		return c
	}
	return color.RGBA{255, 255, 255, 255}
}

func (t *DefaultTheme) LineSymbol() string {
	return "─"
}

// JudgementSymbol is the one-cell hit marker popped at the note's
// position when it resolves.
func (t *DefaultTheme) JudgementSymbol(outcome game.Outcome) string {
	s, ok := outcomeSyms[outcome]
	if !ok {
		return " "
	}
	return s
}

func (t *DefaultTheme) JudgementName(outcome game.Outcome) string {
	n, ok := outcomeNames[outcome]
	if !ok {
		return "           "
	}
	return n
}
