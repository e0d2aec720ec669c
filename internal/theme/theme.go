package theme

import (
	"image/color"

	"github.com/ChickenPige0n/prpr/internal/game"
)

type Theme interface {
	NoteSymbol(kind game.NoteKind) string
	NoteColor(kind game.NoteKind, outcome game.Outcome) color.RGBA
	LineSymbol() string
	JudgementName(outcome game.Outcome) string
	JudgementSymbol(outcome game.Outcome) string
}
