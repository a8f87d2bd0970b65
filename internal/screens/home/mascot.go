package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathemmita/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // Default purple
	MascotCelebrating                      // Gold, star eyes: a prize unlocked today
	MascotSleepy                           // Dim, closed eyes: no points yet today
)

const mascotIdle = `┌─────┐
│ ◕ ◕ │
│  ◡  │
│ × ÷ │
└─────┘`

const mascotCelebrating = `┌─────┐
│ ★ ★ │
│  ▿  │
│ × ÷ │
└─╥═╥─┘
  ╚═╝`

const mascotSleepy = `┌─────┐
│ - - │ z
│  ▵  │
│ × ÷ │
└─────┘`

// mascotFor picks the mascot for today's points.
func mascotFor(today int) MascotVariant {
	switch {
	case today == 0:
		return MascotSleepy
	case today >= 1000:
		return MascotCelebrating
	default:
		return MascotIdle
	}
}

// RenderMascot returns the mascot ASCII art for the given variant.
func RenderMascot(variant ...MascotVariant) string {
	v := MascotIdle
	if len(variant) > 0 {
		v = variant[0]
	}

	var art string
	var fg = theme.Primary

	switch v {
	case MascotCelebrating:
		art = mascotCelebrating
		fg = theme.Gold
	case MascotSleepy:
		art = mascotSleepy
		fg = theme.TextDim
	default:
		art = mascotIdle
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
