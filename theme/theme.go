package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

// Symbols are the glyphs used to draw the piano roll grid.
type Symbols struct {
	GridDot   rune // · empty cell
	GridBeat  rune // ┊ beat boundary column
	NoteStart rune // ● first cell of a note
	NoteBody  rune // ─ note sustain
	NoteHit   rune // ◉ first cell of a selected note
	NoteSel   rune // ═ sustain of a selected note
	Playhead  rune // ▶ playhead column on empty cells
	Ghost     rune // ░ note being created, not yet committed
	BoxCorner rune // ┼ box-select rectangle overlay
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			GridDot:   '·',
			GridBeat:  '┊',
			NoteStart: '●',
			NoteBody:  '─',
			NoteHit:   '◉',
			NoteSel:   '═',
			Playhead:  '▶',
			Ghost:     '░',
			BoxCorner: '┼',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG        = 0.0
	RoleSurface   = 0.1
	RoleMuted     = 0.2
	RoleFG        = 0.4
	RoleAccent    = 0.5
	RoleSelection = 0.6
	RoleNote      = 0.7
	RoleWarning   = 0.8
	RolePlayhead  = 1.0
)

func (t *Theme) BG() lipgloss.Color        { return t.color(RoleBG) }
func (t *Theme) FG() lipgloss.Color        { return t.color(RoleFG) }
func (t *Theme) Muted() lipgloss.Color     { return t.color(RoleMuted) }
func (t *Theme) Accent() lipgloss.Color    { return t.color(RoleAccent) }
func (t *Theme) Note() lipgloss.Color      { return t.color(RoleNote) }
func (t *Theme) Selection() lipgloss.Color { return t.color(RoleSelection) }
func (t *Theme) Warning() lipgloss.Color   { return t.color(RoleWarning) }
func (t *Theme) Playhead() lipgloss.Color  { return t.color(RolePlayhead) }

func (t *Theme) color(norm float64) lipgloss.Color {
	c := t.Palette.Lookup(norm)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
