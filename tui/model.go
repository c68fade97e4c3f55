package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-pianoroll/config"
	"go-pianoroll/debug"
	"go-pianoroll/editor"
	"go-pianoroll/theme"
	"go-pianoroll/widgets"
)

// Screen layout: header and beat ruler on top, pitch-labelled grid rows in
// the middle, status and key help at the bottom.
const (
	labelWidth = 5
	gridTop    = 2
	footerRows = 4
)

type Model struct {
	Store     *editor.Store
	Machine   *editor.Machine
	Transport *editor.Transport
	Clip      *editor.Clipboard
	Viewport  *editor.Viewport
	Theme     *theme.Theme
	Config    *config.Config

	ProjectName string

	width    int
	height   int
	status   string
	dragging bool
	quitting bool
}

type StoreMsg struct{}

type TransportMsg struct{}

func NewModel(store *editor.Store, machine *editor.Machine, transport *editor.Transport, view *editor.Viewport, th *theme.Theme, cfg *config.Config) Model {
	return Model{
		Store:       store,
		Machine:     machine,
		Transport:   transport,
		Clip:        editor.NewClipboard(),
		Viewport:    view,
		Theme:       th,
		Config:      cfg,
		ProjectName: "default",
	}
}

func ListenForStore(store *editor.Store) tea.Cmd {
	return func() tea.Msg {
		<-store.Changed()
		return StoreMsg{}
	}
}

func ListenForTransport(t *editor.Transport) tea.Cmd {
	return func() tea.Msg {
		<-t.Updates
		return TransportMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForStore(m.Store),
		ListenForTransport(m.Transport),
	)
}

func (m Model) gridRows() int {
	rows := m.height - gridTop - footerRows
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m Model) gridCols() int {
	cols := m.width - labelWidth
	if cols < 1 {
		cols = 1
	}
	return cols
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.Viewport.Width = float64(m.gridCols())
		m.Viewport.Height = float64(m.gridRows())

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case StoreMsg:
		return m, ListenForStore(m.Store)

	case TransportMsg:
		return m, ListenForTransport(m.Transport)
	}

	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	px := float64(msg.X - labelWidth)
	py := float64(msg.Y - gridTop)
	inGrid := msg.X >= labelWidth && msg.Y >= gridTop && msg.Y < gridTop+m.gridRows()

	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		if msg.Action != tea.MouseActionPress {
			return
		}
		up := msg.Button == tea.MouseButtonWheelUp
		switch {
		case msg.Ctrl:
			factor := 1.25
			if !up {
				factor = 0.8
			}
			*m.Viewport = m.Viewport.ZoomAtX(factor, px)
		case msg.Shift:
			d := 4.0 / m.Viewport.PixelsPerBeat
			if up {
				d = -d
			}
			*m.Viewport = m.Viewport.Pan(d, 0)
		default:
			d := 2.0
			if up {
				d = -d
			}
			*m.Viewport = m.Viewport.Pan(0, d)
		}
		return

	case tea.MouseButtonLeft:
		mods := editor.Modifiers{Shift: msg.Shift, Duplicate: msg.Alt}
		switch msg.Action {
		case tea.MouseActionPress:
			if msg.Y == 1 && msg.X >= labelWidth {
				// clicking the ruler scrubs the playhead to the cell start
				beat, _ := m.Viewport.ScreenToGrid(px, 0)
				m.Transport.SetPlayhead(editor.SnapDown(beat, m.Store.GridSnap().Value()))
				return
			}
			if !inGrid {
				return
			}
			debug.Log("mouse", "down %.1f,%.1f shift=%v alt=%v", px, py, msg.Shift, msg.Alt)
			m.Machine.MouseDown(px, py, mods)
			m.dragging = true
		case tea.MouseActionMotion:
			if m.dragging {
				debug.LogEvery(20, "mouse", "move %.1f,%.1f", px, py)
				m.Machine.MouseMove(px, py)
			}
		case tea.MouseActionRelease:
			if m.dragging {
				m.Machine.MouseUp(px, py)
				m.dragging = false
			}
		}

	case tea.MouseButtonNone:
		// Motion with no button held. Release events on some terminals
		// arrive as ButtonNone, so treat them as the end of a drag.
		if m.dragging {
			if msg.Action == tea.MouseActionRelease {
				m.Machine.MouseUp(px, py)
				m.dragging = false
			} else {
				m.Machine.MouseMove(px, py)
			}
		}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	unit := m.Store.GridSnap().Value()

	switch msg.String() {
	case "q":
		m.quitting = true
		m.Transport.Stop()
		m.saveConfig()
		return m, tea.Quit

	case " ":
		if m.Transport.Playing() {
			m.Transport.Stop()
		} else {
			m.Transport.Play()
		}

	case "delete", "backspace", "x":
		ids := m.Store.Selection()
		if len(ids) > 0 {
			m.Store.DeleteNotes(ids)
			m.status = fmt.Sprintf("deleted %d", len(ids))
		}

	case "esc":
		m.Store.DeselectAll()

	case "a":
		var ids []string
		for _, n := range m.Store.Notes() {
			ids = append(ids, n.ID)
		}
		m.Store.SelectNotes(ids, true)

	case "ctrl+c":
		n := m.Clip.Copy(m.Store)
		if n > 0 {
			m.status = fmt.Sprintf("copied %d", n)
		}

	case "ctrl+v":
		ids := m.Clip.Paste(m.Store, m.Transport.Playhead())
		if len(ids) > 0 {
			m.status = fmt.Sprintf("pasted %d", len(ids))
		}

	case "ctrl+z", "u":
		m.Store.Undo()

	case "ctrl+y", "Z":
		m.Store.Redo()

	case "g":
		m.Store.SetGridSnap(m.Store.GridSnap().Next())

	case "+", "=":
		m.Transport.SetTempo(m.Transport.Tempo() + 5)

	case "-", "_":
		m.Transport.SetTempo(m.Transport.Tempo() - 5)

	case "h", "left":
		*m.Viewport = m.Viewport.Pan(-1, 0)
	case "l", "right":
		*m.Viewport = m.Viewport.Pan(1, 0)
	case "k", "up":
		*m.Viewport = m.Viewport.Pan(0, -1)
	case "j", "down":
		*m.Viewport = m.Viewport.Pan(0, 1)

	case "[":
		*m.Viewport = m.Viewport.ZoomAtX(0.8, m.Viewport.Width/2)
	case "]":
		*m.Viewport = m.Viewport.ZoomAtX(1.25, m.Viewport.Width/2)
	case "{":
		*m.Viewport = m.Viewport.ZoomAtY(0.8, m.Viewport.Height/2)
	case "}":
		*m.Viewport = m.Viewport.ZoomAtY(1.25, m.Viewport.Height/2)

	case "0", "home":
		m.Transport.SetPlayhead(0)
	case ",":
		m.Transport.SetPlayhead(m.Transport.Playhead() - unit)
	case ".":
		m.Transport.SetPlayhead(m.Transport.Playhead() + unit)

	case "s":
		p, _ := editor.Snapshot(m.Store, m.Transport)
		if err := editor.SaveProject(m.ProjectName, p); err != nil {
			m.status = "save failed: " + err.Error()
		} else {
			m.status = "saved"
		}

	case "o":
		p, err := editor.LoadProject(m.ProjectName, "")
		if err != nil {
			m.status = "load failed: " + err.Error()
		} else {
			editor.Restore(p, m.Store, m.Transport)
			m.status = fmt.Sprintf("loaded %d notes", m.Store.Len())
		}
	}

	return m, nil
}

func (m *Model) saveConfig() {
	m.Config.Viewport = *m.Viewport
	m.Config.GridSnap = m.Store.GridSnap()
	m.Config.Tempo = m.Transport.Tempo()
	if err := m.Config.Save(); err != nil {
		debug.Log("config", "save failed: %v", err)
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "loading..."
	}

	sym := m.Theme.Symbols
	rows := m.gridRows()
	cols := m.gridCols()
	v := *m.Viewport
	playhead := m.Transport.Playhead()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	noteStyle := lipgloss.NewStyle().Foreground(m.Theme.Note())
	selStyle := lipgloss.NewStyle().Foreground(m.Theme.Selection())
	playStyle := lipgloss.NewStyle().Foreground(m.Theme.Playhead())
	ghostStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())
	boxStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())

	// Notes bucketed by pitch, insertion order preserved.
	byPitch := make(map[int][]editor.Note)
	for _, n := range m.Store.Notes() {
		byPitch[n.Pitch] = append(byPitch[n.Pitch], n)
	}

	var ghost *editor.DragCreating
	var box *editor.DragBoxSelect
	switch mode := m.Machine.Mode().(type) {
	case editor.DragCreating:
		if mode.Moved {
			ghost = &mode
		}
	case editor.DragBoxSelect:
		box = &mode
	}

	playState := "STOP"
	if m.Transport.Playing() {
		playState = "PLAY"
	}
	header := headerStyle.Render(fmt.Sprintf("go-pianoroll  %s  %3dbpm  beat %.2f  snap %s  notes %d",
		playState, m.Transport.Tempo(), playhead, m.Store.GridSnap(), m.Store.Len()))

	var out strings.Builder
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(m.renderRuler(v, cols)))
	out.WriteString("\n")

	playheadCol := -1
	if playhead >= v.ScrollX {
		playheadCol = int((playhead - v.ScrollX) * v.PixelsPerBeat)
	}

	top := v.TopPitch()
	for r := 0; r < rows; r++ {
		pitch := top - r
		if pitch < editor.MinPitch {
			out.WriteString(strings.Repeat(" ", m.width))
			out.WriteString("\n")
			continue
		}
		label := editor.PitchName(pitch)
		if pitch%12 == 0 {
			out.WriteString(headerStyle.Render(fmt.Sprintf("%-*s", labelWidth, label)))
		} else {
			out.WriteString(dimStyle.Render(fmt.Sprintf("%-*s", labelWidth, label)))
		}

		notes := byPitch[pitch]
		for c := 0; c < cols; c++ {
			b0 := v.ScrollX + float64(c)/v.PixelsPerBeat
			b1 := b0 + 1/v.PixelsPerBeat

			if box != nil && inBox(*box, float64(c), float64(r)) {
				out.WriteString(boxStyle.Render(string(sym.BoxCorner)))
				continue
			}

			if ghost != nil && ghost.Pitch == pitch && ghost.StartBeat < b1 && ghost.CurrentBeat > b0 {
				out.WriteString(ghostStyle.Render(string(sym.Ghost)))
				continue
			}

			var hit *editor.Note
			for i := range notes {
				if notes[i].Start < b1 && notes[i].End() > b0 {
					hit = &notes[i]
					break
				}
			}
			if hit != nil {
				isStart := hit.Start >= b0 && hit.Start < b1
				if m.Store.IsSelected(hit.ID) {
					if isStart {
						out.WriteString(selStyle.Render(string(sym.NoteHit)))
					} else {
						out.WriteString(selStyle.Render(string(sym.NoteSel)))
					}
				} else {
					if isStart {
						out.WriteString(noteStyle.Render(string(sym.NoteStart)))
					} else {
						out.WriteString(noteStyle.Render(string(sym.NoteBody)))
					}
				}
				continue
			}

			if c == playheadCol {
				out.WriteString(playStyle.Render(string(sym.Playhead)))
				continue
			}

			if onBeatBoundary(b0, b1) {
				out.WriteString(dimStyle.Render(string(sym.GridBeat)))
			} else {
				out.WriteString(dimStyle.Render(string(sym.GridDot)))
			}
		}
		out.WriteString("\n")
	}

	out.WriteString("\n")
	status := m.status
	if status == "" {
		status = m.modeStatus()
	}
	out.WriteString(dimStyle.Render(status))
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(widgets.RenderKeyHelp(keyHelp)))

	return out.String()
}

var keyHelp = []widgets.KeySection{
	{Keys: []widgets.KeyBinding{
		{Key: "ruler", Desc: "playhead"},
		{Key: "drag", Desc: "create/move"},
		{Key: "edges", Desc: "resize"},
		{Key: "shift", Desc: "box/add"},
		{Key: "alt+drag", Desc: "duplicate"},
		{Key: "x", Desc: "delete"},
		{Key: "esc", Desc: "deselect"},
	}},
	{Keys: []widgets.KeyBinding{
		{Key: "space", Desc: "play"},
		{Key: "^z/^y", Desc: "undo/redo"},
		{Key: "^c/^v", Desc: "copy/paste"},
		{Key: "g", Desc: "snap"},
		{Key: "s/o", Desc: "save/load"},
		{Key: "q", Desc: "quit"},
	}},
}

func (m Model) modeStatus() string {
	switch mode := m.Machine.Mode().(type) {
	case editor.DragCreating:
		return fmt.Sprintf("creating %s %.2f-%.2f", editor.PitchName(mode.Pitch), mode.StartBeat, mode.CurrentBeat)
	case editor.DragMoving:
		if n, ok := m.Store.NoteByID(mode.NoteID); ok {
			return fmt.Sprintf("moving %s @ %.2f", editor.PitchName(n.Pitch), n.Start)
		}
	case editor.DragResizingStart, editor.DragResizingEnd:
		return "resizing"
	case editor.DragBoxSelect:
		return "box select"
	}
	if n := len(m.Store.Selection()); n > 0 {
		return fmt.Sprintf("%d selected", n)
	}
	return ""
}

// renderRuler draws beat numbers over the grid columns.
func (m Model) renderRuler(v editor.Viewport, cols int) string {
	row := make([]rune, cols)
	for i := range row {
		row[i] = ' '
	}
	// Walk beat boundaries visible in the viewport.
	first := int(v.ScrollX)
	if float64(first) < v.ScrollX {
		first++
	}
	for b := first; ; b++ {
		col := int((float64(b) - v.ScrollX) * v.PixelsPerBeat)
		if col >= cols {
			break
		}
		for i, ch := range fmt.Sprintf("%d", b) {
			if col+i < cols {
				row[col+i] = ch
			}
		}
	}
	return strings.Repeat(" ", labelWidth) + string(row)
}

func onBeatBoundary(b0, b1 float64) bool {
	i := int(b0)
	if float64(i) < b0 {
		i++
	}
	return float64(i) < b1
}

func inBox(b editor.DragBoxSelect, x, y float64) bool {
	x0, x1 := b.StartX, b.CurrentX
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	y0, y1 := b.StartY, b.CurrentY
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return x >= x0 && x <= x1 && y >= y0 && y <= y1
}
