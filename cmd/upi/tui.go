package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/upi-engine/accent"
	"github.com/lixenwraith/upi-engine/audio"
	"github.com/lixenwraith/upi-engine/scene"
	"github.com/lixenwraith/upi-engine/upi"
)

const (
	tuiFrameInterval = 50 * time.Millisecond
	helpLine         = "space advance  n scene  r reset  R reset all  p pause  e edit  q quit"
)

// preview is the audio surface the TUI drives
type preview interface {
	Play(bars []audio.Bar)
	Pause(paused bool)
	Playhead() (bar, step int, ok bool)
}

var (
	styleDefault = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Bold(true)
	styleOnset   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleAccent  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleRest    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleHelp    = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// tui holds the interactive session state
type tui struct {
	screen tcell.Screen
	parser *upi.Parser
	audio  preview

	expr    string
	res     upi.Result
	scenes  *scene.Cycler
	accents *accent.Sequence
	cycle   int
	paused  bool

	editing bool
	input   []rune
	message string
}

func newTUI(screen tcell.Screen, parser *upi.Parser, p preview, expr string) *tui {
	t := &tui{screen: screen, parser: parser, audio: p, scenes: scene.NewCycler(nil, 0)}
	if expr != "" {
		t.evaluate(expr)
	} else {
		t.startEdit()
	}
	return t
}

func runTUI(a *app, expr string) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	var p preview
	if a.cfg.Audio.Enabled {
		player := audio.NewPlayer(audio.SettingsFrom(a.cfg.Audio), a.cfg.Audio.MasterVolume, a.reg)
		if err := player.Init(); err != nil {
			log.Printf("audio: %v (continuing without audio)", err)
		} else {
			defer player.Close()
			p = player
		}
	}

	t := newTUI(screen, a.parser, p, expr)
	t.run()
	return nil
}

func (t *tui) run() {
	ticker := time.NewTicker(tuiFrameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	t.draw()
	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !t.handleKey(ev) {
					return
				}
			case *tcell.EventResize:
				t.screen.Sync()
			}
			t.draw()
		case <-ticker.C:
			if t.audio != nil {
				t.draw()
			}
		}
	}
}

// evaluate parses expr as a new advance of the current expression
func (t *tui) evaluate(expr string) {
	if expr != t.expr {
		t.cycle = 0
	} else {
		t.cycle++
	}
	t.expr = expr
	t.res = t.parser.Parse(expr)
	t.message = ""
	if !t.res.OK() {
		t.message = t.res.Err.Error()
		return
	}
	t.scenes = scene.FromResult(t.res, 0)
	t.accents = t.res.AccentSequence()
	if t.audio != nil {
		t.audio.Play(audio.BarsFromResult(t.res))
	}
}

// handleKey returns false when the TUI should exit
func (t *tui) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		return false
	}
	if t.editing {
		t.handleEditKey(ev)
		return true
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		return false
	case tcell.KeyEnter:
		t.startEdit()
		return true
	case tcell.KeyRune:
	default:
		return true
	}

	switch ev.Rune() {
	case 'q':
		return false
	case ' ':
		if t.expr != "" {
			t.evaluate(t.expr)
		}
	case 'n':
		t.scenes.Advance()
	case 'r':
		n, err := t.parser.Reset(t.expr)
		if err != nil {
			t.message = err.Error()
		} else {
			t.message = fmt.Sprintf("reset %d session(s)", n)
			t.cycle = 0
		}
	case 'R':
		t.message = fmt.Sprintf("reset %d session(s)", t.parser.ResetAll())
		t.cycle = 0
	case 'p':
		t.paused = !t.paused
		if t.audio != nil {
			t.audio.Pause(t.paused)
		}
	case 'e':
		t.startEdit()
	}
	return true
}

func (t *tui) startEdit() {
	t.editing = true
	t.input = []rune(t.expr)
}

func (t *tui) handleEditKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		t.editing = false
	case tcell.KeyEnter:
		expr := string(t.input)
		t.editing = false
		if expr != "" {
			t.evaluate(expr)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(t.input) > 0 {
			t.input = t.input[:len(t.input)-1]
		}
	case tcell.KeyRune:
		t.input = append(t.input, ev.Rune())
	}
}

func (t *tui) draw() {
	t.screen.Clear()
	width, height := t.screen.Size()

	drawText(t.screen, 0, 0, width, styleTitle, "UPI "+t.expr)
	if t.res.OK() {
		drawText(t.screen, 0, 1, width, styleDefault, upi.Describe(t.res))
		t.drawGrid(2, 3, width)
	}
	if t.message != "" {
		style := styleDefault
		if !t.res.OK() {
			style = styleError
		}
		drawText(t.screen, 0, 5, width, style, t.message)
	}

	if t.editing {
		line := "> " + string(t.input)
		drawText(t.screen, 0, height-1, width, styleDefault, line)
		t.screen.ShowCursor(len([]rune(line)), height-1)
	} else {
		t.screen.HideCursor()
		drawText(t.screen, 0, height-1, width, styleHelp, helpLine)
	}
	t.screen.Show()
}

// drawGrid renders the active scene: x onset, X accent, . rest; the sounding step is reversed
func (t *tui) drawGrid(x, y, width int) {
	idx, p, ok := t.scenes.Current()
	if !ok {
		return
	}
	if t.scenes.Len() > 1 {
		drawText(t.screen, 0, y+1, width, styleHelp, fmt.Sprintf("scene %d/%d", idx+1, t.scenes.Len()))
	}

	var accents []bool
	if t.accents != nil && t.scenes.Len() == 1 {
		accents = t.accents.Map(t.cycle)
	}
	playStep := -1
	if t.audio != nil && t.scenes.Len() == 1 {
		if _, step, ok := t.audio.Playhead(); ok {
			playStep = step
		}
	}

	for i, on := range p.Steps() {
		if x+i >= width {
			break
		}
		r, style := '.', styleRest
		if on {
			r, style = 'x', styleOnset
			if i < len(accents) && accents[i] {
				r, style = 'X', styleAccent
			}
		}
		if i == playStep {
			style = style.Reverse(true)
		}
		t.screen.SetContent(x+i, y, r, nil, style)
	}
}

func drawText(s tcell.Screen, x, y, width int, style tcell.Style, text string) {
	for _, r := range text {
		if x >= width {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
