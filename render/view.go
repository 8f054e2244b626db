package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/marrowfield/memstride/grid"
)

// Tile cell width on screen, two runes per tile plus a one-column gap
const tileCellWidth = 3

var tileStyles = map[grid.TileState]tcell.Style{
	grid.TileDefault: tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(90, 90, 110)),
	grid.TilePath: tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(100, 200, 220)).Bold(true),
	grid.TileStart: tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(80, 200, 80)).Bold(true),
	grid.TileEnd: tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(255, 180, 100)).Bold(true),
	grid.TileCorrect: tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(80, 220, 120)),
	grid.TileWrong: tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(230, 80, 80)).Bold(true),
}

var tileGlyphs = map[grid.TileState]rune{
	grid.TileDefault: '·',
	grid.TilePath:    '▣',
	grid.TileStart:   'S',
	grid.TileEnd:     'E',
	grid.TileCorrect: '■',
	grid.TileWrong:   '✕',
}

// Frame is everything the view needs for one draw
type Frame struct {
	Tiles   [][]grid.TileState
	State   string
	Level   int
	Score   int
	HeadX   int // Grid cell under the head, -1 when off grid
	HeadZ   int
	InStart bool
	Status  string
}

// View owns the terminal screen and draws the board top-down, the start
// zone below the last row
type View struct {
	screen tcell.Screen
}

func New() (*View, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	screen.HideCursor()
	return &View{screen: screen}, nil
}

func (v *View) Close() {
	v.screen.Fini()
}

// PollEvent blocks for the next terminal event
func (v *View) PollEvent() tcell.Event {
	return v.screen.PollEvent()
}

func (v *View) Draw(f Frame) {
	v.screen.Clear()

	header := fmt.Sprintf(" memstride  %s  level %d  score %d", f.State, f.Level, f.Score)
	v.drawText(0, 0, tcell.StyleDefault.Bold(true), header)

	// Board rows render top-down: z=0 is the far row, matching world Z
	top := 2
	left := 2
	for z, row := range f.Tiles {
		for x, state := range row {
			glyph := tileGlyphs[state]
			style := tileStyles[state]
			if x == f.HeadX && z == f.HeadZ {
				style = style.Reverse(true)
			}
			v.screen.SetContent(left+x*tileCellWidth, top+z, glyph, nil, style)
		}
	}

	zoneStyle := tcell.StyleDefault.Foreground(tcell.NewRGBColor(100, 100, 100))
	if f.InStart {
		zoneStyle = zoneStyle.Reverse(true)
	}
	v.drawText(left, top+len(f.Tiles)+1, zoneStyle, "[ start zone ]")

	if f.Status != "" {
		v.drawText(0, top+len(f.Tiles)+3, tcell.StyleDefault, f.Status)
	}
	v.drawText(0, top+len(f.Tiles)+5, tcell.StyleDefault.Dim(true),
		"hjkl/arrows move  space place grid  z toggle start zone  p pause  q quit")

	v.screen.Show()
}

func (v *View) drawText(x, y int, style tcell.Style, text string) {
	for i, r := range text {
		v.screen.SetContent(x+i, y, r, nil, style)
	}
}
