package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SpotifyGreen is the accent used for titles and success lines.
const SpotifyGreen = "#1DB954"

var styles = NewPalette(SpotifyGreen, "#04B575", "#FF5F57", "#FFA500", "#626262", "#00B7EB")

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	Title(string) string
	OK(string) string
	Err(string) string
	Warn(string) string
	Help(string) string
	Step(string) string
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	step  lipgloss.Style
	box   lipgloss.Style
}

func NewPalette(t, s, e, w, h, st string) *Palette {
	return &Palette{
		title: NewBold(t),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		step:  NewStyle(st),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t)).
			Padding(0, 2),
	}
}

func (p *Palette) Title(s string) string { return p.title.Render(s) }
func (p *Palette) OK(s string) string    { return p.ok.Render(s) }
func (p *Palette) Err(s string) string   { return p.err.Render(s) }
func (p *Palette) Warn(s string) string  { return p.warn.Render(s) }
func (p *Palette) Help(s string) string  { return p.help.Render(s) }
func (p *Palette) Step(s string) string  { return p.step.Render(s) }

// Banner draws lines inside a rounded box, the first line styled as a title.
func (p *Palette) Banner(lines ...string) string {
	if len(lines) == 0 {
		return ""
	}
	body := append([]string{p.Title(lines[0])}, lines[1:]...)
	return p.box.Render(strings.Join(body, "\n"))
}

// Default returns the package palette.
func Default() *Palette {
	return styles
}

func Title(s string) string         { return styles.Title(s) }
func OK(s string) string            { return styles.OK(s) }
func Err(s string) string           { return styles.Err(s) }
func Warn(s string) string          { return styles.Warn(s) }
func Help(s string) string          { return styles.Help(s) }
func Step(s string) string          { return styles.Step(s) }
func Banner(lines ...string) string { return styles.Banner(lines...) }

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
