package source

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	textMargin = 8
	textScale  = 2
	tabWidth   = 4
)

// TextSource renders each code file of a directory as one step, in name order.
// Highlighting is out of scope; text is drawn in the foreground color.
type TextSource struct {
	paths []string
	fg    color.Color
	bg    color.Color
}

func NewTextSource(dir string, opts Options) (*TextSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	s := &TextSource{paths: paths, fg: opts.Foreground, bg: opts.Background}
	if s.fg == nil {
		s.fg = color.Black
	}
	if s.bg == nil {
		s.bg = color.Transparent
	}
	return s, nil
}

func (s *TextSource) StepCount() int {
	return len(s.paths)
}

func (s *TextSource) Label(index int) string {
	return stem(s.paths[index])
}

func (s *TextSource) RenderStep(index int) (image.Image, error) {
	if index < 0 || index >= len(s.paths) {
		return nil, fmt.Errorf("text source: step %d out of range", index)
	}
	data, err := os.ReadFile(s.paths[index])
	if err != nil {
		return nil, err
	}
	return RenderText(string(data), s.fg, s.bg), nil
}

func (s *TextSource) Close() error {
	return nil
}

// RenderText draws monospaced lines with the basic 7x13 face, upscaled for legibility.
func RenderText(text string, fg, bg color.Color) *image.RGBA {
	face := basicfont.Face7x13
	lines := strings.Split(strings.ReplaceAll(strings.TrimRight(text, "\n"), "\t", strings.Repeat(" ", tabWidth)), "\n")

	cols := 1
	for _, l := range lines {
		cols = max(cols, len([]rune(l)))
	}
	w := cols*face.Advance + 2*textMargin
	h := len(lines)*face.Height + 2*textMargin

	small := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(small, small.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	d := &font.Drawer{Dst: small, Src: image.NewUniform(fg), Face: face}
	for i, l := range lines {
		d.Dot = fixed.P(textMargin, textMargin+face.Ascent+i*face.Height)
		d.DrawString(l)
	}

	out := image.NewRGBA(image.Rect(0, 0, w*textScale, h*textScale))
	draw.NearestNeighbor.Scale(out, out.Bounds(), small, small.Bounds(), draw.Src, nil)
	return out
}
