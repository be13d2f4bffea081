package source

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/ivlev/steps2video/internal/timeline"
)

// Source supplies the opaque step artifacts. The timeline only sees the step count and labels.
type Source interface {
	StepCount() int
	Label(index int) string
	RenderStep(index int) (image.Image, error)
	Close() error
}

// Options tune how steps are rasterized.
type Options struct {
	DPI        int
	Foreground color.Color
	Background color.Color
}

// Open picks a source by path: a PDF file, a directory of images or a directory of code files.
func Open(path string, opts Options) (Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var src Source
	switch {
	case !fi.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf"):
		src, err = NewFitzPDFSource(path, opts.DPI)
	case !fi.IsDir() && isImage(path):
		src, err = NewImageSource(path)
	case fi.IsDir() && dirHasImages(path):
		src, err = NewImageSource(path)
	default:
		src, err = NewTextSource(path, opts)
	}
	if err != nil {
		return nil, err
	}
	if src.StepCount() == 0 {
		src.Close()
		return nil, fmt.Errorf("%s: %w", path, timeline.ErrEmptySequence)
	}
	return src, nil
}

// Labels collects every step label in order.
func Labels(src Source) []string {
	labels := make([]string, src.StepCount())
	for i := range labels {
		labels[i] = src.Label(i)
	}
	return labels
}

type FitzPDFSource struct {
	doc  *fitz.Document
	path string
	dpi  int
}

func NewFitzPDFSource(path string, dpi int) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = 150
	}
	return &FitzPDFSource{doc: doc, path: path, dpi: dpi}, nil
}

func (f *FitzPDFSource) StepCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) Label(index int) string {
	return fmt.Sprintf("page %d", index+1)
}

// RenderStep opens its own document handle; fitz documents are not safe for concurrent use.
func (f *FitzPDFSource) RenderStep(index int) (image.Image, error) {
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(f.dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
