package display

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log/slog"

	"cloudpico-tankmonitor/internal/types"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

var ErrNotInitialized = errors.New("display not initialized")

// Surface is a 1-bit panel. *ssd1306.Dev satisfies it.
type Surface interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// Opener binds the panel. It is called once from Init.
type Opener func() (Surface, error)

// Presenter renders the splash and the readings screen.
type Presenter struct {
	open    Opener
	splash  image.Image
	logger  *slog.Logger
	surface Surface

	small font.Face
	large font.Face
}

// NewPresenter takes the splash to show at boot; nil selects the built-in one.
func NewPresenter(open Opener, splash image.Image, logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Presenter{
		open:   open,
		splash: splash,
		logger: logger,
		small:  basicfont.Face7x13,
		large:  inconsolata.Bold8x16,
	}
}

func (p *Presenter) Init() error {
	s, err := p.open()
	if err != nil {
		return fmt.Errorf("open display: %w", err)
	}
	p.surface = s
	p.logger.Info("display ready", "bounds", s.Bounds().String())
	return nil
}

func (p *Presenter) ShowSplash() error {
	if p.surface == nil {
		return ErrNotInitialized
	}
	frame := image1bit.NewVerticalLSB(p.surface.Bounds())
	if p.splash != nil {
		draw.Draw(frame, frame.Bounds(), p.splash, p.splash.Bounds().Min, draw.Src)
	} else {
		p.drawBuiltinSplash(frame)
	}
	return p.flush(frame)
}

func (p *Presenter) ShowReadings(r types.Reading, id types.Identity) error {
	if p.surface == nil {
		return ErrNotInitialized
	}
	frame := image1bit.NewVerticalLSB(p.surface.Bounds())
	for _, t := range Layout(r, id) {
		p.drawText(frame, t)
	}
	return p.flush(frame)
}

// Close blanks the panel when the surface supports it.
func (p *Presenter) Close() error {
	if h, ok := p.surface.(interface{ Halt() error }); ok {
		return h.Halt()
	}
	return nil
}

func (p *Presenter) flush(frame *image1bit.VerticalLSB) error {
	if err := p.surface.Draw(frame.Bounds(), frame, image.Point{}); err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	return nil
}

func (p *Presenter) drawText(dst draw.Image, t Text) {
	face := p.small
	if t.Large {
		face = p.large
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(image1bit.On),
		Face: face,
		// cursor positions are top-left; the drawer wants the baseline
		Dot: fixed.P(t.X, t.Y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(t.S)
}

func (p *Presenter) drawBuiltinSplash(frame *image1bit.VerticalLSB) {
	b := frame.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		frame.SetBit(x, b.Min.Y, image1bit.On)
		frame.SetBit(x, b.Max.Y-1, image1bit.On)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		frame.SetBit(b.Min.X, y, image1bit.On)
		frame.SetBit(b.Max.X-1, y, image1bit.On)
	}

	title := "tankmonitor"
	w := font.MeasureString(p.large, title).Ceil()
	h := p.large.Metrics().Height.Ceil()
	p.drawText(frame, Text{
		X:     b.Min.X + (b.Dx()-w)/2,
		Y:     b.Min.Y + (b.Dy()-h)/2,
		S:     title,
		Large: true,
	})
}
