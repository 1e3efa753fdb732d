package pixlet

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"go.uber.org/zap"

	"github.com/koios/api-widget/pkg/models"

	"tidbyt.dev/pixlet/encode"
	"tidbyt.dev/pixlet/globals"
	"tidbyt.dev/pixlet/render"
)

// renderMu guards pixlet's package-level frame dimensions, which are not
// safe for concurrent use.
var renderMu sync.Mutex

const (
	defaultWidth  = 64
	defaultHeight = 32

	// maxDuration caps the marquee animation in milliseconds
	maxDuration = 15000

	smallFont = "tom-thumb"
)

var timestampColor = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xFF}

// Painter draws a render plan onto a small pixel frame and encodes it as WebP.
type Painter struct {
	width  int
	height int
	logger *zap.Logger
}

// NewPainter creates a painter for a width x height frame.
func NewPainter(width, height int, logger *zap.Logger) *Painter {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return &Painter{width: width, height: height, logger: logger}
}

// Size returns the frame dimensions.
func (p *Painter) Size() (int, int) {
	return p.width, p.height
}

// Paint encodes plan as an animated WebP.
func (p *Painter) Paint(plan models.RenderPlan) ([]byte, error) {
	root := p.root(plan)

	renderMu.Lock()
	globals.Width = p.width
	globals.Height = p.height
	// Paint() only refreshes FrameWidth/FrameHeight when globals differ
	// from 64x32, so set them directly as well.
	render.FrameWidth = p.width
	render.FrameHeight = p.height

	screens := encode.ScreensFromRoots([]render.Root{root})

	identity := func(input image.Image) (image.Image, error) {
		return input, nil
	}
	webp, err := screens.EncodeWebP(maxDuration, identity)
	renderMu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("error encoding WebP: %w", err)
	}

	p.logger.Debug("Preview painted",
		zap.Int("width", p.width),
		zap.Int("height", p.height),
		zap.Int("output_size", len(webp)))

	return webp, nil
}

// root lays out: accent bar + title, scrolling body, timestamp.
func (p *Painter) root(plan models.RenderPlan) render.Root {
	header := render.Row{
		CrossAlign: "center",
		Children: []render.Widget{
			render.Box{Width: 2, Height: 7, Color: plan.ResolvedColor},
			render.Box{Width: 1, Height: 7},
			render.Text{Content: plan.TitleText, Font: smallFont},
		},
	}

	body := render.Marquee{
		Width: p.width,
		Child: render.Text{Content: plan.BodyText},
	}

	footer := render.Text{
		Content: plan.TimestampText,
		Font:    smallFont,
		Color:   timestampColor,
	}

	return render.Root{
		Child: render.Column{
			MainAlign: "space_between",
			Expanded:  true,
			Children:  []render.Widget{header, body, footer},
		},
	}
}
