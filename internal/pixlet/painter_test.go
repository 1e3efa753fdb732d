package pixlet

import (
	"bytes"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/koios/api-widget/internal/widget"
	"github.com/koios/api-widget/pkg/models"

	"tidbyt.dev/pixlet/render"
)

func testPlan() models.RenderPlan {
	return models.RenderPlan{
		TitleText:     "Stocks",
		BodyText:      "AAPL $190",
		TimestampText: "Updated: 13:05",
		ResolvedColor: models.Color{A: 0xFF, G: 0xFF},
		RefreshAction: widget.RefreshAction(1),
		OpenAppAction: widget.OpenAppAction(),
	}
}

func TestNewPainterDefaults(t *testing.T) {
	p := NewPainter(0, -1, zap.NewNop())
	if w, h := p.Size(); w != 64 || h != 32 {
		t.Errorf("Size() = %dx%d, want 64x32", w, h)
	}
}

func TestPainterRoot(t *testing.T) {
	p := NewPainter(64, 32, zap.NewNop())
	root := p.root(testPlan())

	col, ok := root.Child.(render.Column)
	if !ok {
		t.Fatalf("root child is %T, want render.Column", root.Child)
	}
	if len(col.Children) != 3 {
		t.Fatalf("column has %d children, want 3", len(col.Children))
	}

	header := col.Children[0].(render.Row)
	accent := header.Children[0].(render.Box)
	if accent.Color != (models.Color{A: 0xFF, G: 0xFF}) {
		t.Errorf("accent color = %v", accent.Color)
	}
	if title := header.Children[2].(render.Text); title.Content != "Stocks" {
		t.Errorf("title = %q", title.Content)
	}

	body := col.Children[1].(render.Marquee)
	if text := body.Child.(render.Text); text.Content != "AAPL $190" {
		t.Errorf("body = %q", text.Content)
	}
	if footer := col.Children[2].(render.Text); footer.Content != "Updated: 13:05" {
		t.Errorf("footer = %q", footer.Content)
	}
}

func TestPaint(t *testing.T) {
	p := NewPainter(64, 32, zap.NewNop())

	webp, err := p.Paint(testPlan())
	if err != nil {
		t.Fatalf("Paint: %v", err)
	}
	if len(webp) < 12 || !bytes.Equal(webp[:4], []byte("RIFF")) || !bytes.Equal(webp[8:12], []byte("WEBP")) {
		t.Fatalf("output is not a WebP container (%d bytes)", len(webp))
	}
}

func TestPaintConcurrentSizes(t *testing.T) {
	small := NewPainter(64, 32, zap.NewNop())
	large := NewPainter(128, 64, zap.NewNop())

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 4; i++ {
		for _, p := range []*Painter{small, large} {
			wg.Add(1)
			go func(p *Painter) {
				defer wg.Done()
				if _, err := p.Paint(testPlan()); err != nil {
					errs <- err
				}
			}(p)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Paint: %v", err)
	}
}
