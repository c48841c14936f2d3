package viz

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	"github.com/icza/mjpeg"
	"github.com/san-kum/bactsim/internal/culture"
	"github.com/san-kum/bactsim/internal/sim"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	dotRadius   = 2
	labelHeight = 18
	jpegQuality = 75
)

var (
	backgroundColor = color.RGBA{R: 12, G: 12, B: 20, A: 255}
	agentColor      = color.RGBA{R: 0, G: 255, B: 136, A: 255}
	labelColor      = color.RGBA{R: 230, G: 230, B: 230, A: 255}
)

// VideoRecorder writes every stride-th step of a run as one MJPEG frame.
// It implements sim.Observer. The first failure is kept and reported by
// Close; later steps are ignored.
type VideoRecorder struct {
	writer        mjpeg.AviWriter
	width, height int
	stride        int
	frames        int
	buf           bytes.Buffer
	err           error
}

func NewVideoRecorder(path string, width, height, fps, stride int) (*VideoRecorder, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("viz: invalid video size %dx%d", width, height)
	}
	if fps <= 0 {
		fps = 30
	}
	if stride < 1 {
		stride = 1
	}
	w, err := mjpeg.New(path, int32(width), int32(height+labelHeight), int32(fps))
	if err != nil {
		return nil, err
	}
	return &VideoRecorder{writer: w, width: width, height: height, stride: stride}, nil
}

func (v *VideoRecorder) OnStep(rec sim.Record, positions []culture.Position) {
	if v.err != nil || rec.Step%v.stride != 0 {
		return
	}
	v.err = v.AddFrame(rec, positions)
}

// AddFrame renders the culture unconditionally, ignoring the stride.
func (v *VideoRecorder) AddFrame(rec sim.Record, positions []culture.Position) error {
	img := Frame(rec, positions, v.width, v.height)

	v.buf.Reset()
	if err := jpeg.Encode(&v.buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return err
	}
	if err := v.writer.AddFrame(v.buf.Bytes()); err != nil {
		return err
	}
	v.frames++
	return nil
}

func (v *VideoRecorder) Frames() int { return v.frames }

func (v *VideoRecorder) Close() error {
	if err := v.writer.Close(); err != nil && v.err == nil {
		v.err = err
	}
	return v.err
}

// Frame draws the agents as dots on a width x height canvas with a status
// line underneath.
func Frame(rec sim.Record, positions []culture.Position, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height+labelHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	bounds := image.Rect(0, 0, width, height)
	for _, p := range positions {
		cx, cy := int(p.X), int(p.Y)
		dot := image.Rect(cx-dotRadius, cy-dotRadius, cx+dotRadius+1, cy+dotRadius+1).Intersect(bounds)
		if dot.Empty() {
			continue
		}
		draw.Draw(img, dot, image.NewUniform(agentColor), image.Point{}, draw.Src)
	}

	label := fmt.Sprintf("t=%.3f approx=%d analytical=%.1f rel=%.2f%%",
		rec.Time, rec.Approx, rec.Analytical, rec.RelError*100)
	addLabel(img, 4, height+labelHeight-5, label, labelColor)
	return img
}

// addLabel draws a text label onto an image at the specified baseline.
func addLabel(img *image.RGBA, x, y int, label string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(label)
}
