package scene

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/milk9111/physync/assets"
	"github.com/milk9111/physync/ecs/component"
)

// Shape names accepted by ShapeImage.
const (
	ShapeBox      = "box"
	ShapeCircle   = "circle"
	ShapeTriangle = "triangle"
	ShapeCross    = "cross"
	ShapeEmpty    = "empty"
)

// NewCostume builds a costume from img with its rotation center in the
// middle of the image and the silhouette already extracted.
func NewCostume(name string, img image.Image) component.Costume {
	c := component.Costume{Name: name, Image: img}
	if img == nil {
		return c
	}
	b := img.Bounds()
	c.Width = float64(b.Dx())
	c.Height = float64(b.Dy())
	c.CenterX = c.Width / 2
	c.CenterY = c.Height / 2
	c.Points = Silhouette(img, DefaultAlphaThreshold)
	return c
}

// LoadCostume builds a costume from a PNG on disk or in the embedded
// assets.
func LoadCostume(path string) (component.Costume, error) {
	img, err := assets.LoadImage(path)
	if err != nil {
		return component.Costume{}, fmt.Errorf("scene: load costume: %w", err)
	}
	return NewCostume(path, img), nil
}

// ShapeImage draws a white shape of the given size on a transparent
// canvas.
func ShapeImage(shape string, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("scene: shape %q: bad size %dx%d", shape, width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	white := color.RGBA{0xff, 0xff, 0xff, 0xff}
	fw, fh := float64(width), float64(height)

	switch strings.ToLower(shape) {
	case ShapeBox, "":
		draw.Draw(img, img.Bounds(), &image.Uniform{white}, image.Point{}, draw.Src)
	case ShapeCircle:
		cx, cy := fw/2, fh/2
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				dx := (float64(x) + 0.5 - cx) / cx
				dy := (float64(y) + 0.5 - cy) / cy
				if dx*dx+dy*dy <= 1 {
					img.Set(x, y, white)
				}
			}
		}
	case ShapeTriangle:
		// apex at the top center, base along the bottom edge
		for y := 0; y < height; y++ {
			half := fw / 2 * (float64(y) + 1) / fh
			for x := 0; x < width; x++ {
				if math.Abs(float64(x)+0.5-fw/2) <= half {
					img.Set(x, y, white)
				}
			}
		}
	case ShapeCross:
		tw, th := width/3, height/3
		draw.Draw(img, image.Rect(tw, 0, width-tw, height), &image.Uniform{white}, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(0, th, width, height-th), &image.Uniform{white}, image.Point{}, draw.Src)
	case ShapeEmpty:
	default:
		return nil, fmt.Errorf("scene: unknown shape %q", shape)
	}
	return img, nil
}

// ShapeCostume is NewCostume over ShapeImage.
func ShapeCostume(shape string, width, height int) (component.Costume, error) {
	img, err := ShapeImage(shape, width, height)
	if err != nil {
		return component.Costume{}, err
	}
	return NewCostume(shape, img), nil
}
