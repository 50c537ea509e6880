package transform

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"
	"path"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
)

const svgMediaType = "image/svg+xml"

// DefaultJPEGQuality is used when an optimizer is built with quality 0.
const DefaultJPEGQuality = 85

// ImageOptimizer shrinks images. PNG is re-encoded at best compression and
// JPEG at the configured quality; in both cases the smaller of original and
// re-encoded is kept. SVG is minified. GIF and anything else pass through.
type ImageOptimizer struct {
	jpegQuality int
	svg         *minify.M
}

// NewImageOptimizer returns an optimizer re-encoding JPEG at the given quality.
func NewImageOptimizer(jpegQuality int) *ImageOptimizer {
	if jpegQuality <= 0 {
		jpegQuality = DefaultJPEGQuality
	}
	m := minify.New()
	m.Add(svgMediaType, &svg.Minifier{})
	return &ImageOptimizer{jpegQuality: jpegQuality, svg: m}
}

// Optimize returns the optimized bytes for the file called name.
func (o *ImageOptimizer) Optimize(name string, data []byte) ([]byte, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return o.png(data)
	case ".jpg", ".jpeg":
		return o.jpeg(data)
	case ".svg":
		out, err := o.svg.Bytes(svgMediaType, data)
		if err != nil {
			return nil, fmt.Errorf("minify svg: %w", err)
		}
		return out, nil
	default:
		return data, nil
	}
}

func (o *ImageOptimizer) png(data []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return smaller(data, buf.Bytes()), nil
}

func (o *ImageOptimizer) jpeg(data []byte) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode jpeg: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: o.jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return smaller(data, buf.Bytes()), nil
}

func smaller(orig, candidate []byte) []byte {
	if len(candidate) < len(orig) {
		return candidate
	}
	return orig
}
