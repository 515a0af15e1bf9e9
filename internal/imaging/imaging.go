package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"
	"net/http"

	"photo_commerce/internal/storage"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp" // register webp decoding
)

// ThumbnailWidth is the fixed output width for thumbnails; height follows
// the source aspect ratio.
const ThumbnailWidth = 400

// WatermarkQuality and ThumbnailQuality are the JPEG re-encode settings for
// the two derived variants.
const (
	WatermarkQuality = 85
	ThumbnailQuality = 80
)

// watermarkAngle is the tilt of the tiled text mark, in radians (-30 deg).
const watermarkAngle = -30 * math.Pi / 180

// watermarkAlpha keeps the mark readable without hiding the photo.
const watermarkAlpha = 90

// AllowedMIME lists the accepted input MIME types, sniffed from bytes.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ExtForMIME maps an accepted MIME type to the stored file extension of the
// original object. Derived variants are always JPEG.
var ExtForMIME = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Source is a decoded upload: the raw bytes (stored untouched as the
// original variant) plus the decoded pixels the derivatives are cut from.
type Source struct {
	Data   []byte
	MIME   string
	Image  image.Image
	Width  int
	Height int
}

// Decode reads an upload, enforces the size ceiling, sniffs the real MIME
// type from bytes (client headers are not trusted) and decodes the pixels.
// maxSize <= 0 disables the size check.
func Decode(r io.Reader, maxSize int64) (*Source, error) {
	var data []byte
	var err error

	if maxSize > 0 {
		data, err = io.ReadAll(io.LimitReader(r, maxSize+1))
		if err == nil && int64(len(data)) > maxSize {
			return nil, storage.ErrFileTooLarge
		}
	} else {
		data, err = io.ReadAll(r)
	}
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return nil, fmt.Errorf("%w: %s", storage.ErrInvalidFileType, detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	bounds := img.Bounds()

	return &Source{
		Data:   data,
		MIME:   detected,
		Image:  img,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// Watermark renders the source at full resolution with a repeating, rotated,
// semi-transparent text mark tiled across the whole canvas, then re-encodes
// as JPEG.
func Watermark(src *Source, text string) ([]byte, error) {
	if text == "" {
		text = "PREVIEW"
	}

	bounds := src.Image.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Copy(canvas, image.Point{}, src.Image, bounds, draw.Src, nil)

	overlay := buildOverlay(text, w, h)

	// Rotate the tiled overlay about the canvas center. The overlay is
	// diagonal-sized so the corners stay covered after rotation.
	ow := overlay.Bounds().Dx()
	oh := overlay.Bounds().Dy()
	sin, cos := math.Sincos(watermarkAngle)
	cx, cy := float64(w)/2, float64(h)/2
	ox, oy := float64(ow)/2, float64(oh)/2

	m := f64.Aff3{
		cos, -sin, cx - cos*ox + sin*oy,
		sin, cos, cy - sin*ox - cos*oy,
	}
	draw.BiLinear.Transform(canvas, m, overlay, overlay.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: WatermarkQuality}); err != nil {
		return nil, fmt.Errorf("encoding watermarked JPEG: %w", err)
	}

	return buf.Bytes(), nil
}

// Thumbnail scales the source to a fixed width, preserving the aspect
// ratio, and re-encodes at a lower quality.
func Thumbnail(src *Source) ([]byte, error) {
	bounds := src.Image.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	tw := ThumbnailWidth
	th := int(float64(h) * float64(tw) / float64(w))
	if th < 1 {
		th = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src.Image, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: ThumbnailQuality}); err != nil {
		return nil, fmt.Errorf("encoding thumbnail JPEG: %w", err)
	}

	return buf.Bytes(), nil
}

// buildOverlay tiles the text stamp over a diagonal-sized transparent
// canvas, ready to be rotated onto the photo.
func buildOverlay(text string, w, h int) *image.RGBA {
	stamp := renderStamp(text, w)
	sw := stamp.Bounds().Dx()
	sh := stamp.Bounds().Dy()

	// Diagonal length covers the full photo at any rotation.
	d := int(math.Ceil(math.Hypot(float64(w), float64(h))))
	overlay := image.NewRGBA(image.Rect(0, 0, d, d))

	stepX := sw + sw/2
	stepY := sh * 4
	for y := 0; y < d; y += stepY {
		// Offset odd rows by half a step for a brick layout.
		offset := 0
		if (y/stepY)%2 == 1 {
			offset = stepX / 2
		}
		for x := -offset; x < d; x += stepX {
			draw.Copy(overlay, image.Point{X: x, Y: y}, stamp, stamp.Bounds(), draw.Over, nil)
		}
	}

	return overlay
}

// renderStamp draws the text once with the built-in face, then scales it so
// the mark stays legible on large originals.
func renderStamp(text string, photoWidth int) *image.RGBA {
	face := basicfont.Face7x13
	tw := font.MeasureString(face, text).Ceil()
	th := face.Metrics().Height.Ceil()

	base := image.NewRGBA(image.Rect(0, 0, tw+4, th+4))
	drawer := font.Drawer{
		Dst:  base,
		Src:  image.NewUniform(color.RGBA{255, 255, 255, watermarkAlpha}),
		Face: face,
		Dot:  fixed.P(2, face.Metrics().Ascent.Ceil()+2),
	}
	drawer.DrawString(text)

	scale := photoWidth / 600
	if scale < 1 {
		scale = 1
	}
	if scale == 1 {
		return base
	}

	scaled := image.NewRGBA(image.Rect(0, 0, base.Bounds().Dx()*scale, base.Bounds().Dy()*scale))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), base, base.Bounds(), draw.Src, nil)
	return scaled
}
