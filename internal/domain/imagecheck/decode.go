package imagecheck

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// Raster decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrUnrecognisedImage = errors.New("body does not match a known image signature")
	ErrEmptyImage        = errors.New("image has empty bounds")
	ErrTooManyPixels     = errors.New("image dimensions exceed the pixel budget")
)

type decodedInfo struct {
	width  int
	height int
}

// verifyDecodable confirms body really is an image of the sniffed format.
// Raster formats are fully decoded; ICO and AVIF have no decoder here and are
// accepted on signature alone; SVG was already checked structurally by the sniffer.
// The header is read first: decoders allocate from the declared size, so an
// image over maxPixels is rejected before any pixel buffer exists.
func verifyDecodable(format Format, body []byte, maxPixels int64) (decodedInfo, error) {
	switch format {
	case FormatUnknown:
		return decodedInfo{}, ErrUnrecognisedImage
	case FormatICO, FormatAVIF, FormatSVG:
		return decodedInfo{}, nil
	}

	cfg, decodedAs, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		return decodedInfo{}, fmt.Errorf("decode %s header: %w", format, err)
	}
	if decodedAs != string(format) {
		return decodedInfo{}, fmt.Errorf("decode %s: decoder reported %q", format, decodedAs)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return decodedInfo{}, ErrEmptyImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return decodedInfo{}, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return decodedInfo{}, fmt.Errorf("decode %s: %w", format, err)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return decodedInfo{}, ErrEmptyImage
	}
	return decodedInfo{width: bounds.Dx(), height: bounds.Dy()}, nil
}
