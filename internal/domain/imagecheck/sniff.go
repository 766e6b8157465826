package imagecheck

import (
	"bytes"
	"mime"
	"strings"
)

// Format is an image container recognised by its leading bytes.
type Format string

const (
	FormatUnknown Format = ""
	FormatPNG     Format = "png"
	FormatJPEG    Format = "jpeg"
	FormatGIF     Format = "gif"
	FormatWebP    Format = "webp"
	FormatBMP     Format = "bmp"
	FormatTIFF    Format = "tiff"
	FormatICO     Format = "ico"
	FormatAVIF    Format = "avif"
	FormatSVG     Format = "svg"
)

// sniffWindow bounds how much of the body the textual SVG check looks at.
const sniffWindow = 1024

var (
	sigPNG      = []byte("\x89PNG\r\n\x1a\n")
	sigJPEG     = []byte{0xFF, 0xD8, 0xFF}
	sigGIF87    = []byte("GIF87a")
	sigGIF89    = []byte("GIF89a")
	sigRIFF     = []byte("RIFF")
	sigWEBP     = []byte("WEBP")
	sigBMP      = []byte("BM")
	sigTIFFLE   = []byte("II*\x00")
	sigTIFFBE   = []byte("MM\x00*")
	sigICO      = []byte{0x00, 0x00, 0x01, 0x00}
	sigFtyp     = []byte("ftyp")
	sigUTF8BOM  = []byte{0xEF, 0xBB, 0xBF}
	avifBrands  = [][]byte{[]byte("avif"), []byte("avis")}
	svgPrefixes = []string{"<?xml", "<svg", "<!--", "<!doctype svg"}
)

// SniffFormat identifies the image format from the leading bytes of body.
func SniffFormat(body []byte) Format {
	switch {
	case bytes.HasPrefix(body, sigPNG):
		return FormatPNG
	case bytes.HasPrefix(body, sigJPEG):
		return FormatJPEG
	case bytes.HasPrefix(body, sigGIF87), bytes.HasPrefix(body, sigGIF89):
		return FormatGIF
	case len(body) >= 12 && bytes.Equal(body[0:4], sigRIFF) && bytes.Equal(body[8:12], sigWEBP):
		return FormatWebP
	case bytes.HasPrefix(body, sigTIFFLE), bytes.HasPrefix(body, sigTIFFBE):
		return FormatTIFF
	case bytes.HasPrefix(body, sigICO):
		return FormatICO
	case isAVIF(body):
		return FormatAVIF
	case bytes.HasPrefix(body, sigBMP):
		return FormatBMP
	case isSVG(body):
		return FormatSVG
	}
	return FormatUnknown
}

func isAVIF(body []byte) bool {
	if len(body) < 12 || !bytes.Equal(body[4:8], sigFtyp) {
		return false
	}
	brand := body[8:12]
	for _, b := range avifBrands {
		if bytes.Equal(brand, b) {
			return true
		}
	}
	return false
}

// isSVG accepts XML documents whose leading window holds an <svg> element and no <html>.
func isSVG(body []byte) bool {
	head := body
	if len(head) > sniffWindow {
		head = head[:sniffWindow]
	}
	head = bytes.TrimPrefix(head, sigUTF8BOM)
	text := strings.ToLower(strings.TrimSpace(string(head)))

	prefixed := false
	for _, p := range svgPrefixes {
		if strings.HasPrefix(text, p) {
			prefixed = true
			break
		}
	}
	if !prefixed {
		return false
	}
	return strings.Contains(text, "<svg") && !strings.Contains(text, "<html")
}

// IsImageMediaType reports whether a Content-Type header declares an image/* type.
func IsImageMediaType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/") && len(mediaType) > len("image/")
}
