package render

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-pdf/fpdf"
)

// PDF layout constants, in millimetres unless noted.
const (
	pdfBottomMargin = 15.0
	photoX          = 10.0
	photoY          = 10.0
	photoWidth      = 30.0
	// photoGap is applied after the photo region even when no photo is drawn.
	photoGap       = 35.0
	bodyFontFamily = "Arial"
	bodyFontSize   = 12.0 // points
	bodyLineHeight = 10.0
)

const photoImageName = "profile-photo"

// ErrUnsupportedImage is returned for photos that are neither JPEG nor PNG.
var ErrUnsupportedImage = errors.New("unsupported image type: use jpg, jpeg or png")

// Photo is an optional profile picture drawn at the top of the PDF.
type Photo struct {
	Data []byte
	// Type is the fpdf image type, "JPG" or "PNG".
	Type string
}

// NewPhoto sniffs data and returns a Photo, or ErrUnsupportedImage.
func NewPhoto(data []byte) (*Photo, error) {
	if len(data) == 0 {
		return nil, nil
	}
	imageType, err := DetectPhotoType(data)
	if err != nil {
		return nil, err
	}
	return &Photo{Data: data, Type: imageType}, nil
}

// DetectPhotoType maps sniffed image bytes to an fpdf image type.
func DetectPhotoType(data []byte) (string, error) {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return "JPG", nil
	case "image/png":
		return "PNG", nil
	default:
		return "", ErrUnsupportedImage
	}
}

// RenderPDF lays out text on A4 pages and returns the PDF bytes.
func RenderPDF(text string, photo *Photo) ([]byte, error) {
	doc, _, err := layoutPDF(text, photo)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

// layoutPDF builds the document and reports the Y position where the body
// text starts.
func layoutPDF(text string, photo *Photo) (*fpdf.Fpdf, float64, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(true, pdfBottomMargin)
	doc.AddPage()

	if photo != nil && len(photo.Data) > 0 {
		opts := fpdf.ImageOptions{ImageType: photo.Type, ReadDpi: true}
		doc.RegisterImageOptionsReader(photoImageName, opts, bytes.NewReader(photo.Data))
		doc.ImageOptions(photoImageName, photoX, photoY, photoWidth, 0, false, opts, 0, "")
		if err := doc.Error(); err != nil {
			return nil, 0, fmt.Errorf("pdf photo: %w", err)
		}
	}

	doc.SetFont(bodyFontFamily, "", bodyFontSize)
	doc.Ln(photoGap)
	bodyTop := doc.GetY()

	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.MultiCell(0, bodyLineHeight, tr(text), "", "", false)
	if err := doc.Error(); err != nil {
		return nil, 0, fmt.Errorf("pdf body: %w", err)
	}
	return doc, bodyTop, nil
}
