package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
)

const sampleResumeText = "JANE DOE\njane@example.com\n\nOBJECTIVE\nBuild reliable backend systems as a Software Engineer."

func TestLayoutPDFBodyOffsetIgnoresPhoto(t *testing.T) {
	_, withoutPhoto, err := layoutPDF(sampleResumeText, nil)
	if err != nil {
		t.Fatalf("layoutPDF without photo: %v", err)
	}
	_, withPhoto, err := layoutPDF(sampleResumeText, &Photo{Data: testPNG(t), Type: "PNG"})
	if err != nil {
		t.Fatalf("layoutPDF with photo: %v", err)
	}

	if withoutPhoto != withPhoto {
		t.Fatalf("body offset differs: %v without photo, %v with photo", withoutPhoto, withPhoto)
	}
	// Top margin (10mm) plus the fixed gap after the photo region.
	if math.Abs(withoutPhoto-(10.0+photoGap)) > 0.001 {
		t.Fatalf("expected body at %v, got %v", 10.0+photoGap, withoutPhoto)
	}
}

func TestRenderPDFProducesReadableDocument(t *testing.T) {
	data, err := RenderPDF(sampleResumeText, nil)
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("missing pdf header")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("pdf.NewReader: %v", err)
	}
	if reader.NumPage() != 1 {
		t.Fatalf("expected 1 page, got %d", reader.NumPage())
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		t.Fatalf("GetPlainText: %v", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		t.Fatalf("read plain text: %v", err)
	}
	if !strings.Contains(buf.String(), "OBJECTIVE") {
		t.Fatalf("expected body text in pdf, got %q", buf.String())
	}
}

func TestRenderPDFPaginatesLongText(t *testing.T) {
	text := strings.Repeat("Delivered measurable improvements across several projects.\n", 120)

	data, err := RenderPDF(text, nil)
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("pdf.NewReader: %v", err)
	}
	if reader.NumPage() <= 1 {
		t.Fatalf("expected several pages, got %d", reader.NumPage())
	}
}

func TestRenderPDFWithJPEGPhoto(t *testing.T) {
	photo, err := NewPhoto(testJPEG(t))
	if err != nil {
		t.Fatalf("NewPhoto: %v", err)
	}
	if photo == nil || photo.Type != "JPG" {
		t.Fatalf("expected JPG photo, got %+v", photo)
	}

	data, err := RenderPDF(sampleResumeText, photo)
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected pdf bytes")
	}
}

func TestRenderPDFRejectsCorruptPhoto(t *testing.T) {
	if _, err := RenderPDF(sampleResumeText, &Photo{Data: []byte("definitely not a png"), Type: "PNG"}); err == nil {
		t.Fatalf("expected error for corrupt photo")
	}
}

func TestRenderPDFTranslatesUnicode(t *testing.T) {
	data, err := RenderPDF("Zoë Müller – café résumé", nil)
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected pdf bytes")
	}
}

func TestDetectPhotoType(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr bool
	}{
		{name: "png", data: testPNG(t), want: "PNG"},
		{name: "jpeg", data: testJPEG(t), want: "JPG"},
		{name: "gif", data: []byte("GIF89a......"), wantErr: true},
		{name: "text", data: []byte("hello"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectPhotoType(tt.data)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedImage) {
					t.Fatalf("expected ErrUnsupportedImage, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectPhotoType: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNewPhotoEmpty(t *testing.T) {
	photo, err := NewPhoto(nil)
	if err != nil {
		t.Fatalf("NewPhoto: %v", err)
	}
	if photo != nil {
		t.Fatalf("expected nil photo, got %+v", photo)
	}
}

func testImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	return img
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage()); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(), nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	return buf.Bytes()
}
