package report

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/jung-kurt/gofpdf"
)

const qrSizePx = 256
const qrSizeMM = 30.0

// embedQRCode renders verifyURL as a QR code, draws it at the cursor on the
// current page, and prints the URL immediately to its right.
func embedQRCode(pdf *gofpdf.Fpdf, verifyURL string) error {
	code, err := qr.Encode(verifyURL, qr.M, qr.Auto)
	if err != nil {
		return fmt.Errorf("encode qr: %w", err)
	}
	code, err = barcode.Scale(code, qrSizePx, qrSizePx)
	if err != nil {
		return fmt.Errorf("scale qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return fmt.Errorf("encode qr png: %w", err)
	}

	name := "qr-" + hashName(verifyURL)
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader(name, opts, &buf)

	x, y := pdf.GetX(), pdf.GetY()
	pdf.ImageOptions(name, x, y, qrSizeMM, qrSizeMM, false, opts, 0, "")
	pdf.SetXY(x+qrSizeMM+4, y)
	pdf.SetFont("Helvetica", "", 8)
	pdf.MultiCell(0, 4, verifyURL, "", "L", false)
	pdf.SetY(y + qrSizeMM + 2)
	return nil
}

func hashName(s string) string {
	h := 2166136261
	for i := 0; i < len(s); i++ {
		h = (h ^ int(s[i])) * 16777619
	}
	if h < 0 {
		h = -h
	}
	return fmt.Sprintf("%x", h)
}
