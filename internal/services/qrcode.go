package services

import (
	"fmt"
	"io"

	"github.com/yeqown/go-qrcode"
)

// writeQRCode renders payload as a JPEG QR code
func writeQRCode(w io.Writer, payload string) error {
	qrc, err := qrcode.New(payload)
	if err != nil {
		return fmt.Errorf("failed to build qr code: %w", err)
	}
	if err := qrc.SaveTo(w); err != nil {
		return fmt.Errorf("failed to encode qr code: %w", err)
	}
	return nil
}
