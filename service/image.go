package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/gen2brain/heic"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// decodeImage decodes PNG, JPEG and HEIC/HEIF (phone camera) uploads
func decodeImage(data []byte, mimeType string) (image.Image, error) {
	reader := bytes.NewReader(data)
	mimeType = strings.ToLower(mimeType)

	switch {
	case isHEICMimeType(mimeType) || isHEICFormat(data):
		return heic.Decode(reader)
	case strings.Contains(mimeType, "png"):
		return png.Decode(reader)
	case strings.Contains(mimeType, "jpeg") || strings.Contains(mimeType, "jpg"):
		return jpeg.Decode(reader)
	}

	img, _, err := image.Decode(reader)
	return img, err
}

// isHEICFormat checks the ISO-BMFF "ftyp" box for a HEIF brand
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// encodePNG re-encodes an image so every recognizer receives the same format
func encodePNG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image to PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeQR returns the text of a QR code printed on the document
func decodeQR(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("failed to create binary bitmap: %w", err)
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decode QR code: %w", err)
	}
	return result.GetText(), nil
}
