package qrcode

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
)

// DecodeFile reads a QR code image and returns its text payload.
func DecodeFile(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("error opening QR image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("error decoding image: %w", err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("error preparing bitmap: %w", err)
	}

	result, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("error reading QR code: %w", err)
	}

	return result.GetText(), nil
}

// AmountFromEMVPayload walks the TLV fields of an EMV QR payload (the format
// used by PromptPay and Thai bank payment slips) and returns the transaction
// amount from tag 54. The second return is false when the payload has no
// amount tag or is not valid TLV.
func AmountFromEMVPayload(payload string) (float64, bool) {
	for i := 0; i+4 <= len(payload); {
		tag := payload[i : i+2]
		valueLen, err := strconv.Atoi(payload[i+2 : i+4])
		if err != nil || valueLen < 0 || i+4+valueLen > len(payload) {
			return 0, false
		}
		value := payload[i+4 : i+4+valueLen]
		if tag == "54" {
			amount, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return 0, false
			}
			return amount, true
		}
		i += 4 + valueLen
	}
	return 0, false
}
