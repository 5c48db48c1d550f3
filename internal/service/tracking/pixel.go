package tracking

import "encoding/base64"

// Pixel is the fixed 1x1 transparent PNG served for every open-tracking
// request, valid token or not.
var Pixel = mustDecodePixel()

func mustDecodePixel() []byte {
	const encoded = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="
	pixel, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		panic("tracking: invalid pixel constant: " + err.Error())
	}
	return pixel
}
