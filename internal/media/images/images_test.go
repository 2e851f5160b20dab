package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodePNG renders a small gradient so BlurHash has something to chew on.
func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / width), G: uint8(y * 255 / height), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDataURIRoundTrip(t *testing.T) {
	data := encodePNG(t, 8, 8)

	uri := EncodeDataURI(data, "image/png")
	assert.True(t, IsDataURI(uri))

	decoded, mime, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, data, decoded)
}

func TestDecodeDataURI_Malformed(t *testing.T) {
	_, _, err := DecodeDataURI("https://example.com/cover.png")
	assert.Error(t, err)

	_, _, err = DecodeDataURI("data:image/png;base64")
	assert.Error(t, err, "missing payload separator")

	_, _, err = DecodeDataURI("data:image/png;hex,cafe")
	assert.Error(t, err, "unsupported encoding")

	_, _, err = DecodeDataURI("data:image/png;base64,!!!not-base64!!!")
	assert.Error(t, err)
}

func TestComputeBlurHash(t *testing.T) {
	hash, err := ComputeBlurHash(encodePNG(t, 32, 24))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	// Deterministic for identical input.
	again, err := ComputeBlurHash(encodePNG(t, 32, 24))
	require.NoError(t, err)
	assert.Equal(t, hash, again)
}

func TestComputeBlurHash_ResizesLargeImages(t *testing.T) {
	hash, err := ComputeBlurHash(encodePNG(t, 400, 300))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
}

func TestComputeBlurHash_RejectsGarbage(t *testing.T) {
	_, err := ComputeBlurHash([]byte("not an image"))
	assert.Error(t, err)
}
