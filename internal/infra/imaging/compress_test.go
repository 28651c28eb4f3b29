package imaging

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeDataURL(t *testing.T, url string) image.Image {
	t.Helper()
	const prefix = "data:image/jpeg;base64,"
	require.True(t, strings.HasPrefix(url, prefix))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestCompress_ScalesDownWideImages(t *testing.T) {
	c := NewJPEGCompressor()

	url, err := c.Compress(pngBytes(t, 1600, 400))
	require.NoError(t, err)

	img := decodeDataURL(t, url)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestCompress_KeepsSmallImages(t *testing.T) {
	url, err := NewJPEGCompressor().Compress(pngBytes(t, 300, 200))
	require.NoError(t, err)

	img := decodeDataURL(t, url)
	assert.Equal(t, 300, img.Bounds().Dx())
}

func TestCompress_StaysUnderTarget(t *testing.T) {
	c := NewJPEGCompressor()
	c.TargetBytes = 8 * 1024

	url, err := c.Compress(pngBytes(t, 800, 800))
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(raw), 64*1024)
}

func TestCompress_RejectsNonImage(t *testing.T) {
	_, err := NewJPEGCompressor().Compress([]byte("not an image"))
	assert.Error(t, err)
}

// IHDR の幅と高さだけを書き換えたPNG。本体は1x1のまま
func pngWithDeclaredSize(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := pngBytes(t, 1, 1)
	require.Equal(t, "IHDR", string(data[12:16]))
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestCompress_RejectsHugeDeclaredSize(t *testing.T) {
	data := pngWithDeclaredSize(t, 40000, 40000)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 40000, cfg.Width)

	_, err = NewJPEGCompressor().Compress(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image too large")
}

func TestDataURL(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,AQI=", DataURL("image/png", []byte{1, 2}))
	assert.True(t, strings.HasPrefix(DataURL("", []byte{1}), "data:application/octet-stream;base64,"))
	assert.Equal(t, "data:image/gif;base64,AQI=", NewJPEGCompressor().Raw("image/gif", []byte{1, 2}))
}
