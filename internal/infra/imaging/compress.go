package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// 既定値。幅800px・品質70から始めて300KB以下になるまで下げる
const (
	DefaultMaxWidth    = 800
	DefaultQuality     = 70
	DefaultMinQuality  = 30
	DefaultTargetBytes = 300 * 1024
	qualityStep        = 10

	// 宣言サイズがこれを超える画像はデコードしない
	MaxPixels = 50_000_000
)

// JPEGCompressor は商品画像を縮小してJPEGのdata URLにする
type JPEGCompressor struct {
	MaxWidth    int
	Quality     int
	MinQuality  int
	TargetBytes int
}

func NewJPEGCompressor() *JPEGCompressor {
	return &JPEGCompressor{
		MaxWidth:    DefaultMaxWidth,
		Quality:     DefaultQuality,
		MinQuality:  DefaultMinQuality,
		TargetBytes: DefaultTargetBytes,
	}
}

// Compress は jpeg/png/webp を受ける。デコードできなければエラー
func (c *JPEGCompressor) Compress(data []byte) (string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", fmt.Errorf("invalid image size: %dx%d", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return "", fmt.Errorf("image too large: %dx%d", cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	dst := c.resize(src)

	var buf bytes.Buffer
	for q := c.Quality; ; q -= qualityStep {
		if q < c.MinQuality {
			q = c.MinQuality
		}
		buf.Reset()
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: q}); err != nil {
			return "", fmt.Errorf("encode jpeg: %w", err)
		}
		if buf.Len() <= c.TargetBytes || q == c.MinQuality {
			break
		}
	}

	return DataURL("image/jpeg", buf.Bytes()), nil
}

// resize は幅がMaxWidthを超えるときだけ縮める。透過部分は白で埋める
func (c *JPEGCompressor) resize(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if c.MaxWidth > 0 && w > c.MaxWidth {
		h = h * c.MaxWidth / w
		if h < 1 {
			h = 1
		}
		w = c.MaxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// DataURL は圧縮できなかったときのそのままのエンコード
func DataURL(contentType string, data []byte) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Raw は圧縮せずにdata URLにする
func (c *JPEGCompressor) Raw(contentType string, data []byte) string {
	return DataURL(contentType, data)
}
