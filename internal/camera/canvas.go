package camera

import (
	"image"
	"sync"

	xdraw "golang.org/x/image/draw"
)

// Canvas は描画可能面のハンドル
// バッキングバッファの解像度と表示サイズを独立して扱う
type Canvas interface {
	// SetBufferSize はバッキングバッファのピクセル数を設定する
	SetBufferSize(width, height int)

	// SetDisplaySize は表示上のサイズを設定する
	SetDisplaySize(width, height float64)
}

// PixelCanvas はCanvasの具象実装
// バッファサイズ変更時、既存の内容は新しい解像度へ再サンプリングされる
type PixelCanvas struct {
	mu sync.RWMutex

	buf           *image.RGBA
	displayWidth  float64
	displayHeight float64
}

// NewPixelCanvas は指定バッファサイズのPixelCanvasを作成する
func NewPixelCanvas(width, height int) *PixelCanvas {
	return &PixelCanvas{
		buf: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// SetBufferSize はバッキングバッファのピクセル数を変更する
func (c *PixelCanvas) SetBufferSize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if width <= 0 || height <= 0 {
		c.buf = image.NewRGBA(image.Rect(0, 0, 0, 0))
		return
	}

	old := c.buf
	next := image.NewRGBA(image.Rect(0, 0, width, height))

	// 既存の内容は新しい解像度へ引き継ぐ
	if old != nil && old.Bounds().Dx() > 0 && old.Bounds().Dy() > 0 {
		xdraw.ApproxBiLinear.Scale(next, next.Bounds(), old, old.Bounds(), xdraw.Src, nil)
	}

	c.buf = next
}

// SetDisplaySize は表示上のサイズを設定する
func (c *PixelCanvas) SetDisplaySize(width, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.displayWidth = width
	c.displayHeight = height
}

// BufferSize はバッキングバッファのピクセル数を返す
func (c *PixelCanvas) BufferSize() (int, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buf.Bounds().Dx(), c.buf.Bounds().Dy()
}

// DisplaySize は表示上のサイズを返す
func (c *PixelCanvas) DisplaySize() (float64, float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.displayWidth, c.displayHeight
}

// Image はバッキングバッファを返す
func (c *PixelCanvas) Image() *image.RGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buf
}
