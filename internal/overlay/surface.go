package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"iromegane/internal/viewer"
)

// バーと内縁の区切り線の色
var (
	barColor     = color.RGBA{R: 0, G: 0, B: 0, A: 255}    // 不透明の黒
	dividerColor = color.RGBA{R: 64, G: 64, B: 64, A: 255} // 控えめなグレー
)

// Surface はマスク描画用のキャンバス面
// 2D描画コンテキストはこのパッケージが排他的に所有する
type Surface struct {
	buf       *image.RGBA
	cssWidth  float64
	cssHeight float64
	order     int
}

// newSurface はコンテナ矩形に合わせたSurfaceを作成する
func newSurface(bounds viewer.Size) *Surface {
	width := int(math.Round(bounds.Width))
	height := int(math.Round(bounds.Height))
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	return &Surface{
		buf:       image.NewRGBA(image.Rect(0, 0, width, height)),
		cssWidth:  bounds.Width,
		cssHeight: bounds.Height,
	}
}

// resize はバッキングバッファと表示サイズをコンテナ矩形に同期する
func (s *Surface) resize(bounds viewer.Size) {
	width := int(math.Round(bounds.Width))
	height := int(math.Round(bounds.Height))
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	s.buf = image.NewRGBA(image.Rect(0, 0, width, height))
	s.cssWidth = bounds.Width
	s.cssHeight = bounds.Height
}

// clear は全面を透明に戻す
func (s *Surface) clear() {
	draw.Draw(s.buf, s.buf.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// fillRect は矩形を指定色で塗りつぶす
func (s *Surface) fillRect(rect image.Rectangle, c color.RGBA) {
	draw.Draw(s.buf, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// drawBars は上下対称の不透明バーを描画する
// barHeight が0の場合は何も描画しない（完全に透明のまま）
func (s *Surface) drawBars(barHeight int) {
	s.clear()

	if barHeight <= 0 {
		return
	}

	width := s.buf.Bounds().Dx()
	height := s.buf.Bounds().Dy()
	if width == 0 || height == 0 {
		return
	}
	if barHeight > height/2 {
		barHeight = height / 2
	}

	// 上下のバー
	s.fillRect(image.Rect(0, 0, width, barHeight), barColor)
	s.fillRect(image.Rect(0, height-barHeight, width, height), barColor)

	// 内縁の区切り線（1px）
	// バーが1pxしかない場合は本体が区切り線に塗り替えられてしまうため描かない
	if barHeight >= 2 {
		s.fillRect(image.Rect(0, barHeight-1, width, barHeight), dividerColor)
		s.fillRect(image.Rect(0, height-barHeight, width, height-barHeight+1), dividerColor)
	}
}

// Image は現在のバッキングバッファを返す
func (s *Surface) Image() *image.RGBA {
	return s.buf
}

// BufferSize はバッキングバッファのピクセル数を返す
func (s *Surface) BufferSize() (int, int) {
	return s.buf.Bounds().Dx(), s.buf.Bounds().Dy()
}

// DisplaySize は表示上のサイズを返す
func (s *Surface) DisplaySize() (float64, float64) {
	return s.cssWidth, s.cssHeight
}

// StackOrder は重なり順を返す
func (s *Surface) StackOrder() int { return s.order }

// SetStackOrder は重なり順を設定する
func (s *Surface) SetStackOrder(order int) { s.order = order }

// Interactive はポインタイベントを受け付けるかを返す
// マスク面は常にイベントを透過する
func (s *Surface) Interactive() bool { return false }
