package overlay

import (
	"math"
	"sync"

	"iromegane/internal/viewer"
)

// バー太さの許容範囲（%）
const (
	MinBarPercent     = 0.0
	MaxBarPercent     = 50.0
	DefaultBarPercent = 15.0
)

// Stackable は重なり順を持つ要素のハンドル
type Stackable interface {
	// StackOrder は重なり順を返す（0は未指定）
	StackOrder() int

	// SetStackOrder は重なり順を設定する
	SetStackOrder(order int)
}

// MaskState はマスクの状態を表す
type MaskState struct {
	Enabled    bool    // マスクが有効か
	BarPercent float64 // バー太さ（キャンバス高さに対する%）
}

// Overlay はレターボックスマスクを管理する
// キャンバス面とリサイズ購読は有効化時に生成し、無効化時に完全に破棄する
// barPercent は無効化しても保持される（セッション中は永続）
type Overlay struct {
	container viewer.Container
	video     Stackable   // 映像面（この上に重ねる）
	controls  []Stackable // 操作部品（この下に収める）

	mu           sync.Mutex
	surface      *Surface
	barPercent   float64
	enabled      bool
	cancelResize func()
	wg           sync.WaitGroup
}

// New は新しいOverlayを作成する
func New(container viewer.Container, video Stackable, controls []Stackable) *Overlay {
	return &Overlay{
		container:  container,
		video:      video,
		controls:   controls,
		barPercent: DefaultBarPercent,
	}
}

// Enable はマスクを有効化する
// キャンバス面を生成して重なり順を整え、リサイズ監視を開始する
func (o *Overlay) Enable() {
	o.mu.Lock()
	if o.enabled {
		o.mu.Unlock()
		return
	}

	o.surface = newSurface(o.container.Bounds())
	o.arrangeStacking()
	o.redrawLocked()
	o.enabled = true

	ch, cancel := o.container.SubscribeResize()
	o.cancelResize = cancel
	o.mu.Unlock()

	o.wg.Add(1)
	go o.watchResize(ch)
}

// Disable はマスクを無効化する
// キャンバス面とリサイズ購読を完全に破棄する
func (o *Overlay) Disable() {
	o.mu.Lock()
	if !o.enabled {
		o.mu.Unlock()
		return
	}

	cancel := o.cancelResize
	o.cancelResize = nil
	o.enabled = false
	o.mu.Unlock()

	// 購読を解除しチャンネルのクローズを監視ゴルーチンに伝える
	cancel()
	o.wg.Wait()

	o.mu.Lock()
	o.surface = nil
	o.mu.Unlock()
}

// Enabled はマスクが有効かを返す
func (o *Overlay) Enabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.enabled
}

// SetBarPercent はバー太さを設定する
// 範囲外の値は [0, 50] にクランプする
func (o *Overlay) SetBarPercent(pct float64) {
	if pct < MinBarPercent {
		pct = MinBarPercent
	}
	if pct > MaxBarPercent {
		pct = MaxBarPercent
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.barPercent = pct
	o.redrawLocked()
}

// BarPercent は現在のバー太さを返す
func (o *Overlay) BarPercent() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.barPercent
}

// State は現在の状態を返す
func (o *Overlay) State() MaskState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return MaskState{Enabled: o.enabled, BarPercent: o.barPercent}
}

// Surface は現在のキャンバス面を返す（無効時はnil）
func (o *Overlay) Surface() *Surface {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.surface
}

// Redraw は現在のジオメトリでバーを再描画する
func (o *Overlay) Redraw() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.redrawLocked()
}

// redrawLocked はバーを描画する（ロック保持前提）
func (o *Overlay) redrawLocked() {
	if o.surface == nil {
		return
	}

	_, height := o.surface.BufferSize()
	barHeight := int(math.Round(o.barPercent / 100 * float64(height)))
	o.surface.drawBars(barHeight)
}

// watchResize はコンテナのリサイズに追従する
// 通知はバッファ1で最新値のみ保持されるため、連続リサイズは
// 最新のジオメトリによる一度の再描画へ収束する
func (o *Overlay) watchResize(ch <-chan viewer.Size) {
	defer o.wg.Done()

	for size := range ch {
		o.mu.Lock()
		if o.surface != nil {
			o.surface.resize(size)
			o.redrawLocked()
		}
		o.mu.Unlock()
	}
}

// arrangeStacking は重なり順の不変条件を整える
// マスク面は映像面の直上に置き、順序が未指定または
// マスク面以下の操作部品はすべてマスク面より上へ引き上げる
func (o *Overlay) arrangeStacking() {
	videoOrder := 0
	if o.video != nil {
		videoOrder = o.video.StackOrder()
		if videoOrder == 0 {
			videoOrder = 1
			o.video.SetStackOrder(videoOrder)
		}
	}

	surfaceOrder := videoOrder + 1
	o.surface.SetStackOrder(surfaceOrder)

	for _, control := range o.controls {
		if control == nil {
			continue
		}
		if control.StackOrder() <= surfaceOrder {
			control.SetStackOrder(surfaceOrder + 1)
		}
	}
}
