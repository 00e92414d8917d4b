package viewer

import (
	"strconv"
	"sync"

	"iromegane/internal/camera"
)

// Size は要素の描画サイズを表す
type Size struct {
	Width  float64 // 幅（ピクセル）
	Height float64 // 高さ（ピクセル）
}

// VideoSurface は変形とフィルタを受け取る映像面のハンドル
type VideoSurface interface {
	// ApplyTransform は変形プロパティを適用する
	ApplyTransform(value string)

	// ApplyFilter はフィルタプロパティを適用する
	ApplyFilter(value string)

	// RenderedSize は現在のレイアウト上の描画サイズを返す
	RenderedSize() Size
}

// Container は映像面を収めるコンテナのハンドル
type Container interface {
	// Bounds は現在の描画矩形サイズを返す
	Bounds() Size

	// SubscribeResize はリサイズ通知の購読を開始する
	// 返された解除関数を呼ぶと購読が解除されチャンネルがクローズされる
	SubscribeResize() (<-chan Size, func())
}

// Element は映像面の具象実装
// 変形・フィルタの2つのプロパティを独立して保持し、
// カメラストリームのバインド先（camera.RenderTarget）としても機能する
type Element struct {
	mu sync.RWMutex

	transform string
	filter    string
	rendered  Size
	order     int

	// ストリームバインド状態
	streamID   string
	intrinsicW int
	intrinsicH int
	playback   camera.PlaybackOptions
	ready      chan struct{}
	readyOnce  sync.Once
}

// NewElement は指定サイズのElementを作成する
func NewElement(rendered Size) *Element {
	return &Element{
		rendered: rendered,
		ready:    make(chan struct{}),
	}
}

// ApplyTransform は変形プロパティを設定する
func (e *Element) ApplyTransform(value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transform = value
}

// ApplyFilter はフィルタプロパティを設定する
func (e *Element) ApplyFilter(value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filter = value
}

// Transform は現在の変形プロパティを返す
func (e *Element) Transform() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.transform
}

// Filter は現在のフィルタプロパティを返す
func (e *Element) Filter() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.filter
}

// RenderedSize は現在の描画サイズを返す
func (e *Element) RenderedSize() Size {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rendered
}

// SetRenderedSize は描画サイズを更新する
func (e *Element) SetRenderedSize(size Size) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rendered = size
}

// StackOrder は重なり順を返す（0は未指定）
func (e *Element) StackOrder() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.order
}

// SetStackOrder は重なり順を設定する
func (e *Element) SetStackOrder(order int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.order = order
}

// AttachStream はカメラストリームをバインドする
// 固有サイズが確定した時点でメタデータ準備完了を通知する
func (e *Element) AttachStream(streamID string, width, height int, opts camera.PlaybackOptions) {
	e.mu.Lock()
	e.streamID = streamID
	e.intrinsicW = width
	e.intrinsicH = height
	e.playback = opts
	e.mu.Unlock()

	if width > 0 && height > 0 {
		e.readyOnce.Do(func() { close(e.ready) })
	}
}

// DetachStream はストリームのバインドを解除する
func (e *Element) DetachStream() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.streamID = ""
	e.intrinsicW = 0
	e.intrinsicH = 0
}

// IntrinsicSize はバインドされたストリームの固有サイズを返す
// メタデータ未確定の間は (0, 0) を返す
func (e *Element) IntrinsicSize() (int, int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.intrinsicW, e.intrinsicH
}

// MetadataReady はメタデータ確定を待つためのチャンネルを返す
func (e *Element) MetadataReady() <-chan struct{} {
	return e.ready
}

// StreamID は現在バインドされているストリームIDを返す
func (e *Element) StreamID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.streamID
}

// Playback は現在の再生オプションを返す
func (e *Element) Playback() camera.PlaybackOptions {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.playback
}

// ContainerElement はコンテナの具象実装
// リサイズ通知の購読を管理する
type ContainerElement struct {
	mu     sync.Mutex
	bounds Size
	subs   map[int]chan Size
	nextID int
}

// NewContainerElement は指定サイズのContainerElementを作成する
func NewContainerElement(bounds Size) *ContainerElement {
	return &ContainerElement{
		bounds: bounds,
		subs:   make(map[int]chan Size),
	}
}

// Bounds は現在の矩形サイズを返す
func (c *ContainerElement) Bounds() Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bounds
}

// SubscribeResize はリサイズ通知の購読を開始する
func (c *ContainerElement) SubscribeResize() (<-chan Size, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++

	// バッファ1で最新値のみ保持する（連続リサイズは最新ジオメトリに収束）
	ch := make(chan Size, 1)
	c.subs[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}

// Resize はサイズを変更し、全購読者に通知する
func (c *ContainerElement) Resize(bounds Size) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bounds = bounds
	for _, ch := range c.subs {
		// 未消費の通知は破棄して最新値で置き換える
		select {
		case <-ch:
		default:
		}
		ch <- bounds
	}
}

// SubscriberCount は現在アクティブな購読数を返す
func (c *ContainerElement) SubscriberCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Slider は範囲入力ウィジェットのハンドル
type Slider struct {
	Min   float64 // 最小値
	Max   float64 // 最大値
	Step  float64 // 刻み幅
	Value float64 // 現在値

	order int
}

// NewSlider は新しいSliderを作成する
func NewSlider(min, max, step, value float64) *Slider {
	return &Slider{Min: min, Max: max, Step: step, Value: value}
}

// Clamp は値をスライダーの範囲内に収める
func (s *Slider) Clamp(v float64) float64 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// StackOrder は重なり順を返す
func (s *Slider) StackOrder() int { return s.order }

// SetStackOrder は重なり順を設定する
func (s *Slider) SetStackOrder(order int) { s.order = order }

// Button は押下可能なウィジェットのハンドル
type Button struct {
	visible bool
	order   int
}

// NewButton は新しいButtonを作成する
func NewButton(visible bool) *Button {
	return &Button{visible: visible}
}

// Visible は表示状態を返す
func (b *Button) Visible() bool { return b.visible }

// SetVisible は表示状態を設定する
func (b *Button) SetVisible(visible bool) { b.visible = visible }

// StackOrder は重なり順を返す
func (b *Button) StackOrder() int { return b.order }

// SetStackOrder は重なり順を設定する
func (b *Button) SetStackOrder(order int) { b.order = order }

// formatNumber は数値をプロパティ文字列用に整形する（末尾ゼロなし）
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
