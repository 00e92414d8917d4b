package viewer

import (
	"fmt"
	"math"
)

// ズーム倍率の既定範囲と刻み幅
const (
	DefaultZoomMin  = 1.0
	DefaultZoomMax  = 5.0
	DefaultZoomStep = 0.1
)

// zoomedThreshold はズーム中と判定する倍率の閾値
// 浮動小数点誤差による表示のちらつきを避けるためのデッドゾーン
const zoomedThreshold = 1.01

// ViewState はズーム・パンの状態を表す
type ViewState struct {
	Scale      float64 // ズーム倍率（1以上）
	TranslateX float64 // 横方向パン（非拡大ピクセル空間）
	TranslateY float64 // 縦方向パン（非拡大ピクセル空間）
}

// TransformEngine はズーム・パン状態を所有し、変形プロパティを映像面に適用する
type TransformEngine struct {
	surface   VideoSurface
	container Container
	slider    *Slider
	resetBtn  *Button

	state ViewState
}

// NewTransformEngine は新しいTransformEngineを作成する
// 必須ハンドル（映像面・コンテナ・ズームスライダー）の欠落は構築時に検出する
func NewTransformEngine(surface VideoSurface, container Container, slider *Slider, resetBtn *Button) (*TransformEngine, error) {
	if surface == nil {
		return nil, fmt.Errorf("映像面のハンドルがありません")
	}
	if container == nil {
		return nil, fmt.Errorf("コンテナのハンドルがありません")
	}
	if slider == nil {
		return nil, fmt.Errorf("ズームスライダーのハンドルがありません")
	}

	e := &TransformEngine{
		surface:   surface,
		container: container,
		slider:    slider,
		resetBtn:  resetBtn,
		state:     ViewState{Scale: 1},
	}
	e.render()
	return e, nil
}

// State は現在の状態のコピーを返す
func (e *TransformEngine) State() ViewState {
	return e.state
}

// SetScale はズーム倍率を設定する
// 値はスライダー側で範囲内にクランプ済みの生値として扱い、
// パンのクランプを再計算してから再描画する
func (e *TransformEngine) SetScale(value float64) {
	e.state.Scale = value
	e.slider.Value = value
	e.clampPan()
	e.render()
	e.updateResetAffordance()
}

// AdjustScale は現在のスライダー値に増分を加える
// 刻み幅の精度に丸め、範囲内にクランプしてから適用する
func (e *TransformEngine) AdjustScale(delta float64) {
	value := roundToStep(e.slider.Value+delta, e.slider.Step)
	value = e.slider.Clamp(value)
	e.slider.Value = value
	e.state.Scale = value
	e.clampPan()
	e.render()
	e.updateResetAffordance()
}

// Pan はパン位置に移動量を加算する
// 加算後、拡大された映像がコンテナを覆い続ける範囲にクランプする
func (e *TransformEngine) Pan(dx, dy float64) {
	e.state.TranslateX += dx
	e.state.TranslateY += dy
	e.clampPan()
	e.render()
}

// Reset はズーム・パンを初期状態に戻し、リセット操作部を隠す
func (e *TransformEngine) Reset() {
	e.state = ViewState{Scale: 1}
	e.slider.Value = 1
	e.render()
	if e.resetBtn != nil {
		e.resetBtn.SetVisible(false)
	}
}

// Zoomed はズーム中かどうかを返す
func (e *TransformEngine) Zoomed() bool {
	return e.state.Scale > zoomedThreshold
}

// clampPan はパン位置を許容範囲に収める
// 許容量は現在の倍率とコンテナ・映像のジオメトリから毎回計算する
func (e *TransformEngine) clampPan() {
	video := e.surface.RenderedSize()
	bounds := e.container.Bounds()

	maxX := math.Max(0, (video.Width*e.state.Scale-bounds.Width)/2)
	maxY := math.Max(0, (video.Height*e.state.Scale-bounds.Height)/2)

	e.state.TranslateX = clampAbs(e.state.TranslateX, maxX)
	e.state.TranslateY = clampAbs(e.state.TranslateY, maxY)
}

// render は変形プロパティを合成して映像面に適用する
// 中央寄せ → パン → 拡大の順に入れ子で適用することで、
// パンは非拡大ピクセル空間で扱われる
func (e *TransformEngine) render() {
	value := fmt.Sprintf("translate(-50%%, -50%%) translate(%spx, %spx) scale(%s)",
		formatNumber(e.state.TranslateX),
		formatNumber(e.state.TranslateY),
		formatNumber(e.state.Scale))
	e.surface.ApplyTransform(value)
}

// updateResetAffordance はズーム状態に応じてリセット操作部の表示を切り替える
func (e *TransformEngine) updateResetAffordance() {
	if e.resetBtn != nil {
		e.resetBtn.SetVisible(e.Zoomed())
	}
}

// clampAbs は絶対値がlimit以下になるようvを収める
func clampAbs(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

// roundToStep は値を刻み幅の精度に丸める
func roundToStep(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}
