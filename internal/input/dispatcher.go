package input

import (
	"fmt"

	"iromegane/internal/overlay"
	"iromegane/internal/viewer"
)

// Navigator はページ遷移を担う外部協調者のハンドル
type Navigator interface {
	// NavigateHome はアプリケーションのルートへ遷移する
	NavigateHome()
}

// Dispatcher は入力イベントを各エンジンの操作へ振り分ける
// ドラッグ追跡以外に独自の状態は持たない
type Dispatcher struct {
	transform *viewer.TransformEngine
	filters   *viewer.FilterCompositor
	mask      *overlay.Overlay
	collab    *Collaborators
	nav       Navigator

	// ドラッグ追跡（一時状態）
	dragging bool
	lastX    float64
	lastY    float64
}

// NewDispatcher は協調要素から各エンジンを構築し、結線済みのDispatcherを返す
func NewDispatcher(collab *Collaborators, nav Navigator) (*Dispatcher, error) {
	if collab == nil {
		return nil, fmt.Errorf("協調要素バンドルがありません")
	}

	transform, err := viewer.NewTransformEngine(
		collab.Video, collab.Container, collab.ZoomSlider, collab.ResetButton)
	if err != nil {
		return nil, fmt.Errorf("変形エンジンの構築に失敗: %w", err)
	}

	filters, err := viewer.NewFilterCompositor(collab.Video, viewer.CustomBindings{
		Hue:        collab.HueSlider,
		Brightness: collab.BrightnessSlider,
		Contrast:   collab.ContrastSlider,
		Saturation: collab.SaturationSlider,
	})
	if err != nil {
		return nil, fmt.Errorf("フィルタ合成器の構築に失敗: %w", err)
	}

	mask := overlay.New(collab.Container, collab.Video, collab.controlStack())

	return &Dispatcher{
		transform: transform,
		filters:   filters,
		mask:      mask,
		collab:    collab,
		nav:       nav,
	}, nil
}

// ViewerState はビューア全体の状態の要約
type ViewerState struct {
	Zoom        float64       `json:"zoom"`
	Preset      viewer.Preset `json:"preset"`
	Filter      string        `json:"filter"`
	MaskEnabled bool          `json:"mask_enabled"`
	MaskPercent float64       `json:"mask_percent"`
}

// ViewerState は各エンジンの現在の状態を要約して返す
func (d *Dispatcher) ViewerState() ViewerState {
	mask := d.mask.State()
	return ViewerState{
		Zoom:        d.transform.State().Scale,
		Preset:      d.filters.State().Preset,
		Filter:      d.filters.Render(),
		MaskEnabled: mask.Enabled,
		MaskPercent: mask.BarPercent,
	}
}

// Transform は変形エンジンを返す
func (d *Dispatcher) Transform() *viewer.TransformEngine { return d.transform }

// Filters はフィルタ合成器を返す
func (d *Dispatcher) Filters() *viewer.FilterCompositor { return d.filters }

// Mask はマスクオーバーレイを返す
func (d *Dispatcher) Mask() *overlay.Overlay { return d.mask }

// Dispatch はイベントを対応するエンジン操作へ振り分ける
func (d *Dispatcher) Dispatch(ev Event) error {
	switch e := ev.(type) {
	case PointerEvent:
		d.handlePointer(e)
		return nil

	case ZoomSliderEvent:
		// スライダー値は入力側で範囲内にクランプされている
		d.transform.SetScale(d.collab.ZoomSlider.Clamp(e.Value))
		return nil

	case ZoomStepEvent:
		step := d.collab.ZoomSlider.Step
		if e.Direction < 0 {
			step = -step
		}
		d.transform.AdjustScale(step)
		return nil

	case PresetEvent:
		return d.filters.SelectPreset(e.Preset)

	case NormalVisionEvent:
		d.filters.ResetToNormal()
		return nil

	case CustomSliderEvent:
		return d.filters.SetCustom(e.Param, e.Value)

	case MaskToggleEvent:
		if d.mask.Enabled() {
			d.mask.Disable()
		} else {
			d.mask.Enable()
		}
		return nil

	case MaskSliderEvent:
		d.mask.SetBarPercent(e.Percent)
		return nil

	case ResetZoomEvent:
		d.transform.Reset()
		return nil

	case GoHomeEvent:
		if d.nav != nil {
			d.nav.NavigateHome()
		}
		return nil

	default:
		return fmt.Errorf("不明なイベント: %T", ev)
	}
}

// handlePointer はポインタイベントからドラッグパンを組み立てる
func (d *Dispatcher) handlePointer(e PointerEvent) {
	switch e.Phase {
	case PointerDown:
		d.dragging = true
		d.lastX = e.X
		d.lastY = e.Y

	case PointerMove:
		if !d.dragging {
			return
		}
		d.transform.Pan(e.X-d.lastX, e.Y-d.lastY)
		d.lastX = e.X
		d.lastY = e.Y

	case PointerUp, PointerLeave, PointerCancel:
		d.dragging = false
	}
}
