package input

import (
	"iromegane/internal/viewer"
)

// PointerPhase はポインタ操作の段階を表す
type PointerPhase string

const (
	PointerDown   PointerPhase = "down"   // 押下（タッチ開始）
	PointerMove   PointerPhase = "move"   // 移動
	PointerUp     PointerPhase = "up"     // 解放
	PointerLeave  PointerPhase = "leave"  // 領域外へ離脱
	PointerCancel PointerPhase = "cancel" // 中断
)

// Event は入力ソースから届く離散イベントの値
type Event interface {
	eventName() string
}

// PointerEvent はポインタ・タッチ操作のイベント
type PointerEvent struct {
	Phase PointerPhase
	X     float64
	Y     float64
}

func (PointerEvent) eventName() string { return "pointer" }

// ZoomSliderEvent はズームスライダーの入力イベント
type ZoomSliderEvent struct {
	Value float64
}

func (ZoomSliderEvent) eventName() string { return "zoom-slider" }

// ZoomStepEvent はズームの増減ボタンのイベント
// Direction は +1（拡大）または -1（縮小）
type ZoomStepEvent struct {
	Direction int
}

func (ZoomStepEvent) eventName() string { return "zoom-step" }

// PresetEvent はプリセットフィルタボタンのイベント
type PresetEvent struct {
	Preset viewer.Preset
}

func (PresetEvent) eventName() string { return "preset" }

// NormalVisionEvent は「通常視界」ボタンのイベント
type NormalVisionEvent struct{}

func (NormalVisionEvent) eventName() string { return "normal-vision" }

// CustomSliderEvent はカスタム調整スライダーのイベント
type CustomSliderEvent struct {
	Param viewer.CustomParam
	Value float64
}

func (CustomSliderEvent) eventName() string { return "custom-slider" }

// MaskToggleEvent はマスク切り替えボタンのイベント
type MaskToggleEvent struct{}

func (MaskToggleEvent) eventName() string { return "mask-toggle" }

// MaskSliderEvent はマスク太さスライダーのイベント
type MaskSliderEvent struct {
	Percent float64
}

func (MaskSliderEvent) eventName() string { return "mask-slider" }

// ResetZoomEvent はズームリセットボタンのイベント
type ResetZoomEvent struct{}

func (ResetZoomEvent) eventName() string { return "reset-zoom" }

// GoHomeEvent はホームへ戻るボタンのイベント
type GoHomeEvent struct{}

func (GoHomeEvent) eventName() string { return "go-home" }
