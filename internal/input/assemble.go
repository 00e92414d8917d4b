package input

import (
	"iromegane/internal/config"
	"iromegane/internal/overlay"
	"iromegane/internal/viewer"
)

// NewDefaultDispatcher は設定値からページ協調要素を組み立て、結線済みのDispatcherを返す
// 映像面は呼び出し側がカメラセッションのバインド先として共有する
// ズームスライダーの範囲とマスクの初期太さは設定に従う
func NewDefaultDispatcher(video *viewer.Element, cfg *config.Config, nav Navigator) (*Dispatcher, error) {
	doc := &PageDocument{
		Video: video,
		Container: viewer.NewContainerElement(viewer.Size{
			Width:  float64(cfg.Camera.Width),
			Height: float64(cfg.Camera.Height),
		}),

		ZoomSlider:  viewer.NewSlider(cfg.Viewer.ZoomMin, cfg.Viewer.ZoomMax, cfg.Viewer.ZoomStep, cfg.Viewer.ZoomMin),
		ResetButton: viewer.NewButton(false),

		HueSlider:        viewer.NewSlider(-180, 180, 1, viewer.DefaultHue),
		BrightnessSlider: viewer.NewSlider(0, 200, 1, viewer.DefaultBrightness),
		ContrastSlider:   viewer.NewSlider(0, 200, 1, viewer.DefaultContrast),
		SaturationSlider: viewer.NewSlider(0, 200, 1, viewer.DefaultSaturation),

		MaskToggle: viewer.NewButton(true),
		MaskSlider: viewer.NewSlider(overlay.MinBarPercent, overlay.MaxBarPercent, 1, cfg.Mask.DefaultPercent),

		HomeButton: viewer.NewButton(true),
	}

	collab, err := EnsureCollaborators(doc)
	if err != nil {
		return nil, err
	}

	d, err := NewDispatcher(collab, nav)
	if err != nil {
		return nil, err
	}

	d.mask.SetBarPercent(cfg.Mask.DefaultPercent)
	return d, nil
}
