package input

import (
	"fmt"

	"iromegane/internal/overlay"
	"iromegane/internal/viewer"
)

// MissingElementError は期待する協調要素の欠落を表す
type MissingElementError struct {
	Element string // 欠落した要素の名前
}

// Error はエラーメッセージを返す
func (e *MissingElementError) Error() string {
	return fmt.Sprintf("協調要素が見つかりません: %s", e.Element)
}

// PageDocument はページ上の協調要素の探索結果
// 欠落している要素はnilのままでよい
type PageDocument struct {
	Video     *viewer.Element
	Container *viewer.ContainerElement

	ZoomSlider  *viewer.Slider
	ResetButton *viewer.Button

	PresetButtons map[viewer.Preset]*viewer.Button

	HueSlider        *viewer.Slider
	BrightnessSlider *viewer.Slider
	ContrastSlider   *viewer.Slider
	SaturationSlider *viewer.Slider

	MaskToggle *viewer.Button
	MaskSlider *viewer.Slider

	HomeButton *viewer.Button
}

// Collaborators は存在確認済みの協調要素バンドル
// 必須要素はすべて非nilであることが保証される
type Collaborators struct {
	Video     *viewer.Element
	Container *viewer.ContainerElement

	ZoomSlider  *viewer.Slider
	ResetButton *viewer.Button

	PresetButtons map[viewer.Preset]*viewer.Button

	HueSlider        *viewer.Slider
	BrightnessSlider *viewer.Slider
	ContrastSlider   *viewer.Slider
	SaturationSlider *viewer.Slider

	MaskToggle *viewer.Button
	MaskSlider *viewer.Slider

	HomeButton *viewer.Button
}

// EnsureCollaborators は協調要素の存在を確認し、型付きバンドルを返す
// 必須要素の欠落は MissingElementError で即座に失敗する
// 任意要素（マスクの操作部品など）は欠落時にその場で構築する
func EnsureCollaborators(doc *PageDocument) (*Collaborators, error) {
	if doc == nil {
		return nil, &MissingElementError{Element: "page"}
	}

	// 必須要素
	if doc.Video == nil {
		return nil, &MissingElementError{Element: "video"}
	}
	if doc.Container == nil {
		return nil, &MissingElementError{Element: "container"}
	}
	if doc.ZoomSlider == nil {
		return nil, &MissingElementError{Element: "zoom-slider"}
	}

	c := &Collaborators{
		Video:            doc.Video,
		Container:        doc.Container,
		ZoomSlider:       doc.ZoomSlider,
		ResetButton:      doc.ResetButton,
		PresetButtons:    doc.PresetButtons,
		HueSlider:        doc.HueSlider,
		BrightnessSlider: doc.BrightnessSlider,
		ContrastSlider:   doc.ContrastSlider,
		SaturationSlider: doc.SaturationSlider,
		MaskToggle:       doc.MaskToggle,
		MaskSlider:       doc.MaskSlider,
		HomeButton:       doc.HomeButton,
	}

	// 任意要素は欠落していればここで構築する
	if c.ResetButton == nil {
		c.ResetButton = viewer.NewButton(false)
	}
	if c.MaskToggle == nil {
		c.MaskToggle = viewer.NewButton(true)
	}
	if c.MaskSlider == nil {
		c.MaskSlider = viewer.NewSlider(
			overlay.MinBarPercent, overlay.MaxBarPercent, 1, overlay.DefaultBarPercent)
	}
	if c.PresetButtons == nil {
		c.PresetButtons = make(map[viewer.Preset]*viewer.Button)
	}

	return c, nil
}

// controlStack はマスク面より上に収めるべき操作部品の一覧を返す
func (c *Collaborators) controlStack() []overlay.Stackable {
	controls := []overlay.Stackable{
		c.ZoomSlider,
		c.ResetButton,
		c.MaskToggle,
		c.MaskSlider,
	}

	for _, btn := range c.PresetButtons {
		controls = append(controls, btn)
	}
	for _, s := range []*viewer.Slider{c.HueSlider, c.BrightnessSlider, c.ContrastSlider, c.SaturationSlider} {
		if s != nil {
			controls = append(controls, s)
		}
	}
	if c.HomeButton != nil {
		controls = append(controls, c.HomeButton)
	}

	return controls
}
