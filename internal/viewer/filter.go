package viewer

import (
	"fmt"
	"strings"
)

// Preset は名前付きフィルタプリセットを表す
type Preset string

const (
	PresetNone              Preset = "none"
	PresetProtanopia        Preset = "protanopia"
	PresetDeuteranopia      Preset = "deuteranopia"
	PresetTritanopia        Preset = "tritanopia"
	PresetGrayscale         Preset = "grayscale"
	PresetInverted          Preset = "inverted"
	PresetInvertedGrayscale Preset = "inverted-grayscale"
	PresetBlueOnYellow      Preset = "blue-on-yellow"
	PresetNeonOrange        Preset = "neon-orange"
	PresetNeonGreen         Preset = "neon-green"
	PresetYellowOnBlack     Preset = "yellow-on-black"
	PresetPurpleOnBlack     Preset = "purple-on-black"
)

// presetExpressions はプリセット名ごとの固定フィルタ式
// 色覚異常系のプリセットはページ側で定義されるSVGフィルタへの参照であり、
// ここでは参照トークンのみを扱う
var presetExpressions = map[Preset]string{
	PresetNone:              "",
	PresetProtanopia:        "url(#protanopia)",
	PresetDeuteranopia:      "url(#deuteranopia)",
	PresetTritanopia:        "url(#tritanopia)",
	PresetGrayscale:         "grayscale(100%)",
	PresetInverted:          "invert(100%)",
	PresetInvertedGrayscale: "invert(100%) grayscale(100%)",
	PresetBlueOnYellow:      "sepia(100%) saturate(400%) hue-rotate(175deg)",
	PresetNeonOrange:        "sepia(100%) saturate(600%) hue-rotate(320deg) brightness(90%)",
	PresetNeonGreen:         "sepia(100%) saturate(500%) hue-rotate(60deg) brightness(95%)",
	PresetYellowOnBlack:     "invert(100%) sepia(100%) saturate(500%) hue-rotate(5deg)",
	PresetPurpleOnBlack:     "invert(100%) sepia(100%) saturate(400%) hue-rotate(230deg)",
}

// PresetNames は利用可能なプリセット名の一覧を返す
func PresetNames() []Preset {
	return []Preset{
		PresetNone,
		PresetProtanopia,
		PresetDeuteranopia,
		PresetTritanopia,
		PresetGrayscale,
		PresetInverted,
		PresetInvertedGrayscale,
		PresetBlueOnYellow,
		PresetNeonOrange,
		PresetNeonGreen,
		PresetYellowOnBlack,
		PresetPurpleOnBlack,
	}
}

// CustomParam はカスタム調整のパラメータ種別
type CustomParam string

const (
	ParamHue        CustomParam = "hue"        // 色相回転（度）
	ParamBrightness CustomParam = "brightness" // 明度（%）
	ParamContrast   CustomParam = "contrast"   // コントラスト（%）
	ParamSaturation CustomParam = "saturation" // 彩度（%）
)

// カスタム調整の既定値
const (
	DefaultHue        = 0.0
	DefaultBrightness = 100.0
	DefaultContrast   = 100.0
	DefaultSaturation = 100.0
)

// CustomState は4つのカスタム調整値を保持する
type CustomState struct {
	Hue        float64 // 色相回転（度）
	Brightness float64 // 明度（%）
	Contrast   float64 // コントラスト（%）
	Saturation float64 // 彩度（%）
}

// defaultCustomState は既定のカスタム調整値を返す
func defaultCustomState() CustomState {
	return CustomState{
		Hue:        DefaultHue,
		Brightness: DefaultBrightness,
		Contrast:   DefaultContrast,
		Saturation: DefaultSaturation,
	}
}

// FilterState はフィルタの全状態を表す
type FilterState struct {
	Preset Preset
	Custom CustomState
}

// CustomBindings はカスタム調整にバインドされたスライダー群
// リセット時に表示値を再同期するために保持する（各要素はnil可）
type CustomBindings struct {
	Hue        *Slider
	Brightness *Slider
	Contrast   *Slider
	Saturation *Slider
}

// FilterCompositor はフィルタ状態を所有し、合成結果を映像面に適用する
type FilterCompositor struct {
	surface  VideoSurface
	bindings CustomBindings

	state FilterState
}

// NewFilterCompositor は新しいFilterCompositorを作成する
func NewFilterCompositor(surface VideoSurface, bindings CustomBindings) (*FilterCompositor, error) {
	if surface == nil {
		return nil, fmt.Errorf("映像面のハンドルがありません")
	}

	c := &FilterCompositor{
		surface:  surface,
		bindings: bindings,
		state: FilterState{
			Preset: PresetNone,
			Custom: defaultCustomState(),
		},
	}
	c.render()
	return c, nil
}

// State は現在の状態のコピーを返す
func (c *FilterCompositor) State() FilterState {
	return c.state
}

// SelectPreset はプリセットを選択する
// カスタム調整値には影響しない
func (c *FilterCompositor) SelectPreset(name Preset) error {
	if _, ok := presetExpressions[name]; !ok {
		return fmt.Errorf("不明なプリセット: %s", name)
	}

	c.state.Preset = name
	c.render()
	return nil
}

// SetCustom はカスタム調整値を設定する
// フィルタ関数自体に値域の制約がないため、値はそのまま保持する
func (c *FilterCompositor) SetCustom(param CustomParam, value float64) error {
	switch param {
	case ParamHue:
		c.state.Custom.Hue = value
	case ParamBrightness:
		c.state.Custom.Brightness = value
	case ParamContrast:
		c.state.Custom.Contrast = value
	case ParamSaturation:
		c.state.Custom.Saturation = value
	default:
		return fmt.Errorf("不明なカスタムパラメータ: %s", param)
	}

	c.render()
	return nil
}

// ResetCustom は4つのカスタム調整値を既定値に戻す
// バインドされたスライダーの表示値も再同期する
func (c *FilterCompositor) ResetCustom() {
	c.state.Custom = defaultCustomState()
	c.render()
	c.syncBindings()
}

// ResetToNormal はプリセットを解除しカスタム調整値も既定値に戻す
func (c *FilterCompositor) ResetToNormal() {
	c.state.Preset = PresetNone
	c.ResetCustom()
}

// Render は現在の状態からフィルタ文字列を合成する
// プリセット式を先頭に置き（noneの場合は完全に省略）、
// カスタム調整は常にその後ろへ一様に適用する
func (c *FilterCompositor) Render() string {
	parts := make([]string, 0, 5)

	if expr := presetExpressions[c.state.Preset]; expr != "" {
		parts = append(parts, expr)
	}

	parts = append(parts,
		fmt.Sprintf("hue-rotate(%sdeg)", formatNumber(c.state.Custom.Hue)),
		fmt.Sprintf("brightness(%s%%)", formatNumber(c.state.Custom.Brightness)),
		fmt.Sprintf("contrast(%s%%)", formatNumber(c.state.Custom.Contrast)),
		fmt.Sprintf("saturate(%s%%)", formatNumber(c.state.Custom.Saturation)),
	)

	return strings.Join(parts, " ")
}

// render は合成結果を映像面に適用する
func (c *FilterCompositor) render() {
	c.surface.ApplyFilter(c.Render())
}

// syncBindings はバインドされたスライダーの表示値を状態に合わせる
func (c *FilterCompositor) syncBindings() {
	if c.bindings.Hue != nil {
		c.bindings.Hue.Value = c.state.Custom.Hue
	}
	if c.bindings.Brightness != nil {
		c.bindings.Brightness.Value = c.state.Custom.Brightness
	}
	if c.bindings.Contrast != nil {
		c.bindings.Contrast.Value = c.state.Custom.Contrast
	}
	if c.bindings.Saturation != nil {
		c.bindings.Saturation.Value = c.state.Custom.Saturation
	}
}
