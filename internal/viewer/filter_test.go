package viewer

import (
	"strings"
	"testing"
)

// newTestCompositor はテスト用のFilterCompositorを作成する
func newTestCompositor(t *testing.T) (*FilterCompositor, *Element, CustomBindings) {
	t.Helper()

	video := NewElement(Size{Width: 800, Height: 600})
	bindings := CustomBindings{
		Hue:        NewSlider(-180, 180, 1, 0),
		Brightness: NewSlider(0, 200, 1, 100),
		Contrast:   NewSlider(0, 200, 1, 100),
		Saturation: NewSlider(0, 200, 1, 100),
	}

	compositor, err := NewFilterCompositor(video, bindings)
	if err != nil {
		t.Fatalf("フィルタ合成器の構築に失敗しました: %v", err)
	}
	return compositor, video, bindings
}

// TestFilterDefaultRender は初期状態の合成結果をテストする
func TestFilterDefaultRender(t *testing.T) {
	compositor, video, _ := newTestCompositor(t)

	want := "hue-rotate(0deg) brightness(100%) contrast(100%) saturate(100%)"
	if got := compositor.Render(); got != want {
		t.Errorf("初期状態の合成結果が不正です:\ngot  %q\nwant %q", got, want)
	}

	// 構築時に映像面へ適用済みであること
	if got := video.Filter(); got != want {
		t.Errorf("映像面への適用が不正です: %q", got)
	}
}

// TestFilterPresetComposition はプリセットとカスタム調整の合成をテストする
func TestFilterPresetComposition(t *testing.T) {
	testCases := []struct {
		name   string
		preset Preset
		want   string
	}{
		{
			"グレースケール",
			PresetGrayscale,
			"grayscale(100%) hue-rotate(0deg) brightness(100%) contrast(100%) saturate(100%)",
		},
		{
			"プリセットなし",
			PresetNone,
			"hue-rotate(0deg) brightness(100%) contrast(100%) saturate(100%)",
		},
		{
			"反転",
			PresetInverted,
			"invert(100%) hue-rotate(0deg) brightness(100%) contrast(100%) saturate(100%)",
		},
		{
			"1型色覚はSVGフィルタ参照",
			PresetProtanopia,
			"url(#protanopia) hue-rotate(0deg) brightness(100%) contrast(100%) saturate(100%)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			compositor, _, _ := newTestCompositor(t)

			if err := compositor.SelectPreset(tc.preset); err != nil {
				t.Fatalf("プリセット選択に失敗しました: %v", err)
			}
			// 既定値の明示的な再設定は結果を変えない
			if err := compositor.SetCustom(ParamHue, 0); err != nil {
				t.Fatalf("カスタム設定に失敗しました: %v", err)
			}

			if got := compositor.Render(); got != tc.want {
				t.Errorf("合成結果が不正です:\ngot  %q\nwant %q", got, tc.want)
			}

			// 先頭に余計な空白や空のプリセット式が残らないこと
			if strings.HasPrefix(compositor.Render(), " ") {
				t.Error("合成結果の先頭に空白が残っています")
			}
		})
	}
}

// TestFilterUnknownPreset は不明なプリセットの拒否をテストする
func TestFilterUnknownPreset(t *testing.T) {
	compositor, _, _ := newTestCompositor(t)

	if err := compositor.SelectPreset("sepia-dream"); err == nil {
		t.Error("不明なプリセットでエラーが返されませんでした")
	}

	// 状態は変化していないこと
	if got := compositor.State().Preset; got != PresetNone {
		t.Errorf("失敗した選択で状態が変化しました: %s", got)
	}
}

// TestFilterPresetKeepsCustom はプリセット選択がカスタム調整に影響しないことをテストする
func TestFilterPresetKeepsCustom(t *testing.T) {
	compositor, _, _ := newTestCompositor(t)

	if err := compositor.SetCustom(ParamBrightness, 140); err != nil {
		t.Fatalf("カスタム設定に失敗しました: %v", err)
	}
	if err := compositor.SelectPreset(PresetGrayscale); err != nil {
		t.Fatalf("プリセット選択に失敗しました: %v", err)
	}

	want := "grayscale(100%) hue-rotate(0deg) brightness(140%) contrast(100%) saturate(100%)"
	if got := compositor.Render(); got != want {
		t.Errorf("カスタム調整が維持されていません:\ngot  %q\nwant %q", got, want)
	}
}

// TestFilterCustomUnclamped はカスタム調整値が生のまま保持されることをテストする
func TestFilterCustomUnclamped(t *testing.T) {
	compositor, _, _ := newTestCompositor(t)

	// フィルタ関数に値域の制約はないため、範囲外の値もそのまま扱う
	if err := compositor.SetCustom(ParamHue, 720); err != nil {
		t.Fatalf("カスタム設定に失敗しました: %v", err)
	}
	if err := compositor.SetCustom(ParamSaturation, 950); err != nil {
		t.Fatalf("カスタム設定に失敗しました: %v", err)
	}

	want := "hue-rotate(720deg) brightness(100%) contrast(100%) saturate(950%)"
	if got := compositor.Render(); got != want {
		t.Errorf("生値が保持されていません:\ngot  %q\nwant %q", got, want)
	}
}

// TestFilterUnknownCustomParam は不明なパラメータの拒否をテストする
func TestFilterUnknownCustomParam(t *testing.T) {
	compositor, _, _ := newTestCompositor(t)

	if err := compositor.SetCustom("blur", 5); err == nil {
		t.Error("不明なパラメータでエラーが返されませんでした")
	}
}

// TestResetToNormal は全状態の一括リセットをテストする
// どのような状態からでもプリセットなし・既定値へ戻る
func TestResetToNormal(t *testing.T) {
	compositor, _, bindings := newTestCompositor(t)

	// 任意の状態を作る
	if err := compositor.SelectPreset(PresetPurpleOnBlack); err != nil {
		t.Fatalf("プリセット選択に失敗しました: %v", err)
	}
	for param, value := range map[CustomParam]float64{
		ParamHue:        -90,
		ParamBrightness: 35,
		ParamContrast:   180,
		ParamSaturation: 400,
	} {
		if err := compositor.SetCustom(param, value); err != nil {
			t.Fatalf("カスタム設定に失敗しました: %v", err)
		}
	}
	bindings.Hue.Value = -90
	bindings.Brightness.Value = 35

	compositor.ResetToNormal()

	state := compositor.State()
	if state.Preset != PresetNone {
		t.Errorf("プリセットが解除されていません: %s", state.Preset)
	}
	if state.Custom != (CustomState{Hue: 0, Brightness: 100, Contrast: 100, Saturation: 100}) {
		t.Errorf("カスタム調整が既定値に戻っていません: %+v", state.Custom)
	}

	// バインドされたスライダーの表示値も再同期されること
	if bindings.Hue.Value != 0 || bindings.Brightness.Value != 100 {
		t.Errorf("スライダーの表示値が再同期されていません: hue=%g brightness=%g",
			bindings.Hue.Value, bindings.Brightness.Value)
	}

	want := "hue-rotate(0deg) brightness(100%) contrast(100%) saturate(100%)"
	if got := compositor.Render(); got != want {
		t.Errorf("リセット後の合成結果が不正です: %q", got)
	}
}

// TestFilterDoesNotTouchTransform はフィルタが変形プロパティに触れないことをテストする
func TestFilterDoesNotTouchTransform(t *testing.T) {
	compositor, video, _ := newTestCompositor(t)

	video.ApplyTransform("translate(-50%, -50%) translate(0px, 0px) scale(2)")
	if err := compositor.SelectPreset(PresetGrayscale); err != nil {
		t.Fatalf("プリセット選択に失敗しました: %v", err)
	}
	compositor.ResetToNormal()

	if got := video.Transform(); got != "translate(-50%, -50%) translate(0px, 0px) scale(2)" {
		t.Errorf("フィルタ操作が変形プロパティを書き換えました: %q", got)
	}
}

// TestPresetNamesComplete は全プリセットに式が定義されていることをテストする
func TestPresetNamesComplete(t *testing.T) {
	names := PresetNames()
	if len(names) != 12 {
		t.Errorf("プリセット数が不正です: %d", len(names))
	}

	for _, name := range names {
		if _, ok := presetExpressions[name]; !ok {
			t.Errorf("プリセット %s に式が定義されていません", name)
		}
	}
}
