package camera

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"
)

// TestSessionStart はセッション開始の基本動作をテストする
func TestSessionStart(t *testing.T) {
	capturer := NewMockCapturer()
	manager := NewSessionManager(capturer, "/dev/video0", nil)
	target := NewMockRenderTarget()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session, err := manager.Start(ctx, target, DefaultConstraints())
	if err != nil {
		t.Fatalf("セッション開始に失敗しました: %v", err)
	}
	defer func() { _ = manager.Stop(ctx) }()

	if session.ID == "" {
		t.Error("セッションIDが空です")
	}
	if session.Negotiated != (Resolution{Width: 1920, Height: 1080}) {
		t.Errorf("ネゴシエーション結果が不正です: %+v", session.Negotiated)
	}

	// 映像面にバインドされ、固有サイズが使用可能であること
	if target.StreamID() != session.ID {
		t.Errorf("映像面のストリームIDが不正です: %s", target.StreamID())
	}
	width, height := target.IntrinsicSize()
	if width != 1920 || height != 1080 {
		t.Errorf("固有サイズが不正です: %dx%d", width, height)
	}

	// 自動再生ポリシーに従いミュートのインライン自動再生であること
	playback := target.Playback()
	if !playback.Autoplay || !playback.Muted || !playback.PlaysInline {
		t.Errorf("再生指定が不正です: %+v", playback)
	}

	if manager.Status() != StatusActive {
		t.Errorf("セッション状態が不正です: %s", manager.Status())
	}
}

// TestSessionStartTwice は二重開始の拒否をテストする
func TestSessionStartTwice(t *testing.T) {
	capturer := NewMockCapturer()
	manager := NewSessionManager(capturer, "/dev/video0", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := manager.Start(ctx, NewMockRenderTarget(), DefaultConstraints()); err != nil {
		t.Fatalf("セッション開始に失敗しました: %v", err)
	}
	defer func() { _ = manager.Stop(ctx) }()

	if _, err := manager.Start(ctx, NewMockRenderTarget(), DefaultConstraints()); err == nil {
		t.Error("二重開始でエラーが返されませんでした")
	}
}

// TestSessionAcquisitionFailure は取得失敗の扱いをテストする
func TestSessionAcquisitionFailure(t *testing.T) {
	testCases := []struct {
		name       string
		reason     string
		wantReason string
	}{
		{"キャプチャ機構なし", ReasonUnsupported, ReasonUnsupported},
		{"アクセス拒否", ReasonDenied, ReasonDenied},
		{"ハードウェア障害", ReasonHardware, ReasonHardware},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			capturer := NewMockCapturer()
			capturer.FailProbeReason = tc.reason
			manager := NewSessionManager(capturer, "/dev/video0", nil)

			ctx := context.Background()
			_, err := manager.Start(ctx, NewMockRenderTarget(), DefaultConstraints())
			if err == nil {
				t.Fatal("取得失敗でエラーが返されませんでした")
			}

			var acqErr *AcquisitionError
			if !errors.As(err, &acqErr) {
				t.Fatalf("AcquisitionErrorではありません: %T", err)
			}
			if acqErr.Reason != tc.wantReason {
				t.Errorf("失敗理由が不正です: %s", acqErr.Reason)
			}

			if manager.Status() != StatusError {
				t.Errorf("失敗後の状態が不正です: %s", manager.Status())
			}

			// 自動再試行は行わない（Probeは一度だけ呼ばれる）
			if got := capturer.ProbeCalls(); got != 1 {
				t.Errorf("Probeの呼び出し回数が不正です: %d", got)
			}
		})
	}
}

// TestSessionExactConstraint は厳密解像度条件のネゴシエーションをテストする
func TestSessionExactConstraint(t *testing.T) {
	// 1920x1080に対応していないデバイス
	capturer := NewMockCapturer()
	capturer.Supported = []Resolution{
		{Width: 640, Height: 480},
		{Width: 1280, Height: 720},
	}
	manager := NewSessionManager(capturer, "/dev/video0", nil)

	ctx := context.Background()

	// 厳密条件では失敗する
	exact := DefaultConstraints()
	exact.PreferExact = true
	if _, err := manager.Start(ctx, NewMockRenderTarget(), exact); err == nil {
		t.Error("非対応解像度の厳密条件でエラーが返されませんでした")
	}

	// 希望条件では最も近い解像度へフォールバックする
	manager2 := NewSessionManager(capturer, "/dev/video0", nil)
	session, err := manager2.Start(ctx, NewMockRenderTarget(), DefaultConstraints())
	if err != nil {
		t.Fatalf("希望条件での開始に失敗しました: %v", err)
	}
	defer func() { _ = manager2.Stop(ctx) }()

	if session.Negotiated != (Resolution{Width: 1280, Height: 720}) {
		t.Errorf("フォールバック先が不正です: %+v", session.Negotiated)
	}
}

// TestSessionStopDetaches は停止時のバインド解除をテストする
func TestSessionStopDetaches(t *testing.T) {
	capturer := NewMockCapturer()
	manager := NewSessionManager(capturer, "/dev/video0", nil)
	target := NewMockRenderTarget()

	ctx := context.Background()
	if _, err := manager.Start(ctx, target, DefaultConstraints()); err != nil {
		t.Fatalf("セッション開始に失敗しました: %v", err)
	}

	if err := manager.Stop(ctx); err != nil {
		t.Fatalf("セッション停止に失敗しました: %v", err)
	}

	if manager.Status() != StatusInactive {
		t.Errorf("停止後の状態が不正です: %s", manager.Status())
	}
	if target.StreamID() != "" {
		t.Error("停止後もストリームがバインドされています")
	}
	if _, ok := manager.Session(); ok {
		t.Error("停止後もセッションが残っています")
	}

	// 再停止は何もしない
	if err := manager.Stop(ctx); err != nil {
		t.Errorf("再停止でエラーが発生しました: %v", err)
	}
}

// TestSessionStreamLifecycle はストリーム送出が停止に追従することをテストする
func TestSessionStreamLifecycle(t *testing.T) {
	capturer := NewMockCapturer()
	manager := NewSessionManager(capturer, "/dev/video0", nil)

	ctx := context.Background()
	if _, err := manager.Start(ctx, NewMockRenderTarget(), DefaultConstraints()); err != nil {
		t.Fatalf("セッション開始に失敗しました: %v", err)
	}

	if !capturer.Streaming() {
		t.Error("開始後にストリームが送出されていません")
	}

	if err := manager.Stop(ctx); err != nil {
		t.Fatalf("セッション停止に失敗しました: %v", err)
	}

	// 送出側の終了はキャンセル伝播後の別ゴルーチンで起こるため反映を待つ
	deadline := time.Now().Add(2 * time.Second)
	for capturer.Streaming() {
		if time.Now().After(deadline) {
			t.Fatal("停止後もストリームが送出されています")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestSessionFrameChannel はフレームチャンネルの配信をテストする
func TestSessionFrameChannel(t *testing.T) {
	capturer := NewMockCapturer()
	capturer.Frames = [][]byte{
		{0xFF, 0xD8, 0x01, 0xFF, 0xD9},
		{0xFF, 0xD8, 0x02, 0xFF, 0xD9},
	}
	manager := NewSessionManager(capturer, "/dev/video0", nil)

	ctx := context.Background()
	if _, err := manager.Start(ctx, NewMockRenderTarget(), DefaultConstraints()); err != nil {
		t.Fatalf("セッション開始に失敗しました: %v", err)
	}
	defer func() { _ = manager.Stop(ctx) }()

	frameChan, ok := manager.FrameChannel()
	if !ok {
		t.Fatal("フレームチャンネルが取得できません")
	}

	select {
	case frame := <-frameChan:
		if len(frame) == 0 {
			t.Error("空のフレームを受信しました")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("フレームの受信がタイムアウトしました")
	}
}

// TestSizeToSessionResolution は依存キャンバスのサイズ調整をテストする
func TestSizeToSessionResolution(t *testing.T) {
	capturer := NewMockCapturer()
	manager := NewSessionManager(capturer, "/dev/video0", nil)

	ctx := context.Background()
	if _, err := manager.Start(ctx, NewMockRenderTarget(), DefaultConstraints()); err != nil {
		t.Fatalf("セッション開始に失敗しました: %v", err)
	}
	defer func() { _ = manager.Stop(ctx) }()

	testCases := []struct {
		name       string
		factor     float64
		wantWidth  int
		wantHeight int
	}{
		{"等倍", 1.0, 1920, 1080},
		{"半分", 0.5, 960, 540},
		{"1/3は四捨五入", 1.0 / 3.0, 640, 360},
		{"2倍", 2.0, 3840, 2160},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			canvas := NewPixelCanvas(0, 0)
			if err := manager.SizeToSessionResolution(canvas, tc.factor); err != nil {
				t.Fatalf("サイズ調整に失敗しました: %v", err)
			}

			width, height := canvas.BufferSize()
			if width != tc.wantWidth || height != tc.wantHeight {
				t.Errorf("バッファサイズが不正です: %dx%d, want %dx%d",
					width, height, tc.wantWidth, tc.wantHeight)
			}

			// 表示サイズは係数に関わらず等倍の解像度
			displayWidth, displayHeight := canvas.DisplaySize()
			if displayWidth != 1920 || displayHeight != 1080 {
				t.Errorf("表示サイズが不正です: %gx%g", displayWidth, displayHeight)
			}
		})
	}
}

// TestSizeToSessionResolutionWithoutSession はセッションなしでの失敗をテストする
func TestSizeToSessionResolutionWithoutSession(t *testing.T) {
	manager := NewSessionManager(NewMockCapturer(), "/dev/video0", nil)

	if err := manager.SizeToSessionResolution(NewPixelCanvas(0, 0), 1.0); err == nil {
		t.Error("セッションなしでエラーが返されませんでした")
	}
}

// TestSnapshot はスナップショットの再サンプリングをテストする
func TestSnapshot(t *testing.T) {
	capturer := NewMockCapturer()
	capturer.FrameImage = image.NewRGBA(image.Rect(0, 0, 1920, 1080))
	manager := NewSessionManager(capturer, "/dev/video0", nil)

	ctx := context.Background()
	if _, err := manager.Start(ctx, NewMockRenderTarget(), DefaultConstraints()); err != nil {
		t.Fatalf("セッション開始に失敗しました: %v", err)
	}
	defer func() { _ = manager.Stop(ctx) }()

	snapshot, err := manager.Snapshot(ctx, 0.25)
	if err != nil {
		t.Fatalf("スナップショットに失敗しました: %v", err)
	}

	bounds := snapshot.Bounds()
	if bounds.Dx() != 480 || bounds.Dy() != 270 {
		t.Errorf("スナップショットのサイズが不正です: %dx%d", bounds.Dx(), bounds.Dy())
	}
}

// TestParseResolutions はv4l2-ctl出力の解析をテストする
func TestParseResolutions(t *testing.T) {
	output := `
	[0]: 'MJPG' (Motion-JPEG, compressed)
		Size: Discrete 1920x1080
			Interval: Discrete 0.033s (30.000 fps)
		Size: Discrete 1280x720
		Size: Discrete 1920x1080
	[1]: 'YUYV' (YUYV 4:2:2)
		Size: Discrete 640x480
`

	resolutions := parseResolutions(output)

	want := []Resolution{
		{Width: 1920, Height: 1080},
		{Width: 1280, Height: 720},
		{Width: 640, Height: 480},
	}

	if len(resolutions) != len(want) {
		t.Fatalf("解像度数が不正です: %d, want %d", len(resolutions), len(want))
	}
	for i, r := range want {
		if resolutions[i] != r {
			t.Errorf("解像度[%d]が不正です: %+v, want %+v", i, resolutions[i], r)
		}
	}
}

// TestClosestResolution は最近傍解像度の選択をテストする
func TestClosestResolution(t *testing.T) {
	supported := []Resolution{
		{Width: 640, Height: 480},
		{Width: 1280, Height: 720},
		{Width: 3840, Height: 2160},
	}

	testCases := []struct {
		name      string
		requested Resolution
		want      Resolution
	}{
		{"完全一致", Resolution{Width: 1280, Height: 720}, Resolution{Width: 1280, Height: 720}},
		{"1080pは720pが最近傍", Resolution{Width: 1920, Height: 1080}, Resolution{Width: 1280, Height: 720}},
		{"小さい要求", Resolution{Width: 320, Height: 240}, Resolution{Width: 640, Height: 480}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := closestResolution(supported, tc.requested); got != tc.want {
				t.Errorf("closestResolution(%+v) = %+v, want %+v", tc.requested, got, tc.want)
			}
		})
	}
}
