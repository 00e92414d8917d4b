package camera

import (
	"context"
	"fmt"
	"image"
	"sync"
)

// MockCapturer はテスト用のモックキャプチャ実装
type MockCapturer struct {
	mu sync.Mutex

	// テスト制御用
	FailProbeReason string       // 空でなければProbeを失敗させる
	Supported       []Resolution // 対応解像度（空なら確認不能として扱う）
	Frames          [][]byte     // StartStreamで送出するフレーム
	FrameImage      image.Image  // CaptureFrameが返す画像

	negotiated Resolution
	probeCalls int
	streamOn   bool
}

// NewMockCapturer は新しいMockCapturerを作成する
func NewMockCapturer() *MockCapturer {
	return &MockCapturer{
		Supported: []Resolution{
			{Width: 640, Height: 480},
			{Width: 1280, Height: 720},
			{Width: 1920, Height: 1080},
		},
	}
}

// Probe はデバイスの利用可能性確認を模倣する
func (m *MockCapturer) Probe(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.probeCalls++
	if m.FailProbeReason != "" {
		return &AcquisitionError{
			Reason: m.FailProbeReason,
			Device: "mock",
			Err:    fmt.Errorf("モックによる失敗"),
		}
	}
	return nil
}

// Negotiate は解像度決定を模倣する
func (m *MockCapturer) Negotiate(_ context.Context, constraints Constraints) (Resolution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	requested := Resolution{Width: constraints.Width, Height: constraints.Height}

	if len(m.Supported) == 0 {
		if constraints.PreferExact {
			return Resolution{}, &AcquisitionError{
				Reason: ReasonHardware,
				Device: "mock",
				Err:    fmt.Errorf("対応解像度を確認できません"),
			}
		}
		m.negotiated = requested
		return requested, nil
	}

	if constraints.PreferExact {
		for _, r := range m.Supported {
			if r == requested {
				m.negotiated = requested
				return requested, nil
			}
		}
		return Resolution{}, &AcquisitionError{
			Reason: ReasonHardware,
			Device: "mock",
			Err:    fmt.Errorf("解像度 %dx%d に対応していません", requested.Width, requested.Height),
		}
	}

	granted := closestResolution(m.Supported, requested)
	m.negotiated = granted
	return granted, nil
}

// StartStream はフレーム送出を模倣する
func (m *MockCapturer) StartStream(ctx context.Context, frameChan chan<- []byte, _ chan<- error) {
	m.mu.Lock()
	m.streamOn = true
	frames := m.Frames
	m.mu.Unlock()

	go func() {
		for _, frame := range frames {
			select {
			case frameChan <- frame:
			case <-ctx.Done():
				return
			}
		}
		<-ctx.Done()

		m.mu.Lock()
		m.streamOn = false
		m.mu.Unlock()
	}()
}

// CaptureFrame はフレーム取得を模倣する
func (m *MockCapturer) CaptureFrame(_ context.Context) (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FrameImage != nil {
		return m.FrameImage, nil
	}
	return image.NewRGBA(image.Rect(0, 0, m.negotiated.Width, m.negotiated.Height)), nil
}

// ProbeCalls はProbeの呼び出し回数を返す
func (m *MockCapturer) ProbeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.probeCalls
}

// Streaming はストリーム送出中かどうかを返す
func (m *MockCapturer) Streaming() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streamOn
}

// MockRenderTarget はテスト用のバインド先実装
// ストリームのバインドと同時にメタデータ確定を通知する
type MockRenderTarget struct {
	mu sync.Mutex

	streamID string
	width    int
	height   int
	playback PlaybackOptions

	ready     chan struct{}
	readyOnce sync.Once
}

// NewMockRenderTarget は新しいMockRenderTargetを作成する
func NewMockRenderTarget() *MockRenderTarget {
	return &MockRenderTarget{ready: make(chan struct{})}
}

// AttachStream はストリームバインドを模倣する
func (t *MockRenderTarget) AttachStream(streamID string, width, height int, opts PlaybackOptions) {
	t.mu.Lock()
	t.streamID = streamID
	t.width = width
	t.height = height
	t.playback = opts
	t.mu.Unlock()

	if width > 0 && height > 0 {
		t.readyOnce.Do(func() { close(t.ready) })
	}
}

// DetachStream はバインド解除を模倣する
func (t *MockRenderTarget) DetachStream() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.streamID = ""
	t.width = 0
	t.height = 0
}

// IntrinsicSize は固有サイズを返す
func (t *MockRenderTarget) IntrinsicSize() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height
}

// MetadataReady はメタデータ確定チャンネルを返す
func (t *MockRenderTarget) MetadataReady() <-chan struct{} {
	return t.ready
}

// StreamID は現在のストリームIDを返す
func (t *MockRenderTarget) StreamID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.streamID
}

// Playback は再生指定を返す
func (t *MockRenderTarget) Playback() PlaybackOptions {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playback
}
