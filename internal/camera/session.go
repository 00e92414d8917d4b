package camera

import (
	"context"
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
)

// Session は取得済みのカメラセッションを表す
type Session struct {
	ID         string     // セッションの一意識別子
	Device     string     // 対象デバイス
	Negotiated Resolution // 実際に許可された解像度
	StartedAt  time.Time  // 開始時刻
}

// SessionManager はカメラセッションの取得とライフサイクルを管理する
// 同時に保持するアクティブなストリームは1本のみ
type SessionManager struct {
	capturer Capturer
	device   string
	logger   *zap.Logger

	mu      sync.RWMutex
	session *Session
	target  RenderTarget
	status  Status

	frameChan chan []byte
	errorChan chan error
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewSessionManager は新しいSessionManagerを作成する
func NewSessionManager(capturer Capturer, device string, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		capturer: capturer,
		device:   device,
		logger:   logger,
		status:   StatusInactive,
	}
}

// Start はカメラストリームを取得して映像面にバインドする
// メタデータが確定して固有サイズが使用可能になるまで復帰しない
// 失敗時は AcquisitionError を返し、自動再試行は行わない
func (m *SessionManager) Start(ctx context.Context, target RenderTarget, constraints Constraints) (*Session, error) {
	m.mu.Lock()
	if m.status == StatusActive {
		m.mu.Unlock()
		return nil, fmt.Errorf("セッションは既に開始されています")
	}
	m.mu.Unlock()

	if m.capturer == nil {
		err := &AcquisitionError{Reason: ReasonUnsupported, Device: m.device}
		m.reportFailure(err)
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("バインド先の映像面がありません")
	}

	// デバイスの利用可能性を確認
	if err := m.capturer.Probe(ctx); err != nil {
		acqErr := asAcquisitionError(err, m.device)
		m.reportFailure(acqErr)
		return nil, acqErr
	}

	// 解像度をネゴシエーション
	granted, err := m.capturer.Negotiate(ctx, constraints)
	if err != nil {
		acqErr := asAcquisitionError(err, m.device)
		m.reportFailure(acqErr)
		return nil, acqErr
	}

	session := &Session{
		ID:         uuid.New().String(),
		Device:     m.device,
		Negotiated: granted,
		StartedAt:  time.Now(),
	}

	// ストリーミングを開始
	streamCtx, cancel := context.WithCancel(context.Background())
	frameChan := make(chan []byte, 10)
	errorChan := make(chan error, 5)
	m.capturer.StartStream(streamCtx, frameChan, errorChan)

	// 映像面にバインドする
	target.AttachStream(session.ID, granted.Width, granted.Height, DefaultPlaybackOptions())

	// メタデータの確定を待つ（この時点以降、固有サイズが信頼できる）
	select {
	case <-target.MetadataReady():
	case <-ctx.Done():
		cancel()
		target.DetachStream()
		return nil, fmt.Errorf("メタデータ確定前にキャンセルされました: %w", ctx.Err())
	}

	m.mu.Lock()
	m.session = session
	m.target = target
	m.status = StatusActive
	m.frameChan = frameChan
	m.errorChan = errorChan
	m.cancel = cancel
	m.mu.Unlock()

	// ストリームエラーを診断チャンネルへ流す
	m.wg.Add(1)
	go m.drainErrors(streamCtx, errorChan)

	m.logger.Info("カメラセッションを開始しました",
		zap.String("session_id", session.ID),
		zap.String("device", session.Device),
		zap.Int("width", granted.Width),
		zap.Int("height", granted.Height))

	return session, nil
}

// Stop はアクティブなセッションを停止する
func (m *SessionManager) Stop(_ context.Context) error {
	m.mu.Lock()

	if m.status != StatusActive {
		m.mu.Unlock()
		return nil // 既に停止している
	}

	cancel := m.cancel
	target := m.target
	m.session = nil
	m.target = nil
	m.status = StatusInactive
	m.cancel = nil
	m.frameChan = nil
	m.errorChan = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()

	if target != nil {
		target.DetachStream()
	}

	m.logger.Info("カメラセッションを停止しました")
	return nil
}

// Session は現在のセッションを返す
func (m *SessionManager) Session() (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session == nil {
		return nil, false
	}
	result := *m.session
	return &result, true
}

// Status は現在の状態を返す
func (m *SessionManager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// FrameChannel はストリームのJPEGフレームチャンネルを返す
func (m *SessionManager) FrameChannel() (<-chan []byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.frameChan == nil {
		return nil, false
	}
	return m.frameChan, true
}

// SizeToSessionResolution は依存キャンバスのサイズをセッション解像度に合わせる
// バッキングバッファは round(解像度 × 係数)、表示サイズは等倍の解像度とし、
// 処理解像度と表示解像度を分離する
func (m *SessionManager) SizeToSessionResolution(canvas Canvas, scaleFactor float64) error {
	m.mu.RLock()
	session := m.session
	m.mu.RUnlock()

	if session == nil {
		return fmt.Errorf("アクティブなセッションがありません")
	}
	if canvas == nil {
		return fmt.Errorf("キャンバスのハンドルがありません")
	}

	width := int(math.Round(float64(session.Negotiated.Width) * scaleFactor))
	height := int(math.Round(float64(session.Negotiated.Height) * scaleFactor))

	canvas.SetBufferSize(width, height)
	canvas.SetDisplaySize(float64(session.Negotiated.Width), float64(session.Negotiated.Height))
	return nil
}

// Snapshot は現在のフレームをオフスクリーンビットマップとして取り出す
// 係数が1以外の場合はセッション解像度×係数に再サンプリングする
func (m *SessionManager) Snapshot(ctx context.Context, scaleFactor float64) (image.Image, error) {
	m.mu.RLock()
	session := m.session
	m.mu.RUnlock()

	if session == nil {
		return nil, fmt.Errorf("アクティブなセッションがありません")
	}

	frame, err := m.capturer.CaptureFrame(ctx)
	if err != nil {
		return nil, fmt.Errorf("フレームの取得に失敗: %w", err)
	}

	if scaleFactor == 1 {
		return frame, nil
	}

	width := int(math.Round(float64(session.Negotiated.Width) * scaleFactor))
	height := int(math.Round(float64(session.Negotiated.Height) * scaleFactor))
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("無効なスナップショットサイズ: %dx%d", width, height)
	}

	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), frame, frame.Bounds(), xdraw.Src, nil)
	return scaled, nil
}

// drainErrors はストリームのエラーを診断ログへ流す
func (m *SessionManager) drainErrors(ctx context.Context, errorChan <-chan error) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errorChan:
			if !ok {
				return
			}
			m.logger.Warn("ストリームエラー", zap.Error(err))
		}
	}
}

// reportFailure は取得失敗を診断ログへ一度だけ通知する
func (m *SessionManager) reportFailure(err *AcquisitionError) {
	m.mu.Lock()
	m.status = StatusError
	m.mu.Unlock()

	m.logger.Error("カメラの取得に失敗しました",
		zap.String("reason", err.Reason),
		zap.String("device", err.Device),
		zap.Error(err.Err))
}

// asAcquisitionError はエラーをAcquisitionErrorに揃える
func asAcquisitionError(err error, device string) *AcquisitionError {
	if acqErr, ok := err.(*AcquisitionError); ok {
		return acqErr
	}
	return &AcquisitionError{Reason: ReasonHardware, Device: device, Err: err}
}
