package camera

import (
	"context"
	"fmt"
	"image"
)

// Status はセッションの動作状態を表す
type Status string

const (
	StatusInactive Status = "inactive" // セッションは未開始
	StatusActive   Status = "active"   // セッションは動作中
	StatusError    Status = "error"    // 取得に失敗
)

// Resolution はストリームの解像度を表す
type Resolution struct {
	Width  int // 幅
	Height int // 高さ
}

// Constraints はストリーム取得時の希望条件を表す
type Constraints struct {
	Width  int // 希望する幅
	Height int // 希望する高さ

	// PreferExact がtrueの場合、解像度は厳密条件として扱われ、
	// 満たせなければ取得に失敗する。falseの場合は希望条件として扱う。
	PreferExact bool

	FrameRateIdeal int // 希望フレームレート
	FrameRateMax   int // フレームレート上限
}

// DefaultConstraints は既定の取得条件を返す
func DefaultConstraints() Constraints {
	return Constraints{
		Width:          1920,
		Height:         1080,
		PreferExact:    false,
		FrameRateIdeal: 30,
		FrameRateMax:   60,
	}
}

// 取得失敗の理由
const (
	ReasonUnsupported = "unsupported" // キャプチャ機構が存在しない
	ReasonDenied      = "denied"      // デバイスへのアクセスが拒否された
	ReasonHardware    = "hardware"    // ハードウェア障害
)

// AcquisitionError はカメラストリームの取得失敗を表す
// カメラ依存機能に対して致命的だが、他の機能を停止させてはならない
type AcquisitionError struct {
	Reason string // 失敗理由（unsupported / denied / hardware）
	Device string // 対象デバイス
	Err    error  // 元のエラー
}

// Error はエラーメッセージを返す
func (e *AcquisitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("カメラの取得に失敗 (%s, %s): %v", e.Reason, e.Device, e.Err)
	}
	return fmt.Sprintf("カメラの取得に失敗 (%s, %s)", e.Reason, e.Device)
}

// Unwrap は元のエラーを返す
func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// PlaybackOptions はストリームバインド時の再生指定
// 音声を扱わないため、自動再生ポリシーに従いミュート再生とする
type PlaybackOptions struct {
	Autoplay    bool // 自動再生
	Muted       bool // ミュート
	PlaysInline bool // インライン再生
}

// DefaultPlaybackOptions は既定の再生指定を返す
func DefaultPlaybackOptions() PlaybackOptions {
	return PlaybackOptions{Autoplay: true, Muted: true, PlaysInline: true}
}

// RenderTarget はストリームのバインド先となる映像面のハンドル
type RenderTarget interface {
	// AttachStream はストリームをバインドする
	AttachStream(streamID string, width, height int, opts PlaybackOptions)

	// DetachStream はバインドを解除する
	DetachStream()

	// IntrinsicSize は固有サイズを返す（メタデータ未確定の間は 0, 0）
	IntrinsicSize() (int, int)

	// MetadataReady はメタデータ確定を待つためのチャンネルを返す
	MetadataReady() <-chan struct{}
}

// Capturer はキャプチャバックエンドを抽象化する
type Capturer interface {
	// Probe はデバイスが利用可能かを確認する
	Probe(ctx context.Context) error

	// Negotiate は希望条件から実際の解像度を決定する
	Negotiate(ctx context.Context, constraints Constraints) (Resolution, error)

	// StartStream は連続キャプチャを開始し、JPEGフレームをチャンネルへ送る
	StartStream(ctx context.Context, frameChan chan<- []byte, errorChan chan<- error)

	// CaptureFrame は1フレームをキャプチャして画像として返す
	CaptureFrame(ctx context.Context) (image.Image, error)
}
