package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// V4L2Capturer はシェルコマンドを使ってV4L2デバイスから画像を取得する
type V4L2Capturer struct {
	devicePath string

	mu         sync.RWMutex
	negotiated Resolution
	fps        int
}

// NewV4L2Capturer は新しいV4L2Capturerを作成する
func NewV4L2Capturer(devicePath string) *V4L2Capturer {
	return &V4L2Capturer{
		devicePath: devicePath,
		negotiated: Resolution{Width: 1280, Height: 720},
		fps:        30,
	}
}

// Probe はデバイスが利用可能かを確認する
// v4l2-ctl が存在しない環境はキャプチャ機構の非対応として扱う
func (c *V4L2Capturer) Probe(ctx context.Context) error {
	if _, err := exec.LookPath("v4l2-ctl"); err != nil {
		return &AcquisitionError{Reason: ReasonUnsupported, Device: c.devicePath, Err: err}
	}

	cmd := exec.CommandContext(ctx, "v4l2-ctl", "--device", c.devicePath, "--info")
	if err := cmd.Run(); err != nil {
		return &AcquisitionError{Reason: ReasonDenied, Device: c.devicePath, Err: err}
	}

	return nil
}

// Negotiate は希望条件から実際の解像度を決定する
// 厳密条件の場合はデバイスが対応していなければ失敗し、
// 希望条件の場合は対応解像度のうち最も近いものへ切り替える
func (c *V4L2Capturer) Negotiate(ctx context.Context, constraints Constraints) (Resolution, error) {
	requested := Resolution{Width: constraints.Width, Height: constraints.Height}

	supported, err := c.supportedResolutions(ctx)
	if err != nil || len(supported) == 0 {
		if constraints.PreferExact {
			return Resolution{}, &AcquisitionError{
				Reason: ReasonHardware,
				Device: c.devicePath,
				Err:    fmt.Errorf("対応解像度を確認できません: %w", err),
			}
		}
		// 希望条件のまま続行する（デバイス側で調整される）
		c.applyNegotiated(requested, constraints)
		return requested, nil
	}

	if constraints.PreferExact {
		for _, r := range supported {
			if r == requested {
				c.applyNegotiated(requested, constraints)
				return requested, nil
			}
		}
		return Resolution{}, &AcquisitionError{
			Reason: ReasonHardware,
			Device: c.devicePath,
			Err:    fmt.Errorf("解像度 %dx%d に対応していません", requested.Width, requested.Height),
		}
	}

	granted := closestResolution(supported, requested)
	c.applyNegotiated(granted, constraints)
	return granted, nil
}

// applyNegotiated は決定した解像度とフレームレートを保存する
func (c *V4L2Capturer) applyNegotiated(r Resolution, constraints Constraints) {
	fps := constraints.FrameRateIdeal
	if constraints.FrameRateMax > 0 && fps > constraints.FrameRateMax {
		fps = constraints.FrameRateMax
	}
	if fps <= 0 {
		fps = 30
	}

	c.mu.Lock()
	c.negotiated = r
	c.fps = fps
	c.mu.Unlock()
}

// Negotiated は決定済みの解像度を返す
func (c *V4L2Capturer) Negotiated() Resolution {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.negotiated
}

// supportedResolutions はデバイスの対応解像度一覧を取得する
func (c *V4L2Capturer) supportedResolutions(ctx context.Context) ([]Resolution, error) {
	cmd := exec.CommandContext(ctx, "v4l2-ctl", "--device", c.devicePath, "--list-formats-ext")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("フォーマット一覧の取得に失敗: %w", err)
	}

	return parseResolutions(string(output)), nil
}

// parseResolutions はv4l2-ctlの出力から解像度行を抽出する
func parseResolutions(output string) []Resolution {
	seen := make(map[Resolution]bool)
	var resolutions []Resolution

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Size:") {
			continue
		}

		// 例: "Size: Discrete 1920x1080"
		fields := strings.Fields(line)
		dims := fields[len(fields)-1]
		parts := strings.Split(dims, "x")
		if len(parts) != 2 {
			continue
		}

		width, werr := strconv.Atoi(parts[0])
		height, herr := strconv.Atoi(parts[1])
		if werr != nil || herr != nil || width <= 0 || height <= 0 {
			continue
		}

		r := Resolution{Width: width, Height: height}
		if !seen[r] {
			seen[r] = true
			resolutions = append(resolutions, r)
		}
	}

	return resolutions
}

// closestResolution は希望解像度に最も近いものを選ぶ
func closestResolution(supported []Resolution, requested Resolution) Resolution {
	best := supported[0]
	bestDiff := resolutionDiff(best, requested)

	for _, r := range supported[1:] {
		if diff := resolutionDiff(r, requested); diff < bestDiff {
			best = r
			bestDiff = diff
		}
	}

	return best
}

// resolutionDiff は2つの解像度の差分を数値化する
func resolutionDiff(a, b Resolution) int {
	dw := a.Width - b.Width
	dh := a.Height - b.Height
	if dw < 0 {
		dw = -dw
	}
	if dh < 0 {
		dh = -dh
	}
	return dw + dh
}

// CaptureFrame は1フレームをキャプチャして画像として返す
func (c *V4L2Capturer) CaptureFrame(ctx context.Context) (image.Image, error) {
	data, err := c.CaptureFrameAsJPEG(ctx)
	if err != nil {
		return nil, err
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("JPEG画像のデコードに失敗: %w", err)
	}

	return img, nil
}

// CaptureFrameAsJPEG は1フレームをキャプチャしてJPEGバイト配列として返す
func (c *V4L2Capturer) CaptureFrameAsJPEG(ctx context.Context) ([]byte, error) {
	c.mu.RLock()
	width, height := c.negotiated.Width, c.negotiated.Height
	c.mu.RUnlock()

	// ffmpegを使って1フレームをJPEGとしてキャプチャ
	cmd := exec.CommandContext(ctx,
		"ffmpeg",
		"-f", "v4l2",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-i", c.devicePath,
		"-vframes", "1",
		"-f", "image2",
		"-c:v", "mjpeg",
		"-q:v", "2", // 高品質JPEG
		"-",
	)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("JPEGフレームキャプチャに失敗: %w (stderr: %s)", err, stderr.String())
	}

	return stdout.Bytes(), nil
}

// StartStream は連続キャプチャ用のストリームを開始する
func (c *V4L2Capturer) StartStream(ctx context.Context, frameChan chan<- []byte, errorChan chan<- error) {
	c.mu.RLock()
	width, height, fps := c.negotiated.Width, c.negotiated.Height, c.fps
	c.mu.RUnlock()

	// ffmpegを使って連続的にフレームをキャプチャ
	cmd := exec.CommandContext(ctx,
		"ffmpeg",
		"-f", "v4l2",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.Itoa(fps),
		"-i", c.devicePath,
		"-f", "image2pipe",
		"-c:v", "mjpeg",
		"-q:v", "3",
		"-",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		errorChan <- fmt.Errorf("stdoutパイプの作成に失敗: %w", err)
		return
	}

	if err := cmd.Start(); err != nil {
		errorChan <- fmt.Errorf("ffmpegの起動に失敗: %w", err)
		return
	}

	// JPEGフレームを読み取り
	go func() {
		defer func() {
			_ = cmd.Wait() // コンテキストキャンセル時のエラーは無視
		}()

		buffer := make([]byte, 1024*1024) // 1MBバッファ
		frameBuffer := bytes.Buffer{}

		for {
			select {
			case <-ctx.Done():
				return
			default:
				n, err := stdout.Read(buffer)
				if err != nil {
					if err.Error() != "EOF" {
						errorChan <- fmt.Errorf("フレーム読み取りエラー: %w", err)
					}
					return
				}

				frameBuffer.Write(buffer[:n])

				// JPEGマーカーを探してフレームを分割
				data := frameBuffer.Bytes()
				for {
					// JPEGの開始マーカー（FF D8）を探す
					startIdx := bytes.Index(data, []byte{0xFF, 0xD8})
					if startIdx == -1 {
						break
					}

					// JPEGの終了マーカー（FF D9）を探す
					endIdx := bytes.Index(data[startIdx+2:], []byte{0xFF, 0xD9})
					if endIdx == -1 {
						// 完全なフレームがまだない
						if startIdx > 0 {
							frameBuffer.Reset()
							frameBuffer.Write(data[startIdx:])
						}
						break
					}

					// 完全なJPEGフレームを抽出
					endIdx += startIdx + 2 + 2 // マーカーのサイズを含める
					frame := make([]byte, endIdx)
					copy(frame, data[:endIdx])

					// フレームを送信
					select {
					case frameChan <- frame:
					case <-ctx.Done():
						return
					}

					// 処理済みデータを削除
					remaining := data[endIdx:]
					frameBuffer.Reset()
					if len(remaining) > 0 {
						frameBuffer.Write(remaining)
						data = frameBuffer.Bytes()
					} else {
						break
					}
				}
			}
		}
	}()
}

// TestCapture はデバイステスト用の簡単なキャプチャ機能
func (c *V4L2Capturer) TestCapture(ctx context.Context) error {
	testCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := c.CaptureFrame(testCtx)
	return err
}
