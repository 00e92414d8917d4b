package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"iromegane/internal/camera"
	"iromegane/internal/config"
	"iromegane/internal/input"
)

// fakeStreamProvider はテスト用の配信元
type fakeStreamProvider struct {
	status    camera.Status
	session   *camera.Session
	frameChan chan []byte
}

func (f *fakeStreamProvider) Status() camera.Status { return f.status }

func (f *fakeStreamProvider) Session() (*camera.Session, bool) {
	return f.session, f.session != nil
}

func (f *fakeStreamProvider) FrameChannel() (<-chan []byte, bool) {
	if f.frameChan == nil {
		return nil, false
	}
	return f.frameChan, true
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080, Mode: "debug"},
		Camera: config.CameraConfig{Device: "/dev/video0", Width: 1920, Height: 1080},
		Viewer: config.ViewerConfig{ZoomMin: 1, ZoomMax: 5, ZoomStep: 0.1},
		Mask:   config.MaskConfig{DefaultPercent: 15},
	}
}

// TestServerEndpoints は各エンドポイントの応答をテストする
func TestServerEndpoints(t *testing.T) {
	s := New(testConfig(), &fakeStreamProvider{status: camera.StatusInactive}, nil)
	s.setupRoutes()

	testCases := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"ランディングページ", "/", http.StatusOK},
		{"紹介ページ", "/introduction", http.StatusOK},
		{"ビューアページ", "/samples", http.StatusOK},
		{"ヘルスチェック", "/health", http.StatusOK},
		{"ステータスAPI", "/api/status", http.StatusOK},
		{"不明なパスは404", "/unknown", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			w := httptest.NewRecorder()

			s.mux.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Errorf("ステータスコードが不正です: %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

// TestServerSamplesPageContent はビューアページの協調要素をテストする
func TestServerSamplesPageContent(t *testing.T) {
	s := New(testConfig(), nil, nil)
	s.setupRoutes()

	req := httptest.NewRequest(http.MethodGet, "/samples", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	body := w.Body.String()

	// ビューアが探索する要素がページ上に存在すること
	required := []string{
		`id="camera"`,
		`id="camera-container"`,
		`id="zoom"`,
		`id="reset-zoom"`,
		`id="mask-toggle"`,
		`id="mask-size"`,
		`id="protanopia"`,
		`id="deuteranopia"`,
		`id="tritanopia"`,
	}
	for _, fragment := range required {
		if !strings.Contains(body, fragment) {
			t.Errorf("ページに %s が含まれていません", fragment)
		}
	}
}

// TestServerStreamInactive はカメラ非アクティブ時のストリーム応答をテストする
func TestServerStreamInactive(t *testing.T) {
	s := New(testConfig(), &fakeStreamProvider{status: camera.StatusInactive}, nil)
	s.setupRoutes()

	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("ステータスコードが不正です: %d", w.Code)
	}
}

// TestServerStreamDelivery はMJPEGストリームの配信をテストする
func TestServerStreamDelivery(t *testing.T) {
	frameChan := make(chan []byte, 2)
	frameChan <- []byte{0xFF, 0xD8, 0x01, 0xFF, 0xD9}
	frameChan <- []byte{0xFF, 0xD8, 0x02, 0xFF, 0xD9}
	close(frameChan)

	provider := &fakeStreamProvider{status: camera.StatusActive, frameChan: frameChan}
	s := New(testConfig(), provider, nil)
	s.setupRoutes()

	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if got := w.Header().Get("Content-Type"); got != "multipart/x-mixed-replace; boundary=frame" {
		t.Errorf("Content-Typeが不正です: %s", got)
	}

	body := w.Body.Bytes()
	if got := bytes.Count(body, []byte("--frame")); got != 2 {
		t.Errorf("フレーム境界の数が不正です: %d", got)
	}
	if !bytes.Contains(body, []byte{0xFF, 0xD8, 0x01, 0xFF, 0xD9}) {
		t.Error("1枚目のフレームが含まれていません")
	}
}

// fakeViewerProvider はテスト用のビューア状態参照元
type fakeViewerProvider struct {
	state input.ViewerState
}

func (f *fakeViewerProvider) ViewerState() input.ViewerState { return f.state }

// TestServerStatusIncludesViewer はビューア結線時のステータス応答をテストする
func TestServerStatusIncludesViewer(t *testing.T) {
	s := New(testConfig(), &fakeStreamProvider{status: camera.StatusInactive}, nil)
	s.SetViewer(&fakeViewerProvider{state: input.ViewerState{
		Zoom:        2.5,
		Preset:      "grayscale",
		MaskEnabled: true,
		MaskPercent: 20,
	}})
	s.setupRoutes()

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("応答のデコードに失敗しました: %v", err)
	}

	viewerState, ok := resp["viewer"].(map[string]any)
	if !ok {
		t.Fatalf("応答にビューア状態が含まれていません: %s", w.Body.String())
	}
	if viewerState["zoom"] != 2.5 {
		t.Errorf("倍率が不正です: %v", viewerState["zoom"])
	}
	if viewerState["preset"] != "grayscale" {
		t.Errorf("プリセットが不正です: %v", viewerState["preset"])
	}
	if viewerState["mask_enabled"] != true || viewerState["mask_percent"] != 20.0 {
		t.Errorf("マスク状態が不正です: %v", viewerState)
	}

	// ビューア未結線の場合はフィールドごと省略される
	s2 := New(testConfig(), nil, nil)
	s2.setupRoutes()
	w2 := httptest.NewRecorder()
	s2.mux.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	var resp2 map[string]any
	if err := json.Unmarshal(w2.Body.Bytes(), &resp2); err != nil {
		t.Fatalf("応答のデコードに失敗しました: %v", err)
	}
	if _, present := resp2["viewer"]; present {
		t.Error("ビューア未結線なのに状態が含まれています")
	}
}

// TestGinServerEndpoints はGin版サーバーの各エンドポイントをテストする
func TestGinServerEndpoints(t *testing.T) {
	s := NewGin(testConfig(), &fakeStreamProvider{status: camera.StatusInactive}, nil)

	testCases := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"ランディングページ", http.MethodGet, "/", http.StatusOK},
		{"紹介ページ", http.MethodGet, "/introduction", http.StatusOK},
		{"ビューアページ", http.MethodGet, "/samples", http.StatusOK},
		{"ヘルスチェック", http.MethodGet, "/health", http.StatusOK},
		{"ステータスAPI", http.MethodGet, "/api/status", http.StatusOK},
		{"非アクティブなストリーム", http.MethodGet, "/api/stream", http.StatusServiceUnavailable},
		{"フレームアップロードは未実装", http.MethodPost, "/api/frames", http.StatusNotImplemented},
		{"不明なパスは404", http.MethodGet, "/unknown", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			s.engine.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Errorf("ステータスコードが不正です: %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

// TestGinServerStatusResponse はステータスAPIの応答内容をテストする
func TestGinServerStatusResponse(t *testing.T) {
	s := NewGin(testConfig(), &fakeStreamProvider{status: camera.StatusActive}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var resp StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("応答のデコードに失敗しました: %v", err)
	}

	if resp.Status != "running" {
		t.Errorf("ステータスが不正です: %s", resp.Status)
	}
	if resp.Camera != camera.StatusActive {
		t.Errorf("カメラ状態が不正です: %s", resp.Camera)
	}
	if resp.Server.Host != "127.0.0.1" || resp.Server.Port != 8080 {
		t.Errorf("サーバー情報が不正です: %+v", resp.Server)
	}
	if resp.Viewer != nil {
		t.Error("ビューア未結線なのに状態が含まれています")
	}
}

// TestGinServerStatusIncludesViewer はGin版のビューア状態の応答をテストする
func TestGinServerStatusIncludesViewer(t *testing.T) {
	s := NewGin(testConfig(), nil, nil)
	s.SetViewer(&fakeViewerProvider{state: input.ViewerState{
		Zoom:        3,
		Preset:      "inverted",
		Filter:      "invert(100%) hue-rotate(0deg) brightness(100%) contrast(100%) saturate(100%)",
		MaskEnabled: false,
		MaskPercent: 15,
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var resp StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("応答のデコードに失敗しました: %v", err)
	}

	if resp.Viewer == nil {
		t.Fatal("応答にビューア状態が含まれていません")
	}
	if resp.Viewer.Zoom != 3 || resp.Viewer.Preset != "inverted" {
		t.Errorf("ビューア状態が不正です: %+v", resp.Viewer)
	}
	if resp.Viewer.MaskPercent != 15 {
		t.Errorf("マスク太さが不正です: %g", resp.Viewer.MaskPercent)
	}
}

// TestGinServerFrameUploadResponse は未実装エンドポイントの応答内容をテストする
func TestGinServerFrameUploadResponse(t *testing.T) {
	s := NewGin(testConfig(), nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/frames", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("応答のデコードに失敗しました: %v", err)
	}

	if resp.Error != "not_implemented" {
		t.Errorf("エラーコードが不正です: %s", resp.Error)
	}
}
