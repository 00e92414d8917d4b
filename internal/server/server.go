package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"iromegane/internal/camera"
	"iromegane/internal/config"
	"iromegane/internal/input"
)

// StreamProvider はカメラストリームの配信元
type StreamProvider interface {
	// Status は現在のセッション状態を返す
	Status() camera.Status

	// Session は現在のセッションを返す
	Session() (*camera.Session, bool)

	// FrameChannel はJPEGフレームのチャンネルを返す
	FrameChannel() (<-chan []byte, bool)
}

// ViewerProvider はステータス応答に含めるビューア状態の参照元
type ViewerProvider interface {
	// ViewerState は現在のビューア状態の要約を返す
	ViewerState() input.ViewerState
}

// Server はHTTPサーバーを管理する構造体
type Server struct {
	config     *config.Config
	streams    StreamProvider
	viewer     ViewerProvider
	logger     *zap.Logger
	httpServer *http.Server
	mux        *http.ServeMux
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config, streams StreamProvider, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()

	return &Server{
		config:  cfg,
		streams: streams,
		logger:  logger,
		mux:     mux,
		httpServer: &http.Server{
			Addr:         cfg.ServerAddress(),
			Handler:      mux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// SetViewer はステータス応答に含めるビューア状態の参照元を設定する
func (s *Server) SetViewer(v ViewerProvider) {
	s.viewer = v
}

// setupRoutes はHTTPルートを設定する
func (s *Server) setupRoutes() {
	// 固定ページ
	s.mux.HandleFunc("/", s.handleLanding)
	s.mux.HandleFunc("/introduction", s.handleIntroduction)
	s.mux.HandleFunc("/samples", s.handleSamples)

	// 静的アセット
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(StaticFS())))

	// ヘルスチェックエンドポイント
	s.mux.HandleFunc("/health", s.handleHealth)

	// APIエンドポイント
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/stream", s.handleStream)
}

// handleLanding はランディングページのハンドラ
func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	// ServeMuxの "/" は全パスを受けるため、未知のパスは404にする
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.writePage(w, landingPage)
}

// handleIntroduction は紹介ページのハンドラ
func (s *Server) handleIntroduction(w http.ResponseWriter, _ *http.Request) {
	s.writePage(w, introductionPage)
}

// handleSamples はビューアページのハンドラ
func (s *Server) handleSamples(w http.ResponseWriter, _ *http.Request) {
	s.writePage(w, samplesPage)
}

// writePage は固定マークアップを書き出す
func (s *Server) writePage(w http.ResponseWriter, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, page)
}

// handleHealth はヘルスチェックエンドポイント
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

// handleStatus はステータス確認エンドポイント
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	status := camera.StatusInactive
	if s.streams != nil {
		status = s.streams.Status()
	}

	// ビューアが結線されている場合はその状態も含める
	viewerPart := ""
	if s.viewer != nil {
		vs := s.viewer.ViewerState()
		viewerPart = fmt.Sprintf(`
		"viewer": {
			"zoom": %g,
			"preset": "%s",
			"mask_enabled": %t,
			"mask_percent": %g
		},`, vs.Zoom, vs.Preset, vs.MaskEnabled, vs.MaskPercent)
	}

	// カメラセッション情報を含めたステータスを返す
	fmt.Fprintf(w, `{
		"status": "running",
		"server": {
			"host": "%s",
			"port": %d
		},%s
		"camera": "%s",
		"timestamp": "%s"
	}`, s.config.Server.Host, s.config.Server.Port,
		viewerPart,
		status,
		time.Now().Format(time.RFC3339))
}

// handleStream はMJPEGストリームを配信する
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.streams == nil || s.streams.Status() != camera.StatusActive {
		http.Error(w, "カメラセッションがアクティブではありません", http.StatusServiceUnavailable)
		return
	}

	frameChan, ok := s.streams.FrameChannel()
	if !ok {
		http.Error(w, "ストリームがありません", http.StatusServiceUnavailable)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "ストリーミングに対応していません", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientGone := r.Context().Done()

	for {
		select {
		case <-clientGone:
			return

		case frame, ok := <-frameChan:
			if !ok {
				return
			}

			if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\n\r\n"); err != nil {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			if _, err := fmt.Fprint(w, "\r\n"); err != nil {
				return
			}

			flusher.Flush()
		}
	}
}

// Start はサーバーを起動する
func (s *Server) Start(ctx context.Context) error {
	// ルートを設定
	s.setupRoutes()

	// シャットダウン用のチャンネル
	shutdownCh := make(chan error, 1)

	// サーバーを別ゴルーチンで起動
	go func() {
		s.logger.Info("HTTPサーバーを起動しています", zap.String("addr", s.config.ServerAddress()))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			shutdownCh <- fmt.Errorf("サーバーの起動に失敗: %w", err)
		}
	}()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// コンテキストかシグナルを待つ
	select {
	case <-ctx.Done():
		s.logger.Info("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		s.logger.Info("シグナルを受信しました", zap.String("signal", sig.String()))
	case err := <-shutdownCh:
		return err
	}

	// グレースフルシャットダウン
	return s.Shutdown()
}

// Shutdown はサーバーをグレースフルにシャットダウンする
func (s *Server) Shutdown() error {
	s.logger.Info("サーバーをシャットダウンしています...")

	// 5秒のタイムアウトを設定
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("サーバーのシャットダウンに失敗: %w", err)
	}

	s.logger.Info("サーバーが正常にシャットダウンされました")
	return nil
}
