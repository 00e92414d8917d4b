package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"iromegane/internal/camera"
	"iromegane/internal/config"
	"iromegane/internal/input"
)

// HealthResponse はヘルスチェックの応答
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ServerInfo はサーバー情報
type ServerInfo struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// StatusResponse はシステム状態の応答
type StatusResponse struct {
	Status    string             `json:"status"`
	Server    ServerInfo         `json:"server"`
	Camera    camera.Status      `json:"camera"`
	Viewer    *input.ViewerState `json:"viewer,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// ErrorResponse はエラー応答
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Details   *string   `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// GinServer はGinによるHTTPサーバー
type GinServer struct {
	config     *config.Config
	streams    StreamProvider
	viewer     ViewerProvider
	logger     *zap.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

// NewGin は新しいGinServerを作成する
func NewGin(cfg *config.Config, streams StreamProvider, logger *zap.Logger) *GinServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	s := &GinServer{
		config:  cfg,
		streams: streams,
		logger:  logger,
		engine:  engine,
		httpServer: &http.Server{
			Addr:         cfg.ServerAddress(),
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	s.setupRoutes()
	return s
}

// SetViewer はステータス応答に含めるビューア状態の参照元を設定する
func (s *GinServer) SetViewer(v ViewerProvider) {
	s.viewer = v
}

// requestLogger はZapによるリクエストログのミドルウェア
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("cost", time.Since(start)),
		)
	}
}

// setupRoutes はHTTPルートを設定する
func (s *GinServer) setupRoutes() {
	// 固定ページ
	s.engine.GET("/", s.pageHandler(landingPage))
	s.engine.GET("/introduction", s.pageHandler(introductionPage))
	s.engine.GET("/samples", s.pageHandler(samplesPage))

	// 静的アセット
	s.engine.StaticFS("/static", StaticFS())

	// ヘルスチェックエンドポイント
	s.engine.GET("/health", s.handleHealth)

	// APIエンドポイント
	api := s.engine.Group("/api")
	api.GET("/status", s.handleStatus)
	api.GET("/stream", s.handleStream)
	api.POST("/frames", s.handleFrameUpload)
}

// pageHandler は固定マークアップを返すハンドラを作る
func (s *GinServer) pageHandler(page string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	}
}

// handleHealth はヘルスチェックエンドポイントの実装
func (s *GinServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// handleStatus はシステム状態取得エンドポイントの実装
func (s *GinServer) handleStatus(c *gin.Context) {
	status := camera.StatusInactive
	if s.streams != nil {
		status = s.streams.Status()
	}

	var viewerState *input.ViewerState
	if s.viewer != nil {
		vs := s.viewer.ViewerState()
		viewerState = &vs
	}

	c.JSON(http.StatusOK, StatusResponse{
		Status: "running",
		Server: ServerInfo{
			Host: s.config.Server.Host,
			Port: s.config.Server.Port,
		},
		Camera:    status,
		Viewer:    viewerState,
		Timestamp: time.Now(),
	})
}

// handleStream はMJPEGストリーミングエンドポイントの実装
func (s *GinServer) handleStream(c *gin.Context) {
	if s.streams == nil || s.streams.Status() != camera.StatusActive {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:     "camera_not_active",
			Message:   "カメラセッションがアクティブではありません",
			Timestamp: time.Now(),
		})
		return
	}

	frameChan, ok := s.streams.FrameChannel()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:     "stream_not_found",
			Message:   "ストリームがありません",
			Timestamp: time.Now(),
		})
		return
	}

	// レスポンスヘッダーを設定
	c.Header("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")

	writer := c.Writer
	flusher, ok := writer.(http.Flusher)
	if !ok {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	// クライアント切断を検知するためのコンテキスト
	clientGone := c.Request.Context().Done()

	// ストリーミングループ
	for {
		select {
		case <-clientGone:
			return

		case frame, ok := <-frameChan:
			if !ok {
				return
			}

			if _, err := fmt.Fprintf(writer, "--frame\r\nContent-Type: image/jpeg\r\n\r\n"); err != nil {
				return
			}
			if _, err := writer.Write(frame); err != nil {
				return
			}
			if _, err := fmt.Fprint(writer, "\r\n"); err != nil {
				return
			}

			flusher.Flush()
		}
	}
}

// handleFrameUpload はフレームアップロードエンドポイントの実装（未実装）
// multipart form の "frame" フィールドで1枚の画像を受け取る将来拡張の経路
func (s *GinServer) handleFrameUpload(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, ErrorResponse{
		Error:     "not_implemented",
		Message:   "フレームアップロード機能は未実装です",
		Details:   stringPtr("将来的に実装予定です"),
		Timestamp: time.Now(),
	})
}

// stringPtr は文字列のポインタを返すヘルパー関数
func stringPtr(s string) *string {
	return &s
}

// Start はサーバーを起動する
func (s *GinServer) Start(ctx context.Context) error {
	shutdownCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTPサーバーを起動しています", zap.String("addr", s.config.ServerAddress()))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			shutdownCh <- fmt.Errorf("サーバーの起動に失敗: %w", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		s.logger.Info("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		s.logger.Info("シグナルを受信しました", zap.String("signal", sig.String()))
	case err := <-shutdownCh:
		return err
	}

	return s.Shutdown()
}

// Shutdown はサーバーをグレースフルにシャットダウンする
func (s *GinServer) Shutdown() error {
	s.logger.Info("サーバーをシャットダウンしています...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("サーバーのシャットダウンに失敗: %w", err)
	}

	s.logger.Info("サーバーが正常にシャットダウンされました")
	return nil
}
