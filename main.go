package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"iromegane/internal/camera"
	"iromegane/internal/config"
	"iromegane/internal/input"
	"iromegane/internal/logging"
	"iromegane/internal/server"
	"iromegane/internal/viewer"
)

func main() {
	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// ロガーを初期化
	logger, err := logging.New(cfg.Server.Mode)
	if err != nil {
		log.Fatalf("ロガーの初期化に失敗しました: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// カメラセッションを開始する
	// 取得失敗はカメラ依存機能のみを無効化し、サーバーは通常通り起動する
	capturer := camera.NewV4L2Capturer(cfg.Camera.Device)
	sessions := camera.NewSessionManager(capturer, cfg.Camera.Device, logger)

	target := viewer.NewElement(viewer.Size{
		Width:  float64(cfg.Camera.Width),
		Height: float64(cfg.Camera.Height),
	})

	ctx := context.Background()
	constraints := camera.Constraints{
		Width:          cfg.Camera.Width,
		Height:         cfg.Camera.Height,
		PreferExact:    cfg.Camera.PreferExact,
		FrameRateIdeal: cfg.Camera.FrameRateIdeal,
		FrameRateMax:   cfg.Camera.FrameRateMax,
	}
	if _, err := sessions.Start(ctx, target, constraints); err != nil {
		logger.Warn("カメラなしで起動します", zap.Error(err))
	}

	// ビューアの協調要素を組み立てる
	// カメラの取得に失敗していてもズーム・フィルタ・マスクは操作可能なまま
	dispatcher, err := input.NewDefaultDispatcher(target, cfg, nil)
	if err != nil {
		logger.Fatal("ビューアの初期化に失敗しました", zap.Error(err))
	}
	logger.Info("ビューアを初期化しました",
		zap.Float64("zoom", dispatcher.ViewerState().Zoom),
		zap.Float64("mask_percent", dispatcher.ViewerState().MaskPercent))

	// サーバーを作成して起動
	srv := server.New(cfg, sessions, logger)
	srv.SetViewer(dispatcher)
	if err := srv.Start(ctx); err != nil {
		logger.Fatal("サーバーの起動に失敗しました", zap.Error(err))
	}
}
