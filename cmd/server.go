// Package main はIromeganeサーバーコマンドの実装です
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"iromegane/internal/camera"
	"iromegane/internal/config"
	"iromegane/internal/input"
	"iromegane/internal/logging"
	"iromegane/internal/server"
	"iromegane/internal/viewer"
)

func main() {
	// コマンドラインオプション
	var (
		host   = flag.String("host", "", "サーバーのホスト (デフォルト: 0.0.0.0)")
		port   = flag.Int("port", 0, "サーバーのポート (デフォルト: 8080)")
		device = flag.String("device", "", "カメラデバイス (デフォルト: /dev/video0)")
		help   = flag.Bool("help", false, "ヘルプを表示")
	)

	flag.Parse()

	// ヘルプ表示
	if *help {
		fmt.Println("Iromegane")
		fmt.Println()
		fmt.Println("使用方法:")
		fmt.Println("  server [オプション]")
		fmt.Println()
		fmt.Println("オプション:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// コマンドラインオプションで設定を上書き
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *device != "" {
		cfg.Camera.Device = *device
	}

	// ロガーを初期化
	logger, err := logging.New(cfg.Server.Mode)
	if err != nil {
		log.Fatalf("ロガーの初期化に失敗しました: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// カメラセッションを開始する（失敗してもサーバーは起動する）
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

	// ビューアの協調要素を組み立てる（カメラなしでも操作可能なまま）
	dispatcher, err := input.NewDefaultDispatcher(target, cfg, nil)
	if err != nil {
		logger.Fatal("ビューアの初期化に失敗しました", zap.Error(err))
	}

	// Ginサーバーを作成して起動
	srv := server.NewGin(cfg, sessions, logger)
	srv.SetViewer(dispatcher)
	logger.Info("Iromegane サーバーを起動します", zap.String("addr", cfg.ServerAddress()))
	if err := srv.Start(ctx); err != nil {
		logger.Fatal("サーバーの起動に失敗しました", zap.Error(err))
	}
}
