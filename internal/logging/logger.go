// Package logging 診断ログの初期化を担う
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New はモードに応じたロガーを作成する
// release では本番向けのJSON出力、それ以外では開発向けの色付き出力になる
func New(mode string) (*zap.Logger, error) {
	var config zap.Config

	if mode == "release" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return config.Build()
}
