package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Camera CameraConfig `mapstructure:"camera"`
	Viewer ViewerConfig `mapstructure:"viewer"`
	Mask   MaskConfig   `mapstructure:"mask"`
}

// ServerConfig はHTTPサーバーの設定
type ServerConfig struct {
	Host string `mapstructure:"host"` // リッスンするホスト
	Port int    `mapstructure:"port"` // リッスンするポート番号
	Mode string `mapstructure:"mode"` // 動作モード（debug / release）

	// タイムアウト設定
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`  // 読み込みタイムアウト
	WriteTimeout time.Duration `mapstructure:"write_timeout"` // 書き込みタイムアウト
}

// CameraConfig はカメラストリーム取得の設定
type CameraConfig struct {
	Device string `mapstructure:"device"` // デバイスパス (例: /dev/video0)

	Width       int  `mapstructure:"width"`        // 希望する幅
	Height      int  `mapstructure:"height"`       // 希望する高さ
	PreferExact bool `mapstructure:"prefer_exact"` // 解像度を厳密条件にするか

	FrameRateIdeal int `mapstructure:"framerate_ideal"` // 希望フレームレート
	FrameRateMax   int `mapstructure:"framerate_max"`   // フレームレート上限
}

// ViewerConfig はビューアのズーム設定
type ViewerConfig struct {
	ZoomMin  float64 `mapstructure:"zoom_min"`  // ズーム倍率の下限
	ZoomMax  float64 `mapstructure:"zoom_max"`  // ズーム倍率の上限
	ZoomStep float64 `mapstructure:"zoom_step"` // ズームの刻み幅
}

// MaskConfig はレターボックスマスクの設定
type MaskConfig struct {
	DefaultPercent float64 `mapstructure:"default_percent"` // バー太さの初期値（%）
}

// Load は設定を読み込む
// 設定ファイルが存在しない場合はデフォルト値と環境変数のみで構成する
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("IROMEGANE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// ファイルの欠落は許容し、それ以外の読み込み失敗は報告する
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("設定の展開に失敗: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return &cfg, nil
}

// setDefaults は既定値を設定する
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 0) // ストリーミング用にタイムアウト無効化

	v.SetDefault("camera.device", "/dev/video0")
	v.SetDefault("camera.width", 1920)
	v.SetDefault("camera.height", 1080)
	v.SetDefault("camera.prefer_exact", false)
	v.SetDefault("camera.framerate_ideal", 30)
	v.SetDefault("camera.framerate_max", 60)

	v.SetDefault("viewer.zoom_min", 1.0)
	v.SetDefault("viewer.zoom_max", 5.0)
	v.SetDefault("viewer.zoom_step", 0.1)

	v.SetDefault("mask.default_percent", 15.0)
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("無効なポート番号: %d", c.Server.Port)
	}

	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("無効なカメラ解像度: %dx%d", c.Camera.Width, c.Camera.Height)
	}

	if c.Viewer.ZoomMin < 1 {
		return fmt.Errorf("ズーム下限は1以上が必要: %g", c.Viewer.ZoomMin)
	}
	if c.Viewer.ZoomMax <= c.Viewer.ZoomMin {
		return fmt.Errorf("ズーム上限は下限より大きい値が必要: %g", c.Viewer.ZoomMax)
	}
	if c.Viewer.ZoomStep <= 0 {
		return fmt.Errorf("ズームの刻み幅は正の値が必要: %g", c.Viewer.ZoomStep)
	}

	if c.Mask.DefaultPercent < 0 || c.Mask.DefaultPercent > 50 {
		return fmt.Errorf("マスクのバー太さは0〜50%%が必要: %g", c.Mask.DefaultPercent)
	}

	return nil
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
