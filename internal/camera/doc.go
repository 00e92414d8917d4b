// Package camera カメラセッションの取得と管理を担う
//
// # 責務
// - カメラストリームの取得と解像度ネゴシエーション
// - 映像面（RenderTarget）へのストリームのバインド
// - ネゴシエーション済み解像度に依存するキャンバスのサイズ調整
// - V4L2デバイスからのリアルタイム画像取得
//
// # 使い分け
// このパッケージは以下の場合に使用する：
// - 希望解像度（exact/ideal）でカメラストリームを開始したい
// - ストリームのメタデータ確定を待ってから後続処理を行いたい
// - 取得失敗（非対応・拒否・ハードウェア障害）を区別して扱いたい
//
// # 仕様
// - セッションは起動時（または明示的な再開始時）に一度だけ作成
// - 取得失敗は AcquisitionError として一度だけ通知し、自動再試行しない
// - 取得失敗はカメラ依存機能のみを無効化し、他の機能には影響しない
// - Thread-safe な操作をサポート
//
// # 前提要件
//   - v4l-utils: デバイスの確認と制御に使用
//     Ubuntu/Debian: sudo apt install v4l-utils
//   - ffmpeg: 画像キャプチャとストリーミングに使用
//     Ubuntu/Debian: sudo apt install ffmpeg
//   - videoグループへの参加: デバイスアクセス権限
//     sudo usermod -a -G video $USER
package camera
