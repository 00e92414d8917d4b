// Package server ビューアを載せるページの配信とHTTPサーバーの管理を担う
//
// # 責務
// - 3つの固定ページ（ランディング・紹介・ビューア）の配信
// - 静的アセットの配信
// - カメラストリームのMJPEG配信
// - グレースフルシャットダウン
//
// # 仕様
// - 標準ライブラリのnet/httpによるサーバーとGinによるサーバーの両方を提供
// - ビューアページには色覚プリセット用のSVGフィルタ定義を含む
// - フレームアップロードAPIは将来拡張として経路のみ公開し501を返す
// - カメラ取得の失敗はページ配信に影響しない
package server
