// Package input 入力イベントと各エンジンの結線を担う
//
// # 責務
// - ポインタ・スライダー・ボタン操作の離散イベント化
// - イベントから各エンジンの状態変更操作への振り分け
// - ページ上の協調要素の存在確認と型付きバンドルの構築
//
// # 仕様
// - 状態変更は単一イベントの処理内で同期的に完結する
// - ディスパッチャが持つ独自状態はドラッグ追跡のみ
// - 必須要素（映像面・コンテナ・ズームスライダー）の欠落は
//   MissingElementError として初期化時に検出する
// - 任意要素（マスクの操作部品）は欠落時にその場で構築する
package input
