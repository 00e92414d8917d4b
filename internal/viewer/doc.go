// Package viewer カメラビューアの視覚状態を管理する
//
// # 責務
// - ズーム倍率とパン位置の管理（Transform Engine）
// - 色覚フィルタの合成と適用（Filter Compositor）
// - 映像面・コンテナ・ウィジェットの型付きハンドルの提供
//
// # 使い分け
// このパッケージは以下の場合に使用する：
// - 映像面のズーム・パン状態を操作したい
// - プリセットフィルタとカスタム調整を合成したい
// - スライダーやボタンなどのUI部品の状態を保持したい
//
// # 仕様
// - ViewState: scale >= 1、パンはコンテナ内に収まるよう常にクランプ
// - FilterState: プリセットとカスタム調整は独立した軸として常に合成
// - 変形とフィルタは別々のプロパティとして映像面に適用され、
//   互いのプロパティを上書きしない
// - 単一イベント内で同期的に状態を変更する（並行変更は想定しない）
package viewer
