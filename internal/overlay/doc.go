// Package overlay レターボックスマスクの描画を担う
//
// # 責務
// - 映像面の上に重ねる全面キャンバスの生成と破棄
// - 上下対称の不透明バーの描画
// - コンテナのリサイズ監視とバッファの追従
//
// # 仕様
// - キャンバスは初回有効化時に生成し、無効化時に完全に破棄する
//   （非表示のまま保持しない）
// - バーの太さはキャンバス高さに対する割合 [0, 50] で指定し、
//   解像度に依存しない見た目を保つ
// - 有効化・無効化を繰り返してもリサイズ購読は漏れない
// - キャンバスはポインタイベントを一切奪わない
// - 重なり順は映像面より上、すべての操作部品より下に固定する
package overlay
