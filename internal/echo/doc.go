// Package echo は、WebSocketのエコーサービスを提供します。
//
// 責務:
//   - 固定パスでのWebSocket接続の受け付け
//   - 受信したテキストメッセージへの応答（"Message received: " を付与）
//   - 接続の開始・受信・終了・エラーのログ出力
//   - 停止時の全接続のクローズ
//
// 仕様:
//   - WebSocketはgorilla/websocketを使用
//   - 応答は送信元の接続にのみ返す（ブロードキャストしない）
//   - 1つの接続のエラーは他の接続やサービス全体に影響しない
//   - バイナリメッセージはログに記録して無視する
package echo
