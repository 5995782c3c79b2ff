// Package server は、単一のHTMLページを配信するHTTPサーバーを管理します。
//
// このパッケージは、HTTPサーバーの起動、ルーティング、
// ローカルファイルの配信、グレースフルシャットダウンを担当します。
//
// 責務:
//   - HTTPサーバーの起動と管理
//   - 固定パスへのGETに対するローカルファイルの配信
//   - それ以外のリクエストへの400応答
//   - リクエスト処理中のエラーのログ出力
//
// 仕様:
//   - ルーティングはginを使用
//   - ファイルはリクエストごとにディスクから読み直す（キャッシュしない）
//   - リクエストは1件ずつ直列に処理する
//   - コンテキストのキャンセルでグレースフルシャットダウンする
package server
