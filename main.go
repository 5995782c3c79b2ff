package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"browserlink/internal/app"
	"browserlink/internal/config"
)

func main() {
	log.SetOutput(os.Stdout)
	gin.SetMode(gin.ReleaseMode)

	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// シグナルでキャンセルされるコンテキストを作成
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 起動し、キー入力まで待機する
	if err := app.New(cfg).Run(ctx, os.Stdin); err != nil {
		log.Fatalf("実行に失敗しました: %v", err)
	}
}
