// Package main はbrowserlinkサーバーコマンドの実装です
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"browserlink/internal/app"
	"browserlink/internal/config"
)

// options はコマンドラインオプション
type options struct {
	wsPort     int
	httpPort   int
	file       string
	noBrowser  bool
	showConfig bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCommand はルートコマンドを作成する
func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "WebSocketエコーサーバーとHTMLページを配信するHTTPサーバーを起動します",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.wsPort, "ws-port", 0, "WebSocketサーバーのポート (デフォルト: 9222)")
	flags.IntVar(&opts.httpPort, "http-port", 0, "HTTPサーバーのポート (デフォルト: 8081)")
	flags.StringVar(&opts.file, "file", "", "配信するHTMLファイル (デフォルト: browser.html)")
	flags.BoolVar(&opts.noBrowser, "no-browser", false, "ブラウザを起動しない")
	flags.BoolVar(&opts.showConfig, "show-config", false, "有効な設定をYAMLで表示して終了")

	return cmd
}

// loadConfig は設定を読み込み、コマンドラインオプションで上書きする
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	if opts.wsPort != 0 {
		cfg.WebSocket.Port = opts.wsPort
	}
	if opts.httpPort != 0 {
		cfg.HTTP.Port = opts.httpPort
	}
	if opts.file != "" {
		cfg.HTTP.File = opts.file
	}
	if opts.noBrowser {
		cfg.Browser.Open = false
	}

	// 上書き後の設定を再検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

func run(cmd *cobra.Command, opts *options) error {
	log.SetOutput(cmd.OutOrStdout())

	cfg, err := loadConfig(opts)
	if err != nil {
		log.Printf("%v", err)
		return err
	}

	if opts.showConfig {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		defer enc.Close()
		return enc.Encode(cfg)
	}

	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("browserlink を起動します: %s / %s", cfg.WebSocketURL(), cfg.PageURL())
	if err := app.New(cfg).Run(ctx, os.Stdin); err != nil {
		log.Printf("実行に失敗しました: %v", err)
		return err
	}
	return nil
}
