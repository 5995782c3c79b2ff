// Package app はWebSocketエコーサービスとHTTPサーバーの起動から停止までを制御する
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"browserlink/internal/config"
	"browserlink/internal/echo"
	"browserlink/internal/launcher"
	"browserlink/internal/server"
)

// defaultShutdownTimeout は停止処理全体の待ち時間の既定値
const defaultShutdownTimeout = 5 * time.Second

// ErrNotStarted はStartが成功する前にWaitを呼んだ場合のエラー
var ErrNotStarted = errors.New("アプリケーションが起動していません")

// Opener はURLをブラウザで開く
type Opener interface {
	Open(url string) error
}

// Option はAppの生成時オプション
type Option func(*App)

// WithOpener はブラウザの起動方法を差し替える
func WithOpener(o Opener) Option {
	return func(a *App) {
		a.opener = o
	}
}

// App は2つのサーバーとブラウザ起動をまとめて管理する
type App struct {
	config *config.Config
	echo   *echo.Service
	http   *server.Server
	opener Opener

	// HTTPサーバーの監視用
	group    *errgroup.Group
	groupCtx context.Context
	cancel   context.CancelFunc
	// Waitで返したHTTPサーバーのエラーはShutdownで再度返さない
	reported bool
}

// New は新しいAppを作成する
func New(cfg *config.Config, opts ...Option) *App {
	a := &App{
		config: cfg,
		echo:   echo.New(cfg.WebSocket),
		http:   server.New(cfg.HTTP),
		opener: launcher.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start はWebSocketサービス、HTTPサーバーの順に起動し、ブラウザを開く
// どちらかのポートが確保できない場合はエラーを返す
func (a *App) Start(ctx context.Context) error {
	if err := a.echo.Start(ctx); err != nil {
		return err
	}

	if err := a.http.Listen(); err != nil {
		_ = a.echo.Stop(ctx)
		return err
	}

	// HTTPサーバーを止めるのはShutdownだけにする
	serveCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancel = cancel
	a.group, a.groupCtx = errgroup.WithContext(serveCtx)
	a.group.Go(func() error {
		return a.http.Serve(a.groupCtx)
	})

	if a.config.Browser.Open {
		// 失敗はLauncher側でログに出力済み
		_ = a.opener.Open(a.config.PageURL())
	}

	return nil
}

// EchoAddr はWebSocketサービスのアドレスを返す
func (a *App) EchoAddr() net.Addr {
	return a.echo.Addr()
}

// HTTPAddr はHTTPサーバーのアドレスを返す
func (a *App) HTTPAddr() net.Addr {
	return a.http.Addr()
}

// Wait はキー入力、コンテキストのキャンセル、サーバーの異常終了のいずれかまで待機する
// 入力がEOFになった場合はキー入力待ちをやめ、それ以外の条件を待つ
func (a *App) Wait(ctx context.Context, keys io.Reader) error {
	if a.group == nil {
		return ErrNotStarted
	}

	restore := prepareKeys(keys)
	defer restore()

	keyCh := make(chan error, 1)
	go func() {
		keyCh <- waitForKey(keys)
	}()

	log.Println("何かキーを押すと停止します...")

	for {
		select {
		case err := <-keyCh:
			if err == nil {
				log.Println("キー入力を受け付けました")
				return nil
			}
			log.Printf("キー入力を待機できません: %v", err)
			keyCh = nil
		case <-ctx.Done():
			log.Println("コンテキストがキャンセルされました")
			return nil
		case <-a.groupCtx.Done():
			a.reported = true
			return a.group.Wait()
		case err := <-a.echo.Err():
			return err
		}
	}
}

// Shutdown はWebSocketサービス、HTTPサーバーの順に停止する
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	if err := a.echo.Stop(ctx); err != nil {
		errs = append(errs, err)
	}

	if a.cancel != nil {
		a.cancel()
		if err := a.group.Wait(); err != nil && !a.reported {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Run は起動、待機、停止を順に行う
func (a *App) Run(ctx context.Context, keys io.Reader) error {
	if err := a.Start(ctx); err != nil {
		return fmt.Errorf("起動に失敗: %w", err)
	}

	waitErr := a.Wait(ctx, keys)

	timeout := a.config.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return errors.Join(waitErr, a.Shutdown(shutdownCtx))
}
