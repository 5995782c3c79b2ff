package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"browserlink/internal/config"
)

// defaultShutdownTimeout は設定が0のときに使うシャットダウンの待ち時間
const defaultShutdownTimeout = 5 * time.Second

// Server はHTTPサーバーを管理する構造体
type Server struct {
	config     config.HTTPConfig
	engine     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
}

// New は新しいServerインスタンスを作成する
func New(cfg config.HTTPConfig) *Server {
	engine := gin.New()

	// 固定パス以外は全て400にするため、リダイレクトや405は使わない
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false
	engine.HandleMethodNotAllowed = false

	s := &Server{
		config: cfg,
		engine: engine,
		httpServer: &http.Server{
			Handler: engine,
		},
	}
	s.setupRoutes()

	return s
}

// setupRoutes はHTTPルートを設定する
func (s *Server) setupRoutes() {
	s.engine.Use(gin.CustomRecovery(s.handlePanic), serialize())

	s.engine.GET(s.config.Path, s.handlePage)
	s.engine.NoRoute(s.handleBadRequest)
}

// Handler はルーティング済みのハンドラを返す
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Listen はリスナーを確保する
// ポートが使用中などで確保できない場合はエラーを返す
func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("HTTPサーバーの起動に失敗: %w", err)
	}
	s.listener = ln

	log.Printf("HTTPサーバーを起動しました: http://%s", ln.Addr())
	return nil
}

// Addr は確保したリスナーのアドレスを返す
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Listener は確保したリスナーを返す
func (s *Server) Listener() net.Listener {
	return s.listener
}

// Serve はコンテキストがキャンセルされるまでリクエストを処理する
// キャンセル後はグレースフルシャットダウンしてnilを返す
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	serveCh := make(chan error, 1)
	go func() {
		serveCh <- s.httpServer.Serve(s.listener)
	}()

	select {
	case err := <-serveCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTPサーバーが異常終了: %w", err)
	case <-ctx.Done():
	}

	return s.Shutdown()
}

// Shutdown はサーバーをグレースフルにシャットダウンする
func (s *Server) Shutdown() error {
	log.Println("HTTPサーバーをシャットダウンしています...")

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTPサーバーのシャットダウンに失敗: %w", err)
	}

	log.Println("HTTPサーバーが正常にシャットダウンされました")
	return nil
}
