package echo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"browserlink/internal/config"
)

// ReplyPrefix は応答メッセージの先頭に付ける固定文字列
const ReplyPrefix = "Message received: "

// closeWriteWait は停止時にクローズフレームを送る際の書き込み期限
const closeWriteWait = time.Second

// Reply は受信メッセージに対する応答を返す
func Reply(message string) string {
	return ReplyPrefix + message
}

// Service はWebSocketエコーサービスを管理する構造体
type Service struct {
	config     config.WebSocketConfig
	upgrader   websocket.Upgrader
	httpServer *http.Server
	listener   net.Listener

	// 接続管理
	mu       sync.Mutex
	conns    map[string]*websocket.Conn
	stopping bool
	wg       sync.WaitGroup

	errCh chan error
}

// New は新しいServiceインスタンスを作成する
func New(cfg config.WebSocketConfig) *Service {
	s := &Service{
		config: cfg,
		upgrader: websocket.Upgrader{
			// ページは別ポートから配信されるためオリジンは確認しない
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[string]*websocket.Conn),
		errCh: make(chan error, 1),
	}

	// パスはパターンとして解釈せず、完全一致で比較する
	s.httpServer = &http.Server{Handler: http.HandlerFunc(s.route)}

	return s
}

// Start はリスナーを確保し、バックグラウンドで接続の受け付けを開始する
// ポートの確保に失敗した場合はエラーを返す
func (s *Service) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("WebSocketサーバーの起動に失敗: %w", err)
	}
	s.listener = ln

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errCh <- fmt.Errorf("WebSocketサーバーが異常終了: %w", err)
		}
	}()

	log.Printf("WebSocketサーバーを起動しました: ws://%s%s", ln.Addr(), s.config.Path)
	return nil
}

// Addr は確保したリスナーのアドレスを返す
func (s *Service) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Listener は確保したリスナーを返す
func (s *Service) Listener() net.Listener {
	return s.listener
}

// Err は起動後にサーバーが異常終了した場合のエラーを通知する
func (s *Service) Err() <-chan error {
	return s.errCh
}

// ConnectionCount は現在開いている接続数を返す
func (s *Service) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Stop はサービスを停止し、開いている全ての接続を閉じる
func (s *Service) Stop(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}

	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return nil
	}
	s.stopping = true
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for _, conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	log.Println("WebSocketサーバーを停止しています...")

	// 新規接続の受け付けを止める
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("WebSocketサーバーのシャットダウンに失敗: %w", err)
	}

	// 開いている接続にクローズフレームを送ってから閉じる
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping")
	for _, conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteWait))
		_ = conn.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("接続の終了待ちがタイムアウト: %w", ctx.Err())
	}

	log.Println("WebSocketサーバーが正常に停止しました")
	return nil
}

// route は設定されたパス以外へのリクエストに404を返す
func (s *Service) route(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != s.config.Path {
		http.NotFound(w, r)
		return
	}
	s.handleWebSocket(w, r)
}

// handleWebSocket はWebSocketのアップグレードを行い、接続を処理する
func (s *Service) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocketのアップグレードに失敗: %v", err)
		return
	}

	id := uuid.New().String()
	if !s.track(id, conn) {
		_ = conn.Close()
		return
	}
	defer s.untrack(id)

	log.Printf("WebSocket接続を開始しました: id=%s remote=%s", id, conn.RemoteAddr())
	s.serveConn(id, conn)
}

// track は接続を管理対象に追加する。停止中の場合はfalseを返す
func (s *Service) track(id string, conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopping {
		return false
	}
	s.conns[id] = conn
	s.wg.Add(1)
	return true
}

// untrack は接続を閉じて管理対象から外す
func (s *Service) untrack(id string) {
	s.mu.Lock()
	conn := s.conns[id]
	delete(s.conns, id)
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	s.wg.Done()
}

func (s *Service) isStopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopping
}

// serveConn は接続が閉じるまでメッセージを読み、応答を返す
func (s *Service) serveConn(id string, conn *websocket.Conn) {
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			s.logClosed(id, err)
			return
		}

		switch messageType {
		case websocket.TextMessage:
			message := string(data)
			log.Printf("ブラウザからメッセージを受信しました: id=%s message=%s", id, message)

			if err := conn.WriteMessage(websocket.TextMessage, []byte(Reply(message))); err != nil {
				log.Printf("WebSocket接続でエラーが発生しました: id=%s error=%v", id, err)
				log.Printf("WebSocket接続が終了しました: id=%s", id)
				return
			}
		default:
			log.Printf("テキスト以外のメッセージを無視しました: id=%s type=%d size=%d", id, messageType, len(data))
		}
	}
}

// logClosed は読み込みエラーの内容に応じて終了理由をログに出力する
func (s *Service) logClosed(id string, err error) {
	var closeErr *websocket.CloseError
	switch {
	case errors.As(err, &closeErr) && closeErr.Code != websocket.CloseAbnormalClosure:
		log.Printf("WebSocket接続が終了しました: id=%s code=%d reason=%q", id, closeErr.Code, closeErr.Text)
	case s.isStopping():
		log.Printf("WebSocket接続が終了しました: id=%s reason=%q", id, "server stopping")
	default:
		log.Printf("WebSocket接続でエラーが発生しました: id=%s error=%v", id, err)
		log.Printf("WebSocket接続が終了しました: id=%s", id)
	}
}
