package server

import (
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
)

// 応答本文
const (
	NotFoundBody      = "404 - File not found"
	BadRequestBody    = "400 - Bad Request"
	InternalErrorBody = "500 - Internal Server Error"
)

// handlePage は設定されたファイルをディスクから読み込んで返す
func (s *Server) handlePage(c *gin.Context) {
	info, err := os.Stat(s.config.File)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		writeBody(c, http.StatusNotFound, []byte(NotFoundBody))
		return
	}

	var data []byte
	if err == nil {
		data, err = os.ReadFile(s.config.File)
	}
	if err != nil {
		log.Printf("HTTPサーバーでエラーが発生しました: %v", err)
		writeBody(c, http.StatusInternalServerError, []byte(InternalErrorBody))
		return
	}

	// Content-Typeは指定せず、net/httpの判定に任せる
	writeBody(c, http.StatusOK, data)
}

// handleBadRequest は固定パスへのGET以外のリクエストを処理する
func (s *Server) handleBadRequest(c *gin.Context) {
	writeBody(c, http.StatusBadRequest, []byte(BadRequestBody))
}

// handlePanic はハンドラ内のpanicをログに出力し、サーバーの処理を継続する
func (s *Server) handlePanic(c *gin.Context, recovered any) {
	log.Printf("HTTPサーバーでエラーが発生しました: %v", recovered)
	if !c.Writer.Written() {
		writeBody(c, http.StatusInternalServerError, []byte(InternalErrorBody))
	}
	c.Abort()
}

// serialize はリクエストを1件ずつ処理するミドルウェア
// 前のリクエストの応答を書き終えるまで次のハンドラは実行されない
func serialize() gin.HandlerFunc {
	var mu sync.Mutex
	return func(c *gin.Context) {
		mu.Lock()
		defer mu.Unlock()
		c.Next()
	}
}

// writeBody はステータスと本文を書き込み、応答をフラッシュする
func writeBody(c *gin.Context, status int, body []byte) {
	c.Header("Content-Length", strconv.Itoa(len(body)))
	c.Status(status)
	if _, err := c.Writer.Write(body); err != nil {
		log.Printf("応答の書き込みに失敗: %v", err)
		return
	}
	c.Writer.Flush()
}
