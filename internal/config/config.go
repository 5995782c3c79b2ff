package config

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/viper"
)

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	WebSocket WebSocketConfig `yaml:"websocket" mapstructure:"websocket"`
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
	Browser   BrowserConfig   `yaml:"browser" mapstructure:"browser"`
}

// WebSocketConfig はWebSocketエコーサービスの設定
type WebSocketConfig struct {
	Host string `yaml:"host" mapstructure:"host"` // リッスンするホスト
	Port int    `yaml:"port" mapstructure:"port"` // リッスンするポート番号
	Path string `yaml:"path" mapstructure:"path"` // エンドポイントのパス
}

// HTTPConfig は静的ファイルサーバーの設定
type HTTPConfig struct {
	Host string `yaml:"host" mapstructure:"host"` // リッスンするホスト
	Port int    `yaml:"port" mapstructure:"port"` // リッスンするポート番号
	Path string `yaml:"path" mapstructure:"path"` // 配信するURLパス
	File string `yaml:"file" mapstructure:"file"` // 配信するローカルファイル

	// シャットダウン時の待ち時間
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// BrowserConfig はブラウザ起動の設定
type BrowserConfig struct {
	Open bool `yaml:"open" mapstructure:"open"` // 起動時にブラウザを開くか
}

// 設定キーと環境変数の対応
var envBindings = map[string]string{
	"websocket.host":        "WS_HOST",
	"websocket.port":        "WS_PORT",
	"websocket.path":        "WS_PATH",
	"http.host":             "HTTP_HOST",
	"http.port":             "HTTP_PORT",
	"http.path":             "HTTP_PATH",
	"http.file":             "HTTP_FILE",
	"http.shutdown_timeout": "HTTP_SHUTDOWN_TIMEOUT",
	"browser.open":          "BROWSER_OPEN",
}

// Load は設定を読み込む
// デフォルト値を環境変数で上書きする。設定ファイルは読まない
func Load() (*Config, error) {
	v := viper.New()

	// デフォルト設定
	v.SetDefault("websocket.host", "localhost")
	v.SetDefault("websocket.port", 9222)
	v.SetDefault("websocket.path", "/Browser")
	v.SetDefault("http.host", "localhost")
	v.SetDefault("http.port", 8081)
	v.SetDefault("http.path", "/browser.html")
	v.SetDefault("http.file", "browser.html")
	v.SetDefault("http.shutdown_timeout", 5*time.Second)
	v.SetDefault("browser.open", true)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("環境変数 %s のバインドに失敗: %w", env, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("設定の変換に失敗: %w", err)
	}

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	if c.WebSocket.Port < 1 || c.WebSocket.Port > 65535 {
		return fmt.Errorf("無効なWebSocketポート番号: %d", c.WebSocket.Port)
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("無効なHTTPポート番号: %d", c.HTTP.Port)
	}
	if c.WebSocket.Port == c.HTTP.Port && c.WebSocket.Host == c.HTTP.Host {
		return fmt.Errorf("WebSocketとHTTPが同じアドレスを使用しています: %s", c.HTTPAddress())
	}
	if !strings.HasPrefix(c.WebSocket.Path, "/") {
		return fmt.Errorf("WebSocketパスは/で始まる必要があります: %q", c.WebSocket.Path)
	}
	if !strings.HasPrefix(c.HTTP.Path, "/") {
		return fmt.Errorf("HTTPパスは/で始まる必要があります: %q", c.HTTP.Path)
	}
	if strings.ContainsFunc(c.WebSocket.Path, unicode.IsSpace) {
		return fmt.Errorf("WebSocketパスに空白は使用できません: %q", c.WebSocket.Path)
	}
	if strings.ContainsFunc(c.HTTP.Path, unicode.IsSpace) {
		return fmt.Errorf("HTTPパスに空白は使用できません: %q", c.HTTP.Path)
	}
	if c.HTTP.File == "" {
		return fmt.Errorf("配信するファイルが指定されていません")
	}
	if c.HTTP.ShutdownTimeout < 0 {
		return fmt.Errorf("シャットダウンタイムアウトが負の値です: %s", c.HTTP.ShutdownTimeout)
	}

	return nil
}

// WebSocketAddress はWebSocketサービスのリッスンアドレスを返す
func (c *Config) WebSocketAddress() string {
	return fmt.Sprintf("%s:%d", c.WebSocket.Host, c.WebSocket.Port)
}

// HTTPAddress は静的ファイルサーバーのリッスンアドレスを返す
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

// WebSocketURL はクライアントが接続するURLを返す
func (c *Config) WebSocketURL() string {
	return fmt.Sprintf("ws://%s%s", c.WebSocketAddress(), c.WebSocket.Path)
}

// PageURL はブラウザで開くページのURLを返す
func (c *Config) PageURL() string {
	return fmt.Sprintf("http://%s%s", c.HTTPAddress(), c.HTTP.Path)
}
