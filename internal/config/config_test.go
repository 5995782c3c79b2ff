package config

import (
	"testing"
	"time"
)

// validConfig は検証を通る最小の設定を返す
func validConfig() *Config {
	return &Config{
		WebSocket: WebSocketConfig{Host: "localhost", Port: 9222, Path: "/Browser"},
		HTTP: HTTPConfig{
			Host:            "localhost",
			Port:            8081,
			Path:            "/browser.html",
			File:            "browser.html",
			ShutdownTimeout: 5 * time.Second,
		},
		Browser: BrowserConfig{Open: true},
	}
}

// TestConfigLoad は設定の読み込みをテストする
func TestConfigLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	if cfg == nil {
		t.Fatal("設定がnilです")
	}

	// デフォルト値の検証
	if cfg.WebSocket.Port != 9222 {
		t.Errorf("WebSocketポートが想定と異なります: got %d, want 9222", cfg.WebSocket.Port)
	}
	if cfg.WebSocket.Path != "/Browser" {
		t.Errorf("WebSocketパスが想定と異なります: got %s, want /Browser", cfg.WebSocket.Path)
	}
	if cfg.HTTP.Port != 8081 {
		t.Errorf("HTTPポートが想定と異なります: got %d, want 8081", cfg.HTTP.Port)
	}
	if cfg.HTTP.Path != "/browser.html" {
		t.Errorf("HTTPパスが想定と異なります: got %s, want /browser.html", cfg.HTTP.Path)
	}
	if cfg.HTTP.File != "browser.html" {
		t.Errorf("配信ファイルが想定と異なります: got %s, want browser.html", cfg.HTTP.File)
	}
	if cfg.HTTP.ShutdownTimeout != 5*time.Second {
		t.Errorf("シャットダウンタイムアウトが想定と異なります: got %s", cfg.HTTP.ShutdownTimeout)
	}
	if !cfg.Browser.Open {
		t.Error("ブラウザ起動がデフォルトで無効になっています")
	}
}

// TestConfigValidation は設定の検証をテストする
func TestConfigValidation(t *testing.T) {
	testCases := []struct {
		name      string
		modify    func(c *Config)
		expectErr bool
	}{
		{
			name:      "正常な設定",
			modify:    func(c *Config) {},
			expectErr: false,
		},
		{
			name:      "無効なWebSocketポート番号",
			modify:    func(c *Config) { c.WebSocket.Port = 99999 },
			expectErr: true,
		},
		{
			name:      "無効なHTTPポート番号",
			modify:    func(c *Config) { c.HTTP.Port = 0 },
			expectErr: true,
		},
		{
			name:      "ポートの重複",
			modify:    func(c *Config) { c.HTTP.Port = c.WebSocket.Port },
			expectErr: true,
		},
		{
			name: "ホストが異なればポートの重複は許可",
			modify: func(c *Config) {
				c.HTTP.Port = c.WebSocket.Port
				c.HTTP.Host = "127.0.0.2"
			},
			expectErr: false,
		},
		{
			name:      "WebSocketパスが/で始まらない",
			modify:    func(c *Config) { c.WebSocket.Path = "Browser" },
			expectErr: true,
		},
		{
			name:      "HTTPパスが空",
			modify:    func(c *Config) { c.HTTP.Path = "" },
			expectErr: true,
		},
		{
			name:      "WebSocketパスに空白",
			modify:    func(c *Config) { c.WebSocket.Path = "/a b" },
			expectErr: true,
		},
		{
			name:      "HTTPパスに空白",
			modify:    func(c *Config) { c.HTTP.Path = "/browser\t.html" },
			expectErr: true,
		},
		{
			name:      "配信ファイルなし",
			modify:    func(c *Config) { c.HTTP.File = "" },
			expectErr: true,
		},
		{
			name:      "負のシャットダウンタイムアウト",
			modify:    func(c *Config) { c.HTTP.ShutdownTimeout = -time.Second },
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.modify(cfg)
			err := cfg.Validate()
			if tc.expectErr && err == nil {
				t.Error("エラーが期待されましたが、エラーが発生しませんでした")
			}
			if !tc.expectErr && err != nil {
				t.Errorf("予期しないエラーが発生しました: %v", err)
			}
		})
	}
}

// TestAddresses はアドレスとURLの生成をテストする
func TestAddresses(t *testing.T) {
	cfg := validConfig()
	cfg.WebSocket.Host = "192.168.1.100"
	cfg.HTTP.Host = "192.168.1.100"

	testCases := []struct {
		name     string
		actual   string
		expected string
	}{
		{"WebSocketアドレス", cfg.WebSocketAddress(), "192.168.1.100:9222"},
		{"HTTPアドレス", cfg.HTTPAddress(), "192.168.1.100:8081"},
		{"WebSocket URL", cfg.WebSocketURL(), "ws://192.168.1.100:9222/Browser"},
		{"ページURL", cfg.PageURL(), "http://192.168.1.100:8081/browser.html"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.actual != tc.expected {
				t.Errorf("一致しません: got %s, want %s", tc.actual, tc.expected)
			}
		})
	}
}

// TestEnvironmentVariables は環境変数の処理をテストする
func TestEnvironmentVariables(t *testing.T) {
	t.Setenv("WS_HOST", "0.0.0.0")
	t.Setenv("WS_PORT", "19222")
	t.Setenv("HTTP_PORT", "18081")
	t.Setenv("HTTP_FILE", "/srv/page.html")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("BROWSER_OPEN", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	if cfg.WebSocket.Host != "0.0.0.0" {
		t.Errorf("環境変数のホストが反映されていません: got %s, want 0.0.0.0", cfg.WebSocket.Host)
	}
	if cfg.WebSocket.Port != 19222 {
		t.Errorf("環境変数のWebSocketポートが反映されていません: got %d, want 19222", cfg.WebSocket.Port)
	}
	if cfg.HTTP.Port != 18081 {
		t.Errorf("環境変数のHTTPポートが反映されていません: got %d, want 18081", cfg.HTTP.Port)
	}
	if cfg.HTTP.File != "/srv/page.html" {
		t.Errorf("環境変数のファイルが反映されていません: got %s", cfg.HTTP.File)
	}
	if cfg.HTTP.ShutdownTimeout != 2*time.Second {
		t.Errorf("環境変数のタイムアウトが反映されていません: got %s", cfg.HTTP.ShutdownTimeout)
	}
	if cfg.Browser.Open {
		t.Error("環境変数でブラウザ起動を無効化できていません")
	}
}

// TestEnvironmentVariablesInvalid は不正な環境変数でエラーになることをテストする
func TestEnvironmentVariablesInvalid(t *testing.T) {
	t.Setenv("HTTP_PORT", "70000")

	if _, err := Load(); err == nil {
		t.Error("不正なポートでエラーが期待されました")
	}
}
