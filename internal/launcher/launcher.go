// Package launcher はOS既定のブラウザでURLを開く
//
// 対応しているのはWindowsとmacOSのみで、それ以外のOSではログを出力して何もしない。
// 起動は投げっぱなしで、ブラウザが実際に開いたかどうかは確認しない。
package launcher

import (
	"errors"
	"fmt"
	"log"
	"os/exec"
	"runtime"
)

// ErrUnsupported は対応していないOSで起動しようとしたときのエラー
var ErrUnsupported = errors.New("unsupported operating system")

// Launcher はブラウザ起動コマンドを組み立てて実行する
type Launcher struct {
	goos  string
	start func(cmd *exec.Cmd) error
}

// New は実行中のOS向けのLauncherを作成する
func New() *Launcher {
	return &Launcher{
		goos:  runtime.GOOS,
		start: startDetached,
	}
}

// Command はURLを開くためのコマンドと引数を返す
// 対応していないOSの場合はokがfalseになる
func (l *Launcher) Command(url string) (name string, args []string, ok bool) {
	switch l.goos {
	case "windows":
		return "cmd", []string{"/c", "start", url}, true
	case "darwin":
		return "open", []string{url}, true
	default:
		return "", nil, false
	}
}

// Open はブラウザでURLを開く
// 失敗はログに出力し、呼び出し元には参考情報としてのみ返す
func (l *Launcher) Open(url string) error {
	name, args, ok := l.Command(url)
	if !ok {
		log.Printf("ブラウザの起動に対応していないOSです: %s", l.goos)
		return fmt.Errorf("%w: %s", ErrUnsupported, l.goos)
	}

	cmd := exec.Command(name, args...)
	hideWindow(cmd)

	if err := l.start(cmd); err != nil {
		log.Printf("ブラウザの起動に失敗しました: %v", err)
		return fmt.Errorf("ブラウザの起動に失敗: %w", err)
	}

	log.Printf("ブラウザを起動しました: %s", url)
	return nil
}

// startDetached はプロセスを開始し、終了はバックグラウンドで回収する
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
