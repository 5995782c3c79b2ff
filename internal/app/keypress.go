package app

import (
	"bytes"
	"io"
	"log"
	"os"

	"golang.org/x/term"
)

// prepareKeys は入力が端末の場合にrawモードへ切り替え、Enterなしで1キーを受け付けられるようにする
// 戻り値の関数で端末の状態とログ出力先を元に戻す
func prepareKeys(r io.Reader) (restore func()) {
	f, ok := r.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return func() {}
	}

	fd := int(f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		log.Printf("端末をrawモードにできません: %v", err)
		return func() {}
	}

	// rawモード中は改行で行頭に戻らないため、ログの改行をCRLFにする
	prev := log.Writer()
	log.SetOutput(crlfWriter{w: prev})

	return func() {
		log.SetOutput(prev)
		_ = term.Restore(fd, state)
	}
}

// waitForKey は1文字分の入力を待つ
func waitForKey(r io.Reader) error {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// crlfWriter は書き込み内容の\nを\r\nに変換する
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
