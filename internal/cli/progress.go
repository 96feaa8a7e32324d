package cli

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// progress 生成期间的进度提示；只在终端上显示动画
type progress struct {
	w       io.Writer
	spinner *spinner.Spinner
}

func startProgress(w io.Writer, msg string) *progress {
	p := &progress{w: w}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p
	}
	p.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	p.spinner.Writer = f
	p.spinner.Suffix = " " + msg
	p.spinner.Start()
	return p
}

func (p *progress) stop() {
	if p.spinner != nil {
		p.spinner.Stop()
		p.spinner = nil
	}
}

