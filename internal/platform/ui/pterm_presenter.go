// internal/platform/ui/pterm_presenter.go
package ui

import (
	"sync"
	"time"

	"github.com/pterm/pterm"
)

// targetLine tracks one target's displayed row between TargetStarted and
// TargetCompiled.
type targetLine struct {
	name      string
	status    Status
	startedAt time.Time
}

// PTermPresenter renders build progress as pterm-styled status lines, one
// per target event, and a final summary line — the interactive default for
// a TTY.
type PTermPresenter struct {
	mu sync.Mutex

	totalTargets int
	parallel     bool
	startTime    time.Time

	order   []string
	targets map[string]*targetLine
}

// NewPTermPresenter creates a pterm-backed Presenter.
func NewPTermPresenter() *PTermPresenter {
	return &PTermPresenter{targets: make(map[string]*targetLine)}
}

func (p *PTermPresenter) BuildStarted(totalTargets int, parallel bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.totalTargets = totalTargets
	p.parallel = parallel
	p.startTime = time.Now()

	pterm.Println(StylePrimary.Sprint("warp build"))
	pterm.Printfln("%s %d target(s)  %s parallel: %s", IconTarget, totalTargets,
		IconInfo, boolToString(parallel))
	pterm.Println(SeparatorHeavy)
}

func (p *PTermPresenter) TargetStarted(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	line := &targetLine{name: name, status: StatusRunning, startedAt: time.Now()}
	p.targets[name] = line
	p.order = append(p.order, name)

	pterm.Printfln("  %s %s %s", StylePrimary.Sprint(StatusRunning.Symbol()), name, StyleSecondary.Sprint("compiling..."))
}

func (p *PTermPresenter) TargetDeduped(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	line := &targetLine{name: name, status: StatusDeduped, startedAt: time.Now()}
	p.targets[name] = line
	p.order = append(p.order, name)

	pterm.Printfln("  %s %s %s", StyleSecondary.Sprint(StatusDeduped.Symbol()), name, StyleSecondary.Sprint("deduped"))
}

func (p *PTermPresenter) TargetCompiled(name string, success bool, diagnosticText string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	line, ok := p.targets[name]
	if !ok {
		line = &targetLine{name: name, startedAt: time.Now()}
		p.targets[name] = line
		p.order = append(p.order, name)
	}

	elapsed := time.Since(line.startedAt)
	if success {
		line.status = StatusSuccess
		pterm.Printfln("  %s %s %s", StyleSuccess.Sprint(StatusSuccess.Symbol()), name,
			StyleSecondary.Sprint(formatDuration(elapsed)))
		return
	}

	line.status = StatusFailed
	pterm.Printfln("  %s %s %s", StyleError.Sprint(StatusFailed.Symbol()), name,
		StyleSecondary.Sprint(formatDuration(elapsed)))
	if diagnosticText != "" {
		pterm.Println(StyleError.Sprint(diagnosticText))
	}
}

func (p *PTermPresenter) Info(msg string) {
	pterm.Printfln("%s %s", StylePrimary.Sprint(IconInfo), msg)
}

func (p *PTermPresenter) Warning(msg string) {
	pterm.Printfln("%s %s", StyleWarning.Sprint(IconWarning), msg)
}

func (p *PTermPresenter) Error(msg string) {
	pterm.Printfln("%s %s", StyleError.Sprint(IconError), msg)
}

func (p *PTermPresenter) BuildFinished(succeeded, failed, deduped int, elapsed string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pterm.Println(SeparatorHeavy)
	icon := StyleSuccess.Sprint(IconSuccess)
	if failed > 0 {
		icon = StyleError.Sprint(IconError)
	}
	pterm.Printfln("%s %d succeeded, %d failed, %d deduped %s %s",
		icon, succeeded, failed, deduped, StyleSecondary.Sprint(IconTime), elapsed)
}

func (p *PTermPresenter) Close() error {
	return nil
}
