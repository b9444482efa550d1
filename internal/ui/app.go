// Package ui provides the terminal console the operator drives the pipeline
// from.
package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"crypto-narrator/internal/interfaces"
	"crypto-narrator/internal/logger"
	"crypto-narrator/internal/session"
	"crypto-narrator/internal/types"
)

const (
	pageChallenge = "challenge"
	pageMain      = "main"
)

// Options configure the console.
type Options struct {
	ChartWidth int
	Decimals   [2]int
}

// App is the main TUI application.
type App struct {
	app   *tview.Application
	pages *tview.Pages

	// Views
	challenge *ChallengeView
	snapshot  *SnapshotView
	editor    *EditorView
	chart     *ChartView
	status    *tview.TextView

	engine interfaces.Engine
	sess   *session.Session

	// State
	mu     sync.Mutex
	busy   bool
	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the console for one operator session.
func NewApp(eng interfaces.Engine, sess *session.Session, opts Options) *App {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		app:    tview.NewApplication(),
		engine: eng,
		sess:   sess,
		ctx:    ctx,
		cancel: cancel,
	}

	// Initialize views
	a.challenge = NewChallengeView(sess.Challenge().Question(), a.verify)
	a.snapshot = NewSnapshotView(opts.Decimals)
	a.chart = NewChartView(opts.ChartWidth, opts.Decimals)
	a.editor = NewEditorView(sess.WebhookURL(), EditorActions{
		OnEdit:       sess.Edit,
		OnWebhook:    sess.SetWebhookURL,
		OnPost:       a.post,
		OnRegenerate: a.regenerate,
		OnRefresh:    a.refresh,
	})
	a.status = tview.NewTextView().SetDynamicColors(true)

	a.setupLayout()
	a.setupKeyboard()

	return a
}

// setupLayout stacks the challenge page over the main page.
func (a *App) setupLayout() {
	// Left: snapshot table over the editor. Right: charts.
	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.snapshot.Widget(), 5, 0, false).
		AddItem(a.editor.Widget(), 0, 1, true)

	body := tview.NewFlex().
		AddItem(left, 0, 1, true).
		AddItem(a.chart.Widget(), 0, 1, false)

	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(a.status, 1, 0, false)

	a.pages = tview.NewPages().
		AddPage(pageMain, main, true, false).
		AddPage(pageChallenge, a.challenge.Widget(), true, true)

	a.app.SetRoot(a.pages, true).
		SetFocus(a.challenge.Focus()).
		EnableMouse(true)
}

// setupKeyboard configures keyboard shortcuts.
func (a *App) setupKeyboard() {
	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			a.Stop()
			return nil
		}
		// Shortcuts only act once the gate is passed.
		if !a.sess.Passed() {
			return event
		}
		switch event.Key() {
		case tcell.KeyCtrlP:
			a.post()
		case tcell.KeyCtrlG:
			a.regenerate()
		case tcell.KeyCtrlR:
			a.refresh()
		case tcell.KeyCtrlN:
			a.app.SetFocus(a.editor.text)
		case tcell.KeyCtrlW:
			a.app.SetFocus(a.editor.webhook)
		default:
			return event
		}
		return nil
	})
}

// Run starts the TUI application (blocking).
func (a *App) Run() error {
	if err := a.app.Run(); err != nil {
		return fmt.Errorf("app run failed: %w", err)
	}
	return nil
}

// Stop cancels in-flight requests and stops the application.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

// background runs fn off the draw loop. Only one job runs at a time; a second
// request while busy is reported and dropped.
func (a *App) background(label string, fn func(ctx context.Context)) {
	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		a.setStatus("[yellow]Busy, please wait[-]")
		return
	}
	a.busy = true
	a.mu.Unlock()

	a.setStatus("[yellow]" + label + "...[-]")
	go func() {
		defer func() {
			a.mu.Lock()
			a.busy = false
			a.mu.Unlock()
		}()
		fn(a.ctx)
	}()
}

func (a *App) verify(answer string) {
	a.background("Verifying", func(ctx context.Context) {
		st, err := a.engine.Verify(ctx, a.sess, answer)
		a.app.QueueUpdateDraw(func() {
			if err != nil || !st.Passed {
				msg := "Incorrect. Please try again."
				if err != nil && !errors.Is(err, types.ErrChallengeFailed) {
					msg = err.Error()
				}
				a.challenge.Retry(st.Question(), msg)
				a.setStatus("")
				return
			}
			a.pages.SwitchToPage(pageMain)
			a.app.SetFocus(a.editor.text)
			a.setStatus("[green]Verified.[-]")
		})
		if err == nil && st.Passed {
			a.runPipeline(ctx)
		}
	})
}

func (a *App) refresh() {
	a.background("Fetching market data", a.runPipeline)
}

func (a *App) regenerate() {
	a.background("Regenerating narrative", func(ctx context.Context) {
		a.sess.ResetNarrative()
		a.runPipeline(ctx)
	})
}

func (a *App) runPipeline(ctx context.Context) {
	res, err := a.engine.Run(ctx, a.sess)
	a.app.QueueUpdateDraw(func() {
		if err != nil {
			a.setError(err)
			return
		}
		a.apply(res)
	})
}

func (a *App) post() {
	a.background("Posting", func(ctx context.Context) {
		res, err := a.engine.Dispatch(ctx, a.sess)
		a.app.QueueUpdateDraw(func() {
			switch {
			case errors.Is(err, types.ErrNoWebhook):
				a.setStatus("[yellow]Enter a webhook URL first.[-]")
			case err != nil:
				a.setError(err)
			default:
				a.setStatus(fmt.Sprintf("[green]Posted (HTTP %d).[-]", res.StatusCode))
			}
		})
	})
}

// apply renders a run result. Must be called from the draw loop.
func (a *App) apply(res *types.RunResult) {
	a.snapshot.Update(res.Snapshots)
	a.chart.Update(res)
	// A rerun that reused the cache leaves the editor alone so typing done
	// while it was in flight survives.
	if res.Generated {
		a.editor.SetDraft(res.Draft)
	}

	if len(res.Warnings) == 0 {
		a.setStatus(fmt.Sprintf("[green]Updated %s[-]", res.Time.Format("15:04:05 MST")))
		return
	}
	w := res.Warnings[len(res.Warnings)-1]
	a.setStatus(fmt.Sprintf("[yellow]%s (%d warning(s))[-]", tview.Escape(w.Error()), len(res.Warnings)))
}

func (a *App) setError(err error) {
	logger.ErrorWithErr(a.ctx, "Operator action failed", err, "stage", types.StageOf(err))
	a.setStatus("[red]" + tview.Escape(err.Error()) + "[-]")
}

func (a *App) setStatus(text string) {
	a.status.SetText(text)
}
