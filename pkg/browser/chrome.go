package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
)

// chromeFlags is the fixed flag set applied to every session. log-level 3
// keeps Chrome's own stderr down to fatal messages.
var chromeFlags = map[string]interface{}{
	"headless":              true,
	"disable-gpu":           true,
	"no-sandbox":            true,
	"disable-dev-shm-usage": true,
	"mute-audio":            true,
	"log-level":             "3",
}

// ChromeLauncher launches headless Chrome sessions through the DevTools
// protocol.
type ChromeLauncher struct {
	execPath string
}

// NewChromeLauncher returns a launcher. execPath may be empty, in which case
// the browser binary is resolved from the usual install locations.
func NewChromeLauncher(execPath string) *ChromeLauncher {
	return &ChromeLauncher{execPath: execPath}
}

func (l *ChromeLauncher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for name, value := range chromeFlags {
		opts = append(opts, chromedp.Flag(name, value))
	}
	if l.execPath != "" {
		opts = append(opts, chromedp.ExecPath(l.execPath))
	}
	return opts
}

// Launch starts a browser process and returns a driver bound to one tab.
// The process is started eagerly so that a missing or broken Chrome install
// fails here rather than on the first navigation.
func (l *ChromeLauncher) Launch(ctx context.Context) (Driver, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, l.allocatorOptions()...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}

	return &chromeDriver{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}, nil
}

type chromeDriver struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// run executes actions against the session, bounded by timeout when one is
// given.
func (d *chromeDriver) run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx := d.ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return chromedp.Run(ctx, actions...)
}

func (d *chromeDriver) Navigate(url string, timeout time.Duration) error {
	if err := d.run(timeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

func (d *chromeDriver) WaitVisible(selector string, timeout time.Duration) error {
	if err := d.run(timeout, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("waiting for %q: %w", selector, err)
	}
	return nil
}

// HTML reads the document's current outer HTML directly from the DOM agent.
// Unlike selector-based reads this never waits, so it still works when the
// page rendered an error or loaded nothing of interest.
func (d *chromeDriver) HTML() (string, error) {
	var markup string
	err := d.run(0, chromedp.ActionFunc(func(ctx context.Context) error {
		root, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		markup, err = dom.GetOuterHTML().WithNodeID(root.NodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return "", fmt.Errorf("reading page markup: %w", err)
	}
	return markup, nil
}

func (d *chromeDriver) Close() error {
	err := chromedp.Cancel(d.ctx)
	d.cancelTab()
	d.cancelAlloc()
	if err != nil {
		return fmt.Errorf("closing chrome: %w", err)
	}
	return nil
}
