package chart

import (
	"bytes"
	"context"
	"encoding/base64"
	"time"

	"github.com/chromedp/chromedp"
)

// Snapshotter screenshots the ECharts page of a plan in headless Chrome.
type Snapshotter struct {
	timeout time.Duration
}

func NewSnapshotter(timeout time.Duration) *Snapshotter {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Snapshotter{timeout: timeout}
}

// Snapshot returns a PNG of the rendered page.
func (s *Snapshotter) Snapshot(ctx context.Context, plan Plan) ([]byte, error) {
	var html bytes.Buffer
	if err := WriteHTML(&html, plan); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, s.timeout)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html.Bytes())
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(plan.Size.Width), int64(plan.Size.Height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(800 * time.Millisecond),
		chromedp.FullScreenshot(&screenshot, 90),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, err
	}
	return screenshot, nil
}
