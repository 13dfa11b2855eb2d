package renderdocument

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"maturity-report/internal/common/logger"
	composedocument "maturity-report/internal/stages/compose-document"
)

// ChromeRenderer prints documents with a headless Chrome started for each
// render and torn down before Render returns.
type ChromeRenderer struct {
	execPath  string
	noSandbox bool
	logger    logger.Logger
}

func NewChromeRenderer(execPath string, noSandbox bool, log logger.Logger) *ChromeRenderer {
	return &ChromeRenderer{execPath: execPath, noSandbox: noSandbox, logger: log}
}

func (r *ChromeRenderer) Name() string {
	return BackendChrome
}

func (r *ChromeRenderer) allocatorOptions(opts PageOptions) []chromedp.ExecAllocatorOption {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.DisableGPU,
		chromedp.Flag("font-render-hinting", "none"),
		chromedp.WindowSize(int(opts.ViewportWidth), int(opts.ViewportHeight)),
	)
	if r.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.execPath))
	}
	if r.noSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}
	return allocOpts
}

func (r *ChromeRenderer) Render(ctx context.Context, doc *composedocument.Document, opts PageOptions) ([]byte, error) {
	html, err := doc.HTML()
	if err != nil {
		return nil, err
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocatorOptions(opts)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithErrorf(func(format string, args ...interface{}) {
		r.logger.Warn("Chrome protocol error", map[string]interface{}{
			"reportId": doc.ReportID,
			"error":    fmt.Sprintf(format, args...),
		})
	}))
	defer cancelBrowser()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.EmulateViewport(opts.ViewportWidth, opts.ViewportHeight, chromedp.EmulateScale(opts.DeviceScale)),
		chromedp.Navigate("about:blank"),
		setDocumentContent(string(html)),
		waitForContent(opts),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetEmulatedMedia().WithMedia("print").Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(opts.PaperWidth).
				WithPaperHeight(opts.PaperHeight).
				WithMarginTop(opts.MarginTop).
				WithMarginRight(opts.MarginRight).
				WithMarginBottom(opts.MarginBottom).
				WithMarginLeft(opts.MarginLeft).
				WithScale(opts.Scale).
				WithPrintBackground(opts.PrintBackground).
				WithPreferCSSPageSize(opts.PreferCSSPageSize).
				WithDisplayHeaderFooter(false).
				WithGenerateTaggedPDF(true).
				Do(ctx)
			if err != nil {
				return fmt.Errorf("print to pdf: %w", err)
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome render %s: %w", doc.ReportID, err)
	}
	return pdf, nil
}

func setDocumentContent(html string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return fmt.Errorf("get frame tree: %w", err)
		}
		if err := page.SetDocumentContent(tree.Frame.ID, html).Do(ctx); err != nil {
			return fmt.Errorf("set document content: %w", err)
		}
		return nil
	})
}

// waitForContent blocks until the document and its fonts are loaded, or
// the content-load budget runs out.
func waitForContent(opts PageOptions) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var ready bool
		err := chromedp.Poll(
			`document.readyState === "complete" && document.fonts.status === "loaded"`,
			&ready,
			chromedp.WithPollingTimeout(opts.ContentLoadTimeout),
		).Do(ctx)
		if errors.Is(err, chromedp.ErrPollingTimeout) {
			return fmt.Errorf("content did not load within %s: %w", opts.ContentLoadTimeout, context.DeadlineExceeded)
		}
		return err
	})
}
