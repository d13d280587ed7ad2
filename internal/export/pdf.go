// Package export prints dashboard views to PDF with headless Chrome.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/blockedby/npb-dashboard/internal/logger"
)

// DefaultTimeout bounds one PDF rendering, browser start-up included.
const DefaultTimeout = 30 * time.Second

// A4 landscape, in inches
const (
	paperWidth  = 11.69
	paperHeight = 8.27
	margin      = 0.4
)

// PDFRenderer prints HTML documents to PDF using chromedp.
type PDFRenderer struct {
	chromePath string
	timeout    time.Duration
	log        *logger.Logger
}

// NewPDFRenderer creates a renderer. An empty chromePath lets chromedp find
// the browser.
func NewPDFRenderer(chromePath string) *PDFRenderer {
	return &PDFRenderer{
		chromePath: chromePath,
		timeout:    DefaultTimeout,
		log:        logger.Get().Component("pdf"),
	}
}

// allocatorOptions returns the exec allocator flags for a headless browser
func (p *PDFRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if p.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(p.chromePath))
	}
	return opts
}

// PrintHTML loads html into a blank page and prints it.
func (p *PDFRenderer) PrintHTML(ctx context.Context, html string) ([]byte, error) {
	if html == "" {
		return nil, errors.New("empty document")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	actx, cancel := chromedp.NewExecAllocator(ctx, p.allocatorOptions()...)
	defer cancel()

	cctx, cancel := chromedp.NewContext(actx)
	defer cancel()

	start := time.Now()
	var pdf []byte
	if err := chromedp.Run(cctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithLandscape(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				Do(ctx)
			return err
		}),
	); err != nil {
		return nil, fmt.Errorf("chromedp run: %w", err)
	}

	p.log.Debug().Int("bytes", len(pdf)).Dur("took", time.Since(start)).Msg("pdf rendered")
	return pdf, nil
}
