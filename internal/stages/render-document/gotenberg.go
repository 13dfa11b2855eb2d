package renderdocument

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	httpclient "maturity-report/internal/common/http"
	"maturity-report/internal/common/logger"
	composedocument "maturity-report/internal/stages/compose-document"
)

const gotenbergHTMLRoute = "/forms/chromium/convert/html"

// GotenbergRenderer delegates printing to a Gotenberg service, which runs
// its own Chromium pool.
type GotenbergRenderer struct {
	baseURL string
	client  *httpclient.Client
	logger  logger.Logger
}

func NewGotenbergRenderer(baseURL string, timeout time.Duration, log logger.Logger) *GotenbergRenderer {
	return &GotenbergRenderer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpclient.NewClient(timeout, httpclient.WithUserAgent("maturity-report")),
		logger:  log,
	}
}

func (r *GotenbergRenderer) Name() string {
	return BackendGotenberg
}

func (r *GotenbergRenderer) Render(ctx context.Context, doc *composedocument.Document, opts PageOptions) ([]byte, error) {
	html, err := doc.HTML()
	if err != nil {
		return nil, err
	}

	form := httpclient.NewMultipartForm().
		AddFile("files", "index.html", "text/html; charset=utf-8", html).
		AddField("paperWidth", formatInches(opts.PaperWidth)).
		AddField("paperHeight", formatInches(opts.PaperHeight)).
		AddField("marginTop", formatInches(opts.MarginTop)).
		AddField("marginRight", formatInches(opts.MarginRight)).
		AddField("marginBottom", formatInches(opts.MarginBottom)).
		AddField("marginLeft", formatInches(opts.MarginLeft)).
		AddField("scale", strconv.FormatFloat(opts.Scale, 'f', -1, 64)).
		AddField("printBackground", strconv.FormatBool(opts.PrintBackground)).
		AddField("preferCssPageSize", strconv.FormatBool(opts.PreferCSSPageSize)).
		AddField("emulatedMediaType", "print").
		AddField("waitForExpression", `document.fonts.status === "loaded"`)

	header := http.Header{}
	header.Set("Gotenberg-Output-Filename", doc.ReportID)

	pdf, err := r.client.PostMultipart(ctx, r.baseURL+gotenbergHTMLRoute, form, header)
	if err != nil {
		return nil, fmt.Errorf("gotenberg render %s: %w", doc.ReportID, err)
	}
	return pdf, nil
}

// Ping checks the Gotenberg health endpoint.
func (r *GotenbergRenderer) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("gotenberg health: %w", err)
	}
	defer resp.Body.Close()
	return httpclient.CheckResponse(resp)
}

func formatInches(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "in"
}
