package image

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmorgan81/imagine/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

// WebhookGenerator posts the prompt as JSON to a fixed endpoint and treats
// a 2xx response body as raw image bytes.
type WebhookGenerator struct {
	Client   *http.Client
	Endpoint string
}

func NewWebhookGenerator(i *do.Injector) (Generator, error) {
	return &WebhookGenerator{
		Client:   do.MustInvoke[*http.Client](i),
		Endpoint: do.MustInvokeNamed[string](i, "endpoint"),
	}, nil
}

func (g *WebhookGenerator) Generate(ctx context.Context, params Params) (*Handle, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("webhook").With("endpoint", g.Endpoint)
	log.Info("generating image via webhook")

	body, err := json.Marshal(params)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	client := lo.Ternary(g.Client != nil, g.Client, http.DefaultClient)
	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		log.Warn("webhook rejected request", "status", resp.StatusCode)
		return nil, &HTTPError{StatusCode: resp.StatusCode, StatusText: statusText(resp)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	handle := NewHandle(data, resp.Header.Get("Content-Type"))
	log.Info("received image via webhook", "size", handle.Size(), "content-type", handle.ContentType())
	return handle, nil
}

// statusText strips the numeric code from resp.Status, e.g. "500 Internal Server Error".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text != "" {
		return text
	}
	return lo.Ternary(http.StatusText(resp.StatusCode) != "", http.StatusText(resp.StatusCode), strconv.Itoa(resp.StatusCode))
}
