package sheets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xavierca1/imersao-crm/internal/usecase"
)

const maxBodySize = 10 << 20

// Fetcher downloads publicly shared Google Sheets and Docs exports.
type Fetcher struct {
	client *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

func (f *Fetcher) FetchLeadRows(ctx context.Context, url string) ([]usecase.ImportRow, error) {
	body, err := f.get(ctx, ExportURL(url))
	if err != nil {
		return nil, err
	}
	return ParseLeadRows(body)
}

func (f *Fetcher) FetchSupplierRows(ctx context.Context, url string) ([]usecase.SupplierRow, error) {
	body, err := f.get(ctx, ExportURL(url))
	if err != nil {
		return nil, err
	}
	return ParseSupplierRows(body)
}

func (f *Fetcher) FetchDocument(ctx context.Context, url string) (string, error) {
	body, err := f.get(ctx, DocumentExportURL(url))
	if err != nil {
		return "", err
	}
	// Export txt do Google Docs vem com BOM.
	return strings.TrimSpace(strings.TrimPrefix(string(body), "\ufeff")), nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("url inválida: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro ao baixar %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("planilha retornou status %d", resp.StatusCode)
	}

	// Link privado redireciona para a tela de login do Google.
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		return nil, fmt.Errorf("o link não está público")
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}
