package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"doc-chat/internal/domain"
)

// HTTPTransport habla con el API del servidor usando un bearer token. Cumple
// Transport, HistoryFetcher y StatusFetcher.
type HTTPTransport struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPTransport construye el transporte. El http.Client no lleva timeout
// global: la respuesta del envío es un stream sin límite de duración y se
// corta vía contexto.
func NewHTTPTransport(baseURL, token string, httpClient *http.Client) *HTTPTransport {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  httpClient,
	}
}

// SendMessage abre la petición de envío y devuelve el cuerpo como stream de
// chunks de texto. Un status no exitoso cuenta como falla de apertura.
func (t *HTTPTransport) SendMessage(ctx context.Context, documentID, text string) (io.ReadCloser, error) {
	payload, err := json.Marshal(map[string]string{"message": text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/documents/%s/message", t.baseURL, url.PathEscape(documentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	t.setHeaders(req)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("send message: status=%d", resp.StatusCode)
	}
	return resp.Body, nil
}

// FetchPage trae una página de historial {documentID, limit, cursor}.
func (t *HTTPTransport) FetchPage(ctx context.Context, documentID string, limit int, cursor string) (domain.MessagePage, error) {
	endpoint := fmt.Sprintf("%s/documents/%s/messages?limit=%d", t.baseURL, url.PathEscape(documentID), limit)
	if cursor != "" {
		endpoint += "&cursor=" + url.QueryEscape(cursor)
	}

	var page domain.MessagePage
	if err := t.getJSON(ctx, endpoint, &page); err != nil {
		return domain.MessagePage{}, err
	}
	return page, nil
}

// FetchStatus consulta el estado de procesamiento del documento.
func (t *HTTPTransport) FetchStatus(ctx context.Context, documentID string) (domain.DocumentStatus, error) {
	endpoint := fmt.Sprintf("%s/documents/%s", t.baseURL, url.PathEscape(documentID))

	var out struct {
		Document domain.Document `json:"document"`
	}
	if err := t.getJSON(ctx, endpoint, &out); err != nil {
		return "", err
	}
	return out.Document.Status, nil
}

func (t *HTTPTransport) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	t.setHeaders(req)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("http error: status=%d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (t *HTTPTransport) setHeaders(req *http.Request) {
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	req.Header.Set("Content-Type", "application/json")
}
