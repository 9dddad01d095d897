package chat

import (
	"context"
	"time"

	"doc-chat/internal/domain"
)

// StatusFetcher consulta el estado de procesamiento de un documento.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, documentID string) (domain.DocumentStatus, error)
}

// DefaultPollInterval es el intervalo corto de sondeo mientras el documento
// todavía se está procesando.
const DefaultPollInterval = 500 * time.Millisecond

// WaitUntilTerminal consulta el estado cada interval y corta al llegar a un
// estado terminal (READY o FAILED). Devuelve el último estado observado.
func WaitUntilTerminal(ctx context.Context, fetcher StatusFetcher, documentID string, interval time.Duration) (domain.DocumentStatus, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := fetcher.FetchStatus(ctx, documentID)
		if err != nil {
			return "", err
		}
		if status.Terminal() {
			return status, nil
		}
		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-ticker.C:
		}
	}
}
