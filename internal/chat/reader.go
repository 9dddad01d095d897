package chat

import (
	"context"
	"sync"

	"doc-chat/internal/domain"
)

// HistoryFetcher recupera una página de mensajes desde almacenamiento durable.
type HistoryFetcher interface {
	FetchPage(ctx context.Context, documentID string, limit int, cursor string) (domain.MessagePage, error)
}

// Reader es el dueño del cache paginado: carga páginas bajo demanda (de la más
// nueva a la más vieja) y sabe refrescarlo desde almacenamiento durable. El que
// renderiza decide cuándo pedir más, típicamente al acercarse al mensaje más
// viejo ya cargado.
type Reader struct {
	mu            sync.Mutex
	cache         *Cache
	fetcher       HistoryFetcher
	documentID    string
	limit         int
	nextCursor    string
	started       bool
	exhausted     bool
	refreshCancel context.CancelFunc
}

func NewReader(documentID string, limit int, cache *Cache, fetcher HistoryFetcher) *Reader {
	if limit <= 0 {
		limit = 10
	}
	return &Reader{
		cache:      cache,
		fetcher:    fetcher,
		documentID: documentID,
		limit:      limit,
	}
}

// LoadMore trae la siguiente página más vieja y la agrega al cache. Devuelve
// false cuando ya no quedan páginas.
func (r *Reader) LoadMore(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started && r.exhausted {
		return false, nil
	}

	page, err := r.fetcher.FetchPage(ctx, r.documentID, r.limit, r.nextCursor)
	if err != nil {
		return false, err
	}

	r.started = true
	r.cache.AppendPage(page)
	r.nextCursor = page.NextCursor
	r.exhausted = page.NextCursor == ""
	return !r.exhausted, nil
}

// CancelRefresh aborta cualquier refresco de fondo en vuelo. El sincronizador
// lo llama antes de mutar el cache de forma optimista.
func (r *Reader) CancelRefresh() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refreshCancel != nil {
		r.refreshCancel()
		r.refreshCancel = nil
	}
}

// Invalidate descarta todo el estado transitorio y recarga la primera página
// desde almacenamiento durable.
func (r *Reader) Invalidate(ctx context.Context) error {
	r.mu.Lock()
	rctx, cancel := context.WithCancel(ctx)
	r.refreshCancel = cancel
	r.mu.Unlock()
	defer cancel()

	page, err := r.fetcher.FetchPage(rctx, r.documentID, r.limit, "")

	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshCancel = nil
	if err != nil {
		return err
	}

	r.cache.Reset()
	r.cache.AppendPage(page)
	r.nextCursor = page.NextCursor
	r.started = true
	r.exhausted = page.NextCursor == ""
	return nil
}
