package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"doc-chat/internal/domain"
)

// Transport abre la petición de envío y devuelve el stream de la respuesta.
type Transport interface {
	SendMessage(ctx context.Context, documentID, text string) (io.ReadCloser, error)
}

// History expone los hooks del dueño del cache: cancelar refrescos en vuelo
// antes de la mutación optimista y revalidar contra almacenamiento durable al
// asentar el envío.
type History interface {
	CancelRefresh()
	Invalidate(ctx context.Context) error
}

// Notifier muestra avisos no bloqueantes al usuario.
type Notifier interface {
	Notify(title, detail string)
}

var (
	ErrSendInFlight = errors.New("send already in flight")
	ErrEmptyMessage = errors.New("empty message")
	ErrNoStream     = errors.New("no response stream")
)

// Controller es el sincronizador de respuesta en streaming: coordina el ciclo
// insert optimista -> acumulación de chunks -> rollback o invalidación.
// Admite un solo envío en vuelo; Submit rechaza el segundo con ErrSendInFlight
// en lugar de confiar solo en que la UI deshabilite el botón.
type Controller struct {
	mu      sync.Mutex
	sending bool
	input   string
	backup  string

	documentID string
	cache      *Cache
	transport  Transport
	history    History
	notifier   Notifier
	logger     *zap.Logger

	// OnUpdate se llama tras cada mutación del cache, para que el que renderiza
	// pueda redibujar. Puede quedar en nil.
	OnUpdate func()

	now   func() time.Time
	newID func() string
}

func NewController(
	documentID string,
	cache *Cache,
	transport Transport,
	history History,
	notifier Notifier,
	logger *zap.Logger,
) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		documentID: documentID,
		cache:      cache,
		transport:  transport,
		history:    history,
		notifier:   notifier,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

// SetInput reemplaza el texto pendiente del usuario.
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = text
}

func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Submit envía el input pendiente y consume el stream de respuesta hasta el
// final. Bloquea hasta asentar; el estado pasa a sending mientras tanto.
//
// Ante cualquier falla (abrir la petición, stream ausente o corte a mitad del
// stream) se restaura el input y el snapshot completo del cache. La
// invalidación del settle vuelve a traer el registro autoritativo igual.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return ErrSendInFlight
	}
	text := strings.TrimSpace(c.input)
	if text == "" {
		c.mu.Unlock()
		return ErrEmptyMessage
	}
	c.backup = text
	c.input = ""
	c.sending = true
	c.mu.Unlock()

	defer c.settle(ctx)

	// Cancelar refrescos de fondo antes del insert optimista; si no, un
	// refetch concurrente puede pisar la escritura.
	c.history.CancelRefresh()
	snapshot := c.cache.Snapshot()

	c.cache.Apply(func(pages []domain.MessagePage) []domain.MessagePage {
		return WithUserMessage(pages, domain.Message{
			ID:            c.newID(),
			Text:          text,
			IsUserMessage: true,
			CreatedAt:     c.now(),
		})
	})
	c.notifyUpdate()

	body, err := c.transport.SendMessage(ctx, c.documentID, text)
	if err != nil {
		c.logger.Warn("send message failed", zap.Error(err))
		c.rollback(snapshot)
		return err
	}
	if body == nil {
		c.logger.Warn("send message returned no stream")
		c.rollback(snapshot)
		return ErrNoStream
	}
	defer body.Close()

	if err := c.consume(ctx, body); err != nil {
		c.logger.Warn("response stream failed", zap.Error(err))
		c.rollback(snapshot)
		return err
	}
	return nil
}

// consume lee el stream hasta EOF y tras cada chunk actualiza el mensaje
// centinela con el texto acumulado, en orden de llegada. Los bytes crudos se
// acumulan antes de decodificar para no partir runas UTF-8 entre chunks.
func (c *Controller) consume(ctx context.Context, body io.Reader) error {
	accumulated := make([]byte, 0, 256)
	buf := make([]byte, 512)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := body.Read(buf)
		if n > 0 {
			accumulated = append(accumulated, buf[:n]...)
			text := string(accumulated)
			now := c.now()
			c.cache.Apply(func(pages []domain.MessagePage) []domain.MessagePage {
				return WithPendingAssistantText(pages, text, now)
			})
			c.notifyUpdate()
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Controller) rollback(snapshot []domain.MessagePage) {
	c.mu.Lock()
	c.input = c.backup
	c.mu.Unlock()

	c.cache.Restore(snapshot)
	c.notifyUpdate()

	if c.notifier != nil {
		c.notifier.Notify(
			"There was a problem sending your message",
			"Please refresh the page and try again",
		)
	}
}

// settle corre siempre, con éxito o error: vuelve a idle y dispara exactamente
// una invalidación para reemplazar el estado transitorio por el durable.
func (c *Controller) settle(ctx context.Context) {
	c.mu.Lock()
	c.sending = false
	c.mu.Unlock()

	if err := c.history.Invalidate(ctx); err != nil {
		c.logger.Warn("invalidate messages failed", zap.Error(err))
	}
	c.notifyUpdate()
}

func (c *Controller) notifyUpdate() {
	if c.OnUpdate != nil {
		c.OnUpdate()
	}
}
