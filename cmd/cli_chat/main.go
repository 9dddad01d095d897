package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"doc-chat/internal/chat"
	"doc-chat/internal/domain"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	serverURL := flag.String("server", envOr("CHAT_SERVER_URL", "http://localhost:8080"), "base URL del servidor")
	token := flag.String("token", os.Getenv("CHAT_ACCESS_TOKEN"), "access token")
	documentID := flag.String("doc", "", "id del documento")
	flag.Parse()

	if *documentID == "" {
		log.Fatal("falta -doc con el id del documento")
	}

	logger := zap.NewExample()
	defer logger.Sync()

	transport := chat.NewHTTPTransport(*serverURL, *token, nil)

	fmt.Println("Preparando el PDF...")
	status, err := chat.WaitUntilTerminal(ctx, transport, *documentID, chat.DefaultPollInterval)
	if err != nil {
		log.Fatalf("consultar estado: %v", err)
	}
	if status == domain.DocumentFailed {
		fmt.Println("El documento falló al procesarse; probá con otro PDF.")
		os.Exit(1)
	}

	cache := chat.NewCache()
	history := chat.NewReader(*documentID, 10, cache, transport)
	if _, err := history.LoadMore(ctx); err != nil {
		log.Fatalf("cargar historial: %v", err)
	}
	printHistory(cache)

	controller := chat.NewController(*documentID, cache, transport, history, terminalNotifier{}, logger)

	// Imprime en vivo la parte nueva de la respuesta en curso.
	printed := 0
	controller.OnUpdate = func() {
		for _, m := range cache.Messages() {
			if m.ID == chat.PendingAssistantID {
				if len(m.Text) > printed {
					fmt.Print(m.Text[printed:])
					printed = len(m.Text)
				}
				return
			}
		}
	}

	fmt.Println("---- Modo Chat (escribe 'salir' para terminar, 'mas' para cargar historial) ----")
	for {
		fmt.Print("Tu > ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "salir") || strings.EqualFold(line, "exit") {
			fmt.Println("Saliendo del chat...")
			return
		}
		if strings.EqualFold(line, "mas") {
			more, err := history.LoadMore(ctx)
			if err != nil {
				fmt.Printf("error cargando historial: %v\n", err)
				continue
			}
			printHistory(cache)
			if !more {
				fmt.Println("(no hay mensajes más viejos)")
			}
			continue
		}

		printed = 0
		controller.SetInput(line)
		fmt.Print("PDF > ")
		if err := controller.Submit(ctx); err != nil {
			if errors.Is(err, chat.ErrSendInFlight) {
				fmt.Println("ya hay un mensaje en vuelo")
				continue
			}
			fmt.Printf("\nerror enviando mensaje: %v\n", err)
			continue
		}
		fmt.Println()
	}
}

func printHistory(cache *chat.Cache) {
	msgs := cache.Messages()
	if len(msgs) == 0 {
		fmt.Println("(sin mensajes todavía; hacé tu primera pregunta)")
		return
	}
	// El cache va del más nuevo al más viejo; en pantalla va cronológico.
	for i := len(msgs) - 1; i >= 0; i-- {
		who := "PDF"
		if msgs[i].IsUserMessage {
			who = "Tu"
		}
		fmt.Printf("%s > %s\n", who, msgs[i].Text)
	}
}

type terminalNotifier struct{}

func (terminalNotifier) Notify(title, detail string) {
	fmt.Printf("\n[!] %s: %s\n", title, detail)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
