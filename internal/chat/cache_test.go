package chat

import (
	"reflect"
	"testing"
	"time"

	"doc-chat/internal/domain"
)

func pageWith(msgs ...domain.Message) domain.MessagePage {
	return domain.MessagePage{Messages: msgs}
}

func TestWithUserMessage_PrependsToFirstPage(t *testing.T) {
	existing := domain.Message{ID: "m1", Text: "previous", IsUserMessage: false}
	pages := []domain.MessagePage{pageWith(existing)}

	msg := domain.Message{ID: "u1", Text: "hello", IsUserMessage: true, CreatedAt: time.Now().UTC()}
	out := WithUserMessage(pages, msg)

	if len(out) != 1 || len(out[0].Messages) != 2 {
		t.Fatalf("expected 1 page with 2 messages, got %+v", out)
	}
	first := out[0].Messages[0]
	if !first.IsUserMessage || first.Text != "hello" || first.ID != "u1" {
		t.Fatalf("expected user message first, got %+v", first)
	}
	if out[0].Messages[1].ID != "m1" {
		t.Fatalf("expected previous first message to be second, got %+v", out[0].Messages[1])
	}
}

func TestWithUserMessage_SynthesizesPageWhenCacheEmpty(t *testing.T) {
	msg := domain.Message{ID: "u1", Text: "hello", IsUserMessage: true}

	out := WithUserMessage(nil, msg)
	if len(out) != 1 || len(out[0].Messages) != 1 {
		t.Fatalf("expected synthesized page, got %+v", out)
	}
	if out[0].Messages[0].ID != "u1" {
		t.Fatalf("expected user message in synthesized page")
	}
}

func TestWithUserMessage_DoesNotMutateInput(t *testing.T) {
	pages := []domain.MessagePage{pageWith(domain.Message{ID: "m1"})}
	before := pages[0].Messages[0]

	_ = WithUserMessage(pages, domain.Message{ID: "u1", IsUserMessage: true})

	if len(pages[0].Messages) != 1 || pages[0].Messages[0] != before {
		t.Fatalf("input pages mutated: %+v", pages)
	}
}

func TestWithPendingAssistantText_SingleSentinelAcrossChunks(t *testing.T) {
	now := time.Now().UTC()
	pages := []domain.MessagePage{pageWith(domain.Message{ID: "u1", Text: "hello", IsUserMessage: true})}

	accumulated := ""
	for _, chunk := range []string{"Hel", "lo", " world"} {
		accumulated += chunk
		pages = WithPendingAssistantText(pages, accumulated, now)
	}

	count := 0
	var sentinel domain.Message
	for _, p := range pages {
		for _, m := range p.Messages {
			if m.ID == PendingAssistantID {
				count++
				sentinel = m
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one sentinel message, got %d", count)
	}
	if sentinel.Text != "Hello world" {
		t.Fatalf("expected accumulated text, got %q", sentinel.Text)
	}
	if sentinel.IsUserMessage {
		t.Fatalf("sentinel must not be a user message")
	}
	if pages[0].Messages[0].ID != PendingAssistantID {
		t.Fatalf("expected sentinel at the front of page 0")
	}
}

func TestWithPendingAssistantText_EmptyCache(t *testing.T) {
	out := WithPendingAssistantText(nil, "hi", time.Now().UTC())
	if len(out) != 1 || len(out[0].Messages) != 1 || out[0].Messages[0].ID != PendingAssistantID {
		t.Fatalf("expected synthesized page with sentinel, got %+v", out)
	}
}

func TestWithPendingAssistantText_KeepsCursorAndOlderPages(t *testing.T) {
	pages := []domain.MessagePage{
		{Messages: []domain.Message{{ID: "m2"}}, NextCursor: "c1"},
		{Messages: []domain.Message{{ID: "m1"}}},
	}

	out := WithPendingAssistantText(pages, "hi", time.Now().UTC())
	if out[0].NextCursor != "c1" {
		t.Fatalf("expected cursor preserved, got %q", out[0].NextCursor)
	}
	if len(out[1].Messages) != 1 || out[1].Messages[0].ID != "m1" {
		t.Fatalf("expected older page untouched, got %+v", out[1])
	}
}

func TestCacheSnapshotRestore(t *testing.T) {
	cache := NewCache()
	cache.AppendPage(pageWith(domain.Message{ID: "m1", Text: "hola"}))

	snap := cache.Snapshot()
	cache.Apply(func(pages []domain.MessagePage) []domain.MessagePage {
		return WithUserMessage(pages, domain.Message{ID: "u1", IsUserMessage: true})
	})
	if len(cache.Pages()[0].Messages) != 2 {
		t.Fatalf("expected mutation applied")
	}
	if len(snap[0].Messages) != 1 {
		t.Fatalf("snapshot should be independent of later mutations, got %+v", snap)
	}

	cache.Restore(snap)
	if !reflect.DeepEqual(cache.Pages(), snap) {
		t.Fatalf("expected cache restored to snapshot")
	}
}

func TestCacheMessagesFlattensNewestFirst(t *testing.T) {
	cache := NewCache()
	cache.AppendPage(pageWith(domain.Message{ID: "m3"}, domain.Message{ID: "m2"}))
	cache.AppendPage(pageWith(domain.Message{ID: "m1"}))

	msgs := cache.Messages()
	if len(msgs) != 3 || msgs[0].ID != "m3" || msgs[2].ID != "m1" {
		t.Fatalf("unexpected flattening order: %+v", msgs)
	}
}
