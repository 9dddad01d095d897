package llm

import "context"

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response  string
	Chunks    []string
	Embedding []float32
	Err       error
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	return m.Response, m.Err
}

func (m *MockClient) StreamChat(ctx context.Context, messages []ChatMessage, onChunk func(chunk string) error) error {
	if m.Err != nil {
		return m.Err
	}
	for _, chunk := range m.Chunks {
		if err := onChunk(chunk); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockClient) Embed(ctx context.Context, input string) ([]float32, error) {
	return m.Embedding, m.Err
}
