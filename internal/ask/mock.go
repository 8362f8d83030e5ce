package ask

import (
	"context"
)

// Mock returns an asker that always answers with response, for testing
func Mock(response string) Asker {
	return &mockAsker{response: response}
}

type mockAsker struct {
	response string
}

var _ Asker = (*mockAsker)(nil)

func (m *mockAsker) Ask(ctx context.Context, question string) (string, error) {
	return m.response, nil
}
