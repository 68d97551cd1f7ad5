package session

import (
	"context"
	"sync"

	"github.com/shouni/nano-banana-studio/pkg/domain"
)

// mockEditor は generator.ImageEditor のテスト用モックです。
type mockEditor struct {
	mu       sync.Mutex
	calls    int
	lastReq  domain.EditRequest
	submitFn func(ctx context.Context, req domain.EditRequest) (*domain.EditResult, error)
}

func (m *mockEditor) SubmitEdit(ctx context.Context, req domain.EditRequest) (*domain.EditResult, error) {
	m.mu.Lock()
	m.calls++
	m.lastReq = req
	fn := m.submitFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return domain.ImageResult("data:image/png;base64,UA==", fixedTime), nil
}

func (m *mockEditor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// blockingEditor は release が閉じられるまで応答を返しません。
func blockingEditor(started chan<- struct{}, release <-chan struct{}) *mockEditor {
	return &mockEditor{
		submitFn: func(ctx context.Context, req domain.EditRequest) (*domain.EditResult, error) {
			started <- struct{}{}
			<-release
			return domain.ImageResult("data:image/png;base64,UA==", fixedTime), nil
		},
	}
}

func sampleImage() *domain.SourceImage {
	return &domain.SourceImage{
		Name:           "cat.png",
		RawBytes:       []byte("P"),
		EncodedPayload: "UA==",
		MIMEType:       "image/png",
		PreviewURL:     "data:image/png;base64,UA==",
	}
}
