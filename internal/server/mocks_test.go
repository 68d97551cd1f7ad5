package server

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shouni/nano-banana-studio/pkg/domain"
	"github.com/shouni/nano-banana-studio/pkg/encoder"
	"github.com/shouni/nano-banana-studio/pkg/utils"
)

// mockEditor は generator.ImageEditor のテスト用モックです。
type mockEditor struct {
	mu         sync.Mutex
	calls      int
	submitFunc func(ctx context.Context, req domain.EditRequest) (*domain.EditResult, error)
}

func (m *mockEditor) SubmitEdit(ctx context.Context, req domain.EditRequest) (*domain.EditResult, error) {
	m.mu.Lock()
	m.calls++
	fn := m.submitFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return domain.ImageResult(utils.EncodeDataURI("image/png", []byte("edited-bytes")), time.UnixMilli(1700000000123)), nil
}

func (m *mockEditor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestServer(t *testing.T, editor *mockEditor) *Server {
	t.Helper()
	srv, err := NewServer(editor, encoder.NewEncoder(encoder.Options{}), Options{MaxUploadBytes: 1 << 20})
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, srv *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func createPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// uploadRequest は Content-Type 付きの multipart アップロード要求を作ります。
func uploadRequest(t *testing.T, id, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/sessions/"+id+"/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
