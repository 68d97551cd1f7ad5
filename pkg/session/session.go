package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shouni/nano-banana-studio/pkg/domain"
	"github.com/shouni/nano-banana-studio/pkg/encoder"
	"github.com/shouni/nano-banana-studio/pkg/generator"
)

// ImageEncoder はファイルを SourceImage に変換します。
type ImageEncoder interface {
	Encode(ctx context.Context, f encoder.File) (*domain.SourceImage, error)
}

// Session は1ユーザー分の編集ワークフロー（Idle → Loading → Success | Error）を管理します。
// 同時に処理中にできるリクエストは1件だけです。
type Session struct {
	editor  generator.ImageEditor
	encoder ImageEncoder
	now     func() time.Time

	mu     sync.Mutex
	state  State
	image  *domain.SourceImage
	prompt string
	result *domain.EditResult
}

// Snapshot は表示層に渡すセッションの読み取り専用コピーです。
type Snapshot struct {
	State     State
	Prompt    string
	Image     *domain.SourceImage
	Result    *domain.EditResult
	CanSubmit bool
}

// New は Session を初期化します。encoder は nil を許容し、その場合 SelectFile は使えません。
func New(editor generator.ImageEditor, enc ImageEncoder) (*Session, error) {
	if editor == nil {
		return nil, fmt.Errorf("editor (ImageEditor) is required")
	}
	return &Session{
		editor:  editor,
		encoder: enc,
		now:     time.Now,
		state:   StateIdle,
	}, nil
}

// SelectFile はファイルをエンコードして編集元画像に設定します。
// エンコードに失敗した場合、セッションの状態は変わりません。
func (s *Session) SelectFile(ctx context.Context, f encoder.File) error {
	if s.encoder == nil {
		return fmt.Errorf("encoder is not configured")
	}
	if s.State() == StateLoading {
		return domain.ErrBusy
	}
	img, err := s.encoder.Encode(ctx, f)
	if err != nil {
		return err
	}
	return s.SelectImage(img)
}

// SelectImage は編集元画像を丸ごと置き換え、前回の結果をクリアして Idle に戻します。
// プロンプトは保持します。
func (s *Session) SelectImage(img *domain.SourceImage) error {
	if img == nil {
		return domain.ErrNoImage
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateLoading {
		return domain.ErrBusy
	}
	s.image = img
	s.resetLocked()
	return nil
}

// ClearImage は編集元画像と結果を削除して Idle に戻します。
func (s *Session) ClearImage() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateLoading {
		return domain.ErrBusy
	}
	s.image = nil
	s.resetLocked()
	return nil
}

// SetPrompt はプロンプトを更新します。処理中のリクエストには影響しません。
func (s *Session) SetPrompt(prompt string) {
	s.mu.Lock()
	s.prompt = prompt
	s.mu.Unlock()
}

// StartOver は Success / Error から Idle に戻します。画像とプロンプトは保持します。
// 何度呼んでも結果は同じです。
func (s *Session) StartOver() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateLoading {
		return domain.ErrBusy
	}
	s.resetLocked()
	return nil
}

// Submit は現在の画像とプロンプトで編集を1回だけ要求し、完了までブロックします。
// Loading 中の呼び出しは何もせず domain.ErrBusy を返します。
// 失敗時も Failure の結果を返し、error には原因を返します。
func (s *Session) Submit(ctx context.Context) (*domain.EditResult, error) {
	s.mu.Lock()
	if s.state == StateLoading {
		s.mu.Unlock()
		return nil, domain.ErrBusy
	}
	if s.image == nil || strings.TrimSpace(s.prompt) == "" {
		s.mu.Unlock()
		return nil, domain.ErrNotReady
	}
	req := domain.NewEditRequest(s.image, s.prompt)
	s.result = nil
	s.transitionLocked(ctx, StateLoading)
	s.mu.Unlock()

	res, err := s.editor.SubmitEdit(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err != nil:
		s.result = domain.FailureResult(domain.UserMessage(err), s.now())
		s.transitionLocked(ctx, StateError)
	case res == nil || !res.IsImage():
		s.result = domain.FailureResult(domain.ErrNoImageData.Error(), s.now())
		err = domain.ErrNoImageData
		s.transitionLocked(ctx, StateError)
	default:
		s.result = res
		s.transitionLocked(ctx, StateSuccess)
	}
	out := *s.result
	return &out, err
}

// State は現在の状態を返します。
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot は現在のセッション内容のコピーを返します。
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:  s.state,
		Prompt: s.prompt,
		Image:  s.image,
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	snap.CanSubmit = s.state != StateLoading && s.image != nil && strings.TrimSpace(s.prompt) != ""
	return snap
}

func (s *Session) resetLocked() {
	s.result = nil
	s.transitionLocked(context.Background(), StateIdle)
}

func (s *Session) transitionLocked(ctx context.Context, next State) {
	if s.state != next {
		slog.DebugContext(ctx, "セッション状態遷移", "from", s.state.String(), "to", next.String())
	}
	s.state = next
}
