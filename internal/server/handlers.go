package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shouni/nano-banana-studio/pkg/domain"
	"github.com/shouni/nano-banana-studio/pkg/encoder"
	"github.com/shouni/nano-banana-studio/pkg/session"
	"github.com/shouni/nano-banana-studio/pkg/utils"
)

type imageJSON struct {
	Name       string `json:"name"`
	MIMEType   string `json:"mime_type"`
	PreviewURL string `json:"preview_url"`
}

type resultJSON struct {
	Kind         string    `json:"kind"`
	DataURI      string    `json:"data_uri,omitempty"`
	Message      string    `json:"message,omitempty"`
	DownloadName string    `json:"download_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type sessionJSON struct {
	ID        string        `json:"id"`
	State     string        `json:"state"`
	Prompt    string        `json:"prompt"`
	Image     *imageJSON    `json:"image,omitempty"`
	Result    *resultJSON   `json:"result,omitempty"`
	CanSubmit bool          `json:"can_submit"`
}

type errorJSON struct {
	Error string `json:"error"`
}

func toSessionJSON(id string, snap session.Snapshot) sessionJSON {
	out := sessionJSON{
		ID:        id,
		State:     snap.State.String(),
		Prompt:    snap.Prompt,
		CanSubmit: snap.CanSubmit,
	}
	if snap.Image != nil {
		out.Image = &imageJSON{
			Name:       snap.Image.Name,
			MIMEType:   snap.Image.MIMEType,
			PreviewURL: snap.Image.PreviewURL,
		}
	}
	if r := snap.Result; r != nil {
		out.Result = &resultJSON{
			Kind:      r.Kind.String(),
			DataURI:   r.DataURI,
			Message:   r.Message,
			CreatedAt: r.CreatedAt,
		}
		if r.IsImage() {
			out.Result.DownloadName = r.DownloadName()
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("レスポンスの書き込みに失敗しました", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorJSON{Error: domain.UserMessage(err)})
}

// statusFor はセッション操作のエラーを HTTP ステータスに変換します。
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrInvalidFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrFileTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrEmptyFile):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotReady):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoImage):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// lookup は URL の {id} に対応するセッションを返します。見つからなければ 404 を書き込みます。
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (string, *session.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := s.sessions.get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorJSON{Error: "session not found"})
		return id, nil, false
	}
	return id, sess, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := session.New(s.editor, s.encoder)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	id := s.sessions.add(sess)
	s.metrics.activeSessions.Set(float64(s.sessions.len()))
	writeJSON(w, http.StatusCreated, toSessionJSON(id, sess.Snapshot()))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSessionJSON(id, sess.Snapshot()))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sessions.remove(id) {
		writeJSON(w, http.StatusNotFound, errorJSON{Error: "session not found"})
		return
	}
	s.metrics.activeSessions.Set(float64(s.sessions.len()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectImage(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if s.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(w, http.StatusRequestEntityTooLarge, domain.ErrFileTooLarge)
			return
		}
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "multipart field \"file\" is required"})
		return
	}
	defer file.Close()

	f := encoder.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	if err := sess.SelectFile(r.Context(), f); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionJSON(id, sess.Snapshot()))
}

func (s *Server) handleClearImage(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := sess.ClearImage(); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionJSON(id, sess.Snapshot()))
}

func (s *Server) handleSetPrompt(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid JSON body"})
		return
	}
	sess.SetPrompt(body.Prompt)
	writeJSON(w, http.StatusOK, toSessionJSON(id, sess.Snapshot()))
}

// handleSubmit は編集が完了するまでブロックします。
// リモート側の失敗はセッションに Error として記録し、502 とともにスナップショットを返します。
// Loading に入った編集はクライアントが切断しても中断しません。
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	_, err := sess.Submit(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, domain.ErrBusy), errors.Is(err, domain.ErrNotReady):
		writeError(w, statusFor(err), err)
	case err != nil:
		slog.WarnContext(r.Context(), "画像編集に失敗しました", "session", id, "error", err)
		writeJSON(w, http.StatusBadGateway, toSessionJSON(id, sess.Snapshot()))
	default:
		writeJSON(w, http.StatusOK, toSessionJSON(id, sess.Snapshot()))
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := sess.StartOver(); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionJSON(id, sess.Snapshot()))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	res := sess.Snapshot().Result
	if !res.IsImage() {
		writeError(w, http.StatusNotFound, domain.ErrNoImage)
		return
	}
	mimeType, data, err := utils.DecodeDataURI(res.DataURI)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.DownloadName()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
