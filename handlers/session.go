package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"streamai/models"
	sessionsvc "streamai/services/session"
)

type sessionController interface {
	Refresh(ctx context.Context)
	SelectProfile(ctx context.Context, id string) error
	EnterManage() error
	Done() error
	EnterAdd() error
	EnterEdit(id string) error
	EnterAvatarSelection() error
	PickAvatar(url string) error
	CancelAvatarSelection() error
	Cancel() error
	SetDraft(draft models.Draft) error
	Save(ctx context.Context) error
	PromptDelete() error
	KeepProfile() error
	ConfirmDelete(ctx context.Context) error
	EnterPINDigits(ctx context.Context, digits string) error
	CancelPIN()
	Mode() sessionsvc.Mode
	Profiles() []models.Profile
	Draft() (models.Draft, bool)
	EditingID() string
	PINOverlay() (sessionsvc.PINPrompt, bool)
}

type activeSession interface {
	Current() (models.Profile, bool)
}

var _ sessionController = (*sessionsvc.Controller)(nil)
var _ activeSession = (*sessionsvc.ActiveSession)(nil)

// SessionHandler exposes the profile workflow over HTTP. Every mutation
// returns the full session state so clients can render from one response.
type SessionHandler struct {
	Controller sessionController
	Session    activeSession
}

func NewSessionHandler(controller sessionController, session activeSession) *SessionHandler {
	return &SessionHandler{Controller: controller, Session: session}
}

// RegisterRoutes mounts the session endpoints on the router.
func (h *SessionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/session", h.State).Methods(http.MethodGet)
	r.HandleFunc("/api/session/refresh", h.Refresh).Methods(http.MethodPost)
	r.HandleFunc("/api/session/select", h.Select).Methods(http.MethodPost)
	r.HandleFunc("/api/session/manage", h.action(h.Controller.EnterManage)).Methods(http.MethodPost)
	r.HandleFunc("/api/session/done", h.action(h.Controller.Done)).Methods(http.MethodPost)
	r.HandleFunc("/api/session/add", h.action(h.Controller.EnterAdd)).Methods(http.MethodPost)
	r.HandleFunc("/api/session/edit/{id}", h.Edit).Methods(http.MethodPost)
	r.HandleFunc("/api/session/draft", h.Draft).Methods(http.MethodPut)
	r.HandleFunc("/api/session/save", h.Save).Methods(http.MethodPost)
	r.HandleFunc("/api/session/cancel", h.action(h.Controller.Cancel)).Methods(http.MethodPost)
	r.HandleFunc("/api/session/avatar", h.action(h.Controller.EnterAvatarSelection)).Methods(http.MethodPost)
	r.HandleFunc("/api/session/avatar/pick", h.PickAvatar).Methods(http.MethodPost)
	r.HandleFunc("/api/session/avatar/cancel", h.action(h.Controller.CancelAvatarSelection)).Methods(http.MethodPost)
	r.HandleFunc("/api/session/delete", h.action(h.Controller.PromptDelete)).Methods(http.MethodPost)
	r.HandleFunc("/api/session/delete/confirm", h.ConfirmDelete).Methods(http.MethodPost)
	r.HandleFunc("/api/session/delete/keep", h.action(h.Controller.KeepProfile)).Methods(http.MethodPost)
	r.HandleFunc("/api/session/pin", h.EnterPIN).Methods(http.MethodPost)
	r.HandleFunc("/api/session/pin", h.CancelPIN).Methods(http.MethodDelete)
	r.HandleFunc("/api/avatars", h.Avatars).Methods(http.MethodGet)
}

type sessionState struct {
	Mode          sessionsvc.Mode        `json:"mode"`
	Profiles      []models.Profile       `json:"profiles"`
	Draft         *models.Draft          `json:"draft,omitempty"`
	EditingID     string                 `json:"editingId,omitempty"`
	PINPrompt     *sessionsvc.PINPrompt  `json:"pinPrompt,omitempty"`
	ActiveProfile *models.Profile        `json:"activeProfile,omitempty"`
}

// State renders the full workflow state.
func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	h.writeState(w)
}

// Refresh reloads the account's profiles and renders the state.
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.Controller.Refresh(r.Context())
	h.writeState(w)
}

// Select picks a profile; locked profiles open the PIN overlay.
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ID string `json:"id"`
	}
	if err := decodeBody(r, &request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Controller.SelectProfile(r.Context(), request.ID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeState(w)
}

// Edit opens the edit form for the profile in the path.
func (h *SessionHandler) Edit(w http.ResponseWriter, r *http.Request) {
	if err := h.Controller.EnterEdit(mux.Vars(r)["id"]); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeState(w)
}

// Draft replaces the working draft with the submitted form state.
func (h *SessionHandler) Draft(w http.ResponseWriter, r *http.Request) {
	var draft models.Draft
	if err := decodeBody(r, &draft); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Controller.SetDraft(draft); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeState(w)
}

// Save persists the draft and moves the workflow to MANAGE.
func (h *SessionHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.Controller.Save(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeState(w)
}

// PickAvatar sets the chosen avatar on the draft.
func (h *SessionHandler) PickAvatar(w http.ResponseWriter, r *http.Request) {
	var request struct {
		URL string `json:"url"`
	}
	if err := decodeBody(r, &request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Controller.PickAvatar(request.URL); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeState(w)
}

// ConfirmDelete deletes the profile being edited.
func (h *SessionHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Controller.ConfirmDelete(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeState(w)
}

// EnterPIN feeds digits into the open PIN overlay.
func (h *SessionHandler) EnterPIN(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Digits string `json:"digits"`
	}
	if err := decodeBody(r, &request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Controller.EnterPINDigits(r.Context(), request.Digits); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeState(w)
}

// CancelPIN dismisses the PIN overlay.
func (h *SessionHandler) CancelPIN(w http.ResponseWriter, r *http.Request) {
	h.Controller.CancelPIN()
	h.writeState(w)
}

// Avatars returns the avatar catalog grouped by category.
func (h *SessionHandler) Avatars(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, models.AvatarCatalog)
}

func (h *SessionHandler) action(fn func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(); err != nil {
			h.writeError(w, err)
			return
		}
		h.writeState(w)
	}
}

func (h *SessionHandler) writeState(w http.ResponseWriter) {
	state := sessionState{
		Mode:      h.Controller.Mode(),
		Profiles:  h.Controller.Profiles(),
		EditingID: h.Controller.EditingID(),
	}
	if draft, open := h.Controller.Draft(); open {
		state.Draft = &draft
	}
	if prompt, open := h.Controller.PINOverlay(); open {
		state.PINPrompt = &prompt
	}
	if profile, ok := h.Session.Current(); ok {
		state.ActiveProfile = &profile
	}
	writeJSON(w, state)
}

func (h *SessionHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, sessionsvc.ErrUnknownProfile):
		status = http.StatusNotFound
	case errors.Is(err, sessionsvc.ErrNameRequired):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, sessionsvc.ErrProfileLimit),
		errors.Is(err, sessionsvc.ErrInvalidTransition),
		errors.Is(err, sessionsvc.ErrNoPINEntry):
		status = http.StatusConflict
	case errors.Is(err, sessionsvc.ErrPINMismatch):
		status = http.StatusForbidden
	}
	http.Error(w, err.Error(), status)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
