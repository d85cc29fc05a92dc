package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"streamai/models"
	"streamai/utils"
)

// Mode names the screen the profile workflow is on.
type Mode string

const (
	ModeSelect             Mode = "SELECT"
	ModeManage             Mode = "MANAGE"
	ModeEdit               Mode = "EDIT"
	ModeAdd                Mode = "ADD"
	ModeAvatarSelection    Mode = "AVATAR_SELECTION"
	ModeDeleteConfirmation Mode = "DELETE_CONFIRMATION"
)

var (
	ErrProfileLimit      = errors.New("profile limit reached")
	ErrNameRequired      = errors.New("profile name required")
	ErrUnknownProfile    = errors.New("unknown profile")
	ErrInvalidTransition = errors.New("action not available in current mode")
	ErrNoPINEntry        = errors.New("no pin entry in progress")
	ErrPINMismatch       = errors.New("pin mismatch")
)

// profileRepo is the slice of the profile repository the controller uses.
type profileRepo interface {
	List(ctx context.Context, accountID string) []models.Profile
	Create(ctx context.Context, accountID string, draft models.Draft) models.Profile
	Update(ctx context.Context, existing models.Profile, draft models.Draft) (models.Profile, error)
	Delete(ctx context.Context, id string) error
}

// activeSession is the slice of ActiveSession the controller uses.
type activeSession interface {
	Activate(ctx context.Context, profile models.Profile)
	Clear()
	Current() (models.Profile, bool)
}

// PINPrompt describes the state of an open PIN overlay.
type PINPrompt struct {
	ProfileID string `json:"profileId"`
	Entered   int    `json:"entered"`
	Failed    bool   `json:"failed"`
}

// Controller drives the profile workflow: a single mode at a time, a draft
// for the add/edit forms, and a PIN overlay that can sit on top of any mode.
// All transitions are serialized under one mutex; side effects that leave the
// process (activation, persistence) run after the lock is released.
type Controller struct {
	repo        profileRepo
	session     activeSession
	accountID   string
	maxProfiles int
	settleDelay time.Duration

	mu         sync.Mutex
	mode       Mode
	parentMode Mode
	profiles   []models.Profile
	draft      models.Draft
	editingID  string
	pinTarget  string
	pinBuffer  string
	pinFailed  bool
}

// NewController creates a controller in SELECT mode with no profiles loaded.
// settleDelay is how long a completed PIN entry rests on screen before it is
// verified; tests pass zero.
func NewController(repo profileRepo, session activeSession, accountID string, maxProfiles int, settleDelay time.Duration) *Controller {
	return &Controller{
		repo:        repo,
		session:     session,
		accountID:   accountID,
		maxProfiles: maxProfiles,
		settleDelay: settleDelay,
		mode:        ModeSelect,
	}
}

// Refresh reloads the account's profiles from the repository.
func (c *Controller) Refresh(ctx context.Context) {
	profiles := c.repo.List(ctx, c.accountID)
	c.mu.Lock()
	c.profiles = profiles
	c.mu.Unlock()
}

// SelectProfile picks a profile on the SELECT screen. Unlocked profiles
// activate immediately; locked profiles open the PIN overlay instead.
func (c *Controller) SelectProfile(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.mode != ModeSelect {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	profile, ok := c.findLocked(id)
	if !ok {
		c.mu.Unlock()
		return ErrUnknownProfile
	}
	if profile.Locked() {
		c.pinTarget = profile.ID
		c.pinBuffer = ""
		c.pinFailed = false
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	c.session.Activate(ctx, profile)
	return nil
}

// EnterManage switches from profile selection to management.
func (c *Controller) EnterManage() error {
	return c.transition(ModeSelect, ModeManage)
}

// Done leaves management and returns to selection.
func (c *Controller) Done() error {
	return c.transition(ModeManage, ModeSelect)
}

// EnterAdd opens the add form with a fresh draft and a random default avatar.
// Rejected once the account is at its profile limit.
func (c *Controller) EnterAdd() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeSelect && c.mode != ModeManage {
		return ErrInvalidTransition
	}
	if len(c.profiles) >= c.maxProfiles {
		return ErrProfileLimit
	}
	c.draft = models.NewDraft(models.RandomDefaultAvatar())
	c.editingID = ""
	c.mode = ModeAdd
	return nil
}

// EnterEdit opens the edit form for a profile, seeding the draft from its
// persisted values.
func (c *Controller) EnterEdit(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeManage {
		return ErrInvalidTransition
	}
	profile, ok := c.findLocked(id)
	if !ok {
		return ErrUnknownProfile
	}
	c.draft = models.DraftFromProfile(profile)
	c.editingID = id
	c.mode = ModeEdit
	return nil
}

// EnterAvatarSelection opens the avatar picker from the add or edit form,
// remembering which one to return to.
func (c *Controller) EnterAvatarSelection() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeAdd && c.mode != ModeEdit {
		return ErrInvalidTransition
	}
	c.parentMode = c.mode
	c.mode = ModeAvatarSelection
	return nil
}

// PickAvatar writes the chosen avatar into the draft and returns to the form.
func (c *Controller) PickAvatar(url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeAvatarSelection {
		return ErrInvalidTransition
	}
	c.draft.AvatarURL = url
	c.mode = c.parentMode
	return nil
}

// CancelAvatarSelection returns to the form without touching the draft.
func (c *Controller) CancelAvatarSelection() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeAvatarSelection {
		return ErrInvalidTransition
	}
	c.mode = c.parentMode
	return nil
}

// Cancel discards the draft and returns from the add or edit form to
// management.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeAdd && c.mode != ModeEdit {
		return ErrInvalidTransition
	}
	c.draft = models.Draft{}
	c.editingID = ""
	c.mode = ModeManage
	return nil
}

// SetDraft replaces the working draft with the submitted form state. PIN
// input is sanitized to digits here so a half-typed entry never sticks.
func (c *Controller) SetDraft(draft models.Draft) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeAdd && c.mode != ModeEdit {
		return ErrInvalidTransition
	}
	draft.PIN = utils.SanitizePIN(draft.PIN)
	c.draft = draft
	return nil
}

// Save persists the draft: a create in ADD, an update in EDIT. A failed
// update is logged and the locally updated profile kept; the workflow moves
// on to MANAGE either way.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.mode != ModeAdd && c.mode != ModeEdit {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	if !c.draft.Valid() {
		c.mu.Unlock()
		return ErrNameRequired
	}
	mode := c.mode
	draft := c.draft
	editingID := c.editingID
	c.mu.Unlock()

	if mode == ModeAdd {
		profile := c.repo.Create(ctx, c.accountID, draft)
		c.mu.Lock()
		c.profiles = append(c.profiles, profile)
		c.finishFormLocked()
		c.mu.Unlock()
		return nil
	}

	c.mu.Lock()
	existing, ok := c.findLocked(editingID)
	c.mu.Unlock()
	if !ok {
		return ErrUnknownProfile
	}

	updated, err := c.repo.Update(ctx, existing, draft)
	if err != nil {
		log.Printf("[session] update of %s did not reach the backend, continuing with local copy: %v", editingID, err)
	}

	c.mu.Lock()
	for i := range c.profiles {
		if c.profiles[i].ID == updated.ID {
			c.profiles[i] = updated
		}
	}
	c.finishFormLocked()
	c.mu.Unlock()

	if current, active := c.session.Current(); active && current.ID == updated.ID {
		c.session.Activate(ctx, updated)
	}
	return nil
}

// PromptDelete asks for confirmation before deleting the profile being
// edited.
func (c *Controller) PromptDelete() error {
	return c.transition(ModeEdit, ModeDeleteConfirmation)
}

// KeepProfile dismisses the delete confirmation and returns to the form.
func (c *Controller) KeepProfile() error {
	return c.transition(ModeDeleteConfirmation, ModeEdit)
}

// ConfirmDelete deletes the profile being edited. A failed remote delete is
// logged; the profile is removed locally regardless, and the session cleared
// if it was the active one.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	if c.mode != ModeDeleteConfirmation {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	id := c.editingID
	c.mu.Unlock()

	if err := c.repo.Delete(ctx, id); err != nil {
		log.Printf("[session] delete of %s did not reach the backend, removing locally: %v", id, err)
	}

	c.mu.Lock()
	kept := c.profiles[:0]
	for _, profile := range c.profiles {
		if profile.ID != id {
			kept = append(kept, profile)
		}
	}
	c.profiles = kept
	c.finishFormLocked()
	c.mu.Unlock()

	if current, active := c.session.Current(); active && current.ID == id {
		c.session.Clear()
	}
	return nil
}

// EnterPINDigits feeds digits into the open PIN overlay. Input is sanitized
// to digits; once four have accumulated the entry settles briefly on screen,
// is re-checked against the overlay state in case of a cancel or restart in
// the meantime, then compared. A match activates the profile and closes the
// overlay; a mismatch clears the buffer and flags the failure.
func (c *Controller) EnterPINDigits(ctx context.Context, digits string) error {
	c.mu.Lock()
	if c.pinTarget == "" {
		c.mu.Unlock()
		return ErrNoPINEntry
	}
	target, ok := c.findLocked(c.pinTarget)
	if !ok || !target.Locked() {
		// Target vanished or was unlocked while the overlay was open; the
		// overlay dismisses itself rather than erroring.
		log.Printf("[session] pin overlay target %s is gone, dismissing", c.pinTarget)
		c.clearPINLocked()
		c.mu.Unlock()
		return nil
	}
	c.pinBuffer = utils.SanitizePIN(c.pinBuffer + digits)
	if len(c.pinBuffer) < utils.PINLength {
		c.mu.Unlock()
		return nil
	}
	entered := c.pinBuffer
	targetID := c.pinTarget
	c.mu.Unlock()

	if c.settleDelay > 0 {
		time.Sleep(c.settleDelay)
	}

	c.mu.Lock()
	if c.pinTarget != targetID || c.pinBuffer != entered {
		// Entry was cancelled or restarted during the settle delay.
		c.mu.Unlock()
		return nil
	}
	if entered != *target.PIN {
		c.pinBuffer = ""
		c.pinFailed = true
		c.mu.Unlock()
		return ErrPINMismatch
	}
	c.clearPINLocked()
	c.mu.Unlock()

	c.session.Activate(ctx, target)
	return nil
}

// CancelPIN dismisses the PIN overlay without activating anything.
func (c *Controller) CancelPIN() {
	c.mu.Lock()
	c.clearPINLocked()
	c.mu.Unlock()
}

// Mode returns the current workflow mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Profiles returns a snapshot of the loaded profiles.
func (c *Controller) Profiles() []models.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Profile, len(c.profiles))
	copy(out, c.profiles)
	return out
}

// Draft returns the working draft and whether a form is open.
func (c *Controller) Draft() (models.Draft, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	open := c.mode == ModeAdd || c.mode == ModeEdit || c.mode == ModeAvatarSelection || c.mode == ModeDeleteConfirmation
	return c.draft, open
}

// EditingID returns the id of the profile being edited, if any.
func (c *Controller) EditingID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editingID
}

// PINOverlay returns the PIN prompt state and whether the overlay is open.
func (c *Controller) PINOverlay() (PINPrompt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pinTarget == "" {
		return PINPrompt{}, false
	}
	return PINPrompt{ProfileID: c.pinTarget, Entered: len(c.pinBuffer), Failed: c.pinFailed}, true
}

func (c *Controller) transition(from, to Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != from {
		return ErrInvalidTransition
	}
	c.mode = to
	return nil
}

func (c *Controller) findLocked(id string) (models.Profile, bool) {
	for _, profile := range c.profiles {
		if profile.ID == id {
			return profile, true
		}
	}
	return models.Profile{}, false
}

func (c *Controller) clearPINLocked() {
	c.pinTarget = ""
	c.pinBuffer = ""
	c.pinFailed = false
}

func (c *Controller) finishFormLocked() {
	c.draft = models.Draft{}
	c.editingID = ""
	c.mode = ModeManage
}
