package capture

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/applytrack/applytrackd/internal/models"
)

// State is the capture session's lifecycle position.
type State string

const (
	StateIdle       State = "idle"
	StateOpen       State = "open"
	StateSubmitting State = "submitting"
)

var (
	// ErrSessionOpen means a capture form is already showing; the new trigger
	// is ignored so a second detection never stacks a second form.
	ErrSessionOpen = errors.New("capture session already open")
	// ErrNotOpen means Submit was called without an open session.
	ErrNotOpen = errors.New("capture session is not open")
	// ErrMissingRequired blocks submission while company or position is blank.
	ErrMissingRequired = errors.New("company and position are required")
	// ErrRetriesExhausted is terminal for one submission attempt; the session
	// stays open so the user can correct and resubmit.
	ErrRetriesExhausted = errors.New("failed to save job application after retries")
	// ErrSaveRejected means the storage owner answered but declined the save.
	ErrSaveRejected = errors.New("storage owner rejected the save")
	// ErrCancelled means the session was closed while a submit was in flight.
	ErrCancelled = errors.New("capture session cancelled")
)

// SaveResponse is the storage owner's answer across the message boundary.
type SaveResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Sender crosses the message boundary with the single saveJobApplication
// verb. A returned error is a transport failure and is retried; a response
// with Success=false is a storage decision and is not.
type Sender interface {
	SaveJobApplication(ctx context.Context, record models.JobRecord) (SaveResponse, error)
}

// CheckpointStore persists the pending-capture slot so a page reload can
// resurrect an open form.
type CheckpointStore interface {
	SavePending(p models.PendingCapture) error
	ClearPending() error
}

// Config carries the session timings. Tests inject near-zero delays.
type Config struct {
	MaxRetries int           // transport retries after the first attempt
	RetryDelay time.Duration // fixed, no backoff growth
	CloseDelay time.Duration // success message display time before auto-close
}

// DefaultConfig matches the extension's fixed timings.
func DefaultConfig() Config {
	return Config{MaxRetries: 3, RetryDelay: time.Second, CloseDelay: 2 * time.Second}
}

// SubmitForm is what the user confirmed or edited in the form.
type SubmitForm struct {
	Company  string
	Position string
	Location string
	Salary   string
	Notes    string
}

// Session owns the confirmation-and-submit flow for one capture surface.
// At most one form is open at a time; the open/closed flag lives here as
// explicit state rather than free-floating module state.
type Session struct {
	cfg         Config
	sender      Sender
	checkpoints CheckpointStore
	logger      *zap.Logger

	mu         sync.Mutex
	state      State
	draft      models.DraftCapture
	closed     chan struct{} // closed by Cancel; stops pending retries
	closeTimer *time.Timer   // success auto-close
}

func NewSession(sender Sender, checkpoints CheckpointStore, cfg Config, logger *zap.Logger) *Session {
	if cfg.MaxRetries == 0 && cfg.RetryDelay == 0 && cfg.CloseDelay == 0 {
		cfg = DefaultConfig()
	}
	return &Session{
		cfg:         cfg,
		sender:      sender,
		checkpoints: checkpoints,
		logger:      logger,
		state:       StateIdle,
	}
}

// State returns the current lifecycle position.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft returns the capture being edited.
func (s *Session) Draft() models.DraftCapture {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Open moves idle → open with the given draft. fromCheckpoint marks a
// resurrection after reload: the checkpoint already exists and extraction is
// not re-run, so nothing is written. A fresh detection checkpoints
// {show:true, jobData} immediately so a mid-capture reload loses nothing.
func (s *Session) Open(draft models.DraftCapture, fromCheckpoint bool) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrSessionOpen
	}
	s.state = StateOpen
	s.draft = draft
	s.closed = make(chan struct{})
	s.mu.Unlock()

	if !fromCheckpoint {
		if err := s.checkpoints.SavePending(models.PendingCapture{Show: true, JobData: draft}); err != nil {
			// Checkpointing is best effort: the form still shows, a reload
			// just won't resurrect it.
			s.logger.Warn("failed to checkpoint pending capture", zap.Error(err))
		}
	}
	s.logger.Info("capture session opened",
		zap.String("site", draft.Site),
		zap.Bool("resurrected", fromCheckpoint))
	return nil
}

// Submit validates the form, assembles the final record and hands it across
// the message boundary. Transport failures are retried up to MaxRetries times
// with a fixed delay; Cancel stops the retry loop. On acknowledged success the
// checkpoint is cleared and the session auto-closes after CloseDelay. On any
// failure the session returns to an editable open state.
func (s *Session) Submit(ctx context.Context, form SubmitForm) (models.JobRecord, error) {
	s.mu.Lock()
	if s.state != StateOpen {
		s.mu.Unlock()
		return models.JobRecord{}, ErrNotOpen
	}
	company := strings.TrimSpace(form.Company)
	position := strings.TrimSpace(form.Position)
	if company == "" || position == "" {
		// Inline validation error, no state transition.
		s.mu.Unlock()
		return models.JobRecord{}, ErrMissingRequired
	}
	s.state = StateSubmitting
	draft := s.draft
	closed := s.closed
	s.mu.Unlock()

	today := models.Today()
	record := models.JobRecord{
		Company:     company,
		Position:    position,
		Location:    strings.TrimSpace(form.Location),
		Salary:      strings.TrimSpace(form.Salary),
		Notes:       strings.TrimSpace(form.Notes),
		URL:         draft.URL,
		Site:        draft.Site,
		Description: draft.Description,
		Status:      models.StatusApplied,
		AppliedDate: today,
		LastUpdate:  today,
	}

	for attempt := 0; ; attempt++ {
		resp, err := s.sender.SaveJobApplication(ctx, record)
		if err == nil {
			if !resp.Success {
				s.reopen()
				if resp.Error != "" {
					s.logger.Error("save rejected", zap.String("reason", resp.Error))
				}
				return models.JobRecord{}, ErrSaveRejected
			}
			s.succeed()
			return record, nil
		}

		if attempt >= s.cfg.MaxRetries {
			s.logger.Error("save failed, retries exhausted", zap.Error(err), zap.Int("attempts", attempt+1))
			s.reopen()
			return models.JobRecord{}, ErrRetriesExhausted
		}
		s.logger.Warn("save failed, retrying", zap.Error(err), zap.Duration("delay", s.cfg.RetryDelay))

		timer := time.NewTimer(s.cfg.RetryDelay)
		select {
		case <-timer.C:
		case <-closed:
			timer.Stop()
			return models.JobRecord{}, ErrCancelled
		case <-ctx.Done():
			timer.Stop()
			s.reopen()
			return models.JobRecord{}, ctx.Err()
		}
	}
}

// Cancel is the explicit close/cancel path: it clears the checkpoint, stops
// any pending retry or auto-close timer, and persists nothing.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.state == StateIdle {
		s.mu.Unlock()
		return
	}
	s.state = StateIdle
	if s.closed != nil {
		close(s.closed)
		s.closed = nil
	}
	if s.closeTimer != nil {
		s.closeTimer.Stop()
		s.closeTimer = nil
	}
	s.mu.Unlock()

	if err := s.checkpoints.ClearPending(); err != nil {
		s.logger.Warn("failed to clear pending capture", zap.Error(err))
	}
	s.logger.Info("capture session cancelled")
}

// succeed clears the checkpoint and schedules the auto-close that follows the
// success message. The session stays non-idle until the timer fires so a new
// detection during the success display is still a no-op. If the session was
// cancelled while the save was in flight there is nothing left to close, and
// a later session may already own the checkpoint, so nothing happens.
func (s *Session) succeed() {
	s.mu.Lock()
	if s.state != StateSubmitting {
		s.mu.Unlock()
		return
	}
	// The timer belongs to this lifecycle only. It keys on the closed
	// channel it was scheduled under, so a stale timer cannot close a
	// session a later detection opened.
	closed := s.closed
	s.closeTimer = time.AfterFunc(s.cfg.CloseDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed != closed {
			return
		}
		s.state = StateIdle
		close(s.closed)
		s.closed = nil
		s.closeTimer = nil
	})
	s.mu.Unlock()

	if err := s.checkpoints.ClearPending(); err != nil {
		s.logger.Warn("failed to clear pending capture", zap.Error(err))
	}
	s.logger.Info("job application saved, closing shortly")
}

// reopen returns a failed submission to the editable open state.
func (s *Session) reopen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		s.state = StateOpen
	}
}
