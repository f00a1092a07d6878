package inbox

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	apperrors "github.com/welldanyogia/folio-backend/internal/errors"
	"github.com/welldanyogia/folio-backend/internal/models"
	"github.com/welldanyogia/folio-backend/internal/validator"
)

// ErrOperationPending is returned when the same action on the same message is still in flight
var ErrOperationPending = errors.New("operation already pending for this message")

// Action names a mutating command
type Action string

const (
	ActionMarkStatus Action = "mark_status"
	ActionSaveNote   Action = "save_note"
	ActionDelete     Action = "delete"
)

// CommandKey identifies a mutating command by action and target message
type CommandKey struct {
	Action Action
	ID     string
}

// CommandState is the observable lifecycle of a mutating command
type CommandState string

const (
	CommandPending   CommandState = "pending"
	CommandConfirmed CommandState = "confirmed"
	CommandFailed    CommandState = "failed"
)

// State is a point-in-time copy of the controller's view state
type State struct {
	// Request parameters for the current view
	CurrentPage  int
	PageSize     int
	StatusFilter models.StatusFilter

	// LastDocID is the last message id of the most recently applied page
	LastDocID string

	Messages    []models.Message
	Pagination  models.Pagination
	UnreadCount int64

	Loading    bool
	Err        error
	SelectedID string
}

// Controller owns the admin inbox list state and keeps it consistent with the API.
// It is safe for concurrent use.
type Controller struct {
	api    API
	logger *slog.Logger

	mu    sync.Mutex
	state State

	lastReq    models.PageRequest
	hasLastReq bool

	// issued is the sequence number of the newest fetch; applied of the newest one reflected in state
	issued  uint64
	applied uint64

	commands map[CommandKey]CommandState
}

// NewController creates a Controller with default page parameters
func NewController(api API, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		api:    api,
		logger: logger.With(slog.String("component", "inbox_controller")),
		state: State{
			CurrentPage:  validator.DefaultPage,
			PageSize:     validator.DefaultPageSize,
			StatusFilter: models.FilterAll,
			Messages:     []models.Message{},
		},
		commands: make(map[CommandKey]CommandState),
	}
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Messages = make([]models.Message, len(c.state.Messages))
	copy(s.Messages, c.state.Messages)
	return s
}

// Command reports the state of the command for key, if one was issued
func (c *Controller) Command(key CommandKey) (CommandState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.commands[key]
	return state, ok
}

// Pending reports whether any command is in flight
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, state := range c.commands {
		if state == CommandPending {
			return true
		}
	}
	return false
}

// Mount loads the first page with default size and no filter
func (c *Controller) Mount(ctx context.Context) error {
	return c.fetch(ctx, models.PageRequest{
		Page:     validator.DefaultPage,
		PageSize: validator.DefaultPageSize,
		Status:   models.FilterAll,
	})
}

// SetPageSize changes the page size and returns to page 1
func (c *Controller) SetPageSize(ctx context.Context, size int) error {
	c.mu.Lock()
	req := models.PageRequest{
		Page:     1,
		PageSize: validator.CoercePageSize(size),
		Status:   c.state.StatusFilter,
	}
	c.mu.Unlock()
	return c.fetch(ctx, req)
}

// SetFilter changes the status filter and returns to page 1
func (c *Controller) SetFilter(ctx context.Context, filter models.StatusFilter) error {
	c.mu.Lock()
	req := models.PageRequest{
		Page:     1,
		PageSize: c.state.PageSize,
		Status:   models.ParseStatusFilter(string(filter)),
	}
	c.mu.Unlock()
	return c.fetch(ctx, req)
}

// GoToPage navigates to page n. Forward navigation carries the last seen id as cursor.
func (c *Controller) GoToPage(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}

	c.mu.Lock()
	req := models.PageRequest{
		Page:     n,
		PageSize: c.state.PageSize,
		Status:   c.state.StatusFilter,
	}
	if n > c.state.CurrentPage {
		req.LastDocID = c.state.LastDocID
	}
	c.mu.Unlock()
	return c.fetch(ctx, req)
}

// Refresh repeats the last request verbatim, or mounts when nothing was fetched yet
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	req, ok := c.lastReq, c.hasLastReq
	c.mu.Unlock()

	if !ok {
		return c.Mount(ctx)
	}
	return c.fetch(ctx, req)
}

// Select marks a message as the detail item
func (c *Controller) Select(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SelectedID = id
}

// fetch issues a page request and applies its outcome unless a newer one was applied first
func (c *Controller) fetch(ctx context.Context, req models.PageRequest) error {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.lastReq, c.hasLastReq = req, true
	c.state.CurrentPage = req.Page
	c.state.PageSize = req.PageSize
	c.state.StatusFilter = req.Status
	c.state.Loading = true
	c.mu.Unlock()

	resp, err := c.api.ListMessages(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq == c.issued {
		c.state.Loading = false
	}

	if seq < c.applied {
		c.logger.Debug("discarding stale page response",
			slog.Uint64("seq", seq),
			slog.Uint64("applied", c.applied))
		return err
	}
	c.applied = seq

	if err != nil {
		c.logger.Warn("failed to fetch inbox page",
			slog.Int("page", req.Page),
			slog.Int("page_size", req.PageSize),
			slog.String("status", string(req.Status)),
			slog.Any("error", err))
		c.state.Err = err
		if req.Page == 1 {
			c.state.Messages = []models.Message{}
			c.state.Pagination = models.Pagination{}
			c.state.LastDocID = ""
		}
		return err
	}

	c.state.Err = nil
	c.state.Messages = append([]models.Message{}, resp.Messages...)
	c.state.Pagination = resp.Pagination
	c.state.UnreadCount = resp.Pagination.UnreadCount
	c.state.LastDocID = resp.Pagination.LastDocID
	return nil
}

// MarkStatus optimistically sets a message's status and persists it
func (c *Controller) MarkStatus(ctx context.Context, id string, status models.Status) error {
	if !status.Valid() {
		return apperrors.ErrInvalidStatus
	}

	return c.mutate(ctx, CommandKey{Action: ActionMarkStatus, ID: id},
		func(s *State) {
			replaceMessage(s, id, func(m *models.Message) { m.Status = status })
		},
		func(ctx context.Context) error {
			return c.api.UpdateMessage(ctx, id, models.MessageUpdate{Status: &status})
		})
}

// SaveNote optimistically sets a message's admin notes and persists them
func (c *Controller) SaveNote(ctx context.Context, id, note string) error {
	return c.mutate(ctx, CommandKey{Action: ActionSaveNote, ID: id},
		func(s *State) {
			replaceMessage(s, id, func(m *models.Message) {
				n := note
				m.AdminNotes = &n
			})
		},
		func(ctx context.Context) error {
			return c.api.UpdateMessage(ctx, id, models.MessageUpdate{AdminNotes: &note})
		})
}

// Delete optimistically removes a message and deletes it
func (c *Controller) Delete(ctx context.Context, id string) error {
	return c.mutate(ctx, CommandKey{Action: ActionDelete, ID: id},
		func(s *State) {
			removeMessage(s, id)
			if s.SelectedID == id {
				s.SelectedID = ""
			}
		},
		func(ctx context.Context) error {
			return c.api.DeleteMessage(ctx, id)
		})
}

// mutate runs one command: optimistic apply, remote call, then resync on failure
func (c *Controller) mutate(ctx context.Context, key CommandKey, apply func(*State), call func(context.Context) error) error {
	c.mu.Lock()
	if c.commands[key] == CommandPending {
		c.mu.Unlock()
		return ErrOperationPending
	}
	c.commands[key] = CommandPending
	apply(&c.state)
	c.mu.Unlock()

	err := call(ctx)

	c.mu.Lock()
	if err == nil {
		c.commands[key] = CommandConfirmed
		c.mu.Unlock()
		return nil
	}
	c.commands[key] = CommandFailed
	c.mu.Unlock()

	c.logger.Warn("inbox command failed, resynchronizing",
		slog.String("action", string(key.Action)),
		slog.String("id", key.ID),
		slog.Any("error", err))

	c.resync(ctx, key)
	return err
}

// resync replaces the optimistic view of one message with the server's.
// A failed delete, or a failed single-record read, falls back to refetching the page.
func (c *Controller) resync(ctx context.Context, key CommandKey) {
	if key.Action != ActionDelete {
		message, err := c.api.GetMessage(ctx, key.ID)
		switch {
		case err == nil:
			c.mu.Lock()
			replaceMessage(&c.state, key.ID, func(m *models.Message) { *m = *message })
			c.mu.Unlock()
			return
		case IsNotFound(err):
			c.mu.Lock()
			removeMessage(&c.state, key.ID)
			if c.state.SelectedID == key.ID {
				c.state.SelectedID = ""
			}
			c.mu.Unlock()
			return
		}
		c.logger.Warn("failed to resync message", slog.String("id", key.ID), slog.Any("error", err))
	}

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("failed to resync inbox page", slog.Any("error", err))
	}
}

func replaceMessage(s *State, id string, update func(*models.Message)) {
	for i := range s.Messages {
		if s.Messages[i].ID == id {
			m := s.Messages[i]
			update(&m)
			s.Messages[i] = m
			return
		}
	}
}

func removeMessage(s *State, id string) {
	kept := make([]models.Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	s.Messages = kept
}
