package inbox

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/welldanyogia/folio-backend/internal/models"
)

var errUnavailable = errors.New("connection refused")

// fakeAPI is an in-memory admin API. Hooks run before a response is produced
// and may block to hold a request in flight.
type fakeAPI struct {
	mu       sync.Mutex
	messages []models.Message

	listCalls   []models.PageRequest
	getCalls    []string
	updateCalls []models.MessageUpdate
	deleteCalls []string

	listErr   error
	getErr    error
	updateErr error
	deleteErr error

	listHook   func(call int, req models.PageRequest)
	updateHook func(id string)
}

func newFakeAPI(messages []models.Message) *fakeAPI {
	return &fakeAPI{messages: append([]models.Message{}, messages...)}
}

func (f *fakeAPI) ListMessages(_ context.Context, req models.PageRequest) (*models.PageResponse, error) {
	f.mu.Lock()
	call := len(f.listCalls)
	f.listCalls = append(f.listCalls, req)
	hook := f.listHook
	f.mu.Unlock()

	if hook != nil {
		hook(call, req)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	var matching []models.Message
	var unread int64
	for _, m := range f.messages {
		if m.Status == models.StatusUnread {
			unread++
		}
		if status, ok := req.Status.Status(); ok && m.Status != status {
			continue
		}
		matching = append(matching, m)
	}

	total := len(matching)
	start := (req.Page - 1) * req.PageSize
	end := start + req.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	page := append([]models.Message{}, matching[start:end]...)

	totalPages := (total + req.PageSize - 1) / req.PageSize
	pagination := models.Pagination{
		CurrentPage: req.Page,
		TotalPages:  totalPages,
		TotalCount:  int64(total),
		PageSize:    req.PageSize,
		HasNext:     req.Page < totalPages,
		HasPrevious: req.Page > 1,
		UnreadCount: unread,
	}
	if len(page) > 0 {
		pagination.LastDocID = page[len(page)-1].ID
	}

	return &models.PageResponse{Messages: page, Pagination: pagination}, nil
}

func (f *fakeAPI) GetMessage(_ context.Context, id string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls = append(f.getCalls, id)

	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, m := range f.messages {
		if m.ID == id {
			found := m
			return &found, nil
		}
	}
	return nil, &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "message not found"}
}

func (f *fakeAPI) UpdateMessage(_ context.Context, id string, update models.MessageUpdate) error {
	f.mu.Lock()
	f.updateCalls = append(f.updateCalls, update)
	hook := f.updateHook
	f.mu.Unlock()

	if hook != nil {
		hook(id)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.messages {
		if f.messages[i].ID == id {
			if update.Status != nil {
				f.messages[i].Status = *update.Status
			}
			if update.AdminNotes != nil {
				notes := *update.AdminNotes
				f.messages[i].AdminNotes = &notes
			}
			return nil
		}
	}
	return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "message not found"}
}

func (f *fakeAPI) DeleteMessage(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)

	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.messages {
		if f.messages[i].ID == id {
			f.messages = append(f.messages[:i], f.messages[i+1:]...)
			return nil
		}
	}
	return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "message not found"}
}

func (f *fakeAPI) setListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *fakeAPI) lastList() models.PageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls[len(f.listCalls)-1]
}

func (f *fakeAPI) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCalls)
}

// mutateStore changes a stored message behind the controller's back
func (f *fakeAPI) mutateStore(id string, update func(*models.Message)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.messages {
		if f.messages[i].ID == id {
			update(&f.messages[i])
		}
	}
}
