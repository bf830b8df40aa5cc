package ws

import (
	"sync"

	"github.com/rs/zerolog"

	"tryonjewel-server/internal/domain/model"
	"tryonjewel-server/internal/domain/ports/adapter"
)

var _ adapter.JobEventPublisher = (*Hub)(nil)

// jobUpdate is the wire shape pushed to subscribers. Result URLs are not
// included; a client that sees a terminal status fetches the job record.
type jobUpdate struct {
	JobID        string          `json:"jobId"`
	Status       model.JobStatus `json:"status"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
}

// Hub fans job status updates out to websocket subscribers keyed by job id.
// Publishing never blocks: a subscriber that cannot keep up is dropped.
type Hub struct {
	register   chan *client
	unregister chan *client
	updates    chan jobUpdate

	mu   sync.RWMutex
	subs map[string]map[*client]struct{}

	log *zerolog.Logger
}

func NewHub(log *zerolog.Logger) *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		updates:    make(chan jobUpdate, 64),
		subs:       make(map[string]map[*client]struct{}),
		log:        log,
	}
}

// Run owns the subscriber map. Call it once in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.subs[c.jobID] == nil {
				h.subs[c.jobID] = make(map[*client]struct{})
			}
			h.subs[c.jobID][c] = struct{}{}
			h.mu.Unlock()
			h.log.Debug().Str("job_id", c.jobID).Msg("ws subscriber registered")

		case c := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.subs[c.jobID]; ok {
				if _, ok := set[c]; ok {
					delete(set, c)
					close(c.send)
					if len(set) == 0 {
						delete(h.subs, c.jobID)
					}
				}
			}
			h.mu.Unlock()

		case u := <-h.updates:
			h.mu.RLock()
			for c := range h.subs[u.JobID] {
				select {
				case c.send <- u:
				default:
					// Slow consumer; reader loop will clean it up.
					h.log.Warn().Str("job_id", u.JobID).Msg("ws subscriber too slow, dropping update")
				}
			}
			h.mu.RUnlock()
		}
	}
}

// PublishJobUpdate implements adapter.JobEventPublisher. It is safe to call
// from any goroutine and never blocks the caller.
func (h *Hub) PublishJobUpdate(job *model.GenerationJob) {
	u := jobUpdate{JobID: job.ID, Status: job.Status, ErrorMessage: job.ErrorMessage}
	select {
	case h.updates <- u:
	default:
		h.log.Warn().Str("job_id", job.ID).Msg("ws update queue full, update dropped")
	}
}
