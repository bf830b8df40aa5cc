package adapter

import "tryonjewel-server/internal/domain/model"

// JobEventPublisher pushes job state changes to whoever is listening
// (websocket subscribers). Publishing is fire-and-forget: a job update must
// never fail because nobody is connected.
type JobEventPublisher interface {
	PublishJobUpdate(job *model.GenerationJob)
}
