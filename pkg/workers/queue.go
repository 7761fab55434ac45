package workers

import (
	"github.com/Laky-64/gologging"
	"github.com/amarnathcjd/gogram/telegram"
	"github.com/google/uuid"

	"github.com/scdlbot/scdl/pkg/delivery"
)

// queueSize bounds how many downloads may wait. Beyond it, enqueues are
// dropped with a log line rather than blocking the update handler.
const queueSize = 128

var jobs = make(chan delivery.Job, queueSize)

// Enqueue assigns the job an id and puts it on the queue. It reports whether
// the job was accepted.
func Enqueue(job delivery.Job) bool {
	job.ID = uuid.NewString()
	select {
	case jobs <- job:
		gologging.InfoF("queued job %s: track %d for user %d", job.ID, job.TrackID, job.UserID)
		return true
	default:
		gologging.WarnF("queue full, dropping track %d for user %d", job.TrackID, job.UserID)
		return false
	}
}

// StartConsumer launches the single supervised worker that drains the queue.
// One job runs at a time; a panicking delivery loses only its own job.
func StartConsumer(c *telegram.Client) {
	Supervise("download-queue", func() {
		for job := range jobs {
			delivery.Deliver(c, job)
		}
	})
}
