package admin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/globomantics/cms/internal/web"
)

// TaskDeleted is the task name of the deletion audit event.
const TaskDeleted = "admin_deleted"

// DeletedEvent records a delete made through the admin.
type DeletedEvent struct {
	Resource string `json:"resource"`
	Admin    string `json:"admin"`
	ID       int64  `json:"id"`
}

// Message renders the audit line, e.g. "Album with id 7 was deleted by ada".
func (e DeletedEvent) Message() string {
	name := e.Resource
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf("%s with id %d was deleted by %s", name, e.ID, e.Admin)
}

// emitDeleted hands the event to the job queue. Without one the event is
// logged right away. Failures never undo the delete.
func emitDeleted(c web.Context, ev DeletedEvent) {
	err := c.Enqueue(TaskDeleted, ev)
	switch {
	case err == nil:
	case errors.Is(err, web.ErrJobsNotConfigured):
		c.LogInfo(ev.Message(), "resource", ev.Resource, "id", ev.ID)
	default:
		c.LogError("failed to enqueue admin event", "error", err, "resource", ev.Resource, "id", ev.ID)
	}
}
