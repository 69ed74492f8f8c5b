package jobs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/tempest-stays/tempest/internal/analytics"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardExport writes dashboard CSV reports to the export directory.
	TaskDashboardExport = "dashboard:export"
)

var payloadValidator = validator.New()

// DashboardExportPayload selects the hosts and range of an export run.
// An empty HostID exports every host with an active property.
type DashboardExportPayload struct {
	HostID string `json:"host_id,omitempty" validate:"omitempty,uuid"`
	Range  string `json:"range,omitempty" validate:"omitempty,oneof=week month year"`
}

// Host parses HostID. ok is false when the payload targets all hosts.
func (p DashboardExportPayload) Host() (id uuid.UUID, ok bool, err error) {
	if p.HostID == "" {
		return uuid.Nil, false, nil
	}
	id, err = uuid.Parse(p.HostID)
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, true, nil
}

// RangeName is the normalized report range.
func (p DashboardExportPayload) RangeName() analytics.RangeName {
	return analytics.NormalizeRange(p.Range)
}

// NewDashboardExportTask constructs an asynq task after validating payload.
func NewDashboardExportTask(payload DashboardExportPayload) (*asynq.Task, error) {
	payload.Range = strings.ToLower(strings.TrimSpace(payload.Range))
	if err := payloadValidator.Struct(payload); err != nil {
		return nil, fmt.Errorf("jobs: dashboard export payload: %w", err)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardExport, data), nil
}

func decodeDashboardExport(task *asynq.Task) (DashboardExportPayload, error) {
	var payload DashboardExportPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return payload, err
		}
	}
	payload.Range = strings.ToLower(strings.TrimSpace(payload.Range))
	if err := payloadValidator.Struct(payload); err != nil {
		return payload, err
	}
	return payload, nil
}
