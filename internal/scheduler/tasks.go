package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskPartnerInvite = "partners.invite"

type PartnerInvitePayload struct {
	ProspectID   string `json:"prospectId"`
	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail"`
	CompanyName  string `json:"companyName"`
}

func NewPartnerInviteTask(payload PartnerInvitePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPartnerInvite, data), nil
}

func ParsePartnerInvitePayload(task *asynq.Task) (PartnerInvitePayload, error) {
	var payload PartnerInvitePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return PartnerInvitePayload{}, err
	}
	return payload, nil
}
