package events

import "time"

// Event type codes for the job agent lifecycle.
const (
	TypeUserRegistered    = "USER_REGISTERED"
	TypeRunCompleted      = "AGENT_RUN_COMPLETED"
	TypeApprovalRequested = "APPROVAL_REQUESTED"
	TypeJobsFound         = "JOBS_FOUND"
)

func NewUserRegistered(userId, email string) Event {
	return BaseEvent{
		Type: TypeUserRegistered,
		Data: map[string]interface{}{
			"user_id": userId,
			"email":   email,
		},
		OccurredAt: time.Now().UTC(),
	}
}

func NewRunCompleted(userId, threadId, state string) Event {
	return BaseEvent{
		Type: TypeRunCompleted,
		Data: map[string]interface{}{
			"user_id":   userId,
			"thread_id": threadId,
			"state":     state,
		},
		OccurredAt: time.Now().UTC(),
	}
}

func NewApprovalRequested(userId, threadId string, tools []string) Event {
	return BaseEvent{
		Type: TypeApprovalRequested,
		Data: map[string]interface{}{
			"user_id":   userId,
			"thread_id": threadId,
			"tools":     tools,
		},
		OccurredAt: time.Now().UTC(),
	}
}

func NewJobsFound(userId, threadId string, count int) Event {
	return BaseEvent{
		Type: TypeJobsFound,
		Data: map[string]interface{}{
			"user_id":   userId,
			"thread_id": threadId,
			"count":     count,
		},
		OccurredAt: time.Now().UTC(),
	}
}
