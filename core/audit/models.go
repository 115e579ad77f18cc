package audit

import "time"

const (
	TypeUserLogin    = "user_login"
	TypeUserApproval = "user_approval"
)

type (
	LogEntry struct {
		ID        string    `json:"id"`
		Type      string    `json:"type"`
		Message   string    `json:"message"`
		ActorID   string    `json:"actor_id,omitempty"`
		TargetID  string    `json:"target_id,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}

	Filter struct {
		Type     string    `query:"type"`
		ActorID  string    `query:"actor_id"`
		From     time.Time `query:"from"`
		To       time.Time `query:"to"`
	}
)

func (f Filter) IsEmpty() bool {
	return f.Type == "" && f.ActorID == "" && f.From.IsZero() && f.To.IsZero()
}
