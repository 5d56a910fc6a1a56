package common

// WSMessage is pushed to every open page when a task changes.
type WSMessage struct {
	Event     string `json:"event"`
	TaskID    int64  `json:"task_id,omitempty"`
	Text      string `json:"text,omitempty"`
	Time      string `json:"time,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}
