package entity

// Task is a scheduled reminder. Time is always stored as HH:MM:SS.
type Task struct {
	ID   int64  `json:"id"`
	Text string `json:"task"`
	Time string `json:"time"`
}
