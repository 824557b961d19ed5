package models

// Counter is the document at metadata/user_counter holding the last issued index number.
type Counter struct {
	Current int64 `json:"current"`
}
