package model

type Customer struct {
	Object      string `json:"object"`
	Id          string `json:"id"`
	ProjectId   string `json:"project_id"`
	FirstSeenAt Millis `json:"first_seen_at"`
	LastSeenAt  Millis `json:"last_seen_at"`
}
