package models

// AudioRefs holds the remote audio references for both sides of a phrase
type AudioRefs struct {
	Target string `json:"target" db:"audio_target_url"`
	Native string `json:"native" db:"audio_native_url"`
}

// PublishState marks whether an authored row is visible to learners
type PublishState string

const (
	Published   PublishState = "published"
	Unpublished PublishState = "draft"
)

// Item represents a phrase authored in the external content sheet
type Item struct {
	ID           string       `json:"id" db:"id"`
	Code         string       `json:"code" db:"code"`
	TextTarget   string       `json:"text_target" db:"text_target"`
	TextNative   string       `json:"text_native" db:"text_native"`
	Audio        AudioRefs    `json:"audio"`
	Category     Category     `json:"category" db:"category"`
	PublishState PublishState `json:"publish_state" db:"publish_state"`
}
