package model

import "encoding/json"

// Question belongs to one test. Choices is a JSON-encoded string array; an
// empty list means the question is open-ended.
type Question struct {
	BaseModel
	Text          string `gorm:"type:text;not null" json:"text"`
	CorrectAnswer string `gorm:"type:text;not null" json:"correctAnswer"`
	Choices       string `gorm:"type:json" json:"-"`
	TestID        uint   `gorm:"index;not null" json:"testId"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) SetChoices(choices []string) error {
	if len(choices) == 0 {
		q.Choices = "[]"
		return nil
	}
	data, err := json.Marshal(choices)
	if err != nil {
		return err
	}
	q.Choices = string(data)
	return nil
}

func (q *Question) GetChoices() []string {
	if q.Choices == "" {
		return nil
	}
	var choices []string
	if err := json.Unmarshal([]byte(q.Choices), &choices); err != nil {
		return nil
	}
	return choices
}

// IsOpenEnded reports whether the question has no fixed choices.
func (q *Question) IsOpenEnded() bool {
	return len(q.GetChoices()) == 0
}

func (q Question) MarshalJSON() ([]byte, error) {
	type alias Question
	return json.Marshal(struct {
		alias
		Choices []string `json:"choices"`
	}{
		alias:   alias(q),
		Choices: q.GetChoices(),
	})
}
