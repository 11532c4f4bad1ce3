package restclient

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func (e envelope) message() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Error != "":
		return e.Error
	default:
		return "request was not successful"
	}
}

type progressDTO struct {
	LessonID     flexibleID            `json:"lessonId"`
	Progress     float64               `json:"progress"`
	Vocabularies []vocabularyStatusDTO `json:"vocabularies"`
}

type vocabularyStatusDTO struct {
	Vocabulary   vocabularyDTO `json:"vocabulary"`
	Status       string        `json:"status"`
	LastReviewed *string       `json:"lastReviewed"`
}

type vocabularyDTO struct {
	ID            flexibleID `json:"id"`
	Word          string     `json:"word"`
	Meaning       string     `json:"meaning"`
	Pronunciation string     `json:"pronunciation"`
}

type statusUpdateDTO struct {
	Status string `json:"status"`
}

// flexibleID accepts both string and numeric identifiers.
type flexibleID string

func (id *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = flexibleID(n.String())
	return nil
}

var reviewedLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly}

func parseReviewed(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil
	}
	for _, layout := range reviewedLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			ts = ts.UTC()
			return &ts
		}
	}
	return nil
}
