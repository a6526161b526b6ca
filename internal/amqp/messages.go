package amqp

import (
	"encoding/json"
	"time"
)

// KeywordSavedMessage tells the worker a user saved a classification
// keyword. It carries only identifiers; the worker reads current state from
// the database, so a stale message is harmless.
type KeywordSavedMessage struct {
	UserID     string    `json:"user_id"`
	Keyword    string    `json:"keyword"`
	CategoryID string    `json:"category_id"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewKeywordSavedMessage(userID, keyword, categoryID string) *KeywordSavedMessage {
	return &KeywordSavedMessage{
		UserID:     userID,
		Keyword:    keyword,
		CategoryID: categoryID,
		Timestamp:  time.Now(),
	}
}

func (m *KeywordSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func KeywordSavedMessageFromJSON(data []byte) (*KeywordSavedMessage, error) {
	var msg KeywordSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ImportCompletedMessage announces a finished statement import for
// downstream consumers (notifications, cache warmers).
type ImportCompletedMessage struct {
	UserID      string    `json:"user_id"`
	Imported    int       `json:"imported"`
	Categorized int       `json:"categorized"`
	Skipped     int       `json:"skipped"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewImportCompletedMessage(userID string, imported, categorized, skipped int) *ImportCompletedMessage {
	return &ImportCompletedMessage{
		UserID:      userID,
		Imported:    imported,
		Categorized: categorized,
		Skipped:     skipped,
		Timestamp:   time.Now(),
	}
}

func (m *ImportCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ImportCompletedMessageFromJSON(data []byte) (*ImportCompletedMessage, error) {
	var msg ImportCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
