package model

import "time"

// ConversationTurn is one question/answer pair in a Q&A session. Turns live
// only in the session cache; they are cleared at session end unless exported.
type ConversationTurn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}
