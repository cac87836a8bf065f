package models

// ChatRequest is the payload sent to POST /api/chat.
type ChatRequest struct {
	Query string `json:"query"`
}

// NormalizedReply is the guaranteed-shape answer returned to the UI.
// Suggestions is never nil once it leaves the normalizer.
type NormalizedReply struct {
	Response    string   `json:"response"`
	Suggestions []string `json:"suggestions"`
}

// ChatTurn is one completed exchange held by a client-side conversation.
type ChatTurn struct {
	Query       string   `json:"query"`
	Response    string   `json:"response"`
	Suggestions []string `json:"suggestions"`
}
