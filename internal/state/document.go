package state

import (
	"encoding/json"
	"fmt"

	"foodhub/internal/stall"
)

// Token identifies one issued ticket, for example "CHA-001". The empty Token
// means no token and is persisted as JSON null.
type Token string

// NoToken is the zero Token.
const NoToken Token = ""

// IsZero reports whether t carries no token.
func (t Token) IsZero() bool { return t == NoToken }

func (t Token) String() string { return string(t) }

// MarshalJSON encodes the empty token as null.
func (t Token) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

// UnmarshalJSON accepts a string or null.
func (t *Token) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = NoToken
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*t = Token(value)
	return nil
}

// QueueState is the per-stall queue.
type QueueState struct {
	Next    int     `json:"next"`
	Queue   []Token `json:"queue"`
	Current Token   `json:"current"`
}

// DefaultQueueState returns the initial state for a stall.
func DefaultQueueState() QueueState {
	return QueueState{Next: 1, Queue: []Token{}, Current: NoToken}
}

// Waiting returns the number of queued tokens.
func (q QueueState) Waiting() int { return len(q.Queue) }

func (q QueueState) clone() QueueState {
	out := q
	out.Queue = make([]Token, len(q.Queue))
	copy(out.Queue, q.Queue)
	return out
}

func (q QueueState) validate() error {
	if q.Next < 1 {
		return fmt.Errorf("next must be >= 1, got %d", q.Next)
	}
	seen := make(map[Token]struct{}, len(q.Queue))
	for _, tok := range q.Queue {
		if tok.IsZero() {
			return fmt.Errorf("queue contains an empty token")
		}
		if _, dup := seen[tok]; dup {
			return fmt.Errorf("queue contains duplicate token %s", tok)
		}
		seen[tok] = struct{}{}
	}
	return nil
}

// Document maps every known stall to its queue state.
type Document map[stall.Stall]QueueState

// NewDocument returns the default document with every stall at
// {next:1, queue:[], current:null}.
func NewDocument() Document {
	doc := make(Document, len(stall.All()))
	for _, s := range stall.All() {
		doc[s] = DefaultQueueState()
	}
	return doc
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for s, q := range d {
		out[s] = q.clone()
	}
	return out
}

// Get returns the state for s. Stalls missing from d report the default.
func (d Document) Get(s stall.Stall) QueueState {
	if q, ok := d[s]; ok {
		return q
	}
	return DefaultQueueState()
}

// encodeDocument serializes d as compact JSON keyed by stall key. Map keys
// are sorted by encoding/json, so equal documents produce equal bytes.
func encodeDocument(d Document) ([]byte, error) {
	out := make(Document, len(d))
	for s, q := range d {
		if !s.Valid() {
			continue
		}
		if q.Queue == nil {
			q.Queue = []Token{}
		}
		out[s] = q
	}
	payload, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode state document: %w", err)
	}
	return payload, nil
}

// decodeDocument parses payload. It returns errCorrupt for anything that is
// not a JSON object of valid queue states. Unknown stall keys are dropped and
// missing stalls are filled with defaults; repaired reports either case.
func decodeDocument(payload []byte) (doc Document, repaired bool, err error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, false, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if raw == nil {
		return nil, false, fmt.Errorf("%w: document is null", errCorrupt)
	}

	doc = make(Document, len(stall.All()))
	for key, body := range raw {
		s := stall.Parse(key)
		if !s.Valid() {
			repaired = true
			continue
		}
		var q QueueState
		if err := json.Unmarshal(body, &q); err != nil {
			return nil, false, fmt.Errorf("%w: stall %s: %v", errCorrupt, key, err)
		}
		if q.Queue == nil {
			q.Queue = []Token{}
		}
		if err := q.validate(); err != nil {
			return nil, false, fmt.Errorf("%w: stall %s: %v", errCorrupt, key, err)
		}
		doc[s] = q
	}
	for _, s := range stall.All() {
		if _, ok := doc[s]; !ok {
			doc[s] = DefaultQueueState()
			repaired = true
		}
	}
	return doc, repaired, nil
}
