package domain

import "time"

type ChatTurn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

// Session is the per-user interaction state. It is loaded, changed and saved
// explicitly by the service; the pipeline never reads it.
type Session struct {
	ID           string            `json:"id"`
	Preferences  *Preference       `json:"preferences,omitempty"`
	Recommended  []string          `json:"recommended,omitempty"`
	Conversation []ChatTurn        `json:"conversation,omitempty"`
	Bookmarks    []string          `json:"bookmarks,omitempty"`
	Comparison   []string          `json:"comparison,omitempty"`
	Deadlines    map[string]string `json:"deadlines,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func addUnique(list []string, v string) ([]string, bool) {
	for _, existing := range list {
		if existing == v {
			return list, false
		}
	}
	return append(list, v), true
}

// AddBookmark reports whether the university was newly bookmarked.
func (s *Session) AddBookmark(name string) bool {
	var added bool
	s.Bookmarks, added = addUnique(s.Bookmarks, name)
	return added
}

func (s *Session) AddComparison(name string) bool {
	var added bool
	s.Comparison, added = addUnique(s.Comparison, name)
	return added
}

func (s *Session) SetDeadline(university, deadline string) {
	if s.Deadlines == nil {
		s.Deadlines = make(map[string]string)
	}
	s.Deadlines[university] = deadline
}
