// Package sheetstest provides an in-process fake of the spreadsheet script
// endpoint for tests.
package sheetstest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// Server emulates the script endpoint over httptest
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	sheets    map[string][][]any
	users     map[string]string
	lastLead  string
	failNext  map[string]int
	delay     time.Duration
	calls     map[string]int
	rawBodies map[string]string
	// HideFollowUpWrites keeps inserted follow-ups out of subsequent reads,
	// like a sheet that has not caught up yet
	HideFollowUpWrites bool
	Now                func() time.Time
}

// NewServer starts a fake endpoint that is closed when the test ends
func NewServer(t testing.TB) *Server {
	s := &Server{
		sheets:    map[string][][]any{},
		users:     map[string]string{},
		failNext:  map[string]int{},
		calls:     map[string]int{},
		rawBodies: map[string]string{},
		Now:       time.Now,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// SetRows replaces the rows of a sheet
func (s *Server) SetRows(sheet string, rows [][]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[sheet] = rows
}

// SetStringRows replaces the rows of a sheet with string cells
func (s *Server) SetStringRows(sheet string, rows [][]string) {
	conv := make([][]any, len(rows))
	for i, r := range rows {
		conv[i] = make([]any, len(r))
		for j, c := range r {
			conv[i][j] = c
		}
	}
	s.SetRows(sheet, conv)
}

// Rows returns a copy of the rows of a sheet
func (s *Server) Rows(sheet string) [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]any(nil), s.sheets[sheet]...)
}

// AddUser registers login credentials
func (s *Server) AddUser(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = password
}

// SetLastLeadNo sets the getLastLeadNo answer
func (s *Server) SetLastLeadNo(no string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLead = no
}

// FailNext makes the next n calls of action answer with HTTP 500
func (s *Server) FailNext(action string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[action] = n
}

// SetRawResponse makes action answer with body verbatim
func (s *Server) SetRawResponse(action, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawBodies[action] = body
}

// SetDelay delays every answer
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Calls returns how many times action was called
func (s *Server) Calls(action string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[action]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	action := r.Form.Get("action")

	s.mu.Lock()
	s.calls[action]++
	delay := s.delay
	fail := s.failNext[action] > 0
	if fail {
		s.failNext[action]--
	}
	raw, hasRaw := s.rawBodies[action]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if fail {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	if hasRaw {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(raw))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch action {
	case "getLeads", "getEnquiries":
		writeJSON(w, map[string]any{"success": true, "data": nonNil(s.sheets[r.Form.Get("sheetName")])})
	case "getFollowUps":
		writeJSON(w, map[string]any{"success": true, "data": nonNil(s.sheets["Flw-Up"])})
	case "getLastLeadNo":
		writeJSON(w, map[string]any{"lastLeadNo": s.lastLead})
	case "insert":
		var row []any
		if err := json.Unmarshal([]byte(r.Form.Get("rowData")), &row); err != nil {
			writeJSON(w, map[string]any{"success": false, "error": "bad rowData"})
			return
		}
		sheet := r.Form.Get("sheetName")
		s.sheets[sheet] = append(s.sheets[sheet], row)
		if sheet == "FMS" && len(row) > 1 {
			s.lastLead = fmt.Sprint(row[1])
		}
		writeJSON(w, map[string]any{"success": true})
	case "insertFollowUp":
		if !s.HideFollowUpWrites {
			s.sheets["Flw-Up"] = append(s.sheets["Flw-Up"], []any{
				s.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
				r.Form.Get("leadNo"),
				r.Form.Get("leadStatus"),
				r.Form.Get("nextFollowupDate"),
				r.Form.Get("whatDidCustomerSay"),
			})
		}
		writeJSON(w, map[string]any{"success": true})
	case "loginUser":
		pw, ok := s.users[r.Form.Get("username")]
		switch {
		case !ok:
			writeJSON(w, map[string]any{"success": false, "error": "invalid-username"})
		case pw != r.Form.Get("password"):
			writeJSON(w, map[string]any{"success": false, "error": "invalid-password"})
		default:
			writeJSON(w, map[string]any{"success": true, "username": r.Form.Get("username")})
		}
	default:
		writeJSON(w, map[string]any{"success": false, "error": "unknown action"})
	}
}

func nonNil(rows [][]any) [][]any {
	if rows == nil {
		return [][]any{}
	}
	return rows
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
