package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vbonduro/brandswipe/internal/catalog"
	"github.com/vbonduro/brandswipe/internal/domain"
	"github.com/vbonduro/brandswipe/internal/session"
)

const (
	sessionCookie = "brandswipe_session"
	sessionHeader = "X-Session-ID"
	maxNameLen    = 100
)

type itemView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Src   string `json:"src"`
	Kind  string `json:"kind"`
}

type sessionView struct {
	session.Session
	Total    int       `json:"total"`
	Finished bool      `json:"finished"`
	Current  *itemView `json:"current,omitempty"`
}

type startSessionRequest struct {
	Name string `json:"name"`
}

type voteRequest struct {
	ItemID string `json:"item_id"`
	Vote   string `json:"vote"`
}

func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	items := make([]itemView, 0, s.catalog.Len())
	for _, item := range s.catalog.Items() {
		items = append(items, s.viewItem(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(items), "items": items})
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name or alias required")
		return
	}
	if len(name) > maxNameLen {
		writeError(w, http.StatusBadRequest, "name too long")
		return
	}

	sess := s.sessions.Create(name)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.Info("session started", "session_id", sess.ID, "user_name", sess.UserName)
	writeJSON(w, http.StatusCreated, s.viewSession(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.viewSession(sess))
}

// handleEndSession forgets the session so another voter can start fresh.
// Votes already recorded are kept.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if id := sessionID(r); id != "" {
		s.sessions.Delete(id)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

// handleSkip moves past the current item without voting, e.g. when its media
// cannot be displayed. A finished session is returned unchanged.
func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	if _, onItem := s.catalog.At(sess.Index); onItem {
		sess, _ = s.sessions.Advance(sess.ID, sess.Index)
	}
	writeJSON(w, http.StatusOK, s.viewSession(sess))
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(w, r)
	if !ok {
		return
	}

	var req voteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	value, err := domain.ParseVoteValue(req.Vote)
	if err != nil {
		writeError(w, http.StatusBadRequest, "vote must be yes, no or maybe")
		return
	}
	itemID := strings.TrimSpace(req.ItemID)
	if _, found := s.catalog.Get(itemID); !found {
		writeError(w, http.StatusNotFound, "item not in deck")
		return
	}

	if err := s.ledger.RecordVote(r.Context(), sess.ID, sess.UserName, itemID, value); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrInvalidVote) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("record vote failed", "session_id", sess.ID, "image_id", itemID, "error", err)
		writeError(w, http.StatusInternalServerError, "vote was not recorded, please try again")
		return
	}

	// Only a vote on the current item moves the session forward; re-voting
	// an earlier item just replaces that vote.
	if current, found := s.catalog.At(sess.Index); found && current.ID == itemID {
		sess, _ = s.sessions.Advance(sess.ID, sess.Index)
	}
	writeJSON(w, http.StatusOK, s.viewSession(sess))
}

func (s *Server) handleTally(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.VoterTally(r.Context(), sess.ID))
}

// currentSession resolves the caller's session, writing an error response
// when there is none.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	id := sessionID(r)
	if id == "" {
		writeError(w, http.StatusUnauthorized, "start a session first")
		return session.Session{}, false
	}
	sess, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusUnauthorized, "session expired, start a new one")
		return session.Session{}, false
	}
	return sess, true
}

func sessionID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(sessionHeader)); id != "" {
		return id
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func (s *Server) viewSession(sess session.Session) sessionView {
	v := sessionView{Session: sess, Total: s.catalog.Len()}
	if item, ok := s.catalog.At(sess.Index); ok {
		iv := s.viewItem(item)
		v.Current = &iv
	} else {
		v.Finished = true
	}
	return v
}

func (s *Server) viewItem(item domain.Item) itemView {
	v := itemView{ID: item.ID, Label: item.Label, Src: item.Location, Kind: "image"}
	if key, local := s.catalog.MediaKey(item); local {
		v.Src = "/media/" + key
	}
	if catalog.IsVideo(item.Location) {
		v.Kind = "video"
	}
	return v
}
