package api

import (
	"errors"
	"net/http"

	"github.com/scribeworks/redline/internal/diff"
	"github.com/scribeworks/redline/internal/model"
	"github.com/scribeworks/redline/internal/session"
)

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Diff (stateless fallback path for a raw content pair) ---

type diffRequest struct {
	OldContent string `json:"old_content"`
	NewContent string `json:"new_content"`
}

type diffResponse struct {
	Diffs      []model.Diff    `json:"diffs"`
	Paragraphs []paragraphJSON `json:"paragraphs"`
}

type paragraphJSON struct {
	ID        string       `json:"id"`
	StartLine int          `json:"start_line"`
	EndLine   int          `json:"end_line"`
	Confirmed bool         `json:"confirmed"`
	Changes   []changeJSON `json:"changes"`
}

type changeJSON struct {
	Type     string   `json:"type"`
	Line     int      `json:"line"`
	OldLines []string `json:"old_lines,omitempty"`
	NewLines []string `json:"new_lines,omitempty"`
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	var req diffRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	records, err := diff.Records(req.OldContent, req.NewContent, s.contextChars)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	changes := diff.Merge(diff.Compute(req.OldContent, req.NewContent))
	paragraphs := diff.Group(changes, 0)

	resp := diffResponse{Diffs: records}
	for _, p := range paragraphs {
		resp.Paragraphs = append(resp.Paragraphs, paragraphToJSON(p, false))
	}
	writeJSON(w, http.StatusOK, resp)
}

func paragraphToJSON(p model.Paragraph, confirmed bool) paragraphJSON {
	pj := paragraphJSON{
		ID:        p.ID,
		StartLine: p.StartLine,
		EndLine:   p.EndLine,
		Confirmed: confirmed,
	}
	for _, c := range p.Changes {
		pj.Changes = append(pj.Changes, changeJSON{
			Type:     c.Type.String(),
			Line:     c.Line,
			OldLines: c.OldLines,
			NewLines: c.NewLines,
		})
	}
	return pj
}

// --- Proposal ingestion ---

type proposalRequest struct {
	Doc      string         `json:"doc"`
	Proposal model.Proposal `json:"proposal"`
}

type sessionResponse struct {
	Doc        string          `json:"doc"`
	DiffAreaID string          `json:"diff_area_id"`
	Generation uint64          `json:"generation"`
	Paragraphs []paragraphJSON `json:"paragraphs"`
}

func (s *Server) handleProposal(w http.ResponseWriter, r *http.Request) {
	var req proposalRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Doc == "" {
		writeError(w, http.StatusBadRequest, "doc is required")
		return
	}

	sess, err := s.manager.Open(req.Doc, req.Proposal)
	if err != nil {
		if errors.Is(err, model.ErrMalformedProposal) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sessionToJSON(req.Doc, sess))
}

func sessionToJSON(doc string, sess *session.Session) sessionResponse {
	resp := sessionResponse{
		Doc:        doc,
		DiffAreaID: sess.DiffAreaID,
		Generation: sess.Generation,
	}
	for _, pv := range sess.Paragraphs() {
		resp.Paragraphs = append(resp.Paragraphs, paragraphToJSON(pv.Paragraph, pv.Confirmed))
	}
	return resp
}

// --- Review transitions ---

type confirmRequest struct {
	Doc         string `json:"doc"`
	ParagraphID string `json:"paragraph_id"`
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	s.manager.ConfirmParagraph(req.Doc, req.ParagraphID)

	sess := s.manager.Get(req.Doc)
	if sess == nil {
		writeError(w, http.StatusNotFound, "no session for document")
		return
	}
	writeJSON(w, http.StatusOK, sessionToJSON(req.Doc, sess))
}

type resolveRequest struct {
	Doc string `json:"doc"`
}

func (s *Server) handleConfirmAll(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if err := s.manager.ConfirmAll(req.Doc); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": session.StateApplied.String()})
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	s.manager.Reject(req.Doc)
	writeJSON(w, http.StatusOK, map[string]string{"state": session.StateDiscarded.String()})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	doc := r.URL.Query().Get("doc")
	if doc == "" {
		writeError(w, http.StatusBadRequest, "doc is required")
		return
	}
	sess := s.manager.Get(doc)
	if sess == nil {
		writeError(w, http.StatusNotFound, "no session for document")
		return
	}
	writeJSON(w, http.StatusOK, sessionToJSON(doc, sess))
}
