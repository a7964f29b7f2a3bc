package server

import (
	"context"
	"net/http"

	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/internal/services"
)

type contentRequest struct {
	Content string `json:"content"`
}

type reportRequest struct {
	Reason int `json:"reason"`
}

type keywordsRequest struct {
	Keywords []string `json:"keywords"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type registerResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

func (s *Server) reviewListHandler(w http.ResponseWriter, r *http.Request) {
	filter, req, err := parseFeedQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	page, err := s.feed.List(r.Context(), filter, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) reviewDetailHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ph := services.LocalizedPlaceholders(s.localizer(r))
	detail, err := s.feed.Detail(r.Context(), id, viewerID(r.Context()), ph)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) reviewCreateHandler(w http.ResponseWriter, r *http.Request) {
	var sub services.Submission
	if err := decodeJSON(w, r, &sub); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.surveys.SubmitReview(r.Context(), viewerID(r.Context()), sub)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) reviewDeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.feed.DeleteReview(r.Context(), viewerID(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) reviewLikeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status, err := s.likes.ToggleReview(r.Context(), viewerID(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) commentCreateHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var body contentRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	comment, err := s.comments.Create(r.Context(), viewerID(r.Context()), reviewID, body.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) commentReplyHandler(w http.ResponseWriter, r *http.Request) {
	parentID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var body contentRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	comment, err := s.comments.Reply(r.Context(), viewerID(r.Context()), parentID, body.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) commentEditHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var body contentRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	comment, err := s.comments.Edit(r.Context(), viewerID(r.Context()), id, body.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (s *Server) commentDeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.comments.Delete(r.Context(), viewerID(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) commentLikeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status, err := s.likes.ToggleComment(r.Context(), viewerID(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) reviewReportHandler(w http.ResponseWriter, r *http.Request) {
	s.report(w, r, s.reports.ReportReview)
}

func (s *Server) commentReportHandler(w http.ResponseWriter, r *http.Request) {
	s.report(w, r, s.reports.ReportComment)
}

type reportFunc func(ctx context.Context, reporterID, targetID, reason int) (*services.ReportTicket, error)

func (s *Server) report(w http.ResponseWriter, r *http.Request, send reportFunc) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var body reportRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	ticket, err := send(r.Context(), viewerID(r.Context()), id, body.Reason)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ticket)
}

func (s *Server) joinSurveyHandler(w http.ResponseWriter, r *http.Request) {
	var sub services.Submission
	if err := decodeJSON(w, r, &sub); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.surveys.SubmitJoinSurvey(r.Context(), viewerID(r.Context()), sub)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) keywordsHandler(w http.ResponseWriter, r *http.Request) {
	var body keywordsRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	keywords, err := s.accounts.ReplaceKeywords(r.Context(), viewerID(r.Context()), body.Keywords)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, keywordsRequest{Keywords: keywords})
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.accounts.Register(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{User: user, AccessToken: token})
}

func (s *Server) withdrawHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.Withdraw(r.Context(), viewerID(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.accounts.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) profileHandler(w http.ResponseWriter, r *http.Request) {
	profile, err := s.accounts.Profile(r.Context(), viewerID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) inquiryCreateHandler(w http.ResponseWriter, r *http.Request) {
	var in services.InquiryInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	q, err := s.inquiries.Create(r.Context(), viewerID(r.Context()), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (s *Server) inquiryListHandler(w http.ResponseWriter, r *http.Request) {
	req, err := parsePageQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	page, err := s.inquiries.List(r.Context(), viewerID(r.Context()), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) inquirySolveHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q, err := s.inquiries.Solve(r.Context(), viewerID(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) inquiryDeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.inquiries.Delete(r.Context(), viewerID(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
