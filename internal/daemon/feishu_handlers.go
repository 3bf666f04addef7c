package daemon

import (
	"context"
	"io"
	"net/http"

	"paperflow/internal/logging"
	"paperflow/internal/services/arxiv"
	"paperflow/internal/services/feishu"
	"paperflow/internal/stage"
	"paperflow/internal/workflow"
)

const maxCallbackBody = 1 << 20

// handleFeishuCallback answers webhook deliveries from the Feishu bot.
// Feishu retries any delivery not answered within a few seconds, so the
// handler acknowledges immediately and runs the workflow in the
// background; results come back to the chat as messages, not as the
// HTTP response.
func (s *apiServer) handleFeishuCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	messenger := s.daemon.feishu
	if messenger == nil {
		s.writeError(w, http.StatusNotFound, "feishu integration disabled")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "read body")
		return
	}
	callback, err := feishu.ParseCallback(body)
	if err != nil {
		s.log().Warn("malformed feishu callback", logging.Error(err))
		s.writeError(w, http.StatusBadRequest, "malformed callback")
		return
	}

	if callback.Challenge != "" {
		s.writeJSON(w, http.StatusOK, map[string]string{"challenge": callback.Challenge})
		return
	}
	if !messenger.VerifyToken(callback.Token) {
		s.writeError(w, http.StatusUnauthorized, "verification token mismatch")
		return
	}
	if s.dedup.Seen(callback.MessageID) {
		s.writeJSON(w, http.StatusOK, map[string]string{})
		return
	}

	switch {
	case callback.CardAction != nil:
		go s.resumeFromCard(callback)
	case callback.Text != "":
		go s.triggerFromMessage(callback)
	}
	s.writeJSON(w, http.StatusOK, map[string]string{})
}

func (s *apiServer) triggerFromMessage(callback feishu.Callback) {
	logger := s.log()
	sourceURL, ok := feishu.ExtractURL(callback.Text)
	if !ok {
		s.notify(callback.ChatID, "Send me a paper link (arXiv or PDF) and I will process it.")
		return
	}

	ctx := context.Background()
	outcome, err := s.daemon.engine.Trigger(ctx, sourceURL, arxiv.DetectKind(sourceURL))
	if err != nil {
		logger.Error("trigger from feishu message failed",
			logging.String("source_url", sourceURL), logging.Error(err))
		s.notify(callback.ChatID, "Processing failed: "+err.Error())
		return
	}

	switch outcome.State {
	case workflow.StateSuspended:
		if err := s.daemon.feishu.SendDecisionCard(ctx, callback.ChatID, *outcome.Payload); err != nil {
			logger.Error("send decision card failed", logging.Error(err))
		}
	default:
		if err := s.daemon.feishu.SendCompletion(ctx, callback.ChatID, outcome.Run); err != nil {
			logger.Error("send completion failed", logging.Error(err))
		}
	}
}

func (s *apiServer) resumeFromCard(callback feishu.Callback) {
	logger := s.log()
	action := callback.CardAction

	ctx := context.Background()
	outcome, err := s.daemon.engine.Resume(ctx, action.RunKey, stage.ResumeInput{
		Decision: action.Decision,
		Comment:  action.Comment,
	})
	if err != nil {
		logger.Error("resume from feishu card failed",
			logging.String(logging.FieldRunKey, action.RunKey), logging.Error(err))
		s.notify(callback.ChatID, "Resume failed: "+err.Error())
		return
	}
	if err := s.daemon.feishu.SendCompletion(ctx, callback.ChatID, outcome.Run); err != nil {
		logger.Error("send completion failed", logging.Error(err))
	}
}

func (s *apiServer) notify(chatID, text string) {
	if chatID == "" {
		return
	}
	if err := s.daemon.feishu.SendText(context.Background(), chatID, text); err != nil {
		s.log().Warn("send feishu text failed", logging.Error(err))
	}
}
