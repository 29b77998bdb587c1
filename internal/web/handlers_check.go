package web

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/recipientcsv/internal/core"
	"github.com/JonMunkholm/recipientcsv/internal/logging"
	"github.com/JonMunkholm/recipientcsv/internal/recipient"
	"github.com/JonMunkholm/recipientcsv/internal/web/templates"
)

// maxFormMemory caps how much of a multipart upload is held in memory; the
// rest spills to temporary files.
const maxFormMemory = 32 << 20

// CheckResponse is the JSON body returned for a checked batch.
type CheckResponse struct {
	core.Summary

	// Messages explains every error kind counted in the summary.
	Messages map[string]core.UserMessage `json:"messages,omitempty"`
}

// checkRequest is a parsed upload: the table plus the template and sending
// context it is checked against.
type checkRequest struct {
	template          *core.Template
	table             io.Reader
	size              int64
	serviceID         uuid.UUID
	allowList         []string
	remainingMessages int
	closer            io.Closer
}

// handleCheck streams an uploaded table through the processor and returns
// the batch report.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	channel, err := core.ParseChannel(chi.URLParam(r, "channel"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	if err := s.deps.Limiter.Acquire(r.Context()); err != nil {
		if errors.Is(err, core.ErrTooManyBatches) {
			w.Header().Set("Retry-After", "5")
		}
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer s.deps.Limiter.Release()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	req, err := parseCheckRequest(r, channel)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if req.closer != nil {
		defer req.closer.Close()
	}
	req.template.QRCodeMaxBytes = s.cfg.Validation.QRCodeMaxBytes

	allow, err := s.resolveAllowList(r, req)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadGateway)
		return
	}

	// The processor adds batch_id itself; errors logged here need it too.
	batchID := uuid.New()
	opts := s.processorOptions(req.template, allow)
	opts.BatchID = batchID
	opts.RemainingMessages = req.remainingMessages
	opts.Logger = logging.FromContext(r.Context())

	logger := opts.Logger.With("batch_id", batchID.String())
	r = r.WithContext(logging.WithLogger(r.Context(), logger))

	p, err := core.NewProcessor(core.NewCSVSource(req.table, req.size), opts)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	summary, err := p.Run(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if wantsHTML(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.ReportPage(summary, messagesFor(summary)).Render(r.Context(), w); err != nil {
			logger.Error("render report", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, CheckResponse{Summary: summary, Messages: messagesFor(summary)})
}

// processingBudget maps the configured budget, where 0 disables the limit,
// onto the processor's.
func processingBudget(d time.Duration) time.Duration {
	if d == 0 {
		return core.NoBudget
	}
	return d
}

// processorOptions maps the validation settings onto processor options.
func (s *Server) processorOptions(tmpl *core.Template, allow *core.AllowList) core.Options {
	v := s.cfg.Validation
	opts := core.Options{
		Template: tmpl,
		Policy: core.Policy{
			AllowInternationalSMS:     v.AllowInternationalSMS,
			AllowSMSToUKLandline:      v.AllowSMSToUKLandline,
			AllowPremiumRate:          v.AllowPremiumRate,
			AllowTVNumbers:            v.AllowTVNumbers,
			AllowInternationalLetters: v.AllowInternationalLetters,
		},
		AllowList:       allow,
		Budget:          processingBudget(v.Budget),
		MaxRows:         v.MaxRows,
		MaxErrorSamples: v.MaxErrorSamples,
		MaxInitialRows:  v.MaxInitialRows,
		Workers:         v.Workers,
		ChunkSize:       v.ChunkSize,
	}
	if s.deps.Metrics != nil {
		opts.Observer = s.deps.Metrics
	}
	return opts
}

// resolveAllowList returns the allow-list for the request: contacts posted
// with it take precedence over the service's stored list. Nil means every
// recipient is allowed.
func (s *Server) resolveAllowList(r *http.Request, req *checkRequest) (*core.AllowList, error) {
	if len(req.allowList) > 0 {
		return core.NewAllowList(req.allowList...), nil
	}
	if req.serviceID == uuid.Nil || s.deps.AllowLists == nil {
		return nil, nil
	}
	return s.deps.AllowLists.Load(r.Context(), req.serviceID)
}

// parseCheckRequest reads either a multipart form with a "file" field or a
// raw CSV body. Template text and options come from form fields or query
// parameters of the same names.
func parseCheckRequest(r *http.Request, channel core.Channel) (*checkRequest, error) {
	req := &checkRequest{}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			var maxBytes *http.MaxBytesError
			if errors.As(err, &maxBytes) {
				return nil, err
			}
			return nil, errInvalidForm
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, errNoFile
		}
		req.table, req.size, req.closer = file, header.Size, file
	} else {
		if r.Body == nil || r.ContentLength == 0 {
			return nil, errNoFile
		}
		req.table, req.size = r.Body, r.ContentLength
	}

	req.template = &core.Template{
		Channel: channel,
		Subject: r.FormValue("subject"),
		Content: r.FormValue("content"),
	}

	if id := strings.TrimSpace(r.FormValue("service_id")); id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, errInvalidService
		}
		req.serviceID = parsed
	}

	for _, line := range strings.Split(r.FormValue("allow_list"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			req.allowList = append(req.allowList, line)
		}
	}

	if v := r.FormValue("remaining_messages"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, errInvalidForm
		}
		req.remainingMessages = n
	}
	return req, nil
}

// messagesFor returns the user message for every kind in the summary.
func messagesFor(s core.Summary) map[string]core.UserMessage {
	if len(s.ErrorCounts) == 0 {
		return nil
	}
	out := make(map[string]core.UserMessage, len(s.ErrorCounts))
	for k := range s.ErrorCounts {
		out[k.String()] = core.MessageFor(k)
	}
	return out
}

// KindInfo describes one error kind in the catalogue.
type KindInfo struct {
	Kind    string `json:"kind"`
	Domain  string `json:"domain"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action"`
	Support string `json:"support_code"`
}

// handleErrorCatalogue lists every error kind a report can contain.
func (s *Server) handleErrorCatalogue(w http.ResponseWriter, r *http.Request) {
	kinds := recipient.Kinds()
	out := make([]KindInfo, 0, len(kinds))
	for _, k := range kinds {
		msg := core.MessageFor(k)
		out = append(out, KindInfo{
			Kind:    k.String(),
			Domain:  string(k.Domain()),
			Code:    k.Code(),
			Message: msg.Message,
			Action:  msg.Action,
			Support: msg.Code,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleLimiterStatus reports how many batches are being checked.
func (s *Server) handleLimiterStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Limiter.Status())
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIndex serves the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	channel, err := core.ParseChannel(r.URL.Query().Get("channel"))
	if err != nil {
		channel = core.ChannelSMS
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.UploadPage(string(channel)).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render upload page", "error", err)
	}
}
