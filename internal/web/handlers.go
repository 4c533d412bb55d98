package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/justestif/go-affect-fusion/internal/advice"
	"github.com/justestif/go-affect-fusion/internal/analysis"
	"github.com/justestif/go-affect-fusion/internal/fusion"
	"github.com/justestif/go-affect-fusion/internal/modality"
	"github.com/justestif/go-affect-fusion/internal/modality/audio"
	"github.com/justestif/go-affect-fusion/internal/modality/face"
	"github.com/justestif/go-affect-fusion/internal/modality/text"
	"github.com/justestif/go-affect-fusion/internal/report"
	"github.com/justestif/go-affect-fusion/internal/strategy"
	"github.com/justestif/go-affect-fusion/internal/vad"
)

// maxBodyBytes bounds request bodies. Images and audio arrive base64 encoded.
const maxBodyBytes = 32 << 20

var errNoJSON = errors.New("No JSON data provided")

// Service is the pipeline the handlers delegate to.
type Service interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Analysis, error)
	Estimate(ctx context.Context, m fusion.Modality, in modality.Input) (*modality.Observation, error)
	Fuse(face, audio, text *fusion.Estimate) (fusion.Result, float64)
	MapStrategy(tag vad.Tag, t vad.Triple) strategy.Result
	Advise(ctx context.Context, req advice.Request) (*advice.Advice, error)
	Ask(ctx context.Context, req advice.Request) (*advice.Question, error)
	Render(d report.Data) (*report.Report, error)
	Health(ctx context.Context) analysis.Health
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	svc    Service
	logger zerolog.Logger
	now    func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc Service, logger zerolog.Logger) *Handlers {
	return &Handlers{
		svc:    svc,
		logger: logger,
		now:    time.Now,
	}
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	health := h.svc.Health(r.Context())
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "healthy",
		Timestamp:    h.timestamp(),
		Services:     health.Services,
		LexiconWords: health.LexiconWords,
	})
}

// AnalyzeMultimodal handles POST /analyze_multimodal_emotion.
func (h *Handlers) AnalyzeMultimodal(w http.ResponseWriter, r *http.Request) {
	var req multimodalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in := modality.Input{FaceImage: req.FaceImage, Audio: req.Audio, Text: req.Text}
	a, err := h.svc.Analyze(r.Context(), analysis.Request{Input: in, Context: req.Context})
	if err != nil {
		h.logger.Error().Err(err).Msg("multimodal analysis failed")
		writeError(w, http.StatusServiceUnavailable, "Analysis aborted")
		return
	}

	resp := multimodalResponse{
		AnalysisID: a.ID,
		Timestamp:  a.CreatedAt.UTC().Format(time.RFC3339),
		RequestData: requestData{
			HasFace:  in.FaceImage != "",
			HasAudio: in.Audio != "",
			HasText:  in.Text != "",
		},
		Modalities:       make(map[fusion.Modality]modalityStatus, len(fusion.Modalities)),
		FinalVAD:         a.Fusion.FinalVAD,
		EmotionTag:       a.Fusion.EmotionTag,
		Description:      vad.Describe(a.Fusion.EmotionTag),
		Intensity:        a.Intensity,
		NearestFaceLabel: a.NearestFaceLabel,
		Fusion:           a.Fusion,
		StrategyResult:   a.Strategy,
	}
	if a.Strategy.Success {
		resp.CBTStrategy.Strategy = &a.Strategy.Strategy
	}

	for _, m := range fusion.Modalities {
		obs := a.Observations.Get(m)
		status := modalityStatus{Available: obs.Available(), Skipped: obs == nil || obs.Skipped}
		if obs != nil && obs.Err != nil {
			status.Error = obs.Err.Error()
		}
		resp.Modalities[m] = status
		if !obs.Available() {
			continue
		}

		v := obs.Estimate.VAD
		switch d := obs.Detail.(type) {
		case *face.Result:
			resp.FaceEmotion = d.Emotion
			resp.FaceVAD = &v
		case *audio.Result:
			resp.Transcript = d.Transcript
			resp.Prosody = &d.Prosody
			resp.AudioVAD = &v
		case *text.Analysis:
			resp.TextEmotion = d.DominantEmotion
			resp.TextVAD = &v
		}
	}

	if a.Advice != nil {
		resp.GPTResponse = a.Advice.Response
		resp.FollowUpQuestion = a.Advice.FollowUpQuestion
		resp.Model = a.Advice.Model
	}
	if resp.FollowUpQuestion == "" {
		q, err := h.svc.Ask(r.Context(), advice.Request{
			Tag:     a.Fusion.EmotionTag,
			VAD:     a.Fusion.FinalVAD,
			Context: req.Context,
		})
		if err != nil {
			h.logger.Warn().Err(err).Str("analysis_id", a.ID).Msg("follow-up question failed")
		} else {
			resp.FollowUpQuestion = q.Question
		}
	}

	if a.Report != nil {
		resp.ReportBase64 = a.Report.Base64()
		resp.PDFReport = resp.ReportBase64
		resp.ReportFilename = a.Report.Filename
		resp.ReportContentType = a.Report.ContentType
	}

	writeJSON(w, http.StatusOK, resp)
}

// AnalyzeFace handles POST /analyze_face_emotion.
func (h *Handlers) AnalyzeFace(w http.ResponseWriter, r *http.Request) {
	var req multimodalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.FaceImage == "" {
		writeError(w, http.StatusBadRequest, "No face_image provided")
		return
	}

	obs, err := h.svc.Estimate(r.Context(), fusion.Face, modality.Input{FaceImage: req.FaceImage})
	if err != nil {
		h.estimateError(w, fusion.Face, err)
		return
	}
	d, _ := obs.Detail.(*face.Result)
	if d == nil {
		d = &face.Result{Emotion: obs.Estimate.Label, Confidence: obs.Estimate.Confidence, VAD: obs.Estimate.VAD}
	}
	writeJSON(w, http.StatusOK, faceResponse{Success: true, Result: d})
}

// AnalyzeAudio handles POST /analyze_audio_emotion.
func (h *Handlers) AnalyzeAudio(w http.ResponseWriter, r *http.Request) {
	var req multimodalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Audio == "" {
		writeError(w, http.StatusBadRequest, "No audio provided")
		return
	}

	obs, err := h.svc.Estimate(r.Context(), fusion.Audio, modality.Input{Audio: req.Audio})
	if err != nil {
		h.estimateError(w, fusion.Audio, err)
		return
	}
	d, _ := obs.Detail.(*audio.Result)
	if d == nil {
		d = &audio.Result{Transcript: obs.Transcript, VAD: obs.Estimate.VAD}
	}
	writeJSON(w, http.StatusOK, audioResponse{Success: true, Result: d})
}

// AnalyzeText handles POST /analyze_text_emotion.
func (h *Handlers) AnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req multimodalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "No text provided")
		return
	}

	obs, err := h.svc.Estimate(r.Context(), fusion.Text, modality.Input{Text: req.Text})
	if err != nil {
		h.estimateError(w, fusion.Text, err)
		return
	}
	d, _ := obs.Detail.(*text.Analysis)
	if d == nil {
		d = &text.Analysis{Text: req.Text, DominantEmotion: obs.Estimate.Label, VAD: obs.Estimate.VAD}
	}
	writeJSON(w, http.StatusOK, textResponse{Success: true, Analysis: d})
}

// FuseVAD handles POST /fuse_vad_scores.
func (h *Handlers) FuseVAD(w http.ResponseWriter, r *http.Request) {
	var req fusion.Scores
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, intensity := h.svc.Fuse(req.Estimates())
	writeJSON(w, http.StatusOK, fuseResponse{Result: res, Intensity: intensity})
}

// Strategy handles POST /get_cbt_strategy.
func (h *Handlers) Strategy(w http.ResponseWriter, r *http.Request) {
	var req strategyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.svc.MapStrategy(vad.ParseTag(req.EmotionTag), vad.Normalize(req.VADScore)))
}

// GenerateResponse handles POST /generate_gpt_response.
func (h *Handlers) GenerateResponse(w http.ResponseWriter, r *http.Request) {
	var req adviceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	areq := h.adviceRequest(req)
	if areq.Strategy == nil {
		st := h.svc.MapStrategy(areq.Tag, areq.VAD)
		areq.Strategy = &st
	}

	a, err := h.svc.Advise(r.Context(), areq)
	if err != nil {
		h.logger.Error().Err(err).Str("emotion_tag", string(areq.Tag)).Msg("advice generation failed")
		writeError(w, http.StatusBadGateway, "Failed to generate response")
		return
	}
	writeJSON(w, http.StatusOK, adviceResponse{Success: true, EmotionTag: areq.Tag, Advice: a})
}

// GenerateQuestion handles POST /generate_question.
func (h *Handlers) GenerateQuestion(w http.ResponseWriter, r *http.Request) {
	var req adviceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q, err := h.svc.Ask(r.Context(), h.adviceRequest(req))
	if err != nil {
		h.logger.Error().Err(err).Msg("question generation failed")
		writeError(w, http.StatusBadGateway, "Failed to generate question")
		return
	}
	writeJSON(w, http.StatusOK, questionResponse{Success: true, Question: q})
}

// GenerateReport handles POST /generate_report.
func (h *Handlers) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	fused := req.Fusion
	if fused == nil {
		neutral, _ := h.svc.Fuse(nil, nil, nil)
		fused = &neutral
	}

	d := report.Data{
		ID:        req.AnalysisID,
		CreatedAt: h.now(),
		Fusion:    *fused,
		Intensity: vad.Intensity(fused.FinalVAD),
		Strategy:  req.CBTStrategy,
		Advice:    req.GPTResponse,
		Modalities: []report.Section{
			report.SectionFor(fusion.Face, faceObservation(req.FaceResult)),
			report.SectionFor(fusion.Audio, audioObservation(req.AudioResult)),
			report.SectionFor(fusion.Text, textObservation(req.TextResult)),
		},
	}

	rep, err := h.svc.Render(d)
	if err != nil {
		if errors.Is(err, analysis.ErrReportsDisabled) {
			writeError(w, http.StatusServiceUnavailable, "Report generation is not available")
			return
		}
		h.logger.Error().Err(err).Str("analysis_id", req.AnalysisID).Msg("report rendering failed")
		writeError(w, http.StatusInternalServerError, "Failed to generate report")
		return
	}

	b64 := rep.Base64()
	writeJSON(w, http.StatusOK, reportResponse{
		Success:      true,
		ReportBase64: b64,
		PDFBase64:    b64,
		Filename:     rep.Filename,
		ContentType:  rep.ContentType,
		FileSize:     rep.Size(),
	})
}

// sampleEstimates feed GET /test_mock.
var sampleEstimates = [3]fusion.Estimate{
	{VAD: vad.Triple{Valence: 0.7, Arousal: 0.6, Dominance: 0.5}, Confidence: 0.8, Available: true, Label: "Happy"},
	{VAD: vad.Triple{Valence: 0.6, Arousal: 0.5, Dominance: 0.5}, Confidence: 0.7, Available: true},
	{VAD: vad.Triple{Valence: 0.8, Arousal: 0.4, Dominance: 0.6}, Confidence: 0.9, Available: true, Label: "joy"},
}

// Sample handles GET /test_mock. It runs the offline stages of the pipeline
// on fixed estimates so clients can check the response shapes without
// sending media.
func (h *Handlers) Sample(w http.ResponseWriter, r *http.Request) {
	faceEst, audioEst, textEst := sampleEstimates[0], sampleEstimates[1], sampleEstimates[2]
	res, intensity := h.svc.Fuse(&faceEst, &audioEst, &textEst)
	strat := h.svc.MapStrategy(res.EmotionTag, res.FinalVAD)

	resp := sampleResponse{
		Timestamp:   h.timestamp(),
		Services:    h.svc.Health(r.Context()).Services,
		Fusion:      fuseResponse{Result: res, Intensity: intensity},
		CBTStrategy: strat,
	}
	q, err := h.svc.Ask(r.Context(), advice.Request{Tag: res.EmotionTag, VAD: res.FinalVAD, Strategy: &strat})
	if err != nil {
		h.logger.Warn().Err(err).Msg("sample question failed")
	} else {
		resp.Question = q.Question
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) adviceRequest(req adviceRequest) advice.Request {
	return advice.Request{
		Tag:      vad.ParseTag(req.EmotionTag),
		VAD:      vad.Normalize(req.VADScore),
		Context:  req.Context,
		Strategy: req.CBTStrategy,
		History:  req.ConversationHistory,
	}
}

func (h *Handlers) estimateError(w http.ResponseWriter, m fusion.Modality, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("modality", string(m)).Msg("modality analysis failed")
	}
	writeError(w, status, err.Error())
}

func (h *Handlers) timestamp() string {
	return h.now().UTC().Format(time.RFC3339)
}

// statusFor maps adapter errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, face.ErrInvalidImage), errors.Is(err, audio.ErrInvalidAudio), errors.Is(err, text.ErrEmptyText):
		return http.StatusBadRequest
	case errors.Is(err, face.ErrNoFace):
		return http.StatusUnprocessableEntity
	case errors.Is(err, analysis.ErrModalityDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func faceObservation(r *face.Result) *modality.Observation {
	if r == nil {
		return nil
	}
	return &modality.Observation{
		Modality: fusion.Face,
		Estimate: fusion.Estimate{VAD: r.VAD, Confidence: r.Confidence, Available: true, Label: r.Emotion},
		Detail:   r,
	}
}

func audioObservation(r *audio.Result) *modality.Observation {
	if r == nil {
		return nil
	}
	return &modality.Observation{
		Modality:   fusion.Audio,
		Estimate:   fusion.Estimate{VAD: r.VAD, Confidence: audio.Confidence, Available: true},
		Detail:     r,
		Transcript: r.Transcript,
	}
}

func textObservation(r *text.Analysis) *modality.Observation {
	if r == nil {
		return nil
	}
	return &modality.Observation{
		Modality: fusion.Text,
		Estimate: fusion.Estimate{VAD: r.VAD, Available: true, Label: r.DominantEmotion},
		Detail:   r,
	}
}

// decodeJSON decodes the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errNoJSON
		}
		return errors.New("Invalid JSON: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
