package web

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/justestif/go-affect-fusion/internal/analysis"
	"github.com/justestif/go-affect-fusion/internal/config"
	"github.com/justestif/go-affect-fusion/internal/fusion"
	"github.com/justestif/go-affect-fusion/internal/modality"
	"github.com/justestif/go-affect-fusion/internal/modality/audio"
	"github.com/justestif/go-affect-fusion/internal/modality/face"
	"github.com/justestif/go-affect-fusion/internal/modality/text"
	"github.com/justestif/go-affect-fusion/internal/remote"
	"github.com/justestif/go-affect-fusion/internal/report"
	"github.com/justestif/go-affect-fusion/internal/strategy"
	"github.com/justestif/go-affect-fusion/internal/vad"
	webfs "github.com/justestif/go-affect-fusion/web"
)

// stubFace implements modality.Estimator for the face modality.
type stubFace struct {
	err error
}

func (s stubFace) Modality() fusion.Modality { return fusion.Face }

func (s stubFace) Estimate(ctx context.Context, in modality.Input) (*modality.Observation, error) {
	if s.err != nil {
		return nil, s.err
	}
	res := &face.Result{
		Emotion:    "Happy",
		Confidence: 0.9,
		VAD:        vad.Triple{Valence: 0.9, Arousal: 0.7, Dominance: 0.6},
	}
	return &modality.Observation{
		Modality: fusion.Face,
		Estimate: fusion.Estimate{VAD: res.VAD, Confidence: res.Confidence, Available: true, Label: res.Emotion},
		Detail:   res,
	}, nil
}

func newTestServer(t *testing.T, faceErr error, withRenderer bool, extra ...modality.Estimator) *httptest.Server {
	t.Helper()

	lex := text.NewLexicon([]string{"joy", "sadness"}, map[string]map[string]int{
		"happy": {"joy": 1},
		"sad":   {"sadness": 1},
	})
	opts := []analysis.Option{analysis.WithLexicon(lex)}
	if withRenderer {
		renderer, err := report.NewRenderer(webfs.Templates())
		if err != nil {
			t.Fatalf("NewRenderer() error = %v", err)
		}
		opts = append(opts, analysis.WithRenderer(renderer, true))
	}

	estimators := append([]modality.Estimator{stubFace{err: faceErr}, text.NewAnalyzer(lex)}, extra...)
	collector := modality.NewCollector(estimators)
	svc := analysis.New(collector, opts...)

	srv := NewServer(ServerConfig{
		CORS:   config.CORSConfig{Enabled: true, Origins: []string{"*"}, Methods: []string{"GET", "POST"}},
		Logger: zerolog.Nop(),
	}, svc)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s error = %v", path, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s response: %v", path, err)
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil, false)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	defer resp.Body.Close()

	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "healthy" {
		t.Errorf("status = %d, body = %+v", resp.StatusCode, body)
	}
	if body.LexiconWords != 2 || !body.Services["text"] {
		t.Errorf("lexicon = %d, services = %v", body.LexiconWords, body.Services)
	}
}

func TestAnalyzeMultimodal(t *testing.T) {
	ts := newTestServer(t, nil, true)

	resp, body := post(t, ts, "/analyze_multimodal_emotion",
		`{"face_image":"aW1n","text":"I am happy today","context":"exam"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}

	for _, key := range []string{"analysis_id", "final_vad", "emotion_tag", "intensity", "fusion", "cbt_strategy", "strategy_result", "gpt_response", "follow_up_question", "report_base64", "pdf_report"} {
		if _, ok := body[key]; !ok {
			t.Errorf("response missing %q", key)
		}
	}
	if body["face_emotion"] != "Happy" || body["text_emotion"] != "joy" {
		t.Errorf("face_emotion = %v, text_emotion = %v", body["face_emotion"], body["text_emotion"])
	}

	if body["pdf_report"] != body["report_base64"] {
		t.Error("pdf_report does not mirror report_base64")
	}
	strat := body["cbt_strategy"].(map[string]any)
	if strat["name"] == nil || strat["success"] != nil {
		t.Errorf("cbt_strategy should be the bare strategy object, got %v", strat)
	}

	mods := body["modalities"].(map[string]any)
	audio := mods["audio"].(map[string]any)
	if audio["available"] != false || audio["skipped"] != true {
		t.Errorf("audio status = %v", audio)
	}

	html, err := base64.StdEncoding.DecodeString(body["report_base64"].(string))
	if err != nil {
		t.Fatalf("report_base64 decode: %v", err)
	}
	if !bytes.Contains(html, []byte(body["analysis_id"].(string))) {
		t.Error("report does not mention analysis id")
	}
}

func TestAnalyzeMultimodal_FaceFailureDegrades(t *testing.T) {
	ts := newTestServer(t, face.ErrNoFace, false)

	resp, body := post(t, ts, "/analyze_multimodal_emotion", `{"face_image":"aW1n","text":"sad"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	faceStatus := body["modalities"].(map[string]any)["face"].(map[string]any)
	if faceStatus["available"] != false || !strings.Contains(fmt.Sprint(faceStatus["error"]), "no face") {
		t.Errorf("face status = %v", faceStatus)
	}
	if _, ok := body["report_base64"]; ok {
		t.Error("report rendered with rendering disabled")
	}
}

func TestSingleModalityEndpoints(t *testing.T) {
	tests := []struct {
		name       string
		faceErr    error
		path       string
		body       string
		wantStatus int
	}{
		{"face ok", nil, "/analyze_face_emotion", `{"face_image":"aW1n"}`, http.StatusOK},
		{"face missing", nil, "/analyze_face_emotion", `{}`, http.StatusBadRequest},
		{"face invalid", face.ErrInvalidImage, "/analyze_face_emotion", `{"face_image":"x"}`, http.StatusBadRequest},
		{"no face", face.ErrNoFace, "/analyze_face_emotion", `{"face_image":"aW1n"}`, http.StatusUnprocessableEntity},
		{"face upstream", fmt.Errorf("boom"), "/analyze_face_emotion", `{"face_image":"aW1n"}`, http.StatusBadGateway},
		{"audio missing", nil, "/analyze_audio_emotion", `{}`, http.StatusBadRequest},
		{"audio disabled", nil, "/analyze_audio_emotion", `{"audio":"UklGRg=="}`, http.StatusServiceUnavailable},
		{"text ok", nil, "/analyze_text_emotion", `{"text":"so sad"}`, http.StatusOK},
		{"text missing", nil, "/analyze_text_emotion", `{"context":"x"}`, http.StatusBadRequest},
		{"text blank", nil, "/analyze_text_emotion", `{"text":"   "}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.faceErr, false)
			resp, body := post(t, ts, tt.path, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %v)", resp.StatusCode, tt.wantStatus, body)
			}
			if tt.wantStatus == http.StatusOK && body["success"] != true {
				t.Errorf("success = %v", body["success"])
			}
			if tt.wantStatus != http.StatusOK && body["error"] == "" {
				t.Error("error message missing")
			}
		})
	}
}

func TestAnalyzeAudio_InvalidPayload(t *testing.T) {
	// The payload is rejected before any request reaches the speech service.
	speech := audio.NewClient(remote.New("http://127.0.0.1:1", remote.WithRetryDelays()))
	ts := newTestServer(t, nil, false, speech)

	resp, body := post(t, ts, "/analyze_audio_emotion", `{"audio":"%%% not base64 %%%"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 (body %v)", resp.StatusCode, body)
	}
	if !strings.Contains(fmt.Sprint(body["error"]), "invalid audio") {
		t.Errorf("error = %v", body["error"])
	}

	resp, body = post(t, ts, "/analyze_multimodal_emotion", `{"audio":"%%% not base64 %%%","text":"happy"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("multimodal status = %d, want 200", resp.StatusCode)
	}
	audioStatus := body["modalities"].(map[string]any)["audio"].(map[string]any)
	if audioStatus["available"] != false || !strings.Contains(fmt.Sprint(audioStatus["error"]), "invalid audio") {
		t.Errorf("audio status = %v", audioStatus)
	}
}

func TestFuseVAD(t *testing.T) {
	ts := newTestServer(t, nil, false)

	resp, body := post(t, ts, "/fuse_vad_scores",
		`{"face_vad":{"valence":0.2,"arousal":0.9,"dominance":0.8},"face_confidence":1,"text_vad":{}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["success"] != true || body["emotion_tag"] != string(vad.TagAngry) {
		t.Errorf("body = %v", body)
	}
	mods := body["available_modalities"].([]any)
	if len(mods) != 1 || mods[0] != "face" {
		t.Errorf("available_modalities = %v", mods)
	}
	if _, ok := body["intensity"]; !ok {
		t.Error("intensity missing")
	}

	_, empty := post(t, ts, "/fuse_vad_scores", `{}`)
	if empty["emotion_tag"] != string(vad.TagNeutral) {
		t.Errorf("empty fusion tag = %v, want neutral", empty["emotion_tag"])
	}
}

func TestStrategy(t *testing.T) {
	ts := newTestServer(t, nil, false)

	resp, body := post(t, ts, "/get_cbt_strategy", `{"emotion_tag":"sad","vad_score":{"valence":0.1,"arousal":0.2,"dominance":0.3}}`)
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}

	resp, body = post(t, ts, "/get_cbt_strategy", `{"emotion_tag":"bewildered"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("unknown tag status = %d, want 200", resp.StatusCode)
	}
	if body["emotion_tag"] != "bewildered" {
		t.Errorf("emotion_tag = %v, want tag echoed", body["emotion_tag"])
	}
	st := body["strategy"].(map[string]any)
	neutral, _ := strategy.Base(vad.TagNeutral)
	if st["name"] != neutral.Name {
		t.Errorf("strategy name = %v, want neutral fallback %q", st["name"], neutral.Name)
	}
}

func TestGenerateResponseAndQuestion(t *testing.T) {
	ts := newTestServer(t, nil, false)

	resp, body := post(t, ts, "/generate_gpt_response", `{"emotion_tag":"anxious","context":"interview"}`)
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}
	if body["response"] == "" || body["emotion_tag"] != "anxious" {
		t.Errorf("body = %v", body)
	}

	resp, body = post(t, ts, "/generate_question",
		`{"emotion_tag":"sad","conversation_history":[{"question":"How are you?","answer":"Tired."}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["question"] == "" || body["conversation_length"] != float64(1) {
		t.Errorf("body = %v", body)
	}
}

func TestGenerateReport(t *testing.T) {
	ts := newTestServer(t, nil, true)

	resp, body := post(t, ts, "/generate_report", `{
		"analysis_id": "abc-123",
		"fusion_result": {"final_vad":{"valence":0.8,"arousal":0.7,"dominance":0.6},"emotion_tag":"happy","available_modalities":["text"],"success":true},
		"text_result": {"text":"happy","dominant_emotion":"joy","vad_score":{"valence":0.8,"arousal":0.7,"dominance":0.6}}
	}`)
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}
	if body["content_type"] != report.ContentType || body["file_size"].(float64) <= 0 {
		t.Errorf("body = %v", body)
	}
	html, _ := base64.StdEncoding.DecodeString(body["report_base64"].(string))
	if !bytes.Contains(html, []byte("abc-123")) {
		t.Error("report missing analysis id")
	}

	if body["pdf_base64"] != body["report_base64"] {
		t.Error("pdf_base64 does not mirror report_base64")
	}

	// Without a fusion result the report describes the neutral center.
	resp, body = post(t, ts, "/generate_report", `{"analysis_id":"x"}`)
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("missing fusion status = %d, body = %v", resp.StatusCode, body)
	}
	html, _ = base64.StdEncoding.DecodeString(body["report_base64"].(string))
	if !bytes.Contains(html, []byte(string(vad.TagNeutral))) {
		t.Error("neutral report does not mention the neutral tag")
	}

	disabled := newTestServer(t, nil, false)
	resp, _ = post(t, disabled, "/generate_report", `{"fusion_result":{"success":true}}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("disabled status = %d, want 503", resp.StatusCode)
	}
}

func TestGeneratePDFReportAlias(t *testing.T) {
	ts := newTestServer(t, nil, true)

	resp, body := post(t, ts, "/generate_pdf_report", `{"fusion_result":{"final_vad":{"valence":-0.6,"arousal":-0.4,"dominance":-0.3},"emotion_tag":"sad","success":true}}`)
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}
	if body["pdf_base64"] == "" || body["pdf_base64"] != body["report_base64"] {
		t.Errorf("pdf_base64 = %v", body["pdf_base64"])
	}
}

func TestSample(t *testing.T) {
	ts := newTestServer(t, nil, false)

	resp, err := http.Get(ts.URL + "/test_mock")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body sampleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !body.Fusion.Success || len(body.Fusion.AvailableModalities) != 3 {
		t.Errorf("fusion = %+v", body.Fusion.Result)
	}
	if body.CBTStrategy.EmotionTag != body.Fusion.EmotionTag || body.CBTStrategy.Strategy.Name == "" {
		t.Errorf("strategy = %+v", body.CBTStrategy)
	}
	if body.Question == "" {
		t.Error("follow_up_question empty")
	}
	if !body.Services["text"] {
		t.Errorf("services = %v", body.Services)
	}
}

func TestMalformedJSON(t *testing.T) {
	ts := newTestServer(t, nil, false)

	paths := []string{"/analyze_multimodal_emotion", "/fuse_vad_scores", "/get_cbt_strategy", "/generate_report"}
	for _, path := range paths {
		resp, body := post(t, ts, path, `{"broken":`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", path, resp.StatusCode)
		}
		if !strings.HasPrefix(fmt.Sprint(body["error"]), "Invalid JSON") {
			t.Errorf("%s error = %v", path, body["error"])
		}
	}

	_, body := post(t, ts, "/fuse_vad_scores", ``)
	if body["error"] != "No JSON data provided" {
		t.Errorf("empty body error = %v", body["error"])
	}
}

func TestRouting(t *testing.T) {
	ts := newTestServer(t, nil, false)

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/fuse_vad_scores")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/fuse_vad_scores", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent || resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight status = %d, origin = %q", resp.StatusCode, resp.Header.Get("Access-Control-Allow-Origin"))
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", face.ErrInvalidImage), http.StatusBadRequest},
		{text.ErrEmptyText, http.StatusBadRequest},
		{fmt.Errorf("%w: bad", audio.ErrInvalidAudio), http.StatusBadRequest},
		{face.ErrNoFace, http.StatusUnprocessableEntity},
		{fmt.Errorf("face: %w", analysis.ErrModalityDisabled), http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{fmt.Errorf("other"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
