package web

import (
	"encoding/json"

	"github.com/justestif/go-affect-fusion/internal/advice"
	"github.com/justestif/go-affect-fusion/internal/fusion"
	"github.com/justestif/go-affect-fusion/internal/modality/audio"
	"github.com/justestif/go-affect-fusion/internal/modality/face"
	"github.com/justestif/go-affect-fusion/internal/modality/text"
	"github.com/justestif/go-affect-fusion/internal/strategy"
	"github.com/justestif/go-affect-fusion/internal/vad"
)

// Request bodies. VAD scores arrive untyped and go through vad.Normalize.

type multimodalRequest struct {
	FaceImage string `json:"face_image"`
	Audio     string `json:"audio"`
	Text      string `json:"text"`
	Context   string `json:"context"`
}

type strategyRequest struct {
	EmotionTag string         `json:"emotion_tag"`
	VADScore   map[string]any `json:"vad_score"`
}

type adviceRequest struct {
	EmotionTag          string           `json:"emotion_tag"`
	VADScore            map[string]any   `json:"vad_score"`
	Context             string           `json:"context"`
	CBTStrategy         *strategy.Result `json:"cbt_strategy"`
	ConversationHistory []advice.Turn    `json:"conversation_history"`
}

type reportRequest struct {
	AnalysisID  string           `json:"analysis_id"`
	Fusion      *fusion.Result   `json:"fusion_result"`
	CBTStrategy *strategy.Result `json:"cbt_strategy"`
	GPTResponse *advice.Advice   `json:"gpt_response"`
	FaceResult  *face.Result     `json:"face_result"`
	AudioResult *audio.Result    `json:"audio_result"`
	TextResult  *text.Analysis   `json:"text_result"`
}

// Response bodies.

type errorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

type healthResponse struct {
	Status       string          `json:"status"`
	Timestamp    string          `json:"timestamp"`
	Services     map[string]bool `json:"services"`
	LexiconWords int             `json:"lexicon_words"`
}

type requestData struct {
	HasFace  bool `json:"has_face"`
	HasAudio bool `json:"has_audio"`
	HasText  bool `json:"has_text"`
}

type modalityStatus struct {
	Available bool   `json:"available"`
	Skipped   bool   `json:"skipped"`
	Error     string `json:"error,omitempty"`
}

type multimodalResponse struct {
	AnalysisID  string                             `json:"analysis_id"`
	Timestamp   string                             `json:"timestamp"`
	RequestData requestData                        `json:"request_data"`
	Modalities  map[fusion.Modality]modalityStatus `json:"modalities"`

	FaceEmotion string         `json:"face_emotion,omitempty"`
	FaceVAD     *vad.Triple    `json:"face_vad,omitempty"`
	Transcript  string         `json:"transcript,omitempty"`
	Prosody     *audio.Prosody `json:"prosody,omitempty"`
	AudioVAD    *vad.Triple    `json:"audio_vad,omitempty"`
	TextEmotion string         `json:"text_emotion,omitempty"`
	TextVAD     *vad.Triple    `json:"text_vad,omitempty"`

	FinalVAD         vad.Triple      `json:"final_vad"`
	EmotionTag       vad.Tag         `json:"emotion_tag"`
	Description      string          `json:"emotion_description"`
	Intensity        float64         `json:"intensity"`
	NearestFaceLabel string          `json:"nearest_face_label"`
	Fusion           fusion.Result   `json:"fusion"`
	CBTStrategy      cbtStrategy     `json:"cbt_strategy"`
	StrategyResult   strategy.Result `json:"strategy_result"`

	GPTResponse      string `json:"gpt_response"`
	FollowUpQuestion string `json:"follow_up_question,omitempty"`
	Model            string `json:"model,omitempty"`

	ReportBase64      string `json:"report_base64,omitempty"`
	PDFReport         string `json:"pdf_report,omitempty"`
	ReportFilename    string `json:"report_filename,omitempty"`
	ReportContentType string `json:"report_content_type,omitempty"`
}

// cbtStrategy is the strategy object alone; it encodes as {} when mapping
// failed.
type cbtStrategy struct {
	*strategy.Strategy
}

func (c cbtStrategy) MarshalJSON() ([]byte, error) {
	if c.Strategy == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.Strategy)
}

type sampleResponse struct {
	Timestamp   string          `json:"timestamp"`
	Services    map[string]bool `json:"services"`
	Fusion      fuseResponse    `json:"vad_fusion_service"`
	CBTStrategy strategy.Result `json:"cbt_strategy_service"`
	Question    string          `json:"follow_up_question"`
}

type fuseResponse struct {
	fusion.Result
	Intensity float64 `json:"intensity"`
}

type faceResponse struct {
	Success bool `json:"success"`
	*face.Result
}

type audioResponse struct {
	Success bool `json:"success"`
	*audio.Result
}

type textResponse struct {
	Success bool `json:"success"`
	*text.Analysis
}

type adviceResponse struct {
	Success    bool    `json:"success"`
	EmotionTag vad.Tag `json:"emotion_tag"`
	*advice.Advice
}

type questionResponse struct {
	Success bool `json:"success"`
	*advice.Question
}

type reportResponse struct {
	Success      bool   `json:"success"`
	ReportBase64 string `json:"report_base64"`
	PDFBase64    string `json:"pdf_base64"`
	Filename     string `json:"filename"`
	ContentType  string `json:"content_type"`
	FileSize     int    `json:"file_size"`
}
