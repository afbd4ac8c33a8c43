package models

import (
	"time"

	"speech-coach/speech"
)

// RecordData is a recording pushed by a client, over socket.io or as the JSON
// body of POST /api/analyze.
type RecordData struct {
	Audio      string  `json:"audio"`
	Duration   float64 `json:"duration"`
	Channels   int     `json:"channels"`
	SampleRate int     `json:"sampleRate"`
	SampleSize int     `json:"sampleSize"`

	Source         string `json:"source,omitempty"`
	Transcript     string `json:"transcript,omitempty"`
	JobDescription string `json:"jobDescription,omitempty"`
	Coach          bool   `json:"coach,omitempty"`
}

// AnalysisRecord is a stored analysis run together with its context.
type AnalysisRecord struct {
	ID         string           `json:"id" bson:"_id"`
	CreatedAt  time.Time        `json:"createdAt" bson:"createdAt"`
	Source     string           `json:"source,omitempty" bson:"source,omitempty"`
	Duration   float64          `json:"duration" bson:"duration"`
	TotalScore int              `json:"totalScore" bson:"totalScore"`
	LatencyMs  float64          `json:"latencyMs" bson:"latencyMs"`
	Critique   string           `json:"critique,omitempty" bson:"critique,omitempty"`
	Analysis   *speech.Analysis `json:"analysis" bson:"analysis"`
}
