package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"speech-coach/speech"
	"speech-coach/utils"

	"google.golang.org/genai"
)

// DefaultModel is used when COACH_MODEL is unset.
const DefaultModel = "gemini-2.5-flash"

// DefaultTemperature is used when COACH_TEMPERATURE is unset or out of range.
const DefaultTemperature = 0.6

// ErrMissingAPIKey is returned by NewClient without GEMINI_API_KEY.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY environment variable is required")

const systemPrompt = `You are an interview and public speaking coach.
You receive measured delivery metrics, a 0-100 delivery score and rule-based
feedback for one recording, optionally with its transcript and the job
description the candidate is preparing for.

Write a short critique in plain text:
- open with one sentence on overall delivery
- give two or three concrete, actionable suggestions grounded in the metrics
- if a transcript is present, comment on content and structure too
- if a job description is present, relate the advice to that role

Stay under 250 words. Do not invent numbers that are not in the input.`

// Request is the material one critique is written from.
type Request struct {
	Analysis       *speech.Analysis
	Transcript     string
	JobDescription string
}

// Client writes qualitative critiques with Gemini.
type Client struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewClient reads GEMINI_API_KEY, COACH_MODEL and COACH_TEMPERATURE from the
// environment.
func NewClient(ctx context.Context) (*Client, error) {
	apiKey := utils.GetEnv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client:      client,
		model:       utils.GetEnv("COACH_MODEL", DefaultModel),
		temperature: temperatureFromEnv(),
	}, nil
}

// temperatureFromEnv accepts COACH_TEMPERATURE values in [0, 2].
func temperatureFromEnv() float32 {
	t := utils.GetEnvFloat("COACH_TEMPERATURE", DefaultTemperature)
	if t < 0 || t > 2 {
		return DefaultTemperature
	}
	return float32(t)
}

func (c *Client) generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(c.temperature),
		TopP:              genai.Ptr(float32(0.9)),
		MaxOutputTokens:   int32(512),
	}
}

// Critique returns the model's critique of req.
func (c *Client) Critique(ctx context.Context, req Request) (string, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Models.GenerateContent(
		ctx,
		c.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		c.generationConfig(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate critique: %w", err)
	}

	return cleanText(resp.Text()), nil
}

// CritiqueStream calls onChunk with each streamed piece of the critique and
// returns the whole critique once the stream ends.
func (c *Client) CritiqueStream(ctx context.Context, req Request, onChunk func(string) error) (string, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return "", err
	}

	stream := c.client.Models.GenerateContentStream(
		ctx,
		c.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		c.generationConfig(),
	)

	var full strings.Builder
	for resp, err := range stream {
		if err != nil {
			return "", fmt.Errorf("stream error: %w", err)
		}
		// chunks keep their surrounding whitespace so they concatenate
		text := stripEmphasis(resp.Text())
		if text == "" {
			continue
		}
		full.WriteString(text)
		if err := onChunk(text); err != nil {
			return "", fmt.Errorf("chunk callback error: %w", err)
		}
	}
	return strings.TrimSpace(full.String()), nil
}

// markdown emphasis renders badly in terminals and socket clients
func stripEmphasis(text string) string {
	return strings.ReplaceAll(text, "*", "")
}

func cleanText(text string) string {
	return strings.TrimSpace(stripEmphasis(text))
}
