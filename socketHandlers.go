package main

import (
	"context"
	"encoding/json"
	"log/slog"

	"speech-coach/models"
	"speech-coach/utils"

	socketio "github.com/googollee/go-socket.io"
	"github.com/mdobak/go-xerrors"
)

// emitter is the part of socketio.Conn the controller uses.
type emitter interface {
	ID() string
	Emit(event string, v ...interface{})
}

var _ emitter = socketio.Conn(nil)

type socketController struct {
	svc *analysisService
}

func newSocketController(svc *analysisService) *socketController {
	return &socketController{svc: svc}
}

func (c *socketController) emitConfig(socket emitter) {
	socket.Emit("config", c.svc.analyzer.Config())
}

// handleNewRecording analyzes one models.RecordData payload. A requested
// critique is streamed as critiqueChunk events before the final analysis
// event carries the stored record.
func (c *socketController) handleNewRecording(socket emitter, recordData string) {
	logger := utils.GetLogger()
	ctx := context.Background()

	logger.InfoContext(ctx, "handleNewRecording called",
		slog.String("socketID", socket.ID()),
		slog.Int("dataLength", len(recordData)),
	)

	if recordData == "" {
		logger.ErrorContext(ctx, "no data received in newRecording event")
		socket.Emit("analysisError", map[string]string{"message": "no audio data received"})
		return
	}
	if len(recordData) > maxPayloadBytes {
		logger.WarnContext(ctx, "recording payload too large",
			slog.String("socketID", socket.ID()),
			slog.Int("dataLength", len(recordData)),
		)
		socket.Emit("analysisError", map[string]string{"message": "recording payload too large"})
		return
	}

	var recData models.RecordData
	if err := json.Unmarshal([]byte(recordData), &recData); err != nil {
		err := xerrors.New(err)
		logger.ErrorContext(ctx, "failed to parse record payload", slog.Any("error", err))
		socket.Emit("analysisError", map[string]string{"message": "invalid audio payload"})
		return
	}

	logger.InfoContext(ctx, "received recording",
		slog.String("socketID", socket.ID()),
		slog.Int("sampleRate", recData.SampleRate),
		slog.Int("channels", recData.Channels),
		slog.Int("sampleSize", recData.SampleSize),
		slog.Float64("duration", recData.Duration),
	)

	onChunk := func(chunk string) error {
		socket.Emit("critiqueChunk", chunk)
		return nil
	}

	record, err := c.svc.runRecordData(ctx, recData, onChunk)
	if err != nil {
		message := "analysis failed"
		if isClientError(err) {
			message = err.Error()
		}
		err := xerrors.New(err)
		logger.ErrorContext(ctx, "failed to analyze recording", slog.Any("error", err))
		socket.Emit("analysisError", map[string]string{"message": message})
		return
	}

	socket.Emit("analysis", record)
}
