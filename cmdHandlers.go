package main

import (
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"speech-coach/audio"
	"speech-coach/db"
	"speech-coach/models"
	"speech-coach/utils"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/mdobak/go-xerrors"
)

type apiError struct {
	Message string `json:"message"`
}

const (
	maxUploadBytes     = 256 << 20
	maxPayloadBytes    = 32 << 20
	defaultListLimit   = 50
	analysesPathPrefix = "/api/analyses/"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiError{Message: message})
}

// allowCORS sets the CORS headers and answers preflight requests. It returns
// false when the request has been fully handled.
func allowCORS(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", strings.Join(methods, ", ")+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Credentials", "true")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return false
	}

	if !slices.Contains(methods, r.Method) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// newAnalyzeHandler accepts either a multipart upload with an "audio" file
// (any format audio.Load understands) or a JSON models.RecordData body.
func newAnalyzeHandler(svc *analysisService) http.HandlerFunc {
	logger := utils.GetLogger()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if !allowCORS(w, r, http.MethodPost) {
			return
		}

		var (
			record *models.AnalysisRecord
			err    error
		)

		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
			record, err = analyzeUpload(svc, r)
		} else {
			r.Body = http.MaxBytesReader(w, r.Body, maxPayloadBytes)

			var recData models.RecordData
			if decodeErr := json.NewDecoder(r.Body).Decode(&recData); decodeErr != nil {
				logger.ErrorContext(ctx, "failed to parse request body", slog.Any("error", decodeErr))
				if tooLarge(decodeErr) {
					writeJSONError(w, http.StatusRequestEntityTooLarge, "request payload too large")
					return
				}
				writeJSONError(w, http.StatusBadRequest, "invalid request payload")
				return
			}

			logger.InfoContext(ctx, "analysis request",
				slog.Int("sampleRate", recData.SampleRate),
				slog.Int("channels", recData.Channels),
				slog.Float64("duration", recData.Duration),
			)
			record, err = svc.runRecordData(ctx, recData, nil)
		}

		if err != nil {
			if tooLarge(err) {
				writeJSONError(w, http.StatusRequestEntityTooLarge, "upload too large")
				return
			}
			if isClientError(err) {
				logger.WarnContext(ctx, "rejected audio", slog.Any("error", err))
				writeJSONError(w, http.StatusBadRequest, err.Error())
				return
			}
			err := xerrors.New(err)
			logger.ErrorContext(ctx, "failed to analyze audio", slog.Any("error", err))
			writeJSONError(w, http.StatusInternalServerError, "analysis failed")
			return
		}

		writeJSON(w, http.StatusOK, record)
	}
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func analyzeUpload(svc *analysisService, r *http.Request) (*models.AnalysisRecord, error) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, errors.Join(audio.ErrDecode, err)
	}

	src, header, err := r.FormFile("audio")
	if err != nil {
		return nil, errors.Join(audio.ErrDecode, err)
	}
	defer src.Close()

	tempFile, err := os.CreateTemp("", "upload-*"+strings.ToLower(filepath.Ext(header.Filename)))
	if err != nil {
		return nil, err
	}
	defer utils.DeleteFile(tempFile.Name())

	if _, err := io.Copy(tempFile, src); err != nil {
		tempFile.Close()
		return nil, err
	}
	if err := tempFile.Close(); err != nil {
		return nil, err
	}

	sig, err := audio.Load(ctx, tempFile.Name(), audio.DefaultSampleRate)
	if err != nil {
		return nil, err
	}

	coachRequested, _ := strconv.ParseBool(r.FormValue("coach"))

	return svc.run(ctx, analysisRequest{
		Signal:         sig,
		Source:         header.Filename,
		Transcript:     r.FormValue("transcript"),
		JobDescription: r.FormValue("jobDescription"),
		Coach:          coachRequested,
	})
}

// newAnalysesHandler lists stored analyses at /api/analyses and returns or
// deletes a single one at /api/analyses/{id}. Without a database store it
// serves the JSON reports file.
func newAnalysesHandler(svc *analysisService) http.HandlerFunc {
	logger := utils.GetLogger()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id := strings.TrimPrefix(r.URL.Path, analysesPathPrefix)
		if id == r.URL.Path {
			id = ""
		}

		methods := []string{http.MethodGet}
		if id != "" {
			methods = append(methods, http.MethodDelete)
		}
		if !allowCORS(w, r, methods...) {
			return
		}

		if !svc.hasHistory() {
			writeJSONError(w, http.StatusServiceUnavailable, "analysis history is disabled")
			return
		}

		if id != "" && r.Method == http.MethodDelete {
			err := svc.deleteAnalysis(ctx, id)
			if errors.Is(err, db.ErrNotFound) {
				writeJSONError(w, http.StatusNotFound, "analysis not found")
				return
			}
			if err != nil {
				logger.ErrorContext(ctx, "failed to delete analysis", slog.Any("error", xerrors.New(err)))
				writeJSONError(w, http.StatusInternalServerError, "failed to delete analysis")
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if id != "" {
			record, err := svc.getAnalysis(ctx, id)
			if errors.Is(err, db.ErrNotFound) {
				writeJSONError(w, http.StatusNotFound, "analysis not found")
				return
			}
			if err != nil {
				logger.ErrorContext(ctx, "failed to load analysis", slog.Any("error", err))
				writeJSONError(w, http.StatusInternalServerError, "failed to load analysis")
				return
			}
			writeJSON(w, http.StatusOK, record)
			return
		}

		limit := defaultListLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				writeJSONError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = parsed
		}

		records, err := svc.listAnalyses(ctx, limit)
		if err != nil {
			logger.ErrorContext(ctx, "failed to load analyses", slog.Any("error", err))
			writeJSONError(w, http.StatusInternalServerError, "failed to load analyses")
			return
		}
		if records == nil {
			records = []models.AnalysisRecord{}
		}

		writeJSON(w, http.StatusOK, records)
	}
}

func newConfigHandler(svc *analysisService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowCORS(w, r, http.MethodGet) {
			return
		}
		writeJSON(w, http.StatusOK, svc.analyzer.Config())
	}
}

func newAPIMux(svc *analysisService) *http.ServeMux {
	analysesHandler := newAnalysesHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze", newAnalyzeHandler(svc))
	mux.HandleFunc("/api/analyses", analysesHandler)
	mux.HandleFunc(analysesPathPrefix, analysesHandler)
	mux.HandleFunc("/api/config", newConfigHandler(svc))
	return mux
}

func serve(svc *analysisService, protocol, port string) {
	protocol = strings.ToLower(protocol)
	var allowOriginFunc = func(r *http.Request) bool {
		return true
	}

	controller := newSocketController(svc)

	server := socketio.NewServer(&engineio.Options{
		PingTimeout:  60 * time.Second,
		PingInterval: 25 * time.Second,
		Transports: []transport.Transport{
			&websocket.Transport{
				CheckOrigin: allowOriginFunc,
			},
			&polling.Transport{
				CheckOrigin: allowOriginFunc,
			},
		},
	})

	server.OnConnect("/", func(socket socketio.Conn) error {
		socket.SetContext("")
		socketURL := socket.URL()
		log.Printf("CONNECTED: %s, transport: %s, remote addr: %s\n", socket.ID(), socketURL.String(), socket.RemoteAddr())
		controller.emitConfig(socket)
		return nil
	})

	server.OnEvent("/", "requestConfig", func(socket socketio.Conn) {
		controller.emitConfig(socket)
	})

	server.OnEvent("/", "newRecording", func(socket socketio.Conn, msg string) {
		log.Printf("newRecording event received from %s, data length: %d\n", socket.ID(), len(msg))
		// analysis can take seconds; keep the event loop free
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("panic in handleNewRecording for socket %s: %v\n", socket.ID(), r)
					socket.Emit("analysisError", map[string]string{"message": "internal server error during processing"})
				}
			}()
			controller.handleNewRecording(socket, msg)
		}()
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		log.Println("meet error:", e)
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Printf("Socket disconnected - ID: %s, Reason: %s\n", s.ID(), reason)
	})

	go func() {
		if err := server.Serve(); err != nil {
			log.Fatalf("socketio listen error: %s\n", err)
		}
	}()
	defer server.Close()

	mux := newAPIMux(svc)
	mux.Handle("/socket.io/", server)
	mux.Handle("/", http.FileServer(http.Dir("static")))

	serveHTTP(server, protocol == "https", port, mux)
}

func serveHTTP(socketServer *socketio.Server, serveHTTPS bool, port string, handler http.Handler) {
	if handler == nil {
		handler = socketServer
	}
	if serveHTTPS {
		httpsAddr := ":" + port
		httpsServer := &http.Server{
			Addr: httpsAddr,
			TLSConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			Handler: handler,
		}

		certKey := utils.GetEnv("CERT_KEY")
		certFile := utils.GetEnv("CERT_FILE")
		if certKey == "" || certFile == "" {
			log.Fatal("CERT_KEY and CERT_FILE are required for https")
		}

		log.Printf("Starting HTTPS server on %s\n", httpsAddr)
		if err := httpsServer.ListenAndServeTLS(certFile, certKey); err != nil {
			log.Fatalf("HTTPS server ListenAndServeTLS: %v", err)
		}
		return
	}

	log.Printf("Starting HTTP server on port %v", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("HTTP server ListenAndServe: %v", err)
	}
}
