package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ssargent/navcodec/pkg/codec"
	"github.com/ssargent/navcodec/pkg/journal"
	"github.com/ssargent/navcodec/pkg/logger"
)

const (
	// maxBodyBytes caps decode and encode request bodies. Inputs are held in
	// memory whole.
	maxBodyBytes = 64 << 20

	defaultRunsLimit = 20
	maxRunsLimit     = 1000
)

var errRequestBody = errors.New("failed to read request body")

// Server holds the API server state
type Server struct {
	runs    RunStore
	config  ServerConfig
	metrics *Metrics
	log     *logger.Logger
}

// NewServer creates a new API server. runs may be nil.
func NewServer(runs RunStore, config ServerConfig, metrics *Metrics, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{
		runs:    runs,
		config:  config,
		metrics: metrics,
		log:     log,
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	APIResponse
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]interface{}{
		"status":  "healthy",
		"journal": s.runs != nil,
	})
}

// handleDecode godoc
//
//	@Summary		Decode a NAV file
//	@Description	Split the body at the first byte at or above the header threshold and XOR the content
//	@Tags			codec
//	@Accept			octet-stream
//	@Produce		plain
//	@Param			key		query		string	false	"XOR key, decimal or 0x hex"
//	@Param			steps	query		int		false	"Progress steps"
//	@Success		200		{string}	string
//	@Failure		400		{object}	APIResponse
//	@Failure		413		{object}	APIResponse
//	@Router			/decode [post]
//	@Security		ApiKeyAuth
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	s.serveConversion(w, r, journal.OperationDecode,
		func(cfg codec.Config) string {
			return "text/plain; charset=" + cfg.TextEncoding
		},
		func(c *codec.NavCodec, body []byte) ([]byte, codec.Stats, error) {
			text, stats, err := c.DecodeWithStats(body)
			if err != nil {
				return nil, stats, err
			}
			out, err := c.FormatText(text)
			return out, stats, err
		})
}

// handleEncode godoc
//
//	@Summary		Encode text into a NAV file
//	@Description	Keep leading short lines as header and XOR everything from the first long line on
//	@Tags			codec
//	@Accept			plain
//	@Produce		octet-stream
//	@Param			key		query		string	false	"XOR key, decimal or 0x hex"
//	@Param			steps	query		int		false	"Progress steps"
//	@Success		200		{string}	byte
//	@Failure		400		{object}	APIResponse
//	@Failure		413		{object}	APIResponse
//	@Router			/encode [post]
//	@Security		ApiKeyAuth
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	s.serveConversion(w, r, journal.OperationEncode,
		func(codec.Config) string {
			return "application/octet-stream"
		},
		func(c *codec.NavCodec, body []byte) ([]byte, codec.Stats, error) {
			text, err := c.ParseText(body)
			if err != nil {
				return nil, codec.Stats{}, err
			}
			return c.EncodeWithStats(text)
		})
}

// handleListRuns godoc
//
//	@Summary		List runs
//	@Description	List journal runs, newest first
//	@Tags			journal
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum number of runs"	default(20)
//	@Success		200		{object}	RunsResponse
//	@Failure		400		{object}	APIResponse
//	@Failure		503		{object}	APIResponse
//	@Router			/runs [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		sendError(w, "Journal is disabled", http.StatusServiceUnavailable)
		return
	}

	limit := defaultRunsLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 || l > maxRunsLimit {
			sendError(w, fmt.Sprintf("limit must be between 1 and %d", maxRunsLimit), http.StatusBadRequest)
			return
		}
		limit = l
	}

	runs, err := s.runs.List(limit)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list runs: %v", err), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []journal.Run{}
	}
	sendSuccess(w, RunsResponse{Runs: runs, Count: len(runs)})
}

type convertFunc func(c *codec.NavCodec, body []byte) ([]byte, codec.Stats, error)

func (s *Server) serveConversion(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	contentType func(codec.Config) string,
	convert convertFunc,
) {
	run := journal.Run{
		ID:        journal.NewRunID(),
		Operation: op,
		Input:     "http:" + r.RemoteAddr,
		Output:    "http",
		StartedAt: time.Now().UTC(),
	}

	cfg, out, stats, err := s.convertRequest(w, r, convert)

	run.Duration = time.Since(run.StartedAt)
	run.HeaderBytes = stats.HeaderBytes
	run.ContentBytes = stats.ContentBytes
	run.Status = journal.StatusSuccess
	if err != nil {
		run.Status = journal.StatusError
		run.Error = err.Error()
	}
	s.metrics.RecordCodecOperation(op, err == nil, stats, run.Duration)
	s.record(run)

	if err != nil {
		s.log.Debug().Err(err).Str("run_id", run.ID.String()).Msgf("%s request failed", op)
		sendError(w, err.Error(), statusForError(err))
		return
	}
	sendPayload(w, contentType(cfg), out)
}

func (s *Server) convertRequest(w http.ResponseWriter, r *http.Request, convert convertFunc) (codec.Config, []byte, codec.Stats, error) {
	cfg, err := s.requestConfig(r)
	if err != nil {
		return cfg, nil, codec.Stats{}, err
	}

	c, err := codec.NewNavCodec(cfg)
	if err != nil {
		return cfg, nil, codec.Stats{}, err
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return cfg, nil, codec.Stats{}, fmt.Errorf("%w: %w", errRequestBody, err)
	}

	out, stats, err := convert(c, body)
	return cfg, out, stats, err
}

// requestConfig applies the key and steps query parameters to the server's
// codec configuration.
func (s *Server) requestConfig(r *http.Request) (codec.Config, error) {
	cfg := s.config.Codec
	query := r.URL.Query()

	if keyStr := query.Get("key"); keyStr != "" {
		key, err := strconv.ParseUint(keyStr, 0, 8)
		if err != nil {
			return cfg, fmt.Errorf("%w: key %q is not a byte value", codec.ErrInvalidConfig, keyStr)
		}
		cfg.XORKey = int(key)
	}
	if stepsStr := query.Get("steps"); stepsStr != "" {
		steps, err := strconv.Atoi(stepsStr)
		if err != nil {
			return cfg, fmt.Errorf("%w: steps %q is not a number", codec.ErrInvalidConfig, stepsStr)
		}
		cfg.ProgressSteps = steps
	}
	return cfg, nil
}

func (s *Server) record(run journal.Run) {
	if s.runs == nil {
		return
	}
	if _, err := s.runs.Record(run); err != nil {
		s.log.Warn().Err(err).Msg("failed to record run in journal")
	}
}

func statusForError(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, codec.ErrEmptyInput),
		errors.Is(err, codec.ErrEncoding),
		errors.Is(err, codec.ErrInvalidConfig),
		errors.Is(err, errRequestBody):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
