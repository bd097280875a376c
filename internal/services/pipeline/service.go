package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"dga_gateway/internal/failure"
	"dga_gateway/internal/metrics"
	"dga_gateway/internal/models"
	"dga_gateway/internal/ports"

	"github.com/google/uuid"
)

// Stage tags where a run ended.
type Stage string

const (
	StageValidate Stage = "validate"
	StageRetrieve Stage = "retrieve"
	StagePersist  Stage = "persist"
	StageNotify   Stage = "notify"
	StageGeneral  Stage = "general"
	StageDone     Stage = "done"
)

// Where the bearer token of a run came from.
const (
	TokenFromCaller = "caller"
	TokenFromCache  = "cache"
	TokenFromBroker = "broker"
)

// GeneralMessage is what callers see for unanticipated errors.
const GeneralMessage = "An unexpected error occurred."

type LoginInput struct {
	AppID  string
	MToken string
	Token  string // optional, skips the broker when set
}

// Result of one login run. Success implies User is set. A failed write to
// the record store leaves Success true and is reported in PersistErr only.
type Result struct {
	RunID       string
	Stage       Stage
	Success     bool
	TokenSource string
	User        *models.CitizenRecord
	Persisted   bool
	Stored      *models.CitizenRecord
	PersistErr  error
	Err         error
}

type Deps struct {
	Broker   ports.TokenBroker
	Citizens ports.CitizenRetriever
	Store    ports.RecordStore
	Notifier ports.Notifier
	Cache    ports.TokenCache // optional
	Metrics  *metrics.Metrics // optional
}

type Service struct {
	broker   ports.TokenBroker
	citizens ports.CitizenRetriever
	store    ports.RecordStore
	notifier ports.Notifier
	cache    ports.TokenCache
	metrics  *metrics.Metrics
}

func NewService(d Deps) *Service {
	return &Service{
		broker:   d.Broker,
		citizens: d.Citizens,
		store:    d.Store,
		notifier: d.Notifier,
		cache:    d.Cache,
		metrics:  d.Metrics,
	}
}

func (s *Service) AgentID() string {
	if s.broker == nil {
		return ""
	}
	return s.broker.AgentID()
}

// Login runs token → retrieve → persist. Each run is independent; the record
// store is the only state shared between runs.
func (s *Service) Login(ctx context.Context, in LoginInput) (res Result) {
	runID := uuid.NewString()
	start := time.Now()
	log.Printf("[LOGIN][START] run=%s app_id=%q caller_token=%t", runID, in.AppID, in.Token != "")

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[LOGIN][PANIC] run=%s %v", runID, r)
			res = s.fail(runID, StageGeneral, fmt.Errorf("panic: %v", r))
		}

		outcome := "failure"
		if res.Success {
			outcome = "success"
		}
		s.metrics.IncrementPipeline(string(res.Stage), outcome)
		log.Printf("[LOGIN][END] run=%s stage=%s success=%t persisted=%t took=%s",
			runID, res.Stage, res.Success, res.Persisted, time.Since(start))
	}()

	in.AppID, in.MToken, in.Token = strings.TrimSpace(in.AppID), strings.TrimSpace(in.MToken), strings.TrimSpace(in.Token)
	if in.AppID == "" || in.MToken == "" {
		return s.fail(runID, StageRetrieve, failure.Validation("Missing appId or mToken"))
	}

	token, source, err := s.resolveToken(ctx, in.Token)
	if err != nil {
		return s.fail(runID, stageFor(err, StageValidate, failure.KindAuth), err)
	}
	log.Printf("[LOGIN][TOKEN] run=%s source=%s", runID, source)

	rec, err := s.citizens.Retrieve(ctx, token, in.AppID, in.MToken)
	if err != nil {
		if source == TokenFromCache && tokenRejected(err) {
			s.evictToken(ctx, runID)
		}
		return s.fail(runID, stageFor(err, StageRetrieve, failure.KindValidation, failure.KindRetrieve, failure.KindSchema), err)
	}

	res = Result{
		RunID:       runID,
		Stage:       StageDone,
		Success:     true,
		TokenSource: source,
		User:        &rec,
	}

	// best effort: the error is kept on the result and never fails the run
	stored, perr := s.persist(ctx, rec)
	if perr != nil {
		log.Printf("[LOGIN][PERSIST][ERR] run=%s citizen_id=%s err=%v", runID, rec.CitizenID, perr)
		res.PersistErr = perr
		return res
	}
	res.Persisted = true
	res.Stored = &stored
	return res
}

func (s *Service) persist(ctx context.Context, rec models.CitizenRecord) (models.CitizenRecord, error) {
	if s.store == nil {
		return models.CitizenRecord{}, failure.New(failure.KindStore, "record store not configured")
	}
	stored, err := s.store.Upsert(ctx, rec)
	if err != nil {
		s.metrics.IncrementStoreWrite("error")
		if _, ok := failure.As(err); !ok {
			err = failure.Wrap(failure.KindStore, "upsert citizen", err)
		}
		return models.CitizenRecord{}, err
	}
	s.metrics.IncrementStoreWrite("ok")
	return stored, nil
}

// ObtainToken returns a broker token, consulting the cache first.
func (s *Service) ObtainToken(ctx context.Context) (token, source string, err error) {
	return s.resolveToken(ctx, "")
}

func (s *Service) resolveToken(ctx context.Context, callerToken string) (string, string, error) {
	if callerToken != "" {
		return callerToken, TokenFromCaller, nil
	}

	if s.cache != nil {
		tok, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			log.Printf("[TOKEN][CACHE][WARN] get: %v", err)
		case ok:
			return tok, TokenFromCache, nil
		}
	}

	if s.broker == nil {
		return "", "", errors.New("token broker not configured")
	}
	tok, err := s.broker.ObtainToken(ctx)
	if err != nil {
		return "", "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, tok); err != nil {
			log.Printf("[TOKEN][CACHE][WARN] set: %v", err)
		}
	}
	return tok, TokenFromBroker, nil
}

// tokenRejected reports a retrieve failure where the provider refused the
// bearer token itself.
func tokenRejected(err error) bool {
	f, ok := failure.As(err)
	if !ok || f.Kind != failure.KindRetrieve {
		return false
	}
	return f.Status == http.StatusUnauthorized || f.Status == http.StatusForbidden
}

// evictToken drops a cached token the provider no longer accepts. The current
// run still fails; the next one goes to the broker.
func (s *Service) evictToken(ctx context.Context, runID string) {
	if err := s.cache.Delete(ctx); err != nil {
		log.Printf("[TOKEN][CACHE][WARN] run=%s evict: %v", runID, err)
		return
	}
	log.Printf("[TOKEN][CACHE] run=%s evicted rejected token", runID)
}

// Notify relays a message through the provider with a caller-held token.
func (s *Service) Notify(ctx context.Context, n models.Notification) (any, error) {
	if s.notifier == nil {
		return nil, errors.New("notifier not configured")
	}
	result, err := s.notifier.Notify(ctx, n)
	if err != nil {
		s.metrics.IncrementPipeline(string(StageNotify), "failure")
		return nil, err
	}
	s.metrics.IncrementPipeline(string(StageNotify), "success")
	return result, nil
}

func (s *Service) fail(runID string, stage Stage, err error) Result {
	if stage == StageGeneral {
		if _, ok := failure.As(err); !ok {
			err = failure.Wrap(failure.KindGeneral, GeneralMessage, err)
		}
	}
	log.Printf("[LOGIN][ERR] run=%s stage=%s err=%v", runID, stage, err)
	return Result{RunID: runID, Stage: stage, Err: err}
}

// stageFor maps an error to stage when its kind is expected there; anything
// else is unanticipated.
func stageFor(err error, stage Stage, kinds ...failure.Kind) Stage {
	f, ok := failure.As(err)
	if !ok {
		return StageGeneral
	}
	for _, k := range kinds {
		if f.Kind == k {
			return stage
		}
	}
	return StageGeneral
}
