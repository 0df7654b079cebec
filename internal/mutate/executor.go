// Package mutate performs the dashboard's writes and reconciles the cache
// afterwards. The strategy is refetch, not local patching: approvals and
// removals run server-side authorization whose outcome cannot be predicted
// client-side, so on success we force-refresh exactly the keys the write
// could have changed and on failure we touch nothing.
package mutate

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"leave-sync/internal/api"
	"leave-sync/internal/models"
	"leave-sync/pkg/cache"
	"leave-sync/pkg/metrics"
)

// Refresher is the reconciliation hook, implemented by the fetch
// coordinator.
type Refresher interface {
	ForceRefresh(keys ...string)
}

// Result is what every mutation returns. Callers branch on Success; Message
// prefers the server's wording and falls back to a generic string.
type Result struct {
	Success bool
	Message string
	Err     error
}

func ok() Result {
	return Result{Success: true}
}

func fail(err error, fallback string) Result {
	return Result{Success: false, Message: api.Message(err, fallback), Err: err}
}

type Executor struct {
	api      *api.Client
	refresh  Refresher
	validate *validator.Validate
	log      *zap.Logger
	mets     *metrics.Metrics

	// teamID feeds the analytics key for approval reconciliation; it is set
	// once the team resolves.
	teamID func() string
}

func NewExecutor(client *api.Client, refresh Refresher, teamID func() string, opts ...Option) *Executor {
	e := &Executor{
		api:      client,
		refresh:  refresh,
		validate: validator.New(),
		log:      zap.NewNop(),
		teamID:   teamID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type Option func(*Executor)

func WithLogger(log *zap.Logger) Option {
	return func(e *Executor) { e.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.mets = m }
}

type rejectRequest struct {
	ID     string `validate:"required"`
	Reason string `validate:"required"`
}

type addMemberRequest struct {
	Email string `validate:"required,email"`
}

type createTeamRequest struct {
	Name        string `validate:"required,min=1,max=100"`
	Description string `validate:"max=500"`
}

// Approve approves a pending leave request. Deciding a request changes both
// the pending queue and the aggregate analytics, so both keys refetch.
func (e *Executor) Approve(ctx context.Context, id, reason string) Result {
	if id == "" {
		return e.done("approve", fail(validationErr("a leave request id is required"), "Could not approve the request"))
	}
	if err := e.api.ApproveLeave(ctx, id, reason); err != nil {
		return e.done("approve", fail(err, "Could not approve the request"))
	}
	e.refresh.ForceRefresh(cache.KeyApprovals, cache.AnalyticsKey(e.teamID()))
	return e.done("approve", ok())
}

// Reject rejects a pending leave request. The reason is mandatory and
// checked before any network call; whitespace does not count.
func (e *Executor) Reject(ctx context.Context, id, reason string) Result {
	req := rejectRequest{ID: id, Reason: strings.TrimSpace(reason)}
	if err := e.validate.Struct(req); err != nil {
		return e.done("reject", fail(validationErr("a rejection reason is required"), "Could not reject the request"))
	}
	if err := e.api.RejectLeave(ctx, id, reason); err != nil {
		return e.done("reject", fail(err, "Could not reject the request"))
	}
	e.refresh.ForceRefresh(cache.KeyApprovals, cache.AnalyticsKey(e.teamID()))
	return e.done("reject", ok())
}

// AddMember invites a user onto the team by email. Only the roster changes.
func (e *Executor) AddMember(ctx context.Context, email string) Result {
	req := addMemberRequest{Email: strings.TrimSpace(email)}
	if err := e.validate.Struct(req); err != nil {
		return e.done("addMember", fail(validationErr("a valid email address is required"), "Could not add the member"))
	}
	if _, err := e.api.AddMember(ctx, req.Email); err != nil {
		return e.done("addMember", fail(err, "Could not add the member"))
	}
	e.refresh.ForceRefresh(cache.KeyTeam)
	return e.done("addMember", ok())
}

// RemoveMember removes a member from the roster.
func (e *Executor) RemoveMember(ctx context.Context, id string) Result {
	if id == "" {
		return e.done("removeMember", fail(validationErr("a member id is required"), "Could not remove the member"))
	}
	if err := e.api.RemoveMember(ctx, id); err != nil {
		return e.done("removeMember", fail(err, "Could not remove the member"))
	}
	e.refresh.ForceRefresh(cache.KeyTeam)
	return e.done("removeMember", ok())
}

// CreateTeam creates a team and returns it alongside the usual result so the
// caller can route straight into the new dashboard.
func (e *Executor) CreateTeam(ctx context.Context, name, description string) (Result, *models.Team) {
	req := createTeamRequest{Name: strings.TrimSpace(name), Description: description}
	if err := e.validate.Struct(req); err != nil {
		return e.done("createTeam", fail(validationErr("a team name is required"), "Could not create the team")), nil
	}
	team, err := e.api.CreateTeam(ctx, req.Name, req.Description)
	if err != nil {
		return e.done("createTeam", fail(err, "Could not create the team")), nil
	}
	e.refresh.ForceRefresh(cache.KeyTeam)
	return e.done("createTeam", ok()), team
}

func (e *Executor) done(op string, r Result) Result {
	if r.Success {
		e.mets.Mutation(op, "success")
	} else {
		e.mets.Mutation(op, "error")
		e.log.Debug("mutation failed", zap.String("op", op), zap.Error(r.Err))
	}
	return r
}

func validationErr(msg string) error {
	return &api.Error{Kind: api.KindValidation, Message: msg}
}
