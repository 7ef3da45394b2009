// Package pipeline drives a project through the migration analysis stages.
// The project's status in the graph is the single source of truth: each
// stage's writes land before the status moves forward, so a crash leaves
// the project re-runnable from its last committed state.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"codeport/internal/engine"
	"codeport/internal/graphstore"
	"codeport/internal/model"
	"codeport/internal/planner"
	"codeport/internal/resolver"
	"codeport/internal/retry"
)

// ErrTerminal is returned when Advance is called on a project whose state
// admits no further stage.
var ErrTerminal = errors.New("pipeline: project is in a terminal state")

type Orchestrator struct {
	store    *graphstore.Store
	engine   *engine.Engine
	resolver *resolver.Resolver
	planner  *planner.Planner
	retryCfg *retry.Config
	logger   *zap.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func New(store *graphstore.Store, eng *engine.Engine, res *resolver.Resolver, plan *planner.Planner, retryCfg *retry.Config, logger *zap.Logger) *Orchestrator {
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		store:    store,
		engine:   eng,
		resolver: res,
		planner:  plan,
		retryCfg: retryCfg,
		logger:   logger,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// RegisterProject creates the Project node in state uploaded.
func (o *Orchestrator) RegisterProject(ctx context.Context, name, sourceDir string) (*model.Project, error) {
	p := &model.Project{
		ID:        uuid.NewString(),
		Name:      name,
		SourceDir: sourceDir,
		Status:    model.StatusUploaded,
		Extra:     model.Props{"created_at": time.Now().UTC().Format(model.Timestamp)},
	}
	if err := o.store.UpsertNode(ctx, p.ID, model.LabelProject, p.ID, p.ToProps()); err != nil {
		return nil, err
	}
	o.logger.Info("project registered",
		zap.String("project_id", p.ID),
		zap.String("name", name),
		zap.String("source_dir", sourceDir))
	return p, nil
}

// GetProject loads the Project node.
func (o *Orchestrator) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	props, err := o.store.FindNode(ctx, projectID, model.LabelProject, projectID)
	if err != nil {
		return nil, err
	}
	return model.ProjectFromProps(props), nil
}

// GetState returns the project's current pipeline state.
func (o *Orchestrator) GetState(ctx context.Context, projectID string) (model.Status, error) {
	p, err := o.GetProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	return p.Status, nil
}

// Advance runs the single next stage for the project and commits the
// resulting state. A stage failure moves the project to failed with a
// report; the stage error is still returned to the caller.
func (o *Orchestrator) Advance(ctx context.Context, projectID string) (model.Status, error) {
	project, err := o.GetProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	if project.Status.Terminal() {
		return project.Status, fmt.Errorf("%w: %s", ErrTerminal, project.Status)
	}

	next, err := o.runStage(ctx, project)
	if err != nil {
		// A cancelled run is not a failure: the project keeps its last
		// committed state and can be resumed.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return project.Status, err
		}
		o.fail(context.WithoutCancel(ctx), project, err)
		return model.StatusFailed, err
	}

	if err := o.setStatus(ctx, projectID, next); err != nil {
		return project.Status, err
	}
	o.logger.Info("stage complete",
		zap.String("project_id", projectID),
		zap.String("from", string(project.Status)),
		zap.String("to", string(next)))
	return next, nil
}

func (o *Orchestrator) runStage(ctx context.Context, project *model.Project) (model.Status, error) {
	switch project.Status {
	case model.StatusUploaded:
		_, err := o.engine.AnalyzeStructure(ctx, project.ID, project.SourceDir)
		return model.StatusStructureAnalyzed, err

	case model.StatusStructureAnalyzed:
		err := o.engine.AnalyzeContent(ctx, project.ID, project.SourceDir)
		return model.StatusContentAnalyzed, err

	case model.StatusContentAnalyzed:
		if err := o.resolver.ClassifyProject(ctx, project.ID, project.SourceDir); err != nil {
			return "", err
		}
		return model.StatusClassified, o.resolver.ComputeClosures(ctx, project.ID)

	case model.StatusClassified:
		_, _, err := o.planner.GenerateMappings(ctx, project.ID)
		return model.StatusMapped, err

	case model.StatusMapped:
		// Unmappable constructs surface here, right after the mapping
		// stage that raised them.
		pending, err := o.pendingFeedback(ctx, project.ID)
		if err != nil {
			return "", err
		}
		if pending {
			return model.StatusNeedsFeedback, nil
		}
		_, err = o.planner.BuildStrategies(ctx, project.ID)
		return model.StatusStrategized, err

	case model.StatusStrategized:
		pending, err := o.pendingFeedback(ctx, project.ID)
		if err != nil {
			return "", err
		}
		if pending {
			return model.StatusNeedsFeedback, nil
		}
		return model.StatusDone, nil

	case model.StatusNeedsFeedback:
		// Open items are awaiting review but do not block the remaining
		// stages: strategies are built from the best-effort mappings.
		// Rebuilding them is an idempotent upsert when they already exist.
		_, err := o.planner.BuildStrategies(ctx, project.ID)
		return model.StatusDone, err

	default:
		return "", fmt.Errorf("pipeline: unknown state %q", project.Status)
	}
}

// Run advances the project until it is done, failed, or waiting on
// feedback. The run is cancellable per project via Cancel.
func (o *Orchestrator) Run(ctx context.Context, projectID string) (model.Status, error) {
	ctx, cancel := context.WithCancel(ctx)
	o.mu.Lock()
	o.cancels[projectID] = cancel
	o.mu.Unlock()
	defer func() {
		cancel()
		o.mu.Lock()
		delete(o.cancels, projectID)
		o.mu.Unlock()
	}()

	for {
		status, err := o.Advance(ctx, projectID)
		if err != nil {
			return status, err
		}
		if status.Terminal() || status == model.StatusNeedsFeedback {
			return status, nil
		}
	}
}

// Cancel aborts an in-flight Run for the project, if any. The project
// keeps its last committed state and can be resumed later.
func (o *Orchestrator) Cancel(projectID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if cancel, ok := o.cancels[projectID]; ok {
		cancel()
		return true
	}
	return false
}

func (o *Orchestrator) pendingFeedback(ctx context.Context, projectID string) (bool, error) {
	n, err := o.store.CountNodes(ctx, projectID, model.LabelFeedback)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (o *Orchestrator) setStatus(ctx context.Context, projectID string, status model.Status) error {
	props := model.Props{
		"status":     string(status),
		"updated_at": time.Now().UTC().Format(model.Timestamp),
	}
	return retry.DoIf(ctx, o.retryCfg, func() error {
		return o.store.UpsertNode(ctx, projectID, model.LabelProject, projectID, props)
	}, graphstore.IsRetryable)
}

// fail moves the project to failed and records why. Best effort: if even
// the status write fails, the original stage error still reaches the
// caller.
func (o *Orchestrator) fail(ctx context.Context, project *model.Project, cause error) {
	o.logger.Error("stage failed",
		zap.String("project_id", project.ID),
		zap.String("state", string(project.Status)),
		zap.Error(cause))

	report := &model.Report{
		Type:    "PipelineStageError",
		Message: cause.Error(),
		Details: model.Props{"state": string(project.Status)},
	}
	if err := o.store.WriteReport(ctx, project.ID, report); err != nil {
		o.logger.Warn("could not write failure report", zap.Error(err))
	}
	if err := o.setStatus(ctx, project.ID, model.StatusFailed); err != nil {
		o.logger.Warn("could not persist failed state", zap.Error(err))
	}
}
