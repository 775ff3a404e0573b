package deployer

import (
	"context"
	"fmt"
	"time"

	"github.com/stablerate/keepers/internal/deployer/metrics"
	"github.com/stablerate/keepers/pkg/automate"
	"github.com/stablerate/keepers/pkg/ipfs"
	"github.com/stablerate/keepers/pkg/logging"
	"github.com/stablerate/keepers/pkg/triggers"
	"github.com/stablerate/keepers/pkg/types"
)

// ConfirmFunc gates every state-changing action. The CLI wires a stdin
// prompt; automated runs and tests wire AlwaysConfirm.
type ConfirmFunc func(action string) bool

// AlwaysConfirm approves every action.
func AlwaysConfirm(string) bool { return true }

// Summary reports what a reconciliation run did.
type Summary struct {
	Created   int
	Cancelled int
	Unchanged int
	Skipped   int
}

// Reconciler brings the platform's task set into agreement with the local
// deployment configs. One client per supported network; no state is shared
// across networks.
type Reconciler struct {
	clients  map[types.Network]automate.Client
	registry *triggers.Registry
	resolver ipfs.Resolver
	confirm  ConfirmFunc
	logger   logging.Logger
}

func NewReconciler(clients map[types.Network]automate.Client, registry *triggers.Registry, resolver ipfs.Resolver, confirm ConfirmFunc, logger logging.Logger) *Reconciler {
	if resolver == nil {
		resolver = ipfs.NopResolver{}
	}
	if confirm == nil {
		confirm = AlwaysConfirm
	}
	return &Reconciler{
		clients:  clients,
		registry: registry,
		resolver: resolver,
		confirm:  confirm,
		logger:   logger,
	}
}

// Run executes one reconciliation pass:
//
//  1. List active tasks on every network and index them by name.
//  2. For each keeper config, compute the identity-hash task name. A match
//     confirms the task is still desired; otherwise create it and store its
//     secrets.
//  3. Cancel every indexed task no config claimed.
//
// Task creation and secret storage are separate calls; a crash between them
// leaves a task without secrets. That window is accepted: a re-run sees the
// task name matching and leaves it alone, so the gap is not self-healing.
// Operators recover by touching the config file, which changes the hash.
func (r *Reconciler) Run(ctx context.Context, definitions []types.KeeperDefinition) (Summary, error) {
	start := time.Now()
	defer func() {
		metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
	}()

	var summary Summary

	// Step 1: index currently active tasks by name, per network.
	oldTasks := make(map[types.Network]map[string]automate.Task)
	for _, network := range types.SupportedNetworks() {
		client, ok := r.clients[network]
		if !ok {
			continue
		}
		tasks, err := client.ActiveTasks(ctx)
		if err != nil {
			return summary, fmt.Errorf("failed to list active tasks on %s: %w", network, err)
		}
		indexed := make(map[string]automate.Task, len(tasks))
		for _, task := range tasks {
			indexed[task.Name] = task
		}
		oldTasks[network] = indexed
		r.logger.Info("Listed active tasks", "network", network, "count", len(tasks))
	}

	// Step 2: walk every config; match, or create.
	for _, definition := range definitions {
		for _, cfg := range definition.Configs {
			outcome, err := r.reconcileConfig(ctx, definition, cfg, oldTasks)
			if err != nil {
				return summary, err
			}
			switch outcome {
			case outcomeUnchanged:
				summary.Unchanged++
			case outcomeCreated:
				summary.Created++
			case outcomeSkipped:
				summary.Skipped++
			}
		}
	}

	// Step 3: cancel everything no config claimed.
	for _, network := range types.SupportedNetworks() {
		client, ok := r.clients[network]
		if !ok {
			continue
		}
		for name, task := range oldTasks[network] {
			if !r.confirm(fmt.Sprintf("cancel task %q on %s", name, network)) {
				r.logger.Warn("Cancellation declined", "network", network, "task", name)
				continue
			}
			if err := client.CancelTask(ctx, task.ID); err != nil {
				return summary, fmt.Errorf("failed to cancel task %q on %s: %w", name, network, err)
			}
			metrics.TasksCancelled.WithLabelValues(string(network)).Inc()
			summary.Cancelled++
		}
	}

	return summary, nil
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeUnchanged
	outcomeCreated
)

func (r *Reconciler) reconcileConfig(ctx context.Context, definition types.KeeperDefinition, cfg types.DeploymentConfig, oldTasks map[types.Network]map[string]automate.Task) (outcome, error) {
	log := r.logger.With("keeper", definition.Name, "config", cfg.Label)

	// Membership validation; invalid configs skip, they never abort the run.
	if !types.IsSupportedNetwork(cfg.Domain) {
		log.Warn("Skipping config with unsupported domain", "domain", cfg.Domain)
		metrics.ConfigsSkipped.WithLabelValues("unsupported_domain").Inc()
		return outcomeSkipped, nil
	}
	if cfg.Trigger.Trigger == nil {
		log.Warn("Skipping config with no trigger")
		metrics.ConfigsSkipped.WithLabelValues("missing_trigger").Inc()
		return outcomeSkipped, nil
	}
	network := types.Network(cfg.Domain)

	client, ok := r.clients[network]
	if !ok {
		log.Warn("Skipping config with no client for network", "network", network)
		metrics.ConfigsSkipped.WithLabelValues("no_client").Inc()
		return outcomeSkipped, nil
	}

	name := TaskName(definition.Name, cfg.Label, IdentityHash(cfg.Raw, definition.CodeCID))

	// An exact name match means config bytes and code are unchanged since
	// the task was created; claim it and do nothing.
	if _, exists := oldTasks[network][name]; exists {
		delete(oldTasks[network], name)
		log.Debug("Task unchanged", "name", name)
		metrics.TasksUnchanged.WithLabelValues(string(network)).Inc()
		return outcomeUnchanged, nil
	}

	// Everything below is per-config fallible: report, skip, continue.
	secrets, err := ResolveSecrets(cfg.Secrets)
	if err != nil {
		log.Error("Skipping config with unresolved secrets", "error", err)
		metrics.ConfigsSkipped.WithLabelValues("missing_secret").Inc()
		return outcomeSkipped, nil
	}

	if err := r.resolver.Verify(ctx, definition.CodeCID); err != nil {
		log.Error("Skipping config with unresolvable code address", "error", err)
		metrics.ConfigsSkipped.WithLabelValues("unresolvable_code").Inc()
		return outcomeSkipped, nil
	}

	payload, err := triggers.Translate(cfg.Trigger.Trigger, r.registry)
	if err != nil {
		log.Error("Skipping config with untranslatable trigger", "error", err)
		metrics.ConfigsSkipped.WithLabelValues("trigger_translation").Inc()
		return outcomeSkipped, nil
	}

	if !r.confirm(fmt.Sprintf("create task %q on %s", name, network)) {
		log.Warn("Creation declined", "name", name)
		metrics.ConfigsSkipped.WithLabelValues("declined").Inc()
		return outcomeSkipped, nil
	}

	// Transaction failures abort the run; there is no retry.
	task, err := client.CreateTask(ctx, name, definition.CodeCID, payload)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("failed to create task %q on %s: %w", name, network, err)
	}

	if err := client.SetSecrets(ctx, task.ID, secrets); err != nil {
		return outcomeSkipped, fmt.Errorf("failed to set secrets for task %q on %s: %w", name, network, err)
	}

	metrics.TasksCreated.WithLabelValues(string(network)).Inc()
	log.Info("Deployed task", "name", name, "network", network)
	return outcomeCreated, nil
}
