// Package dashboard wires the team dashboard together: the tab reducer, the
// fetch coordinator subscriptions each tab needs, and the prefetch warming
// that fires on user intent (hover, focus) before a tab is activated.
package dashboard

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"leave-sync/internal/api"
	"leave-sync/internal/config"
	"leave-sync/internal/fetch"
	"leave-sync/internal/models"
	"leave-sync/internal/prefetch"
	"leave-sync/pkg/cache"
	"leave-sync/pkg/metrics"
)

type Dashboard struct {
	client *api.Client
	coord  *fetch.Coordinator
	pre    *prefetch.Preloader
	data   *prefetch.Prefetcher
	cfg    *config.Config
	log    *zap.Logger

	mu         sync.Mutex
	state      TabState
	subs       map[string]*fetch.Subscription
	components map[Tab]func() error
	listeners  map[int]func(TabState)
	nextID     int
	teamID     string
	keyToTab   map[string]Tab

	cancelTeamWatch func()
}

func New(client *api.Client, coord *fetch.Coordinator, cfg *config.Config, log *zap.Logger, mets *metrics.Metrics) *Dashboard {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dashboard{
		client:     client,
		coord:      coord,
		pre:        prefetch.NewPreloader(log, mets),
		data:       prefetch.NewPrefetcher(log, mets),
		cfg:        cfg,
		log:        log,
		state:      NewTabState(),
		subs:       make(map[string]*fetch.Subscription),
		components: make(map[Tab]func() error),
		listeners:  make(map[int]func(TabState)),
		keyToTab:   make(map[string]Tab),
	}
	d.data.OnStatus(d.onPrefetchStatus)
	d.cancelTeamWatch = coord.Store().Watch(cache.KeyTeam, d.onTeamChange)
	return d
}

// Dispatch runs an action through the reducer and notifies state listeners.
func (d *Dashboard) Dispatch(a Action) {
	d.mu.Lock()
	d.state = Reduce(d.state, a)
	next := d.state
	fns := make([]func(TabState), 0, len(d.listeners))
	for _, fn := range d.listeners {
		fns = append(fns, fn)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}

// State returns the current tab state snapshot.
func (d *Dashboard) State() TabState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// OnState registers a listener invoked after every dispatch.
func (d *Dashboard) OnState(fn func(TabState)) (cancel func()) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		delete(d.listeners, id)
		d.mu.Unlock()
	}
}

// RegisterComponent supplies the one-shot initializer for a tab's lazily
// constructed view. Hover intent preloads it through the preloader.
func (d *Dashboard) RegisterComponent(tab Tab, init func() error) {
	d.mu.Lock()
	d.components[tab] = init
	d.mu.Unlock()
}

// tabKeys lists the resource keys a tab renders from.
func (d *Dashboard) tabKeys(tab Tab) []string {
	switch tab {
	case TabMembers:
		return []string{cache.KeyTeam, cache.KeyPendingUsers}
	case TabApprovals:
		return []string{cache.KeyApprovals}
	case TabAnalytics:
		d.mu.Lock()
		key := cache.AnalyticsKey(d.teamID)
		d.mu.Unlock()
		if key == "" {
			return nil
		}
		return []string{key}
	case TabPending:
		return []string{cache.KeyPendingUsers}
	default:
		return nil
	}
}

// Intend warms a tab ahead of navigation: the component initializer and
// every data key the tab needs, both debounced by the configured delay so a
// cursor passing over the tab label costs nothing.
func (d *Dashboard) Intend(tab Tab) {
	d.mu.Lock()
	init := d.components[tab]
	d.mu.Unlock()
	if init != nil {
		d.pre.Preload(string(tab), init, d.cfg.PrefetchDelay)
	}

	for _, key := range d.tabKeys(tab) {
		d.mu.Lock()
		d.keyToTab[key] = tab
		d.mu.Unlock()
		d.data.Prefetch(key, d.fetchFor(key), d.cfg.PrefetchDelay)
	}
}

// Activate switches the active tab and subscribes its resources, seeding
// fallbacks from any successful prefetch so the tab renders without a
// loading skeleton.
func (d *Dashboard) Activate(tab Tab) {
	d.Dispatch(SetActiveTab{Tab: tab})
	for _, key := range d.tabKeys(tab) {
		d.ensureSubscription(key)
	}
	// The analytics tab depends on the team id; make sure the team itself
	// is subscribed so the dependency can resolve.
	if tab == TabAnalytics {
		d.ensureSubscription(cache.KeyTeam)
	}
}

func (d *Dashboard) ensureSubscription(key string) {
	d.mu.Lock()
	if _, ok := d.subs[key]; ok {
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	opts := d.optionsFor(key)
	if value, ok := d.data.Data(key); ok {
		opts.Fallback = value
		opts.HasFallback = true
	}
	sub := d.coord.Subscribe(key, d.loaderFor(key), opts)

	d.mu.Lock()
	d.subs[key] = sub
	d.mu.Unlock()
}

func (d *Dashboard) optionsFor(key string) fetch.Options {
	opts := fetch.Options{
		RefreshInterval:     d.cfg.RefreshInterval,
		RevalidateOnVisible: true,
		DedupeWindow:        d.cfg.DedupeWindow,
		Retry:               d.cfg.RetryCount,
	}
	// Approvals age fastest; they poll on the short interval.
	if key == cache.KeyApprovals {
		opts.RefreshInterval = d.cfg.ApprovalsRefreshInterval
	}
	return opts
}

func (d *Dashboard) loaderFor(key string) fetch.Loader {
	fn := d.fetchFor(key)
	return func(ctx context.Context) (any, error) {
		return fn(ctx)
	}
}

func (d *Dashboard) fetchFor(key string) prefetch.FetchFunc {
	switch key {
	case cache.KeyTeam:
		return func(ctx context.Context) (any, error) {
			return d.client.MyTeam(ctx)
		}
	case cache.KeyApprovals:
		return func(ctx context.Context) (any, error) {
			return d.client.PendingApprovals(ctx)
		}
	case cache.KeyPendingUsers:
		return func(ctx context.Context) (any, error) {
			return d.client.PendingUsers(ctx)
		}
	default:
		teamID := teamIDFromAnalyticsKey(key)
		return func(ctx context.Context) (any, error) {
			return d.client.TeamLeaves(ctx, teamID)
		}
	}
}

// onPrefetchStatus folds per-key prefetch transitions into the per-tab
// status the reducer tracks: error wins, then loading, then success once
// every key for the tab has one.
func (d *Dashboard) onPrefetchStatus(key string, _ prefetch.Status) {
	d.mu.Lock()
	tab, ok := d.keyToTab[key]
	d.mu.Unlock()
	if !ok {
		return
	}

	agg := prefetch.StatusSuccess
	for _, k := range d.tabKeys(tab) {
		switch d.data.Status(k) {
		case prefetch.StatusError:
			agg = prefetch.StatusError
		case prefetch.StatusLoading, prefetch.StatusIdle:
			if agg != prefetch.StatusError {
				agg = prefetch.StatusLoading
			}
		}
	}
	d.Dispatch(SetPrefetchStatus{Tab: tab, Status: agg})
}

// onTeamChange tracks the team id so the analytics subscription can exist
// only once its dependency has resolved, and re-keys it when the team
// changes.
func (d *Dashboard) onTeamChange(ent cache.Entry) {
	if !ent.HasValue() {
		return
	}
	team := decodeTeam(ent.Value)
	id := ""
	if team != nil {
		id = team.ID
	}

	d.mu.Lock()
	if id == d.teamID {
		d.mu.Unlock()
		return
	}
	oldKey := cache.AnalyticsKey(d.teamID)
	d.teamID = id
	oldSub := d.subs[oldKey]
	delete(d.subs, oldKey)
	active := d.state.ActiveTab
	d.mu.Unlock()

	if oldSub != nil {
		oldSub.Close()
	}
	if active == TabAnalytics && id != "" {
		d.ensureSubscription(cache.AnalyticsKey(id))
	}
}

// TeamID returns the resolved team id, empty while the team is unknown.
func (d *Dashboard) TeamID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.teamID
}

// Team returns the cached roster; nil means "no team" or not yet loaded,
// with the entry distinguishing the two.
func (d *Dashboard) Team() (*models.Team, cache.Entry) {
	ent, _ := d.coord.Store().Get(cache.KeyTeam)
	if !ent.HasValue() {
		return nil, ent
	}
	return decodeTeam(ent.Value), ent
}

func (d *Dashboard) Approvals() ([]models.Approval, cache.Entry) {
	ent, _ := d.coord.Store().Get(cache.KeyApprovals)
	if !ent.HasValue() {
		return nil, ent
	}
	if v, ok := ent.Value.([]models.Approval); ok {
		return v, ent
	}
	var out []models.Approval
	if err := cache.DecodeValue(ent.Value, &out); err != nil {
		return nil, ent
	}
	return out, ent
}

func (d *Dashboard) Analytics() ([]models.LeaveRecord, cache.Entry) {
	ent, _ := d.coord.Store().Get(cache.AnalyticsKey(d.TeamID()))
	if !ent.HasValue() {
		return nil, ent
	}
	if v, ok := ent.Value.([]models.LeaveRecord); ok {
		return v, ent
	}
	var out []models.LeaveRecord
	if err := cache.DecodeValue(ent.Value, &out); err != nil {
		return nil, ent
	}
	return out, ent
}

func (d *Dashboard) PendingUsers() ([]models.PendingUser, cache.Entry) {
	ent, _ := d.coord.Store().Get(cache.KeyPendingUsers)
	if !ent.HasValue() {
		return nil, ent
	}
	if v, ok := ent.Value.([]models.PendingUser); ok {
		return v, ent
	}
	var out []models.PendingUser
	if err := cache.DecodeValue(ent.Value, &out); err != nil {
		return nil, ent
	}
	return out, ent
}

// Stats recomputes the derived header numbers from the current snapshots.
func (d *Dashboard) Stats() models.TeamStats {
	team, _ := d.Team()
	approvals, _ := d.Approvals()
	leaves, _ := d.Analytics()
	return ComputeTeamStats(team, approvals, leaves)
}

// Preloader and Prefetcher expose the warming facilities for hosts that
// trigger intent from their own event wiring.
func (d *Dashboard) Preloader() *prefetch.Preloader   { return d.pre }
func (d *Dashboard) Prefetcher() *prefetch.Prefetcher { return d.data }

// Close tears the dashboard down: all subscriptions, pending prefetch
// timers, and the team watch. The coordinator itself belongs to the caller.
func (d *Dashboard) Close() {
	d.cancelTeamWatch()
	d.pre.Stop()
	d.data.Stop()

	d.mu.Lock()
	subs := make([]*fetch.Subscription, 0, len(d.subs))
	for _, s := range d.subs {
		subs = append(subs, s)
	}
	d.subs = make(map[string]*fetch.Subscription)
	d.listeners = make(map[int]func(TabState))
	d.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
}

func decodeTeam(value any) *models.Team {
	if v, ok := value.(*models.Team); ok {
		return v
	}
	var team models.Team
	if err := cache.DecodeValue(value, &team); err != nil {
		return nil
	}
	return &team
}

func teamIDFromAnalyticsKey(key string) string {
	const prefix = "analytics:"
	if len(key) > len(prefix) && key[:len(prefix)] == prefix {
		return key[len(prefix):]
	}
	return ""
}
