package push

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/auralis/auralis-backend/internal/config"
	"github.com/auralis/auralis-backend/internal/domain/entities"
	"github.com/auralis/auralis-backend/internal/recommend"
)

// fakePipeline pipeline factice comptant invalidations et exécutions
type fakePipeline struct {
	mu            sync.Mutex
	invalidations []string
	runs          int
	tracks        []*entities.Track
	err           error
}

func (f *fakePipeline) GetRecommendations(ctx context.Context, userID string, req *recommend.Request) (*recommend.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	if f.err != nil {
		return nil, f.err
	}
	return &recommend.Response{Tracks: f.tracks, GeneratedAt: time.Now()}, nil
}

func (f *fakePipeline) Invalidate(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidations = append(f.invalidations, userID)
	return nil
}

func (f *fakePipeline) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

func testPushConfig() config.PushConfig {
	return config.PushConfig{
		EmitTimeout:     50 * time.Millisecond,
		RefreshDeadline: time.Second,
		SendBuffer:      8,
	}
}

func newTestService(pipeline *fakePipeline) *Service {
	return NewService(pipeline, testPushConfig(), zap.NewNop())
}

func newTestSession(id, userID string, buffer int) *Session {
	return NewSession(id, userID, nil, buffer)
}

func drainOne(t *testing.T, s *Session) *Event {
	t.Helper()
	select {
	case event := <-s.send:
		return event
	case <-time.After(time.Second):
		t.Fatal("expected an event on the session channel")
		return nil
	}
}

func TestService_RegistryLifecycle(t *testing.T) {
	// Setup
	service := newTestService(&fakePipeline{})
	s1 := newTestSession("s1", "u1", 8)
	s2 := newTestSession("s2", "u1", 8)

	// Execute
	service.OnConnect(s1)
	service.OnConnect(s2)

	// Assert
	stats := service.GetStats()
	assert.Equal(t, 2, stats.ActiveSessions)
	assert.Equal(t, 1, stats.ActiveUsers)

	// Execute: déconnexions, dont une double
	service.OnDisconnect(s1)
	service.OnDisconnect(s1)
	service.OnDisconnect(s2)

	// Assert: l'entrée utilisateur disparaît avec sa dernière session
	stats = service.GetStats()
	assert.Zero(t, stats.ActiveSessions)
	assert.Zero(t, stats.ActiveUsers)
}

func TestService_TriggerRefresh_FansOutToAllUserSessions(t *testing.T) {
	// Setup
	pipeline := &fakePipeline{tracks: []*entities.Track{{ID: "t1", Artist: "A"}}}
	service := newTestService(pipeline)
	s1 := newTestSession("s1", "u3", 8)
	s2 := newTestSession("s2", "u3", 8)
	other := newTestSession("s3", "someone-else", 8)
	service.OnConnect(s1)
	service.OnConnect(s2)
	service.OnConnect(other)

	// Execute
	service.TriggerRefresh("u3", recommend.ReasonSkipDetected)

	// Assert: chaque session de u3 reçoit exactement l'update, l'autre
	// utilisateur rien
	for _, s := range []*Session{s1, s2} {
		event := drainOne(t, s)
		assert.Equal(t, EventRecommendationsUpdate, event.Event)
		payload := event.Data.(*UpdatePayload)
		assert.Equal(t, recommend.ReasonSkipDetected, payload.Reason)
		assert.Len(t, payload.Tracks, 1)
	}
	assert.Empty(t, other.send)
	assert.Equal(t, []string{"u3"}, pipeline.invalidations)
}

func TestService_TriggerRefresh_PipelineErrorLeavesSessionsSilent(t *testing.T) {
	// Setup
	pipeline := &fakePipeline{err: errors.New("store down")}
	service := newTestService(pipeline)
	s1 := newTestSession("s1", "u1", 8)
	service.OnConnect(s1)

	// Execute: ne doit ni paniquer ni émettre
	service.TriggerRefresh("u1", recommend.ReasonManualRefresh)

	// Assert
	assert.Empty(t, s1.send)
}

func TestService_TriggerRefresh_DisconnectedSessionNeverReceives(t *testing.T) {
	// Setup
	pipeline := &fakePipeline{tracks: []*entities.Track{{ID: "t1"}}}
	service := newTestService(pipeline)
	s1 := newTestSession("s1", "u1", 8)
	s2 := newTestSession("s2", "u1", 8)
	service.OnConnect(s1)
	service.OnConnect(s2)
	service.OnDisconnect(s2)

	// Execute
	service.TriggerRefresh("u1", recommend.ReasonContextChange)

	// Assert: s1 reçoit, s2 (parti) jamais
	assert.Equal(t, EventRecommendationsUpdate, drainOne(t, s1).Event)
	_, open := <-s2.send
	assert.False(t, open)
}

func TestService_TriggerRefresh_SaturatedSessionDoesNotBlockOthers(t *testing.T) {
	// Setup: s1 sans buffer ni lecteur, s2 sain
	pipeline := &fakePipeline{tracks: []*entities.Track{{ID: "t1"}}}
	service := newTestService(pipeline)
	stuck := newTestSession("stuck", "u1", 0)
	healthy := newTestSession("healthy", "u1", 8)
	service.OnConnect(stuck)
	service.OnConnect(healthy)

	// Execute
	done := make(chan struct{})
	go func() {
		service.TriggerRefresh("u1", recommend.ReasonSkipDetected)
		close(done)
	}()

	// Assert: le fan-out aboutit malgré la session saturée
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("fan-out blocked by a saturated session")
	}
	assert.Equal(t, EventRecommendationsUpdate, drainOne(t, healthy).Event)
}

func TestService_TriggerRefresh_SerializedPerUser(t *testing.T) {
	// Setup
	pipeline := &fakePipeline{tracks: []*entities.Track{{ID: "t1"}}}
	service := newTestService(pipeline)
	s1 := newTestSession("s1", "u1", 8)
	service.OnConnect(s1)

	// Execute: deux déclenchements quasi simultanés
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			service.TriggerRefresh("u1", recommend.ReasonSkipDetected)
		}()
	}
	wg.Wait()

	// Assert: deux fan-outs séquentiels, chacun avec une liste recalculée
	assert.Equal(t, 2, pipeline.runCount())
	assert.Equal(t, EventRecommendationsUpdate, drainOne(t, s1).Event)
	assert.Equal(t, EventRecommendationsUpdate, drainOne(t, s1).Event)
}

func TestSession_EmitAfterCloseIsSafe(t *testing.T) {
	// Setup
	session := newTestSession("s1", "u1", 1)
	session.closeSend()

	// Execute / Assert: pas de panique, émission refusée
	assert.False(t, session.emit(&Event{Event: EventPong}, 10*time.Millisecond))
}
