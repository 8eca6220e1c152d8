//go:build integration

package integration

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/go-brain-sdk/internal/adapters/clients"
	"github.com/jsamuelsen/go-brain-sdk/internal/braintest"
	"github.com/jsamuelsen/go-brain-sdk/internal/ports"
)

// newDispatcher builds a fresh dispatcher for one goroutine. The credential
// field is not synchronized, so concurrent tests use one client each.
func newDispatcher(t *testing.T, baseURL string) *clients.Client {
	t.Helper()

	client, err := clients.New(&clients.Config{
		BaseURL:    baseURL,
		Timeout:    10 * time.Second,
		UserAgent:  clients.UserAgent("integration-test"),
		Credential: "integration-test-key-0123456789",
	})
	require.NoError(t, err)

	return client
}

// TestConcurrent_IndependentClients verifies that independent clients can
// write to the same workspace concurrently without losing updates.
func TestConcurrent_IndependentClients(t *testing.T) {
	service := braintest.New(braintest.Config{})
	baseURL := service.Start(t)

	const numGoroutines = 20
	var wg sync.WaitGroup
	var errorCount int32

	clientsPool := make([]*clients.Client, numGoroutines)
	for i := range clientsPool {
		clientsPool[i] = newDispatcher(t, baseURL)
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			name := fmt.Sprintf("brain-%02d", id)
			_, err := clientsPool[id].Dispatch(context.Background(), clients.VerbPut,
				baseURL+"/v2/workspaces/acme/brains/"+name,
				map[string]any{"name": name}, nil)
			if err != nil {
				atomic.AddInt32(&errorCount, 1)
			}
		}(i)
	}

	wg.Wait()

	assert.Equal(t, int32(0), atomic.LoadInt32(&errorCount), "no errors expected")
	assert.Len(t, service.Store().Brains("acme"), numGoroutines, "every creation should land")
}

// TestConcurrent_MixedReadsAndWrites runs listing and version creation
// against one brain at the same time.
func TestConcurrent_MixedReadsAndWrites(t *testing.T) {
	service := braintest.New(braintest.Config{})
	baseURL := service.Start(t)

	_, err := service.Store().CreateBrain("acme", braintest.Brain{Name: "reactor", DisplayName: "Reactor"})
	require.NoError(t, err)

	const numWriters = 10
	const numReaders = 10

	var wg sync.WaitGroup
	var writeErrors, readErrors int32

	for i := 0; i < numWriters; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			client := newDispatcher(t, baseURL)
			_, err := client.Dispatch(context.Background(), clients.VerbPost,
				baseURL+"/v2/workspaces/acme/brains/reactor/versions",
				map[string]any{"sourceVersion": 1, "description": fmt.Sprintf("writer %d", id)}, nil)
			if err != nil {
				atomic.AddInt32(&writeErrors, 1)
			}
		}(i)
	}

	for i := 0; i < numReaders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			client := newDispatcher(t, baseURL)
			result, err := client.Dispatch(context.Background(), clients.VerbGet,
				baseURL+"/v2/workspaces/acme/brains/reactor/versions", nil, nil)
			if err != nil {
				atomic.AddInt32(&readErrors, 1)
				return
			}
			if _, ok := result.Value().([]any); !ok {
				atomic.AddInt32(&readErrors, 1)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(0), atomic.LoadInt32(&writeErrors), "all version creations should succeed")
	assert.Equal(t, int32(0), atomic.LoadInt32(&readErrors), "all listings should succeed")

	versions, err := service.Store().BrainVersions("acme", "reactor")
	require.NoError(t, err)
	assert.Len(t, versions, numWriters+1, "source version plus one per writer")
}

// TestConcurrent_AuthFallback verifies that clients sharing a deprecated
// access key each complete their own token exchange.
func TestConcurrent_AuthFallback(t *testing.T) {
	service := braintest.New(braintest.Config{
		Credentials: braintest.Credentials{
			AccessKey:      "legacy-access-key",
			LegacySentinel: braintest.SentinelLegacyAuthDeprecated,
			Token:          "fresh-federated-token",
		},
	})
	baseURL := service.Start(t)

	const numGoroutines = 10
	var wg sync.WaitGroup
	var tokenCalls, successCount int32

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			client, err := clients.New(&clients.Config{
				BaseURL:    baseURL,
				Timeout:    10 * time.Second,
				UserAgent:  clients.UserAgent("integration-test"),
				Credential: "legacy-access-key",
				Tokens: ports.TokenProviderFunc(func(context.Context, string) (string, error) {
					atomic.AddInt32(&tokenCalls, 1)
					return "fresh-federated-token", nil
				}),
			})
			if err != nil {
				return
			}

			if _, err := client.Dispatch(context.Background(), clients.VerbGet,
				baseURL+"/v2/workspaces/acme/brains", nil, nil); err == nil {
				atomic.AddInt32(&successCount, 1)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(numGoroutines), atomic.LoadInt32(&successCount), "every client should recover")
	assert.Equal(t, int32(numGoroutines), atomic.LoadInt32(&tokenCalls), "one exchange per client")
}

// TestConcurrent_SessionPatching rebinds distinct sessions in parallel and
// verifies every binding lands.
func TestConcurrent_SessionPatching(t *testing.T) {
	service := braintest.New(braintest.Config{})
	baseURL := service.Start(t)

	const numSessions = 15
	sessionIDs := make([]string, numSessions)
	for i := range sessionIDs {
		seeded := service.Store().AddSession("acme", braintest.SimulatorSession{
			SimulatorName:  "cartpole",
			DeploymentMode: "Unmanaged",
		})
		sessionIDs[i] = seeded.SessionID
	}

	var wg sync.WaitGroup
	var errorCount int32

	for i, sessionID := range sessionIDs {
		wg.Add(1)
		go func(id int, session string) {
			defer wg.Done()

			client := newDispatcher(t, baseURL)
			_, err := client.Dispatch(context.Background(), clients.VerbPatch,
				baseURL+"/v2/workspaces/acme/simulatorSessions/"+session,
				map[string]any{
					"purposeOperation": "SetValue",
					"purpose": map[string]any{
						"action": "Train",
						"target": map[string]any{
							"workspaceName": "acme",
							"brainName":     "reactor",
							"brainVersion":  id,
							"conceptName":   "Balance",
						},
					},
				}, nil)
			if err != nil {
				atomic.AddInt32(&errorCount, 1)
			}
		}(i, sessionID)
	}

	wg.Wait()

	assert.Equal(t, int32(0), atomic.LoadInt32(&errorCount))

	for _, sessionID := range sessionIDs {
		stored, err := service.Store().Session("acme", sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Train", stored.SimulatorContext.Purpose.Action)
	}
}
