package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testAccount = solana.MustPublicKeyFromBase58("7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU")

// rpcServer answers the JSON-RPC methods the pool issues with canned
// results, echoing the request id.
func rpcServer(t *testing.T, hits *atomic.Int32, broken *atomic.Bool) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if broken != nil && broken.Load() {
			http.Error(w, "node down", http.StatusInternalServerError)
			return
		}

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		require.NoError(t, json.Unmarshal(body, &req))

		var result string
		switch req.Method {
		case "getVersion":
			result = `{"solana-core":"1.18.22","feature-set":4215500110}`
		case "getBalance":
			result = `{"context":{"slot":1},"value":2500000000}`
		case "getTokenAccountBalance":
			result = `{"context":{"slot":1},"value":{"amount":"1000000","decimals":6,"uiAmount":1.0,"uiAmountString":"1"}}`
		case "getAccountInfo":
			result = `{"context":{"slot":1},"value":null}`
		default:
			t.Errorf("unexpected rpc method %q", req.Method)
			result = `null`
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, req.ID, result)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewPoolRequiresURLs(t *testing.T) {
	_, err := NewPool(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewPool([]string{}, zap.NewNop())
	assert.Error(t, err)
}

func TestGetBalance(t *testing.T) {
	server := rpcServer(t, nil, nil)
	pool, err := NewPool([]string{server.URL}, zap.NewNop())
	require.NoError(t, err)

	res, err := pool.GetBalance(context.Background(), testAccount, rpc.CommitmentFinalized)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_500_000_000), res.Value)
}

func TestRoundRobinSpreadsCalls(t *testing.T) {
	var hitsA, hitsB atomic.Int32
	serverA := rpcServer(t, &hitsA, nil)
	serverB := rpcServer(t, &hitsB, nil)

	pool, err := NewPool([]string{serverA.URL, serverB.URL}, zap.NewNop())
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := pool.GetBalance(context.Background(), testAccount, rpc.CommitmentFinalized)
		require.NoError(t, err)
	}

	assert.Equal(t, int32(2), hitsA.Load())
	assert.Equal(t, int32(2), hitsB.Load())
}

func TestFailoverToNextEndpoint(t *testing.T) {
	var broken atomic.Bool
	broken.Store(true)
	dead := rpcServer(t, nil, &broken)
	live := rpcServer(t, nil, nil)

	pool, err := NewPool([]string{dead.URL, live.URL}, zap.NewNop())
	require.NoError(t, err)

	// Every call must still succeed through the live endpoint.
	for i := 0; i < 8; i++ {
		res, err := pool.GetBalance(context.Background(), testAccount, rpc.CommitmentFinalized)
		require.NoError(t, err)
		assert.Equal(t, uint64(2_500_000_000), res.Value)
	}

	// The dead endpoint accumulated enough failures to leave rotation.
	assert.Equal(t, 1, pool.Healthy())
	assert.Equal(t, 2, pool.Size())

	// Once it answers a probe again it rejoins the rotation.
	broken.Store(false)
	require.NoError(t, pool.Probe(context.Background()))
	assert.Equal(t, 2, pool.Healthy())
}

func TestAllEndpointsDown(t *testing.T) {
	var broken atomic.Bool
	broken.Store(true)
	server := rpcServer(t, nil, &broken)

	pool, err := NewPool([]string{server.URL}, zap.NewNop())
	require.NoError(t, err)

	_, err = pool.GetBalance(context.Background(), testAccount, rpc.CommitmentFinalized)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestProbeSidelinesDeadEndpoints(t *testing.T) {
	var broken atomic.Bool
	broken.Store(true)
	dead := rpcServer(t, nil, &broken)
	live := rpcServer(t, nil, nil)

	pool, err := NewPool([]string{dead.URL, live.URL}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, pool.Probe(context.Background()))
	assert.Equal(t, 1, pool.Healthy())
}

func TestProbeFailsWhenNothingAnswers(t *testing.T) {
	var broken atomic.Bool
	broken.Store(true)
	server := rpcServer(t, nil, &broken)

	pool, err := NewPool([]string{server.URL}, zap.NewNop())
	require.NoError(t, err)

	err = pool.Probe(context.Background())
	assert.True(t, errors.Is(err, ErrUnavailable))
}
