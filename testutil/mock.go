package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/stretchr/testify/require"
)

// RPCError is replied as a JSON-RPC error object instead of a result.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
}

// MockJSONRPC starts a server that replies to each request with the next
// entry of responses. Once the list is exhausted the last entry repeats.
// A response is a raw JSON string, an RPCError, or any value that gets
// marshalled as the result. Strings already carrying a "jsonrpc" field are
// written as is.
func MockJSONRPC(t require.TestingT, responses ...interface{}) (*MockServer, func()) {
	mock := &MockServer{responses: responses}
	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req rpcRequest
		require.NoError(t, json.Unmarshal(body, &req))

		resp := mock.next(req.Method)
		w.Header().Set("Content-Type", "application/json")
		_, err = w.Write(wrap(t, req.ID, resp))
		require.NoError(t, err)
	}))
	return mock, mock.Server.Close
}

type MockServer struct {
	*httptest.Server
	lock      sync.Mutex
	responses []interface{}
	Counter   int
	Methods   []string
}

func (m *MockServer) next(method string) interface{} {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.Methods = append(m.Methods, method)
	i := m.Counter
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	m.Counter++
	if i < 0 {
		return nil
	}
	return m.responses[i]
}

func wrap(t require.TestingT, id json.RawMessage, resp interface{}) []byte {
	if len(id) == 0 {
		id = json.RawMessage("0")
	}
	envelope := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
	}
	switch resp := resp.(type) {
	case string:
		if strings.Contains(resp, `"jsonrpc"`) {
			return []byte(resp)
		}
		envelope["result"] = json.RawMessage(resp)
	case *RPCError:
		envelope["error"] = resp
	case RPCError:
		envelope["error"] = resp
	default:
		envelope["result"] = resp
	}
	bz, err := json.Marshal(envelope)
	require.NoError(t, err)
	return bz
}
