package helius

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPClient_GetSignaturesForAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		if req.Method != "getSignaturesForAddress" {
			t.Errorf("expected method getSignaturesForAddress, got %s", req.Method)
		}

		params, ok := req.Params.([]interface{})
		if !ok || len(params) != 2 {
			t.Fatalf("expected [address, config] params, got %v", req.Params)
		}
		if params[0] != "wallet123" {
			t.Errorf("expected address wallet123, got %v", params[0])
		}
		cfg, ok := params[1].(map[string]interface{})
		if !ok || cfg["limit"] != float64(2) {
			t.Errorf("expected limit 2, got %v", params[1])
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": []map[string]interface{}{
				{"signature": "sig-newest", "slot": 200, "blockTime": 1700000100},
				{"signature": "sig-older", "slot": 100, "blockTime": 1700000000},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	ctx := context.Background()

	sigs, err := client.GetSignaturesForAddress(ctx, "wallet123", &SignaturesOpts{Limit: 2})
	if err != nil {
		t.Fatalf("GetSignaturesForAddress: %v", err)
	}

	if len(sigs) != 2 {
		t.Fatalf("expected 2 signatures, got %d", len(sigs))
	}

	// Provider order (newest first) must be preserved
	if sigs[0].Signature != "sig-newest" {
		t.Errorf("expected sig-newest first, got %s", sigs[0].Signature)
	}
	if sigs[1].Signature != "sig-older" {
		t.Errorf("expected sig-older second, got %s", sigs[1].Signature)
	}
	if sigs[0].Slot != 200 {
		t.Errorf("expected slot 200, got %d", sigs[0].Slot)
	}
}

func TestHTTPClient_GetSignaturesForAddress_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  []map[string]interface{}{},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	sigs, err := client.GetSignaturesForAddress(context.Background(), "emptywallet", nil)
	if err != nil {
		t.Fatalf("GetSignaturesForAddress: %v", err)
	}

	if len(sigs) != 0 {
		t.Errorf("expected 0 signatures, got %d", len(sigs))
	}
}

func TestHTTPClient_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error": map[string]interface{}{
				"code":    -32602,
				"message": "Invalid params",
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	_, err := client.GetSignaturesForAddress(context.Background(), "badwallet", nil)
	if err == nil {
		t.Fatal("expected error")
	}

	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != -32602 {
		t.Errorf("expected code -32602, got %d", rpcErr.Code)
	}
}

func TestHTTPClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  []map[string]interface{}{{"signature": "sig1", "slot": 1}},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(10*time.Millisecond))

	sigs, err := client.GetSignaturesForAddress(context.Background(), "wallet123", nil)
	if err != nil {
		t.Fatalf("GetSignaturesForAddress: %v", err)
	}

	if calls.Load() != 2 {
		t.Errorf("expected 2 calls (429 then success), got %d", calls.Load())
	}
	if len(sigs) != 1 {
		t.Errorf("expected 1 signature, got %d", len(sigs))
	}
}

func TestHTTPClient_GetAsset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		if req.Method != "getAsset" {
			t.Errorf("expected method getAsset, got %s", req.Method)
		}

		// DAS takes an object, not positional params
		params, ok := req.Params.(map[string]interface{})
		if !ok {
			t.Fatalf("expected object params, got %T", req.Params)
		}
		if params["id"] != "mint123" {
			t.Errorf("expected id mint123, got %v", params["id"])
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"id": "mint123",
				"content": map[string]interface{}{
					"metadata": map[string]interface{}{
						"name":   "Test Token",
						"symbol": "TEST",
					},
					"links": map[string]interface{}{
						"image": "https://example.com/test.png",
					},
				},
				"token_info": map[string]interface{}{
					"symbol":   "TEST",
					"decimals": 6,
				},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	asset, err := client.GetAsset(context.Background(), "mint123")
	if err != nil {
		t.Fatalf("GetAsset: %v", err)
	}

	if asset == nil {
		t.Fatal("expected asset, got nil")
	}
	if asset.Name != "Test Token" {
		t.Errorf("expected name Test Token, got %s", asset.Name)
	}
	if asset.Symbol != "TEST" {
		t.Errorf("expected symbol TEST, got %s", asset.Symbol)
	}
	if asset.Image != "https://example.com/test.png" {
		t.Errorf("expected image URL, got %s", asset.Image)
	}
	if asset.Decimals != 6 {
		t.Errorf("expected 6 decimals, got %d", asset.Decimals)
	}
}

func TestHTTPClient_GetAsset_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  nil,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	asset, err := client.GetAsset(context.Background(), "unknownmint")
	if err != nil {
		t.Fatalf("GetAsset: %v", err)
	}

	if asset != nil {
		t.Errorf("expected nil for unknown asset, got %+v", asset)
	}
}

func TestHTTPClient_GetAsset_FileFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"id": "mint456",
				"content": map[string]interface{}{
					"metadata": map[string]interface{}{
						"name": "No Links Token",
					},
					"files": []map[string]interface{}{
						{"uri": "https://example.com/fallback.png"},
					},
				},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	asset, err := client.GetAsset(context.Background(), "mint456")
	if err != nil {
		t.Fatalf("GetAsset: %v", err)
	}

	if asset.Image != "https://example.com/fallback.png" {
		t.Errorf("expected file URI fallback, got %s", asset.Image)
	}
}
