package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/otterhq/intent-sdk-go/types"
)

func TestGetCoinsPagination(t *testing.T) {
	c, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req jsonRPCRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Method != "suix_getCoins" {
			t.Errorf("method = %s", req.Method)
		}

		page := map[string]interface{}{
			"data": []map[string]interface{}{
				{"coinType": "0x2::sui::SUI", "coinObjectId": "0xc1", "version": "7", "digest": "d1", "balance": "100"},
			},
			"nextCursor":  "0xc1",
			"hasNextPage": true,
		}
		params, ok := req.Params.([]interface{})
		if !ok || len(params) != 4 {
			t.Errorf("params = %v", req.Params)
		}
		if params[2] != nil {
			page = map[string]interface{}{
				"data": []map[string]interface{}{
					{"coinType": "0x2::sui::SUI", "coinObjectId": "0xc2", "version": "9", "digest": "d2", "balance": "250"},
				},
				"hasNextPage": false,
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "result": page, "id": req.ID})
	})
	defer server.Close()
	defer c.Close()

	coins, err := GetCoins(context.Background(), c, "0xowner", "0x2::sui::SUI")
	if err != nil {
		t.Fatalf("GetCoins failed: %v", err)
	}
	if len(coins) != 2 {
		t.Fatalf("got %d coins, want 2", len(coins))
	}
	if coins[0].ObjectID != "0xc1" || coins[0].Balance != 100 || coins[0].Version != 7 {
		t.Errorf("coins[0] = %+v", coins[0])
	}
	if coins[1].ObjectID != "0xc2" || coins[1].Balance != 250 {
		t.Errorf("coins[1] = %+v", coins[1])
	}
}

func TestGetObject(t *testing.T) {
	c, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req jsonRPCRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"result": map[string]interface{}{
				"data": map[string]interface{}{
					"objectId": "0xpool",
					"version":  "42",
					"type":     "0xdex::spot_dex::Pool",
					"owner":    map[string]interface{}{"Shared": map[string]interface{}{"initial_shared_version": 3}},
					"content": map[string]interface{}{
						"dataType": "moveObject",
						"type":     "0xdex::spot_dex::Pool",
						"fields":   map[string]interface{}{"reserve_x": "1000"},
					},
				},
			},
			"id": req.ID,
		})
	})
	defer server.Close()
	defer c.Close()

	snapshot, err := GetObject(context.Background(), c, "0xpool")
	if err != nil {
		t.Fatalf("GetObject failed: %v", err)
	}
	if snapshot.ObjectID != "0xpool" || snapshot.Version != 42 {
		t.Errorf("snapshot = %+v", snapshot)
	}
	if !snapshot.Shared {
		t.Error("expected shared object")
	}
	if snapshot.Fields["reserve_x"] != "1000" {
		t.Errorf("fields = %v", snapshot.Fields)
	}
}

func TestGetObjectNotFound(t *testing.T) {
	c, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req jsonRPCRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"result":  map[string]interface{}{"error": map[string]interface{}{"code": "notExists"}},
			"id":      req.ID,
		})
	})
	defer server.Close()
	defer c.Close()

	_, err := GetObject(context.Background(), c, "0xmissing")
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetTransactionBlock(t *testing.T) {
	c, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req jsonRPCRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"result": map[string]interface{}{
				"digest": "0xtx",
				"effects": map[string]interface{}{
					"status": map[string]interface{}{"status": "success"},
				},
				"objectChanges": []map[string]interface{}{
					{"type": "mutated", "objectId": "0xgas", "objectType": "0x2::coin::Coin<0x2::sui::SUI>"},
					{"type": "created", "objectId": "0xnew", "objectType": "0xauth::delegated_auth::Authorization"},
				},
				"events": []map[string]interface{}{
					{"type": "0xauth::delegated_auth::AuthorizationCreated"},
				},
			},
			"id": req.ID,
		})
	})
	defer server.Close()
	defer c.Close()

	details, err := GetTransactionBlock(context.Background(), c, "0xtx")
	if err != nil {
		t.Fatalf("GetTransactionBlock failed: %v", err)
	}
	if details.Status != "success" {
		t.Errorf("status = %s", details.Status)
	}
	if len(details.Created) != 1 || details.Created[0].ObjectID != "0xnew" {
		t.Errorf("created = %+v", details.Created)
	}
	if len(details.Events) != 1 {
		t.Errorf("events = %+v", details.Events)
	}
}
