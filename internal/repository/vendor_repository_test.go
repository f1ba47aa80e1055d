package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aperia-group/vendor-onboarding/internal/errors"
	"github.com/aperia-group/vendor-onboarding/internal/warehouse"
)

// gqlRequest is the wire shape of one warehouse request.
type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// newFakeWarehouse starts an HTTP server that records each GraphQL request and
// responds with the scripted payload under the "data" key.
func newFakeWarehouse(t *testing.T, respond func(req gqlRequest) interface{}) (*warehouse.Client, *[]gqlRequest) {
	t.Helper()

	var requests []gqlRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"data": respond(req),
		}))
	}))
	t.Cleanup(srv.Close)

	return warehouse.New(srv.URL, 5*time.Second), &requests
}

func TestVendorGetByID(t *testing.T) {
	wh, requests := newFakeWarehouse(t, func(req gqlRequest) interface{} {
		return map[string]interface{}{
			"getVendor": map[string]interface{}{
				"id":           "v-1",
				"businessName": "Acme Supplies",
				"statusCode":   "Pending Manager Approval",
				"version":      3,
			},
		}
	})
	repo := NewVendorRepository(wh)

	vendor, err := repo.GetByID(context.Background(), "v-1")
	require.NoError(t, err)

	assert.Equal(t, "v-1", vendor.ID)
	assert.Equal(t, "Acme Supplies", vendor.BusinessName)
	assert.Equal(t, StatusPendingManagerApproval, vendor.StatusCode)
	assert.Equal(t, 3, vendor.Version)

	// The ID travels as a GraphQL variable, never spliced into the query text.
	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Contains(t, req.Query, "$id")
	assert.NotContains(t, req.Query, "v-1")
	assert.Equal(t, "v-1", req.Variables["id"])
}

func TestVendorGetByIDNotFound(t *testing.T) {
	wh, _ := newFakeWarehouse(t, func(gqlRequest) interface{} {
		return map[string]interface{}{"getVendor": nil}
	})
	repo := NewVendorRepository(wh)

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
}

func TestVendorCreateAssignsIDAndVersion(t *testing.T) {
	wh, requests := newFakeWarehouse(t, func(req gqlRequest) interface{} {
		input := req.Variables["input"].(map[string]interface{})
		return map[string]interface{}{
			"createVendor": map[string]interface{}{
				"id":      input["id"],
				"version": 1,
			},
		}
	})
	repo := NewVendorRepository(wh)

	vendor := &VendorRecord{BusinessName: "Acme Supplies"}
	require.NoError(t, repo.Create(context.Background(), vendor))

	assert.NotEmpty(t, vendor.ID)
	assert.Equal(t, 1, vendor.Version)
	assert.False(t, vendor.CreatedAt.IsZero())

	input := (*requests)[0].Variables["input"].(map[string]interface{})
	assert.Equal(t, vendor.ID, input["id"])
	assert.Equal(t, "Acme Supplies", input["businessName"])
}

func TestVendorList(t *testing.T) {
	wh, _ := newFakeWarehouse(t, func(gqlRequest) interface{} {
		return map[string]interface{}{
			"listVendors": map[string]interface{}{
				"items": []map[string]interface{}{
					{"id": "v-1", "statusCode": "Invitation sent"},
					{"id": "v-2", "statusCode": "Creation approved"},
				},
			},
		}
	})
	repo := NewVendorRepository(wh)

	vendors, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, vendors, 2)
	assert.Equal(t, StatusInvitationSent, vendors[0].StatusCode)
	assert.Equal(t, StatusCreationApproved, vendors[1].StatusCode)
}

func TestVendorApplyTransition(t *testing.T) {
	wh, requests := newFakeWarehouse(t, func(gqlRequest) interface{} {
		return map[string]interface{}{
			"transitionVendor": map[string]interface{}{"id": "v-1", "version": 4},
		}
	})
	repo := NewVendorRepository(wh)

	err := repo.ApplyTransition(context.Background(), "v-1", 3, TransitionUpdate{
		StatusCode:      StatusPendingExcoApproval,
		CurrentApprover: "manager@example.com",
	})
	require.NoError(t, err)

	vars := (*requests)[0].Variables
	assert.Equal(t, "v-1", vars["id"])
	assert.Equal(t, float64(3), vars["expectedVersion"])

	input := vars["input"].(map[string]interface{})
	assert.Equal(t, string(StatusPendingExcoApproval), input["statusCode"])
}

func TestVendorApplyTransitionConflict(t *testing.T) {
	wh, _ := newFakeWarehouse(t, func(gqlRequest) interface{} {
		return map[string]interface{}{"transitionVendor": nil}
	})
	repo := NewVendorRepository(wh)

	err := repo.ApplyTransition(context.Background(), "v-1", 2, TransitionUpdate{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConflict, errors.CodeOf(err))
}

func TestVendorDeleteNotFound(t *testing.T) {
	wh, _ := newFakeWarehouse(t, func(gqlRequest) interface{} {
		return map[string]interface{}{"deleteVendor": nil}
	})
	repo := NewVendorRepository(wh)

	err := repo.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
}

func TestWarehouseErrorsSurfaceAsRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": null, "errors": [{"message": "backend unavailable"}]}`))
	}))
	t.Cleanup(srv.Close)

	repo := NewVendorRepository(warehouse.New(srv.URL, 5*time.Second))

	_, err := repo.GetByID(context.Background(), "v-1")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeRemote, errors.CodeOf(err))
	assert.True(t, strings.Contains(err.Error(), "backend unavailable"))
}
