package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/teamspace-io/teamspace/internal/store"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{
			name:   "taxonomy error passes through",
			err:    ErrForbiddenWorkspace(),
			kind:   KindForbiddenWorkspace,
			status: http.StatusForbidden,
		},
		{
			name:   "wrapped taxonomy error passes through",
			err:    fmt.Errorf("loading profile: %w", ErrProfileIncomplete()),
			kind:   KindProfileIncomplete,
			status: http.StatusForbidden,
		},
		{
			name:   "missing profile maps to not found",
			err:    store.ErrProfileNotFound,
			kind:   KindNotFound,
			status: http.StatusNotFound,
		},
		{
			name:   "missing workspace maps to not found",
			err:    store.ErrWorkspaceNotFound,
			kind:   KindNotFound,
			status: http.StatusNotFound,
		},
		{
			name:   "foreign profile maps to forbidden workspace",
			err:    store.ErrNotProfileOwner,
			kind:   KindForbiddenWorkspace,
			status: http.StatusForbidden,
		},
		{
			name:   "expired invite maps to validation",
			err:    store.ErrInviteExpired,
			kind:   KindValidation,
			status: http.StatusBadRequest,
		},
		{
			name:   "deadline exceeded maps to upstream failure",
			err:    context.DeadlineExceeded,
			kind:   KindUpstream,
			status: http.StatusBadGateway,
		},
		{
			name:   "cancellation maps to upstream failure",
			err:    context.Canceled,
			kind:   KindUpstream,
			status: http.StatusBadGateway,
		},
		{
			name:   "wrapped deadline from a store call maps to upstream failure",
			err:    fmt.Errorf("query workspace settings: %w", context.DeadlineExceeded),
			kind:   KindUpstream,
			status: http.StatusBadGateway,
		},
		{
			name:   "unrecognized error becomes internal",
			err:    errors.New("connection reset by peer"),
			kind:   KindInternal,
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := Classify(tt.err)
			require.Equal(t, tt.kind, classified.Kind)
			require.Equal(t, tt.status, classified.Kind.HTTPStatus())
		})
	}
}

func TestClassify_internalMessageIsGeneric(t *testing.T) {
	classified := Classify(errors.New("pq: password authentication failed"))
	require.Equal(t, KindInternal, classified.Kind)
	require.Equal(t, "Internal error", classified.Message)
	require.NotContains(t, classified.Message, "password")
}
