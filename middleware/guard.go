package middleware

import (
	"context"
	"net/http"

	flowernursery "github.com/swarooprajana/flowernursery"
)

// FlowHeader carries the flow ID when the client does not use the cookie.
const FlowHeader = "X-Flow-ID"

// FlowCookie is the cookie the example server issues for new flows.
const FlowCookie = "nursery_flow"

type snapshotContextKey struct{}

func SnapshotFromContext(ctx context.Context) (flowernursery.Snapshot, bool) {
	snap, ok := ctx.Value(snapshotContextKey{}).(flowernursery.Snapshot)
	return snap, ok
}

func RequireAuthenticated(ctrl *flowernursery.Controller) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ctrl == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			id, ok := FlowID(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			snap, err := ctrl.State(r.Context(), id)
			if err != nil || snap.State != flowernursery.StateAuthenticated {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), snapshotContextKey{}, snap)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FlowID extracts the flow ID from the header or, failing that, the cookie.
func FlowID(r *http.Request) (string, bool) {
	if id := r.Header.Get(FlowHeader); id != "" {
		return id, true
	}

	cookie, err := r.Cookie(FlowCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
