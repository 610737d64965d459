// Package authz is the single capability check consulted by every service
// that guards a mutation. Keeping the decision in one function avoids the
// drift that per-handler owner/admin comparisons accumulate.
package authz

import "github.com/haidang/referral-hub/internal/model"

// Action names a guarded operation.
type Action string

const (
	EditComment   Action = "comment.edit"
	DeleteComment Action = "comment.delete"
	AddReply      Action = "reply.add"
	DeleteReply   Action = "reply.delete"
)

// Actor is whoever is attempting the action. The identity may come from a
// verified token or, on the legacy unauthenticated routes, from request
// fields the dashboard supplies.
type Actor struct {
	ID   string
	Role model.Role
}

// Can reports whether actor may perform action on a resource owned by
// ownerID. Admins can do everything; owners can modify their own comments
// and replies; replying is admin-only.
func Can(actor Actor, action Action, ownerID string) bool {
	if actor.Role == model.RoleAdmin {
		return true
	}

	switch action {
	case EditComment, DeleteComment, DeleteReply:
		return actor.ID != "" && actor.ID == ownerID
	}
	return false
}
