// Package policy decides who may act on an order. The ledger consults these
// predicates and nothing else.
package policy

import (
	identity "github.com/dmehra2102/foodhub/internal/identity/domain"
	"github.com/dmehra2102/foodhub/internal/order/domain"
)

func IsOwner(actor identity.Actor, o domain.Order) bool {
	return actor.ID != "" && actor.ID == o.UserID
}

func CanView(actor identity.Actor, o domain.Order) bool {
	return actor.IsAdmin() || IsOwner(actor, o)
}

func CanCancel(actor identity.Actor, o domain.Order) bool {
	return IsOwner(actor, o) && o.Status.Cancellable()
}

func CanTransition(actor identity.Actor) bool {
	return actor.IsAdmin()
}
