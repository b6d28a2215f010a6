package spatial

import "github.com/snowfight-go/battlecore/internal/guid"

// Registry is the process-wide map from player guid to that player's
// ClientSet, used by the broadcast primitive (spec.md §4.7: "used by
// movement sync, stamina sync, and chat smileys").
type Registry struct {
	sets map[guid.ObjectGuid]*ClientSet
}

func NewRegistry() *Registry {
	return &Registry{sets: make(map[guid.ObjectGuid]*ClientSet)}
}

func (r *Registry) Ensure(player guid.ObjectGuid) *ClientSet {
	cs, ok := r.sets[player]
	if !ok {
		cs = NewClientSet()
		r.sets[player] = cs
	}
	return cs
}

func (r *Registry) Remove(player guid.ObjectGuid) {
	delete(r.sets, player)
}

// BroadcastTo returns every player guid whose client set contains object,
// the "for each player with this object in their client set" primitive.
func (r *Registry) BroadcastTo(object guid.ObjectGuid) []guid.ObjectGuid {
	var out []guid.ObjectGuid
	for player, cs := range r.sets {
		if cs.Contains(object) {
			out = append(out, player)
		}
	}
	return out
}
