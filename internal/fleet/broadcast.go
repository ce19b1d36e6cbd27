package fleet

import "tracker.ridelink.org/internal/models"

type fanout struct {
	targets []Broadcaster
}

// Fanout combines broadcasters so the reconciler can feed the WebSocket
// hub and the analytics recorder from one cycle. Nil targets are skipped.
func Fanout(targets ...Broadcaster) Broadcaster {
	kept := make([]Broadcaster, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			kept = append(kept, t)
		}
	}
	return &fanout{targets: kept}
}

func (f *fanout) Broadcast(vehicles []models.Vehicle) {
	for _, t := range f.targets {
		t.Broadcast(vehicles)
	}
}
