package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker.ridelink.org/internal/models"
)

func TestFanoutDeliversToAllTargets(t *testing.T) {
	first := &captureBroadcaster{}
	second := &captureBroadcaster{}

	combined := Fanout(first, nil, second)
	combined.Broadcast([]models.Vehicle{{ID: "bus-1"}})

	require.Len(t, first.broadcasts, 1)
	require.Len(t, second.broadcasts, 1)
	assert.Equal(t, "bus-1", first.broadcasts[0][0].ID)
}
