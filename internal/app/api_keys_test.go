package app

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"tracker.ridelink.org/internal/appconf"
)

func TestIsInvalidAPIKey(t *testing.T) {
	application := &Application{
		Config: appconf.Config{ApiKeys: []string{"alpha", "beta"}},
	}

	assert.False(t, application.IsInvalidAPIKey("alpha"))
	assert.False(t, application.IsInvalidAPIKey("beta"))
	assert.True(t, application.IsInvalidAPIKey("gamma"))
	assert.True(t, application.IsInvalidAPIKey(""))
}

func TestEmptyKeyListDisablesAuth(t *testing.T) {
	application := &Application{}

	assert.False(t, application.IsInvalidAPIKey(""))
	assert.False(t, application.IsInvalidAPIKey("anything"))
}

func TestRequestHasInvalidAPIKey(t *testing.T) {
	application := &Application{
		Config: appconf.Config{ApiKeys: []string{"alpha"}},
	}

	r := httptest.NewRequest("GET", "/api/where/vehicles.json?key=alpha", nil)
	assert.False(t, application.RequestHasInvalidAPIKey(r))

	r = httptest.NewRequest("GET", "/api/where/vehicles.json?key=wrong", nil)
	assert.True(t, application.RequestHasInvalidAPIKey(r))

	r = httptest.NewRequest("GET", "/api/where/vehicles.json", nil)
	assert.True(t, application.RequestHasInvalidAPIKey(r))
}
