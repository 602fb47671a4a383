package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carletonu/hysim-go/metrics"
	"github.com/carletonu/hysim-go/packet"
)

func TestRegistryExposesObservedState(t *testing.T) {
	reg := metrics.NewRegistry()
	reg.ObserveArm(packet.ArmedValves)
	reg.ObserveConn(packet.ConnReconnecting)
	reg.ObserveActuator(packet.ActuatorXV1, true)

	srv := httptest.NewServer(reg.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)

	require.True(t, strings.Contains(body, "hysim_pad_arm_level 1"))
	require.True(t, strings.Contains(body, `hysim_pad_actuator_state{actuator="XV1"} 1`))
	require.True(t, strings.Contains(body, "hysim_pad_controller_reconnects_total 1"))
}
