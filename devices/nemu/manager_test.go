package nemu

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedRunner struct {
	replies map[string]string
	errs    map[string]error
	calls   []string
}

func (r *scriptedRunner) run(name string, args ...string) ([]byte, []byte, error) {
	key := strings.Join(args, " ")
	r.calls = append(r.calls, key)
	if err, ok := r.errs[key]; ok {
		return nil, []byte("instance not found"), err
	}
	return []byte(r.replies[key]), nil, nil
}

func newScriptedManager(replies map[string]string) (*Manager, *scriptedRunner) {
	r := &scriptedRunner{replies: replies, errs: map[string]error{}}
	m := NewManager(`C:\MuMu\shell\MuMuManager.exe`, 0,
		WithCommandRunner(r.run),
		WithManagerClock(newFakeClock()),
		WithRestartTimeout(5*time.Second),
	)
	return m, r
}

func TestManager_State(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  EmulatorState
	}{
		{name: "android started", reply: `{"is_android_started": true}`, want: StateRunning},
		{name: "player finished", reply: `{"player_state": "start_finished"}`, want: StateRunning},
		{name: "process only", reply: `{"is_process_started": true, "is_android_started": false}`, want: StateLaunching},
		{name: "nothing", reply: `{"is_process_started": false}`, want: StateStopped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, r := newScriptedManager(map[string]string{"info -v 0": tt.reply})

			got, err := m.State()

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{"info -v 0"}, r.calls)
		})
	}
}

func TestManager_VersionCached(t *testing.T) {
	m, r := newScriptedManager(map[string]string{"setting -v 0 -a": `{"core_version": "4.1.21.3456"}`})

	v, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, Version{4, 1, 21}, v)

	_, err = m.Version()
	require.NoError(t, err)
	assert.Len(t, r.calls, 1)
}

func TestManager_VersionMissingDefaultsToZero(t *testing.T) {
	m, _ := newScriptedManager(map[string]string{"setting -v 0 -a": `{"player_name": "MuMu"}`})

	v, err := m.Version()

	require.NoError(t, err)
	assert.Equal(t, Version{}, v)
	assert.Equal(t, CoordLegacy, CoordModeFor(v))
}

func TestManager_MalformedOutput(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "empty", reply: ""},
		{name: "not json", reply: "MuMuManager: unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newScriptedManager(map[string]string{"info -v 0": tt.reply})

			_, err := m.State()

			assert.ErrorIs(t, err, ErrMalformedOutput)
			assert.ErrorIs(t, err, ErrManagementQuery)
		})
	}
}

func TestManager_ProcessFailure(t *testing.T) {
	m, r := newScriptedManager(nil)
	r.errs["setting -v 0 -a"] = errors.New("exit status 1")

	_, err := m.Version()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrManagementQuery)
	var qe *ManagementQueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, -1, qe.ExitCode)
	assert.Equal(t, "instance not found", qe.Output)

	// failures are not cached
	delete(r.errs, "setting -v 0 -a")
	r.replies = map[string]string{"setting -v 0 -a": `{"core_version": "4.0.1"}`}
	v, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, Version{4, 0, 1}, v)
}

func TestManager_ControlErrcode(t *testing.T) {
	m, r := newScriptedManager(map[string]string{
		"control -v 0 launch":                     `{"errcode": 0}`,
		"control -v 0 app launch -pkg com.example": `{"errcode": -2, "errmsg": "app not installed"}`,
	})

	require.NoError(t, m.Launch())
	err := m.LaunchApp("com.example")
	assert.ErrorIs(t, err, ErrManagementQuery)
	assert.Equal(t, []string{"control -v 0 launch", "control -v 0 app launch -pkg com.example"}, r.calls)
}

func TestManager_RestartWaitsForRunning(t *testing.T) {
	m, r := newScriptedManager(map[string]string{
		"control -v 0 restart": `{"errcode": 0}`,
		"info -v 0":            `{"player_state": "start_finished"}`,
	})

	require.NoError(t, m.Restart())
	assert.Equal(t, []string{"control -v 0 restart", "info -v 0"}, r.calls)
}

func TestManager_RestartTimesOut(t *testing.T) {
	m, _ := newScriptedManager(map[string]string{
		"control -v 0 restart": ``,
		"info -v 0":            `{"is_process_started": true}`,
	})

	err := m.Restart()

	assert.ErrorIs(t, err, ErrEmulatorNotRunning)
}

func TestManager_ListInstances(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []InstanceInfo
	}{
		{
			name:  "single",
			reply: `{"index": "0", "name": "MuMu", "is_android_started": true, "core_version": "4.1.21"}`,
			want:  []InstanceInfo{{Index: 0, Name: "MuMu", State: StateRunning, Version: "4.1.21"}},
		},
		{
			name: "several",
			reply: `{
				"2": {"index": "2", "name": "Two", "is_process_started": false},
				"0": {"index": "0", "name": "Zero", "player_state": "start_finished"},
				"1": {"index": 1, "name": "One", "is_process_started": true}
			}`,
			want: []InstanceInfo{
				{Index: 0, Name: "Zero", State: StateRunning},
				{Index: 1, Name: "One", State: StateLaunching},
				{Index: 2, Name: "Two", State: StateStopped},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newScriptedManager(map[string]string{"info -v all": tt.reply})

			got, err := m.ListInstances()

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
