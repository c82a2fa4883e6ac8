package vm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadscript/ts/internal/alloc"
	"github.com/threadscript/ts/internal/parser"
	"github.com/threadscript/ts/internal/symtab"
	"github.com/threadscript/ts/internal/value"
)

func newTestVM(stdout *bytes.Buffer) *VM {
	return New(alloc.New(0), stdout)
}

func mustParse(t *testing.T, src string) *value.ScriptPayload {
	t.Helper()
	sc, err := parser.Parse("t", []byte(src))
	require.NoError(t, err)
	v := value.NewScript(sc.Root, sc.File)
	return v.Script()
}

func TestNewInstallsBuiltinsIntoSharedGlobals(t *testing.T) {
	var out bytes.Buffer
	m := newTestVM(&out)
	fn, ok := m.SharedGlobals().Lookup("add", true)
	require.True(t, ok)
	assert.Equal(t, value.KNativeFunction, fn.(*value.Value).Kind())
}

func TestNewStateChainsToCurrentSharedGlobals(t *testing.T) {
	var out bytes.Buffer
	m := newTestVM(&out)
	st := m.NewState()
	assert.Equal(t, m.SharedGlobals(), st.Globals.Parent)
}

func TestNewStateStampsUniqueIDs(t *testing.T) {
	var out bytes.Buffer
	m := newTestVM(&out)
	a := m.NewState()
	b := m.NewState()
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestLiveStatesTracksReleases(t *testing.T) {
	var out bytes.Buffer
	m := newTestVM(&out)
	payload := mustParse(t, "seq()")
	_, _, err := RunSinglePhase(m, payload)
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.LiveStates())
}

func TestPublishGlobalsVisibleToNewStatesOnly(t *testing.T) {
	var out bytes.Buffer
	m := newTestVM(&out)
	old := m.NewState()

	prev := m.SharedGlobals()
	next := symtab.New(prev)

	m.PublishGlobals(next)
	assert.Equal(t, next, m.SharedGlobals())
	assert.Same(t, prev, old.Globals.Parent, "existing states keep the old snapshot")
	assert.Same(t, next, m.NewState().Globals.Parent, "new states see the published table")
}

func TestRunSinglePhaseExitStatusFromBool(t *testing.T) {
	var out bytes.Buffer
	m := newTestVM(&out)
	payload := mustParse(t, "true")
	_, status, err := RunSinglePhase(m, payload)
	require.NoError(t, err)
	assert.Equal(t, 1, status)
}

func TestRunSinglePhaseScriptErrorMapsToExitScriptError(t *testing.T) {
	var out bytes.Buffer
	m := newTestVM(&out)
	payload := mustParse(t, "nope()")
	_, status, err := RunSinglePhase(m, payload)
	require.Error(t, err)
	assert.Equal(t, ExitScriptError, status)
}

func TestResultToExitStatusFolding(t *testing.T) {
	assert.Equal(t, ExitSuccess, ResultToExitStatus(nil))
	assert.Equal(t, 0, ResultToExitStatus(value.NewBool(false)))
	assert.Equal(t, 1, ResultToExitStatus(value.NewBool(true)))
	assert.Equal(t, 0, ResultToExitStatus(value.NewInt(0)))
	assert.Equal(t, 1, ResultToExitStatus(value.NewInt(1)))
	assert.Equal(t, 1, ResultToExitStatus(value.NewInt(64)))
	assert.Equal(t, 1, ResultToExitStatus(value.NewInt(-1)))
	assert.Equal(t, ExitSuccess, ResultToExitStatus(value.NewString("x")))
}

func TestRunTwoPhaseChannelCounterScenario(t *testing.T) {
	var out bytes.Buffer
	m := newTestVM(&out)
	// _main receives one increment per worker thread over a shared
	// channel and returns the final count; with 4 worker threads each
	// sending 1, the result folds to exit status 4.
	src := `seq(
		var("ch", channel(0)),
		fun("_thread", ch("send", 1)),
		fun("_main", seq(
			var("total", 0),
			var("i", 0),
			while(lt(var("i"), 4),
				seq(
					var("total", add(var("total"), ch("recv"))),
					var("i", add(var("i"), 1))
				)
			),
			var("total")
		))
	)`
	payload := mustParse(t, src)
	result, status, err := RunTwoPhase(m, payload, 4)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, uint64(4), result.UnsignedValue())
	assert.Equal(t, 4, status)
}

func TestRunTwoPhaseMissingMainIsConfigurationError(t *testing.T) {
	var out bytes.Buffer
	m := newTestVM(&out)
	payload := mustParse(t, "seq()")
	_, status, err := RunTwoPhase(m, payload, 0)
	require.Error(t, err)
	assert.Equal(t, ExitConfiguration, status)
}

func TestRunSinglePhaseMemoryQuotaDeniesConstruction(t *testing.T) {
	var out bytes.Buffer
	m := New(alloc.New(1), &out) // 1-byte cap, far below a channel's base overhead
	payload := mustParse(t, `channel(4)`)
	_, status, err := RunSinglePhase(m, payload)
	require.Error(t, err)
	assert.Equal(t, ExitScriptError, status)
	assert.Contains(t, err.Error(), "limit")
}

func TestRunTwoPhaseMissingThreadWhenThreadsRequestedIsConfigurationError(t *testing.T) {
	var out bytes.Buffer
	m := newTestVM(&out)
	payload := mustParse(t, `fun("_main", 0)`)
	_, status, err := RunTwoPhase(m, payload, 2)
	require.Error(t, err)
	assert.Equal(t, ExitConfiguration, status)
}
