package app

import (
	"errors"
	"net/netip"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rclip/internal/domain"
)

func testConfig() Config {
	return Config{
		Address:      netip.MustParseAddr("0.0.0.0"),
		CopyPort:     9001,
		PastePort:    9002,
		CopyCommand:  "wl-copy",
		PasteCommand: "wl-paste",
		Shell:        "/bin/sh",
		Backlog:      4,
	}
}

type fixture struct {
	binder     *mockBinder
	mux        *mockMux
	acceptor   *mockAcceptor
	dispatcher *mockDispatcher
	svc        *Service
}

func newFixture() *fixture {
	f := &fixture{
		binder:     &mockBinder{},
		mux:        &mockMux{},
		acceptor:   &mockAcceptor{pending: map[domain.Direction]int{}},
		dispatcher: &mockDispatcher{},
	}
	f.svc = NewService(f.binder, f.mux, f.acceptor, f.dispatcher, &mockLogger{})
	return f
}

func TestListen_BindsBothEndpoints(t *testing.T) {
	f := newFixture()

	eps, err := f.svc.Listen(testConfig())
	require.NoError(t, err)
	require.Len(t, eps, 2)

	assert.Equal(t, domain.Copy, eps[0].Direction)
	assert.Equal(t, 9001, eps[0].Port)
	assert.Equal(t, domain.Paste, eps[1].Direction)
	assert.Equal(t, 9002, eps[1].Port)
	assert.Equal(t, netip.MustParseAddr("0.0.0.0"), f.binder.lastCfg.addr)
}

func TestListen_InvalidConfigBindsNothing(t *testing.T) {
	f := newFixture()
	cfg := testConfig()
	cfg.PasteCommand = ""

	_, err := f.svc.Listen(cfg)

	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "paste command", cfgErr.Field)
	assert.Empty(t, f.binder.bound, "no socket may be created for an invalid config")
}

func TestListen_PasteFailureReleasesCopy(t *testing.T) {
	f := newFixture()
	bindErr := &domain.BindError{Stage: domain.StageBind, Endpoint: "paste", Address: "0.0.0.0:9002", Err: syscall.EADDRINUSE}
	f.binder.failOn = map[domain.Direction]error{domain.Paste: bindErr}

	_, err := f.svc.Listen(testConfig())

	assert.Same(t, bindErr, err)
	require.Len(t, f.binder.closed, 1)
	assert.Equal(t, domain.Copy, f.binder.closed[0].Direction)
	assert.Equal(t, domain.ExitSetup, domain.ExitCode(err))
}

func TestListen_CopyFailureStops(t *testing.T) {
	f := newFixture()
	f.binder.failOn = map[domain.Direction]error{
		domain.Copy: &domain.BindError{Stage: domain.StageSocket, Endpoint: "copy", Err: syscall.EMFILE},
	}

	_, err := f.svc.Listen(testConfig())

	require.Error(t, err)
	assert.Equal(t, []domain.Direction{domain.Copy}, f.binder.bound)
}

func TestServe_DrainsEveryReadyEndpoint(t *testing.T) {
	f := newFixture()
	f.mux.script = [][]domain.Direction{
		{domain.Copy, domain.Paste},
		{domain.Paste},
	}
	f.acceptor.pending[domain.Copy] = 2
	f.acceptor.pending[domain.Paste] = 1

	eps, err := f.svc.Listen(testConfig())
	require.NoError(t, err)

	err = f.svc.Serve(eps)

	var runtimeErr *domain.RuntimeError
	require.ErrorAs(t, err, &runtimeErr)
	assert.Equal(t, "wait", runtimeErr.Op)
	assert.ErrorIs(t, err, errMuxDone)

	assert.Equal(t, []domain.Direction{domain.Copy, domain.Paste, domain.Paste}, f.acceptor.drained)
	assert.Equal(t, []domain.Direction{domain.Copy, domain.Copy, domain.Paste}, f.dispatcher.dispatched)
}

func TestServe_EmptyDrainDispatchesNothing(t *testing.T) {
	f := newFixture()
	f.mux.script = [][]domain.Direction{{domain.Copy}, {domain.Paste}, {domain.Copy, domain.Paste}}

	eps, err := f.svc.Listen(testConfig())
	require.NoError(t, err)

	err = f.svc.Serve(eps)
	assert.ErrorIs(t, err, errMuxDone)
	assert.Len(t, f.acceptor.drained, 4)
	assert.Empty(t, f.dispatcher.dispatched)
}

func TestServe_WaitFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.mux.err = syscall.EBADF

	eps, err := f.svc.Listen(testConfig())
	require.NoError(t, err)

	err = f.svc.Serve(eps)
	assert.ErrorIs(t, err, syscall.EBADF)
	assert.Equal(t, domain.ExitRuntime, domain.ExitCode(err))
}

func TestServe_AcceptFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.mux.script = [][]domain.Direction{{domain.Copy}}
	f.acceptor.err = syscall.EINVAL

	eps, err := f.svc.Listen(testConfig())
	require.NoError(t, err)

	err = f.svc.Serve(eps)

	var runtimeErr *domain.RuntimeError
	require.ErrorAs(t, err, &runtimeErr)
	assert.Equal(t, "accept", runtimeErr.Op)
	assert.ErrorIs(t, err, syscall.EINVAL)
	assert.Equal(t, 1, f.mux.waits, "no wait after a fatal accept error")
}

func TestServe_DispatchFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.mux.script = [][]domain.Direction{{domain.Copy, domain.Paste}}
	f.acceptor.pending[domain.Copy] = 3
	f.acceptor.pending[domain.Paste] = 1
	f.dispatcher.err = errors.New("fork/exec /bin/sh: resource temporarily unavailable")

	eps, err := f.svc.Listen(testConfig())
	require.NoError(t, err)

	err = f.svc.Serve(eps)

	var runtimeErr *domain.RuntimeError
	require.ErrorAs(t, err, &runtimeErr)
	assert.Equal(t, "spawn", runtimeErr.Op)
	assert.Equal(t, []domain.Direction{domain.Copy}, f.dispatcher.dispatched)
	assert.Equal(t, []domain.Direction{domain.Copy}, f.acceptor.drained)
}

func TestRun_InvalidConfig(t *testing.T) {
	f := newFixture()
	cfg := testConfig()
	cfg.CopyPort = 0

	err := f.svc.Run(cfg)
	assert.Equal(t, domain.ExitConfig, domain.ExitCode(err))
	assert.Zero(t, f.mux.waits)
}
