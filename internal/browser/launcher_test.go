package browser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/igcomment/internal/config"
)

// scriptedStarter fails each attempt with the next error in errs, and
// succeeds once errs is exhausted.
type scriptedStarter struct {
	errs  []error
	specs []LaunchSpec
}

func (s *scriptedStarter) start(ctx context.Context, spec LaunchSpec) (*Session, error) {
	s.specs = append(s.specs, spec)
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	return NewSession(ctx, "session-1", spec, nil, nil, nil, nil), nil
}

func newTestLauncher(t *testing.T, starter *scriptedStarter) (*Launcher, *bytes.Buffer, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	var out bytes.Buffer
	l := NewLauncher(config.NewDefaultConfig().Browser(), zap.New(core), &out, WithStartFunc(starter.start))
	return l, &out, logs
}

func TestLaunchPlan(t *testing.T) {
	tests := []struct {
		name      string
		requested LaunchSpec
		want      []Attempt
	}{
		{
			name:      "headless with profile",
			requested: LaunchSpec{Headless: true, UserDataDir: "p"},
			want: []Attempt{
				{Spec: LaunchSpec{Headless: true, UserDataDir: "p"}},
				{Spec: LaunchSpec{Headless: false, UserDataDir: "p"}, Message: msgRetryVisible},
				{Spec: LaunchSpec{Headless: false}, Message: msgRetryNoProfile},
			},
		},
		{
			name:      "visible with profile",
			requested: LaunchSpec{UserDataDir: "p"},
			want: []Attempt{
				{Spec: LaunchSpec{UserDataDir: "p"}},
				{Spec: LaunchSpec{}, Message: msgRetryNoProfile},
			},
		},
		{
			name:      "headless without profile",
			requested: LaunchSpec{Headless: true},
			want: []Attempt{
				{Spec: LaunchSpec{Headless: true}},
				{Spec: LaunchSpec{}, Message: msgRetryVisible},
			},
		},
		{
			name:      "visible without profile",
			requested: LaunchSpec{},
			want:      []Attempt{{Spec: LaunchSpec{}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, LaunchPlan(tt.requested)); diff != "" {
				t.Errorf("LaunchPlan() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIsBootFailure(t *testing.T) {
	assert.False(t, IsBootFailure(nil))
	assert.True(t, IsBootFailure(errors.New("chrome failed to start:\n[0101/000000:ERROR] missing X server")))
	assert.True(t, IsBootFailure(errors.New("DevToolsActivePort file doesn't exist")))
	assert.True(t, IsBootFailure(errors.New("tab crashed")))
	assert.True(t, IsBootFailure(errors.New("websocket url timeout reached")))
	assert.True(t, IsBootFailure(fmt.Errorf("verify: %w", context.DeadlineExceeded)))
	assert.False(t, IsBootFailure(errors.New(`exec: "google-chrome": executable file not found in $PATH`)))
	assert.False(t, IsBootFailure(context.Canceled))
}

func TestLauncherLaunch(t *testing.T) {
	bootErr := errors.New("chrome failed to start: no display")

	t.Run("First attempt succeeds", func(t *testing.T) {
		starter := &scriptedStarter{}
		l, out, _ := newTestLauncher(t, starter)

		session, err := l.Launch(context.Background(), LaunchSpec{Headless: true, UserDataDir: "p"})
		require.NoError(t, err)
		assert.Equal(t, "session-1", session.ID())
		assert.Equal(t, LaunchSpec{Headless: true, UserDataDir: "p"}, session.Spec())
		assert.Empty(t, out.String())
	})

	t.Run("Falls back in order on boot failures", func(t *testing.T) {
		starter := &scriptedStarter{errs: []error{bootErr, bootErr}}
		l, out, logs := newTestLauncher(t, starter)

		session, err := l.Launch(context.Background(), LaunchSpec{Headless: true, UserDataDir: "p"})
		require.NoError(t, err)
		assert.Equal(t, LaunchSpec{}, session.Spec())

		want := []LaunchSpec{{Headless: true, UserDataDir: "p"}, {UserDataDir: "p"}, {}}
		if diff := cmp.Diff(want, starter.specs); diff != "" {
			t.Errorf("attempt order mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, msgRetryVisible+"\n"+msgRetryNoProfile+"\n", out.String())
		assert.Equal(t, 2, logs.FilterMessage("Browser failed to boot").Len())
	})

	t.Run("Non-boot error short-circuits", func(t *testing.T) {
		notFound := errors.New(`exec: "google-chrome": executable file not found in $PATH`)
		starter := &scriptedStarter{errs: []error{notFound}}
		l, out, _ := newTestLauncher(t, starter)

		session, err := l.Launch(context.Background(), LaunchSpec{Headless: true, UserDataDir: "p"})
		assert.Nil(t, session)
		assert.ErrorIs(t, err, ErrLaunchFailed)
		assert.ErrorIs(t, err, notFound)
		assert.Len(t, starter.specs, 1)
		assert.NotContains(t, out.String(), Guidance)
	})

	t.Run("All attempts fail prints guidance", func(t *testing.T) {
		starter := &scriptedStarter{errs: []error{bootErr, bootErr, bootErr}}
		l, out, _ := newTestLauncher(t, starter)

		_, err := l.Launch(context.Background(), LaunchSpec{Headless: true, UserDataDir: "p"})
		assert.ErrorIs(t, err, ErrLaunchFailed)
		assert.ErrorIs(t, err, bootErr)
		assert.Len(t, starter.specs, 3)
		assert.Contains(t, out.String(), Guidance)
	})

	t.Run("Cancelled context stops before launching", func(t *testing.T) {
		starter := &scriptedStarter{}
		l, _, _ := newTestLauncher(t, starter)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := l.Launch(ctx, LaunchSpec{Headless: true})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, starter.specs)
	})
}

func TestSessionClose(t *testing.T) {
	var order []string
	s := NewSession(context.Background(), "id", LaunchSpec{}, nil, nil,
		func() { order = append(order, "tab") },
		func() { order = append(order, "alloc") },
	)

	s.Close()
	s.Close()
	assert.Equal(t, []string{"tab", "alloc"}, order)

	var zero Session
	assert.NotPanics(t, zero.Close)
	assert.NotNil(t, zero.Context())
}
