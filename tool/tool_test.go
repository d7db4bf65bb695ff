package tool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTool is a testify mock implementing Tool.
type MockTool struct {
	mock.Mock
	name string
}

func NewMockTool(name string) *MockTool { return &MockTool{name: name} }

func (m *MockTool) Name() string        { return m.name }
func (m *MockTool) Description() string { return "mock " + m.name }

func (m *MockTool) Call(ctx context.Context, input string) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func newTestRegistry(t *testing.T, tools ...Tool) *Registry {
	t.Helper()
	r, err := NewRegistry(tools)
	require.NoError(t, err)
	return r
}

func TestExecute_Success(t *testing.T) {
	search := NewMockTool("search")
	search.On("Call", mock.Anything, "tesla stock price").Return("TSLA 250", nil)

	r := newTestRegistry(t, search)
	out, err := r.Execute(context.Background(), "search", "tesla stock price")

	require.NoError(t, err)
	assert.Equal(t, "TSLA 250", out)
	search.AssertExpectations(t)
}

func TestExecute_NotFoundListsNames(t *testing.T) {
	r := newTestRegistry(t,
		NewFunctionTool("send_email", "", func(context.Context, string) (string, error) { return "", nil }),
		NewFunctionTool("post_to_linkedin", "", func(context.Context, string) (string, error) { return "", nil }),
	)

	for _, name := range []string{"search_places", "", "SEND_EMAIL"} {
		out, err := r.Execute(context.Background(), name, "x")
		assert.Empty(t, out)
		require.Error(t, err)
		assert.True(t, IsNotFound(err), name)

		var te *Error
		require.ErrorAs(t, err, &te)
		assert.Equal(t, CodeNotFound, te.Code)
		assert.Contains(t, te.Error(), "send_email")
		assert.Contains(t, te.Error(), "post_to_linkedin")
	}
}

func TestExecute_HandlerError(t *testing.T) {
	boom := errors.New("smtp down")
	r := newTestRegistry(t, NewFunctionTool("send_email", "", func(context.Context, string) (string, error) {
		return "", boom
	}))

	_, err := r.Execute(context.Background(), "send_email", "x")

	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CodeExecution, te.Code)
	assert.Equal(t, "send_email", te.Tool)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsNotFound(err))
}

func TestExecute_TypedErrorForwarded(t *testing.T) {
	custom := NewError("quota", "daily quota exceeded", "QUOTA")
	r := newTestRegistry(t, NewFunctionTool("quota", "", func(context.Context, string) (string, error) {
		return "", custom
	}))

	_, err := r.Execute(context.Background(), "quota", "")
	assert.Same(t, custom, err)
}

func TestExecute_PanicRecovered(t *testing.T) {
	r := newTestRegistry(t, NewFunctionTool("explode", "", func(context.Context, string) (string, error) {
		panic("kaboom")
	}))

	assert.NotPanics(t, func() {
		_, err := r.Execute(context.Background(), "explode", "")
		var te *Error
		require.ErrorAs(t, err, &te)
		assert.Equal(t, CodeExecution, te.Code)
		assert.Contains(t, te.Message, "kaboom")
	})
}

func TestExecute_Timeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	slow := NewFunctionTool("slow", "", func(context.Context, string) (string, error) {
		<-release
		return "late", nil
	})
	r, err := NewRegistry([]Tool{slow}, func(o *Options) { o.Timeout = 20 * time.Millisecond })
	require.NoError(t, err)

	start := time.Now()
	_, err = r.Execute(context.Background(), "slow", "")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewRegistry_RejectsDuplicatesAndEmptyNames(t *testing.T) {
	noop := func(context.Context, string) (string, error) { return "", nil }

	_, err := NewRegistry([]Tool{NewFunctionTool("a", "", noop), NewFunctionTool("a", "", noop)})
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewRegistry([]Tool{NewFunctionTool("", "", noop)})
	assert.ErrorContains(t, err, "empty name")
}

func TestNames_Order(t *testing.T) {
	noop := func(context.Context, string) (string, error) { return "", nil }
	r := newTestRegistry(t, NewFunctionTool("b", "", noop), NewFunctionTool("a", "", noop))

	assert.Equal(t, []string{"b", "a"}, r.Names())
	_, ok := r.Get("a")
	assert.True(t, ok)
}
