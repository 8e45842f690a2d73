package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"

	"pratica/internal/config"
	"pratica/internal/domain"
	"pratica/internal/logger"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "GRPC_PORT", "SERVICE_B_URL"} {
		t.Setenv(key, "")
	}
}

func testConfig(t *testing.T, service string) *config.Config {
	t.Helper()
	clearEnv(t)
	cfg, err := config.LoadConfig(service, nil)
	require.NoError(t, err)
	cfg.HTTP.ShutdownTimeout = 5 * time.Second
	return cfg
}

func waitFor(t *testing.T, url string) *http.Response {
	t.Helper()
	var resp *http.Response
	require.Eventually(t, func() bool {
		var err error
		resp, err = http.Get(url)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	return resp
}

func TestRunBindsConfiguredPort(t *testing.T) {
	cfg := testConfig(t, domain.ResponderLabel)
	cfg.HTTP.Port = freePort(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, handler, logger.Discard()) }()

	resp := waitFor(t, fmt.Sprintf("http://127.0.0.1:%d/", cfg.HTTP.Port))
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunPortFromEnvironment(t *testing.T) {
	port := freePort(t)
	clearEnv(t)
	t.Setenv("PORT", fmt.Sprint(port))
	cfg, err := config.LoadConfig(domain.CallerLabel, nil)
	require.NoError(t, err)
	require.Equal(t, port, cfg.HTTP.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, http.NotFoundHandler(), logger.Discard()) }()

	resp := waitFor(t, fmt.Sprintf("http://127.0.0.1:%d/", port))
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	cancel()
	require.NoError(t, <-done)
}

func TestRunWithGRPCHealth(t *testing.T) {
	cfg := testConfig(t, domain.ResponderLabel)
	cfg.HTTP.Port = freePort(t)
	cfg.GRPC.Port = freePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, http.NotFoundHandler(), logger.Discard()) }()

	waitFor(t, fmt.Sprintf("http://127.0.0.1:%d/", cfg.HTTP.Port)).Body.Close()

	conn, err := grpc.NewClient(fmt.Sprintf("127.0.0.1:%d", cfg.GRPC.Port),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	checkCtx, checkCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer checkCancel()
	resp, err := grpc_health_v1.NewHealthClient(conn).Check(checkCtx,
		&grpc_health_v1.HealthCheckRequest{Service: domain.ResponderLabel})
	require.NoError(t, err)
	require.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())

	cancel()
	require.NoError(t, <-done)
}

func TestRunFailsWhenPortBusy(t *testing.T) {
	lis, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer lis.Close()

	cfg := testConfig(t, domain.ResponderLabel)
	cfg.HTTP.Port = lis.Addr().(*net.TCPAddr).Port

	err = Run(context.Background(), cfg, http.NotFoundHandler(), logger.Discard())
	require.ErrorContains(t, err, "failed to listen")
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunLogsStartupLine(t *testing.T) {
	for _, service := range []string{domain.CallerLabel, domain.ResponderLabel} {
		t.Run(service, func(t *testing.T) {
			cfg := testConfig(t, service)
			cfg.HTTP.Port = freePort(t)

			var out lockedBuffer
			log := logger.NewWithWriter(&out, config.LogConfig{Level: "info", Format: "json"}, service)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- Run(ctx, cfg, http.NotFoundHandler(), log) }()

			waitFor(t, fmt.Sprintf("http://127.0.0.1:%d/", cfg.HTTP.Port)).Body.Close()
			cancel()
			require.NoError(t, <-done)

			want := fmt.Sprintf("%s ouvindo na porta %d", service, cfg.HTTP.Port)
			var found bool
			for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
				var entry map[string]any
				require.NoError(t, json.Unmarshal([]byte(line), &entry))
				if entry["msg"] == want {
					found = true
					require.Equal(t, service, entry["service"])
					require.EqualValues(t, cfg.HTTP.Port, entry["port"])
				}
			}
			require.True(t, found, "startup line %q not logged:\n%s", want, out.String())
		})
	}
}
