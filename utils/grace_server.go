package utils

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yatube/yatube/config"
)

const (
	gracefulEnvKey  = "YATUBE_GRACEFUL"
	gracefulEnvPair = gracefulEnvKey + "=1"

	// fd 3 is the first slot after stdin/stdout/stderr in the child's
	// file table; the parent parks the listener there on restart.
	inheritedListenerFD = 3
)

// Server drains connections on SIGTERM and hands its listener to a
// freshly exec'd replacement on SIGUSR2, so deploys drop no requests.
type Server struct {
	httpServer *http.Server

	listener  net.Listener
	inherited bool
	signals   chan os.Signal
	drained   chan struct{}
	graceTTL  time.Duration
}

// NewServer builds a Server around handler with timeouts and the
// shutdown drain window taken from configuration.
func NewServer(addr string, handler http.Handler) *Server {
	cfg := config.Get()
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  time.Duration(cfg.HTTPReadTimeoutSecs) * time.Second,
			WriteTimeout: time.Duration(cfg.HTTPWriteTimeoutSecs) * time.Second,
		},
		inherited: os.Getenv(gracefulEnvKey) != "",
		signals:   make(chan os.Signal, 1),
		drained:   make(chan struct{}),
		graceTTL:  time.Duration(cfg.ShutdownGraceSecs) * time.Second,
	}
}

// ListenAndServe serves until a shutdown signal arrives, then blocks
// until in-flight requests drain.
func (srv *Server) ListenAndServe() error {
	ln, err := srv.listen()
	if err != nil {
		return err
	}
	srv.listener = ln

	go srv.watchSignals()
	err = srv.httpServer.Serve(ln)
	<-srv.drained
	return err
}

// listen binds a fresh TCP socket, or adopts the one inherited from the
// previous process during a graceful restart.
func (srv *Server) listen() (net.Listener, error) {
	if srv.inherited {
		ln, err := net.FileListener(os.NewFile(inheritedListenerFD, ""))
		if err != nil {
			return nil, fmt.Errorf("adopt inherited listener: %w", err)
		}
		return ln, nil
	}

	addr := srv.httpServer.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return ln, nil
}

func (srv *Server) watchSignals() {
	signal.Notify(srv.signals, syscall.SIGTERM, syscall.SIGUSR2)

	for sig := range srv.signals {
		switch sig {
		case syscall.SIGTERM:
			Sugar.Info("SIGTERM received, draining and shutting down")
			srv.drainAndClose()
		case syscall.SIGUSR2:
			Sugar.Info("SIGUSR2 received, spawning replacement process")
			pid, err := srv.spawnReplacement()
			if err != nil {
				Sugar.Errorf("replacement process failed to start, still serving: %v", err)
				continue
			}
			Sugar.Infof("replacement running as pid %d, draining old server", pid)
			srv.drainAndClose()
		}
	}
}

func (srv *Server) drainAndClose() {
	ctx, cancel := context.WithTimeout(context.Background(), srv.graceTTL)
	defer cancel()
	if err := srv.httpServer.Shutdown(ctx); err != nil {
		Sugar.Errorf("shutdown finished with error: %v", err)
	} else {
		Sugar.Info("shutdown complete")
	}
	close(srv.drained)
}

// spawnReplacement forks the same binary with the listener at fd 3 and
// the graceful marker in the environment.
func (srv *Server) spawnReplacement() (int, error) {
	tcpLn, ok := srv.listener.(*net.TCPListener)
	if !ok {
		return 0, fmt.Errorf("listener %T cannot be inherited", srv.listener)
	}
	file, err := tcpLn.File()
	if err != nil {
		return 0, fmt.Errorf("dup listener fd: %w", err)
	}

	env := make([]string, 0, len(os.Environ())+1)
	for _, kv := range os.Environ() {
		if kv != gracefulEnvPair {
			env = append(env, kv)
		}
	}
	env = append(env, gracefulEnvPair)

	pid, err := syscall.ForkExec(os.Args[0], os.Args, &syscall.ProcAttr{
		Env:   env,
		Files: []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd(), file.Fd()},
	})
	if err != nil {
		return 0, fmt.Errorf("forkexec %s: %w", os.Args[0], err)
	}
	return pid, nil
}

// GraceServer runs handler on addr with graceful shutdown and restart.
func GraceServer(addr string, handler http.Handler) error {
	return NewServer(addr, handler).ListenAndServe()
}
