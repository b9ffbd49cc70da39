/*
* Honeytrap
* Copyright (C) 2016-2018 DutchSec (https://dutchsec.com/)
*
* This program is free software; you can redistribute it and/or modify it under
* the terms of the GNU Affero General Public License version 3 as published by the
* Free Software Foundation.
*
* This program is distributed in the hope that it will be useful, but WITHOUT
* ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS
* FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License for more
* details.
*
* You should have received a copy of the GNU Affero General Public License
* version 3 along with this program in the file "LICENSE".  If not, see
* <http://www.gnu.org/licenses/agpl-3.0.txt>.
*
* See https://honeytrap.io/ for more details. All requests should be sent to
* licensing@honeytrap.io
*
* The interactive user interfaces in modified source and object code versions
* of this program must display Appropriate Legal Notices, as required under
* Section 5 of the GNU Affero General Public License version 3.
*
* In accordance with Section 7(b) of the GNU Affero General Public License version 3,
* these Appropriate Legal Notices must retain the display of the "Powered by
* Honeytrap" logo and retain the original copyright notice. If the display of the
* logo is not reasonably feasible for technical reasons, the Appropriate Legal Notices
* must display the words "Powered by Honeytrap" and retain the original copyright notice.
 */
package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/honeytrap/ftptrap/config"
	"github.com/honeytrap/ftptrap/console"
	"github.com/honeytrap/ftptrap/credentials"
	"github.com/honeytrap/ftptrap/listener"
	"github.com/honeytrap/ftptrap/listener/socket"
	"github.com/honeytrap/ftptrap/pushers"
	"github.com/honeytrap/ftptrap/pushers/archive"
	pconsole "github.com/honeytrap/ftptrap/pushers/console"
	"github.com/honeytrap/ftptrap/pushers/eventbus"
	"github.com/honeytrap/ftptrap/pushers/file"
	"github.com/honeytrap/ftptrap/services/ftp"
	"github.com/honeytrap/ftptrap/sink"
	"github.com/honeytrap/ftptrap/storage"
	"github.com/honeytrap/ftptrap/utils"
	"github.com/mattn/go-isatty"
	logging "github.com/op/go-logging"
	"github.com/pkg/errors"
)

var log = logging.MustGetLogger("ftptrap/server")

// Server wires the credential store, event pipeline, FTP service, listener
// and operator console together.
type Server struct {
	config config.Config

	in        io.Reader
	out       io.Writer
	noConsole bool

	dataDir string
	token   string
	filters map[string][]pushers.FilterFunc

	store *credentials.Store

	bus  *eventbus.EventBus
	sink *sink.Sink
	db   *storage.DB

	m        sync.Mutex
	listener listener.Listener
	addr     net.Addr

	ready        chan struct{}
	shutdown     chan struct{}
	shutdownOnce sync.Once

	sessions sync.WaitGroup
}

// New returns a Server. Nothing is bound or opened before Run.
func New(options ...OptionFn) (*Server, error) {
	s := &Server{
		config:   config.Default,
		in:       os.Stdin,
		out:      os.Stdout,
		ready:    make(chan struct{}),
		shutdown: make(chan struct{}),
	}

	for _, fn := range options {
		if err := fn(s); err != nil {
			return nil, err
		}
	}

	if err := s.config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	if _, _, err := ftp.ParsePortRange(s.config.PassivePorts); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	fs, err := filters(s.config.Filters)
	if err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	s.filters = fs

	dataDir, err := prepareDataDir(s.config.DataDir)
	if err != nil {
		return nil, errors.Wrap(err, "could not create data directory")
	}

	s.dataDir = dataDir

	s.token, err = loadToken(dataDir)
	if err != nil {
		return nil, errors.Wrap(err, "could not load instance token")
	}

	root, err := filepath.Abs(s.config.FTPRoot)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, errors.Wrap(err, "could not create ftp root")
	}

	s.store, err = credentials.New(credentials.Credential{
		Username:    s.config.FTPUser,
		Password:    s.config.FTPPass,
		HomeDir:     root,
		Permissions: credentials.MustParsePermissions(s.config.Permissions),
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Store returns the credential store consulted for every login.
func (s *Server) Store() *credentials.Store {
	return s.store
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address, or nil before Ready.
func (s *Server) Addr() net.Addr {
	s.m.Lock()
	defer s.m.Unlock()

	return s.addr
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	if isatty.IsTerminal(f.Fd()) {
		return true
	} else if isatty.IsCygwinTerminal(f.Fd()) {
		return true
	}

	return false
}

// filters compiles the configured filters per channel name.
func filters(entries []config.Filter) (map[string][]pushers.FilterFunc, error) {
	m := map[string][]pushers.FilterFunc{}

	for _, f := range entries {
		fn, err := pushers.RegexFilterFunc(f.Field, f.Expression)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid filter for channel %s", f.Channel)
		}

		m[f.Channel] = append(m[f.Channel], fn)
	}

	return m, nil
}

// openChannels builds the event bus: the operator terminal, the durable
// log file and, when enabled, the bolt archive.
func (s *Server) openChannels() error {
	term, err := pconsole.New(pconsole.WithWriter(s.out))
	if err != nil {
		return err
	}

	notices := term.(*pconsole.Console)

	logFile, err := file.New(
		file.WithPath(s.config.LogFile),
		file.WithFailureHandler(func(err error) {
			notices.Printf("[!] Could not write to %s, logging to console only: %s", s.config.LogFile, err.Error())
		}),
	)
	if err != nil {
		return errors.Wrapf(err, "could not open log file %s", s.config.LogFile)
	}

	names := []string{"console", "file"}
	channels := map[string]pushers.Channel{
		"console": term,
		"file":    logFile,
	}

	if s.config.Archive {
		db, err := storage.Open(s.dataDir)
		if err != nil {
			pushers.Close(logFile)
			return err
		}

		a, err := archive.New(db)
		if err != nil {
			pushers.Close(logFile)
			db.Close()
			return err
		}

		s.db = db

		names = append(names, "archive")
		channels["archive"] = pushers.TokenChannel(a, s.token)
	}

	s.bus = eventbus.New()
	s.sink = sink.New(s.bus)

	for _, name := range names {
		c := channels[name]
		for _, fn := range s.filters[name] {
			c = pushers.FilterChannel(c, fn)
		}

		s.bus.Subscribe(c)
	}

	return nil
}

func (s *Server) closeChannels() {
	if err := s.bus.Close(); err != nil {
		log.Errorf("Error closing channels: %s", err.Error())
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Errorf("Error closing database: %s", err.Error())
		}
	}
}

func (s *Server) newService() (*ftp.Service, error) {
	options := []ftp.ServiceFunc{
		ftp.WithObserver(s.sink),
		ftp.WithOpts(ftp.ServerOpts{
			WelcomeMessage: s.config.Banner,
			PublicIP:       s.config.PublicIP,
			PassivePorts:   s.config.PassivePorts,
			LoginRate:      s.config.LoginRate,
			IdleTimeout:    s.config.IdleTimeout.Duration(),
		}),
	}

	if s.db != nil {
		st, err := s.db.Namespace(ftp.StorageNamespace)
		if err != nil {
			return nil, err
		}

		options = append(options, ftp.WithStorage(st))
	}

	return ftp.New(s.store, options...)
}

// Run binds the listener and serves until Shutdown is called or ctx is
// cancelled. It returns a *listener.StartError when the address can not be
// bound, and nil after a clean stop. Run must only be called once.
func (s *Server) Run(ctx context.Context) error {
	if err := s.openChannels(); err != nil {
		return err
	}

	defer s.closeChannels()

	service, err := s.newService()
	if err != nil {
		return err
	}

	l, err := socket.New(listener.WithAddress("tcp", s.config.Addr()))
	if err != nil {
		return err
	}

	if err := l.Start(ctx); err != nil {
		fmt.Fprintln(s.out, color.RedString("Error starting listener: %s", err.Error()))
		return err
	}

	s.m.Lock()
	s.listener = l
	if a, ok := l.(listener.Addresser); ok {
		s.addr = a.Addr()
	}
	s.m.Unlock()

	close(s.ready)

	// shutdown may have been requested before the listener existed
	select {
	case <-s.shutdown:
		l.Close()
	default:
	}

	fmt.Fprintln(s.out, color.YellowString("[*] FTP Honeypot running on %s (user: %s)", s.Addr(), s.config.FTPUser))

	log.Debugf("Using datadir: %s (token %s)", s.dataDir, s.token)

	s.sink.Started(s.Addr(), s.config.FTPUser)

	go func() {
		select {
		case <-ctx.Done():
			s.Shutdown()
		case <-s.shutdown:
		}
	}()

	consoleCtx, consoleCancel := context.WithCancel(ctx)
	defer consoleCancel()

	consoleDone := make(chan struct{})

	if s.noConsole {
		close(consoleDone)
	} else {
		options := []console.Option{
			console.WithInput(s.in),
			console.WithOutput(s.out),
		}

		// no prompts when commands are piped in
		if f, ok := s.in.(*os.File); !ok || !IsTerminal(f) {
			options = append(options, console.WithPrompt(""))
		}

		c := console.New(s.store, s.sink, s.Shutdown, options...)

		go func() {
			defer close(consoleDone)
			c.Run(consoleCtx)
		}()
	}

	sessionCtx, sessionCancel := context.WithCancel(context.Background())
	defer sessionCancel()

	for {
		conn, err := l.Accept()
		if err == listener.ErrClosed {
			break
		} else if err != nil {
			log.Errorf("Error accepting connection: %s", err.Error())
			continue
		}

		s.sessions.Add(1)
		go s.handle(sessionCtx, service, conn)
	}

	s.drain(sessionCancel)

	consoleCancel()
	<-consoleDone

	s.sink.Stopped()

	fmt.Fprintln(s.out, color.YellowString("Server stopped."))
	return nil
}

// drain gives running sessions the configured grace period, then closes
// them.
func (s *Server) drain(force context.CancelFunc) {
	done := make(chan struct{})

	go func() {
		s.sessions.Wait()
		close(done)
	}()

	grace := s.config.ShutdownGrace.Duration()

	select {
	case <-done:
		return
	case <-time.After(grace):
	}

	log.Warningf("Closing sessions still running after %s", grace)

	force()
	<-done
}

func (s *Server) handle(ctx context.Context, service *ftp.Service, conn net.Conn) {
	defer s.sessions.Done()

	defer utils.RecoverHandler()

	defer conn.Close()

	log.Debugf("Accepted connection for %s => %s", conn.RemoteAddr(), conn.LocalAddr())
	defer log.Debugf("Disconnected connection for %s => %s", conn.RemoteAddr(), conn.LocalAddr())

	c := utils.TimeoutConn(conn, s.config.IdleTimeout.Duration())

	if err := service.Handle(ctx, c); err != nil {
		log.Errorf("Error handling connection: %s", err.Error())
	}
}

// Shutdown stops accepting connections. It returns immediately and may be
// called any number of times from any goroutine; Run returns once running
// sessions are done or the grace period has passed.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		log.Info("Shutdown requested")

		s.m.Lock()
		l := s.listener
		close(s.shutdown)
		s.m.Unlock()

		if l != nil {
			l.Close()
		}
	})
}
