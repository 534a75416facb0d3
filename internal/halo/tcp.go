package halo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/rpc"
	"sync"
	"time"
)

// Inbox receives columns pushed by ring neighbours over net/rpc.
type Inbox struct {
	queues [2]chan Column
}

func newInbox() *Inbox {
	return &Inbox{queues: [2]chan Column{make(chan Column, 1), make(chan Column, 1)}}
}

// Deliver queues a column for the local worker. It blocks while the previous
// column in the same direction is still unread.
func (in *Inbox) Deliver(msg Column, _ *struct{}) error {
	if !msg.Dir.valid() {
		return fmt.Errorf("invalid direction %d", int(msg.Dir))
	}
	in.queues[msg.Dir] <- msg
	return nil
}

// TCPConfig describes one rank of a multi-process ring.
type TCPConfig struct {
	Rank  int
	Peers []string // listen address of every rank, indexed by rank
	// DialTimeout bounds how long neighbours may take to come up.
	DialTimeout time.Duration
	Logger      *log.Logger
}

// TCPLink connects a worker process to its ring neighbours. Each rank serves
// an Inbox and pushes its boundary columns into the neighbours' inboxes.
type TCPLink struct {
	rank, size int
	inbox      *Inbox
	listener   net.Listener
	left       *rpc.Client
	right      *rpc.Client
	logger     *log.Logger

	mu      sync.Mutex
	conns   []net.Conn
	serving sync.WaitGroup
	closed  bool
}

// linger bounds how long Close waits for neighbours to hang up.
const linger = 5 * time.Second

// Listen opens the listener a rank serves its inbox on.
func Listen(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}

// DialTCP serves the inbox on ln and connects to both ring neighbours,
// retrying until they accept or the dial timeout passes.
func DialTCP(ctx context.Context, cfg TCPConfig, ln net.Listener) (*TCPLink, error) {
	size := len(cfg.Peers)
	if cfg.Rank < 0 || cfg.Rank >= size {
		return nil, fmt.Errorf("halo: rank %d outside ring of %d peers", cfg.Rank, size)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	l := &TCPLink{
		rank:     cfg.Rank,
		size:     size,
		inbox:    newInbox(),
		listener: ln,
		logger:   logger,
	}

	server := rpc.NewServer()
	if err := server.RegisterName("Halo", l.inbox); err != nil {
		return nil, fmt.Errorf("halo: register inbox: %w", err)
	}
	go l.serve(server)

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	leftRank := neighbour(cfg.Rank, size, Leftward)
	rightRank := neighbour(cfg.Rank, size, Rightward)
	var err error
	if l.right, err = dialPeer(dialCtx, cfg.Peers[rightRank], logger); err != nil {
		l.Close()
		return nil, fmt.Errorf("halo: dial right neighbour %d: %w", rightRank, err)
	}
	if leftRank == rightRank {
		l.left = l.right
	} else if l.left, err = dialPeer(dialCtx, cfg.Peers[leftRank], logger); err != nil {
		l.Close()
		return nil, fmt.Errorf("halo: dial left neighbour %d: %w", leftRank, err)
	}
	logger.Printf("Connected to neighbours %d (left) and %d (right)", leftRank, rightRank)
	return l, nil
}

func (l *TCPLink) serve(server *rpc.Server) {
	for {
		conn, err := l.listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				l.logger.Printf("Accept error: %v", err)
			}
			return
		}
		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			conn.Close()
			return
		}
		l.conns = append(l.conns, conn)
		l.serving.Add(1)
		l.mu.Unlock()
		go func() {
			defer l.serving.Done()
			server.ServeConn(conn)
		}()
	}
}

func dialPeer(ctx context.Context, addr string, logger *log.Logger) (*rpc.Client, error) {
	var d net.Dialer
	for attempt := 1; ; attempt++ {
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err == nil {
			return rpc.NewClient(conn), nil
		}
		if attempt == 1 || attempt%20 == 0 {
			logger.Printf("Waiting for %s: %v", addr, err)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", addr, err)
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// Rank is this worker's position on the ring.
func (l *TCPLink) Rank() int { return l.rank }

// Size is the number of workers on the ring.
func (l *TCPLink) Size() int { return l.size }

// Shift pushes send to the neighbour in direction dir and waits for the
// column from the other side.
func (l *TCPLink) Shift(ctx context.Context, dir Direction, gen int, send, recv []uint8) error {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if !dir.valid() {
		return fmt.Errorf("halo: invalid direction %d", int(dir))
	}
	client := l.right
	if dir == Leftward {
		client = l.left
	}
	msg := Column{Gen: gen, From: l.rank, Dir: dir, Cells: send}
	call := client.Go("Halo.Deliver", msg, &struct{}{}, make(chan *rpc.Call, 1))

	var got Column
	select {
	case got = <-l.inbox.queues[dir]:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case done := <-call.Done:
		if done.Error != nil {
			return fmt.Errorf("deliver to rank %d: %w", neighbour(l.rank, l.size, dir), done.Error)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	return accept(got, dir, gen, recv)
}

// Close hangs up on both neighbours, then waits for them to hang up in turn
// so their last deliveries get a reply before this process exits.
func (l *TCPLink) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	err := l.listener.Close()
	if l.right != nil {
		l.right.Close()
	}
	if l.left != nil && l.left != l.right {
		l.left.Close()
	}

	done := make(chan struct{})
	go func() {
		l.serving.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(linger):
		l.logger.Printf("Neighbours still connected after %s, closing", linger)
		l.mu.Lock()
		for _, c := range l.conns {
			c.Close()
		}
		l.mu.Unlock()
		<-done
	}
	return err
}
