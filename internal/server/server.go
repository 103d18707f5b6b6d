package server

import (
	"context"
	"log"
	"sync"

	"github.com/sdegypt/diychach/internal/database"
	"github.com/sdegypt/diychach/internal/stats"
)

const (
	metricActiveConnections = "ActiveConnections"
	metricMessagesRelayed   = "MessagesRelayed"
	metricDeletesRelayed    = "DeletesRelayed"
	metricMessagesDropped   = "MessagesDropped"
)

type stopReq struct {
	done chan struct{}
}

// ChatServer owns the presence registry and the relay, and
// serializes connection registration through its run loop.
type ChatServer struct {
	log            *log.Logger
	db             database.Repository
	stats          stats.StatsProvider
	registry       *Registry
	relay          *Relay
	clients        map[*Client]struct{}
	clientsLock    sync.Mutex
	RegisterChan   chan *Client
	deRegisterChan chan *Client
	stop           chan stopReq
}

func NewChatServer(logger *log.Logger, db database.Repository, su stats.StatsProvider) (*ChatServer, error) {
	registry := NewRegistry()

	cs := &ChatServer{
		log:            logger,
		db:             db,
		stats:          su,
		registry:       registry,
		relay:          NewRelay(logger, db, registry, su),
		clients:        make(map[*Client]struct{}),
		RegisterChan:   make(chan *Client),
		deRegisterChan: make(chan *Client),
		stop:           make(chan stopReq),
	}

	for _, metric := range []string{
		metricActiveConnections,
		metricMessagesRelayed,
		metricDeletesRelayed,
		metricMessagesDropped,
	} {
		su.RegisterMetric(metric)
	}

	return cs, nil
}

// Registry exposes the presence registry for read-side callers.
func (cs *ChatServer) Registry() *Registry {
	return cs.registry
}

func (cs *ChatServer) Run() {
	for {
		select {
		case client := <-cs.RegisterChan:
			cs.log.Printf("adding connection %s from %q", client.ID(), client.user.Username)
			cs.addClient(client)
			cs.stats.Incr(metricActiveConnections)
		case client := <-cs.deRegisterChan:
			cs.log.Printf("removing connection %s from %q", client.ID(), client.user.Username)
			cs.registry.Remove(client.ID())
			cs.removeClient(client)
			cs.stats.Decr(metricActiveConnections)
		case req := <-cs.stop:
			cs.log.Println("stopping clients")
			cs.clientsLock.Lock()
			for c := range cs.clients {
				c.stopClient()
			}
			cs.clientsLock.Unlock()

			close(req.done)
			return
		}
	}
}

func (cs *ChatServer) addClient(c *Client) {
	cs.clientsLock.Lock()
	defer cs.clientsLock.Unlock()
	cs.clients[c] = struct{}{}
}

func (cs *ChatServer) removeClient(c *Client) {
	cs.clientsLock.Lock()
	defer cs.clientsLock.Unlock()
	delete(cs.clients, c)
}

func (cs *ChatServer) Shutdown(ctx context.Context) error {
	req := stopReq{done: make(chan struct{})}

	select {
	case cs.stop <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
