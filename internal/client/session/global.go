package session

import (
	"sync"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
)

// Global is the process-wide tier shared by every consumer in the process.
// Create one with NewGlobal at startup and pass it to each Cache.
type Global struct {
	mu sync.RWMutex
	id *models.Identity
}

func NewGlobal() *Global {
	return &Global{}
}

// Load returns a copy of the held identity, or nil.
func (g *Global) Load() *models.Identity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.id.Clone()
}

func (g *Global) Store(id *models.Identity) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.id = id.Clone()
}

func (g *Global) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.id = nil
}
