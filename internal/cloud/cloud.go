// Package cloud tracks the cloud plan context for the active session.
package cloud

import (
	"sync"

	"github.com/nihalmohammedm/n8n/internal/api"
)

// PlanContext holds the current cloud plan data. Its lifecycle is
// independent of the user roster; logout resets it.
type PlanContext struct {
	mu      sync.Mutex
	account *api.CloudAccount
}

// NewPlanContext constructs an empty PlanContext.
func NewPlanContext() *PlanContext {
	return &PlanContext{}
}

// Set stores the fetched cloud account.
func (p *PlanContext) Set(account *api.CloudAccount) {
	p.mu.Lock()
	p.account = account
	p.mu.Unlock()
}

// Account returns the stored cloud account, nil when none is loaded.
func (p *PlanContext) Account() *api.CloudAccount {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.account
}

// Reset clears the plan context.
func (p *PlanContext) Reset() {
	p.mu.Lock()
	p.account = nil
	p.mu.Unlock()
}
