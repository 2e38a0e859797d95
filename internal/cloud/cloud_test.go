package cloud

import (
	"testing"

	"github.com/nihalmohammedm/n8n/internal/api"
)

func TestPlanContextLifecycle(t *testing.T) {
	p := NewPlanContext()
	if p.Account() != nil {
		t.Fatalf("expected empty context")
	}
	p.Set(&api.CloudAccount{UserID: "42", ConfirmedEmail: true})
	account := p.Account()
	if account == nil || account.UserID != "42" {
		t.Fatalf("unexpected account: %+v", account)
	}
	p.Reset()
	if p.Account() != nil {
		t.Fatalf("expected context cleared after reset")
	}
}
