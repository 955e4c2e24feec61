package bot

import (
	"context"
	"log"

	"github.com/legendauc/auctionbot/internal/models"
)

const (
	reasonAdminOnly   = "🚫 Admin only command"
	reasonUnverified  = "🔒 Verification Required\n\nPlease contact an admin to get verified first.\nUse /verify to request verification."
	reasonVerifyError = "⚠️ Temporary verification error\nPlease try again later."
	reasonGateClosed  = "❌ This feature is currently disabled by admin."
	reasonStatusError = "⚠️ Could not read bot status. Please try again later."
)

// Decision is the outcome of a guard. Reason is shown to the user when the
// action is refused.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

type Guard func(ctx context.Context, u User) Decision

// Check runs guards in order and returns the first refusal.
func Check(ctx context.Context, u User, guards ...Guard) Decision {
	for _, g := range guards {
		if d := g(ctx, u); !d.Allowed {
			return d
		}
	}
	return allow()
}

func (r *Router) RequireAdmin() Guard {
	return func(_ context.Context, u User) Decision {
		if r.isAdmin(u.ID) {
			return allow()
		}
		return deny(reasonAdminOnly)
	}
}

// RequireVerified lets admins and active verified users through, and
// refreshes the user's last-seen details on the way.
func (r *Router) RequireVerified() Guard {
	return func(ctx context.Context, u User) Decision {
		if r.isAdmin(u.ID) {
			return allow()
		}
		ok, err := r.verifier.IsVerified(ctx, u.ID)
		if err != nil {
			log.Printf("[BOT] verification check for %d failed: %v", u.ID, err)
			return deny(reasonVerifyError)
		}
		if !ok {
			return deny(reasonUnverified)
		}
		if err := r.verifier.Touch(ctx, u.ID, u.Handle()); err != nil {
			log.Printf("[BOT] failed to touch user %d: %v", u.ID, err)
		}
		return allow()
	}
}

func (r *Router) RequireGate(g models.Gate) Guard {
	return func(ctx context.Context, _ User) Decision {
		status, err := r.status.Get(ctx)
		if err != nil {
			log.Printf("[BOT] failed to read system status: %v", err)
			return deny(reasonStatusError)
		}
		if !status.IsOpen(g) {
			return deny(reasonGateClosed)
		}
		return allow()
	}
}
