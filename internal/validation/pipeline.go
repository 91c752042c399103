// Package validation runs per-endpoint field checks and collects one message
// per failing field.
package validation

import (
	"context"
	"sync"

	"github.com/Rrens/auth-service/internal/apperror"
	"github.com/Rrens/auth-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// KeyEither is the error key of the email-or-phone presence check
const KeyEither = "error"

type presence int

const (
	// always run every rule
	always presence = iota
	// skip when the field is missing, null or empty
	optional
	// skip only when the field was not sent at all
	ifSent
)

// Check is an ordered rule chain bound to one field. The chain stops at the
// first failing rule.
type Check struct {
	key   string
	value domain.Field
	mode  presence
	rules []Rule
}

// Field declares a check for key
func Field(key string, value domain.Field, rules ...Rule) Check {
	return Check{key: key, value: value, rules: rules}
}

// Optional skips the chain when the value is missing, null or empty
func (c Check) Optional() Check {
	c.mode = optional
	return c
}

// IfSent skips the chain only when the value was absent from the request
func (c Check) IfSent() Check {
	c.mode = ifSent
	return c
}

func (c Check) skip() bool {
	switch c.mode {
	case optional:
		return c.value.Empty()
	case ifSent:
		return !c.value.Sent
	default:
		return false
	}
}

func (c Check) run(ctx context.Context) (string, error) {
	if c.skip() {
		return "", nil
	}
	for _, rule := range c.rules {
		msg, err := rule(ctx, c.value)
		if err != nil {
			return "", err
		}
		if msg != "" {
			return msg, nil
		}
	}
	return "", nil
}

// Run evaluates every check concurrently. It returns a Validation error with
// one message per failing field, or an Internal error when a rule could not
// reach the store.
func Run(ctx context.Context, checks ...Check) error {
	var (
		mu     sync.Mutex
		fields = make(map[string]string)
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range checks {
		g.Go(func() error {
			msg, err := c.run(gctx)
			if err != nil {
				return err
			}
			if msg != "" {
				mu.Lock()
				fields[c.key] = msg
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return apperror.Internal("Unable to validate request", err)
	}

	if len(fields) > 0 {
		return apperror.Validation(fields)
	}
	return nil
}
