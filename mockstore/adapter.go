// Package mockstore simulates the backend cart API on top of an asynchronous
// key-value store. Every mutation goes through one serialized queue and
// reads wait for the queue to drain before looking at storage.
package mockstore

import (
	"context"
	"log/slog"
	"strconv"

	"pedeai/entity"
	"pedeai/pkg/apperr"
	"pedeai/pkg/taskqueue"
	"pedeai/store"
)

type Adapter struct {
	kv    KV
	queue *taskqueue.Queue
	log   *slog.Logger
}

var _ store.CartStore = (*Adapter)(nil)

func New(kv KV, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{kv: kv, queue: taskqueue.New(), log: logger.With("component", "mockstore")}
}

func cartKey(userID uint) string {
	return "cart:" + strconv.FormatUint(uint64(userID), 10)
}

// Load returns the cart once every mutation submitted before the call has
// been applied. Legacy documents are normalized on the way out and the
// migrated form is queued for write-back.
func (a *Adapter) Load(ctx context.Context, userID uint) (*entity.Cart, error) {
	if err := a.queue.Wait(ctx); err != nil {
		return nil, err
	}
	c, migrated, _, err := a.read(ctx, userID)
	if err != nil {
		return nil, err
	}
	if migrated {
		a.queue.Enqueue(func() error { return a.writeBack(userID) })
	}
	return c, nil
}

// Mutate queues fn behind every earlier mutation. The task keeps running
// if ctx ends while it waits; the caller then gets ctx.Err().
//
// A stored document that cannot be decoded fails every mutation except one
// that leaves the cart empty, such as a clear; that one replaces it.
func (a *Adapter) Mutate(ctx context.Context, userID uint, fn store.MutateFunc) (*entity.Cart, error) {
	taskCtx := context.WithoutCancel(ctx)

	var out *entity.Cart
	err := a.queue.Do(ctx, func() error {
		current, _, unreadable, readErr := a.read(taskCtx, userID)
		if readErr != nil && unreadable == nil {
			return readErr
		}
		if unreadable != nil {
			current = &entity.Cart{UserID: userID}
		}
		work := current.Clone()
		if err := fn(taskCtx, work); err != nil {
			if unreadable != nil {
				return readErr
			}
			return err
		}
		if unreadable != nil {
			if !work.IsEmpty() {
				return readErr
			}
			a.log.WarnContext(taskCtx, "replacing unreadable cart", "user_id", userID, "discarded", string(unreadable))
		}
		if err := work.Validate(); err != nil {
			return err
		}
		if err := a.write(taskCtx, userID, work); err != nil {
			return err
		}
		out = work
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out.Clone(), nil
}

// Wait blocks until the mutation queue has drained up to now.
func (a *Adapter) Wait(ctx context.Context) error {
	return a.queue.Wait(ctx)
}

// read loads and decodes the stored cart. When the document exists but
// cannot be decoded, its bytes come back as unreadable alongside the error.
func (a *Adapter) read(ctx context.Context, userID uint) (c *entity.Cart, migrated bool, unreadable []byte, err error) {
	raw, ok, err := a.kv.Get(ctx, cartKey(userID))
	if err != nil {
		return nil, false, nil, apperr.Storage("read cart", err)
	}
	if !ok {
		return &entity.Cart{UserID: userID}, false, nil, nil
	}
	c, migrated, err = decodeCart(raw)
	if err != nil {
		a.log.WarnContext(ctx, "rejected stored cart", "user_id", userID, "err", err)
		return nil, false, raw, err
	}
	c.UserID = userID
	return c, migrated, nil, nil
}

func (a *Adapter) write(ctx context.Context, userID uint, c *entity.Cart) error {
	body, err := encodeCart(c)
	if err != nil {
		return apperr.Storage("encode cart", err)
	}
	if err := a.kv.Set(ctx, cartKey(userID), body); err != nil {
		return apperr.Storage("write cart", err)
	}
	return nil
}

// writeBack re-reads under the queue so a mutation that landed in between
// is never overwritten with the older migrated copy.
func (a *Adapter) writeBack(userID uint) error {
	ctx := context.Background()
	c, migrated, _, err := a.read(ctx, userID)
	if err != nil || !migrated {
		return err
	}
	if err := a.write(ctx, userID, c); err != nil {
		a.log.Error("write back migrated cart", "user_id", userID, "err", err)
		return err
	}
	a.log.Info("migrated legacy cart", "user_id", userID, "version", CurrentVersion)
	return nil
}
