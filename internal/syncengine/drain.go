// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package syncengine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-study-sync/models"
)

// Drain replays queued operations in FIFO order and refreshes when at
// least one was confirmed. It does nothing while offline.
//
// A failed operation stays queued with its retry count incremented and a
// backoff before its next attempt; after MaxRetries failures it is dropped
// and reported. Later operations on the same entity wait for the next
// drain, so per-entity order holds.
func (c *Controller[T]) Drain(ctx context.Context) error {
	return c.submit(ctx, func(ctx context.Context) error {
		confirmed, err := c.drainQueue(ctx)
		if err != nil {
			return err
		}
		if confirmed == 0 {
			return nil
		}
		_, err = c.refresh(ctx)
		return err
	})
}

func (c *Controller[T]) drainQueue(ctx context.Context) (int, error) {
	if !c.online() {
		c.log.Debug().Str("func", "Controller.drainQueue").Msg("offline, skipping drain")
		return 0, nil
	}

	ops := c.queue.ListPending()
	if len(ops) == 0 {
		return 0, nil
	}

	c.beginPhase(models.PhaseSyncing)
	defer c.setIdle()

	now := c.opts.Now()
	held := make(map[string]struct{})
	confirmed := 0

	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return confirmed, err
		}

		target := c.resolveID(op.EntityID)
		if _, ok := held[target]; ok {
			continue
		}
		if !op.Due(now) || (op.Kind != models.OperationCreate && models.IsTempID(target)) {
			held[target] = struct{}{}
			continue
		}

		err := c.replay(ctx, op, target)
		if err == nil {
			if err = c.queue.DequeueConfirmed(ctx, op.ID); err != nil {
				c.log.Warn().Err(err).Str("func", "Controller.drainQueue").Str("op_id", op.ID).Msg("dequeue")
			}
			confirmed++
			continue
		}
		if ctx.Err() != nil {
			return confirmed, ctx.Err()
		}

		held[target] = struct{}{}
		op.EntityID = target
		c.recordFailure(ctx, op, err)
	}

	c.log.Info().Str("func", "Controller.drainQueue").Int("confirmed", confirmed).
		Int("pending", c.queue.Size()).Msg("queue drained")

	return confirmed, nil
}

func (c *Controller[T]) replay(ctx context.Context, op models.Operation, target string) error {
	switch op.Kind {
	case models.OperationCreate:
		item, err := decodeEntity[T](op.Payload)
		if err != nil {
			return err
		}
		created, err := c.insert(ctx, item)
		if err != nil {
			return err
		}
		c.confirmCreate(ctx, target, created)
		return nil

	case models.OperationUpdate:
		var patch models.Patch
		if err := json.Unmarshal(op.Payload, &patch); err != nil {
			return fmt.Errorf("decode patch: %w", err)
		}
		updated, err := c.remote.Update(ctx, target, patch)
		if err != nil {
			return err
		}
		c.replaceInCache(target, updated)
		return nil

	case models.OperationDelete:
		return c.remote.Delete(ctx, target)

	default:
		return fmt.Errorf("%w: %s", ErrUnknownOperation, op.Kind)
	}
}

func (c *Controller[T]) recordFailure(ctx context.Context, op models.Operation, cause error) {
	op.RetryCount++

	permanent := c.opts.DropPermanentFailures && c.opts.IsPermanent != nil && c.opts.IsPermanent(cause)
	if op.RetryCount > c.opts.MaxRetries || permanent {
		c.dropOperation(ctx, op, cause)
		return
	}

	op.NextAttemptAt = c.opts.Now().Add(retryDelay(c.opts.BackoffBase, c.opts.BackoffCap, op.RetryCount))
	if err := c.queue.Update(ctx, op); err != nil {
		c.log.Warn().Err(err).Str("func", "Controller.recordFailure").Str("op_id", op.ID).Msg("persist retry")
	}

	c.log.Warn().Err(cause).
		Str("func", "Controller.recordFailure").
		Str("op_id", op.ID).
		Str("kind", string(op.Kind)).
		Int("retry_count", op.RetryCount).
		Time("next_attempt_at", op.NextAttemptAt).
		Msg("queued operation failed")
}

// dropOperation gives up on op. A dropped create takes every operation on
// its temporary record and the record itself with it.
func (c *Controller[T]) dropOperation(ctx context.Context, op models.Operation, cause error) {
	if err := c.queue.Drop(ctx, op.ID); err != nil {
		c.log.Warn().Err(err).Str("func", "Controller.dropOperation").Str("op_id", op.ID).Msg("drop")
	}

	if op.Kind == models.OperationCreate {
		if _, err := c.queue.DropEntity(ctx, op.EntityID); err != nil {
			c.log.Warn().Err(err).Str("func", "Controller.dropOperation").Msg("drop dependents")
		}
		c.removeFromCache(op.EntityID)
	}

	c.log.Error().Err(cause).
		Str("func", "Controller.dropOperation").
		Str("op_id", op.ID).
		Str("kind", string(op.Kind)).
		Int("retry_count", op.RetryCount).
		Msg("operation dropped")

	c.notify(models.NotifyError, fmt.Sprintf("Failed to sync %s of %s item after %d attempts: %v",
		op.Kind, c.opts.Collection, op.RetryCount, cause))
}
