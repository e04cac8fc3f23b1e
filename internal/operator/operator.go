package operator

import (
	"context"

	"github.com/carson-networks/ledger-server/internal/operator/actions"
)

// Operator is the worker that processes items from the queue.
type Operator struct {
	ledger actions.Ledger
	queue  chan ActionItem
}

func NewOperator(l actions.Ledger, queue chan ActionItem) *Operator {
	return &Operator{
		ledger: l,
		queue:  queue,
	}
}

// Run listens to the queue and processes items. Exits when the queue is closed.
func (o *Operator) Run() {
	for item := range o.queue {
		o.processItem(item)
	}
}

// processItem skips items whose context ended while queued. Once started, an
// action runs to completion even if the caller's context ends, so the response
// always reports what happened to the ledger.
func (o *Operator) processItem(item ActionItem) {
	if err := item.ctx.Err(); err != nil {
		item.response <- ActionItemResponse{err: err}
		return
	}
	err := item.action.Perform(context.WithoutCancel(item.ctx), o.ledger)
	item.response <- ActionItemResponse{err: err}
}

type ActionItem struct {
	ctx      context.Context
	action   actions.IAction
	response chan ActionItemResponse
}

type ActionItemResponse struct {
	err error
}
