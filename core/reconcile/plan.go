package reconcile

import "context"

// process plans and, unless DryRun is set, applies the action for one item.
func process[T any](ctx context.Context, adapter Adapter[T], index int, item T, opts Options) (rec Record) {
	rec = Record{Index: index}
	defer recoverInto(&rec)

	rec.Subject = adapter.Describe(item)

	if err := ctx.Err(); err != nil {
		return failed(rec, err)
	}

	action, err := adapter.Plan(ctx, item)
	if err != nil {
		return failed(rec, err)
	}
	rec.Action = action.Type
	rec.Key = action.Key
	rec.RemoteID = action.RemoteID
	rec.Detail = action.Reason

	switch action.Type {
	case ActionSkip, ActionDuplicate:
		rec.Outcome = outcomeFor(action.Type)
		return rec
	case ActionCreate, ActionUpdateScore:
	default:
		return failed(rec, &UnknownActionError{Type: action.Type})
	}

	if opts.DryRun {
		if obs, ok := adapter.(Observer); ok {
			obs.Observe(action)
		}
		rec.Outcome = outcomeFor(action.Type)
		rec.Detail = joinDetail("dry run", action.Reason)
		return rec
	}

	applied, err := adapter.Apply(ctx, item, action)
	if err != nil {
		return failed(rec, err)
	}
	return merge(rec, applied, outcomeFor(action.Type))
}

// merge overlays the fields set by Apply onto the planned record.
func merge(planned, applied Record, fallback Outcome) Record {
	out := planned
	out.Outcome = fallback
	if applied.Outcome != "" {
		out.Outcome = applied.Outcome
	}
	if applied.RemoteID > 0 {
		out.RemoteID = applied.RemoteID
	}
	if applied.Detail != "" {
		out.Detail = applied.Detail
	}
	if applied.Error != "" {
		out.Error = applied.Error
	}
	return out
}

func failed(rec Record, err error) Record {
	rec.Outcome = OutcomeError
	rec.Error = err.Error()
	return rec
}

func joinDetail(prefix, detail string) string {
	if detail == "" {
		return prefix
	}
	return prefix + ": " + detail
}

// UnknownActionError is recorded when an adapter plans an action the engine
// does not know.
type UnknownActionError struct {
	Type ActionType
}

func (e *UnknownActionError) Error() string {
	return "unknown action type " + string(e.Type)
}
