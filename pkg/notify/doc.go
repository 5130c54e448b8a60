// Package notify implements the proactive notification decision engine:
// given a candidate alert it decides whether to deliver it now or
// suppress it, which channels to use, and how to surface it later
// through ordered retrieval, read/dismiss state, and digesting.
//
// # Architecture
//
// The package follows a layered architecture:
//
//   - Store / History: persistence of notifications and the append-only
//     delivery log used for throttling
//   - Policy: the delivery decision (burst cap, active hours)
//   - Dispatcher: best-effort fan-out through external channel senders
//   - Engine: orchestrates the pipeline and owns all mutable state
//
// # Basic Usage
//
//	store := notify.NewMemoryStore()
//	policy := notify.NewThrottlePolicy(store.HistoryView())
//	engine := notify.NewEngine(store, store.HistoryView(), policy, nil)
//
//	n, err := engine.Submit(ctx, "user123", notify.SubmitRequest{
//	    Title:     "Budget Alert: Food Category",
//	    Message:   "You've spent 85% of your food budget.",
//	    Urgency:   notify.UrgencyHigh,
//	    AgentName: "budget_guardian",
//	})
//
// Submit always returns the created notification; whether it was
// actually delivered is observable through List. Suppressed occurrences
// are genuinely dropped, not queued.
//
// # Decision Rules
//
// Evaluated in order, first match decides:
//
//  1. critical urgency is always delivered
//  2. five or more deliveries to the user in the trailing hour suppress
//     everything except high urgency
//  3. outside 9:00-22:00 local time only critical and high are delivered
//  4. otherwise deliver
//
// # Channel Selection
//
// critical fans out to push, in-app and email; high to push and in-app;
// medium and low are in-app only. In-app delivery has no external side
// effect: the notification being stored is the delivery. External sends
// are time-bounded, fire-and-forget, and never retried.
//
// # Custom Senders
//
// External channels are pluggable:
//
//	dispatcher := notify.NewDispatcher(
//	    notify.WithSender(notify.ChannelEmail, emailSender),
//	    notify.WithSender(notify.ChannelPush, pushSender),
//	    notify.WithSendTimeout(3*time.Second),
//	)
//
// # History Backends
//
// The throttle window reads the delivery history through the History
// interface. MemoryStore carries one in-process; RedisHistory shares
// one across processes via a sorted set per user.
package notify
