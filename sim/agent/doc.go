// Package agent implements the delivery agent state machine.
//
// A DeliveryAgent owns a task list, a planning strategy and a cursor into
// its current path. The lifecycle is a loop of two phases: PlanNextAction
// selects the highest-priority incomplete task and asks the strategy for a
// path to its pickup or delivery location, and ExecuteNextAction consumes
// one position from that path per simulation step. When a dynamic obstacle
// occupies the next cell at execution time the step is spent on detection:
// the path is discarded, the replanning counter is incremented, and the
// agent returns to planning on the next step without moving or burning fuel.
//
// RunSimulation ties the loop to the environment clock: every step, blocked
// or not, advances time by one tick, so obstacle tracks progress in lockstep
// with the agent. The loop ends when the step budget is used up, fuel hits
// zero, all deliveries are complete, or planning fails.
package agent
