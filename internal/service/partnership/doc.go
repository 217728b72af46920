// Package partnership implements the negotiation/fulfillment workflow for a
// single partnership attempt: a five-step state machine advanced by operator
// actions and, for the early steps, by the influencer through the public
// portal.
//
// Every status transition that touches both the workflow row and the
// influencer row is applied by the repository in one database transaction,
// with the notification email recorded as a pending outbox row in the same
// transaction. Delivery of that email is at-least-once and never part of the
// transition's consistency boundary.
package partnership
