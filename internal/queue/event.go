// Package queue defines message payloads exchanged over the message broker
// and the consumer that processes them.
package queue

// PrincipalRepairQueue is the durable queue carrying repair requests.
const PrincipalRepairQueue = "principal.repair"

// PrincipalRepairEvent is published when a role escalation created the admin
// record but could not delete the original user record.  The consumer
// removes the leftover user once the admin is confirmed to exist.
type PrincipalRepairEvent struct {
	PrincipalID string `json:"principal_id"`
	Email       string `json:"email"`
	Reason      string `json:"reason"`
	RequestedAt string `json:"requested_at"`
}
