package models

import "time"

const (
	StateRunning = "running"
	StateUnknown = "unknown"
)

// InstanceRecord is one EC2 instance as seen by a single scan.
type InstanceRecord struct {
	ID    string `json:"instance_id"`
	State string `json:"state"`
}

func (r InstanceRecord) Running() bool {
	return r.State == StateRunning
}

// KeyPairRecord is one registered key pair. Only Name takes part in duplicate
// detection; the rest is carried for logging.
type KeyPairRecord struct {
	Name        string     `json:"key_name"`
	ID          string     `json:"key_pair_id,omitempty"`
	Fingerprint string     `json:"fingerprint,omitempty"`
	Created     *time.Time `json:"created,omitempty"`
}

// AdminRecord is the outcome of the IAM audit for a single user.
type AdminRecord struct {
	User   string   `json:"user"`
	Groups []string `json:"groups,omitempty"`
	Admin  bool     `json:"admin"`
}

type AnomalyKind string

const (
	AnomalyInstanceState AnomalyKind = "instance_state"
	AnomalyKeyPair       AnomalyKind = "key_pair"
	AnomalyAdmin         AnomalyKind = "admin_user"
)
