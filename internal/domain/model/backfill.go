package model

import "time"

// BackfillProgress holds both the persisted scan watermark and the
// per-chain run lease. LatestIndexedBlock advances batch by batch so a
// resumed scan continues from LatestIndexedBlock+1 without re-scanning.
type BackfillProgress struct {
	ChainID            ChainID    `db:"chain_id"`
	DeploymentBlock    int64      `db:"deployment_block"`
	LatestIndexedBlock int64      `db:"latest_indexed_block"`
	CurrentBlock       int64      `db:"current_block"`
	IsRunning          bool       `db:"is_running"`
	IsPaused           bool       `db:"is_paused"`
	LeaseOwner         *string    `db:"lease_owner"`
	LeaseExpiresAt     *time.Time `db:"lease_expires_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}
