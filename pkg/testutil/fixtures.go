package testutil

import (
	"time"

	"github.com/google/uuid"
)

// Fixed identifiers for deterministic tests.
var (
	TestUserID      = "00000000-0000-0000-0000-000000000001"
	TestOtherUserID = "00000000-0000-0000-0000-000000000002"
	TestAdminID     = "00000000-0000-0000-0000-0000000000aa"
	TestVehicleID   = uuid.MustParse("00000000-0000-0000-0000-000000000100")
	TestVIN         = "1HGCM82633A004352"
)

// FixedNow is the reference clock used by domain tests.
var FixedNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
