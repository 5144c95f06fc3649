package entity

import "errors"

// Storage errors shared by every repository backend.
var (
	ErrLiveSlotTaken = errors.New("slot is already held by a live appointment")
	ErrDuplicate     = errors.New("record already exists")
)
