package domain

import "time"

type SessionID string

type Timestamp = time.Time
