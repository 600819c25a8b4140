package feedid

import (
	"strconv"
	"sync"
	"time"
)

// FeedID Format:
// Timestamp (41-bits)
// Node ID (11-bits)
// Increment (11-bits)
//
// Ids are handed out as decimal strings because the stores persist them as
// JSON object keys.

const FeedEpoch int64 = 1704067200000 // 2024-01-01 12am GMT

const (
	NodeIdBits    = 11
	IncrementBits = 11

	MaxIncrement = (1 << IncrementBits) - 1
)

var NodeId int64

var idIncrementLock = sync.Mutex{}
var idIncrementTs int64 = 0
var idIncrement int64 = 0

func Init(nodeId string) error {
	if nodeId == "" {
		NodeId = 0
		return nil
	}
	parsed, err := strconv.ParseInt(nodeId, 10, 64)
	NodeId = parsed
	return err
}

func GenId() string {
	// Get timestamp
	ts := time.Now().UnixMilli()

	// Get increment
	idIncrementLock.Lock()
	defer idIncrementLock.Unlock()
	if idIncrementTs != ts {
		idIncrementTs = ts
		idIncrement = 0
	} else if idIncrement >= MaxIncrement {
		// Increment space for this millisecond is exhausted, wait out the
		// remainder of it.
		for time.Now().UnixMilli() == ts {
			continue
		}
		ts = time.Now().UnixMilli()
		idIncrementTs = ts
		idIncrement = 0
	} else {
		idIncrement += 1
	}

	// Construct ID
	id := (ts - FeedEpoch) << (NodeIdBits + IncrementBits)
	id |= NodeId << IncrementBits
	id |= idIncrement

	return strconv.FormatInt(id, 10)
}
