package linear

import (
	"strings"

	"golang.org/x/text/cases"

	vo "github.com/orris-inc/tracksync/internal/domain/customerrequest/valueobjects"
)

var stateStatus = map[string]vo.Status{
	"todo":        vo.StatusPending,
	"unstarted":   vo.StatusPending,
	"backlog":     vo.StatusTriaged,
	"triage":      vo.StatusTriaged,
	"in progress": vo.StatusInProgress,
	"started":     vo.StatusInProgress,
	"in review":   vo.StatusInReview,
	"done":        vo.StatusResolved,
	"completed":   vo.StatusResolved,
	"closed":      vo.StatusClosed,
	"duplicate":   vo.StatusClosed,
	"canceled":    vo.StatusCancelled,
	"cancelled":   vo.StatusCancelled,
}

// MapStateToStatus maps a Linear workflow state name to a local status.
// Unknown names map to pending.
func MapStateToStatus(stateName string) vo.Status {
	if s, ok := stateStatus[foldName(stateName)]; ok {
		return s
	}
	return vo.StatusPending
}

// foldName case-folds and collapses whitespace so that names compare the way
// a person reading them would.
func foldName(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}
