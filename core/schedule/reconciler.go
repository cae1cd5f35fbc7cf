package schedule

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

type (
	// Reconciler ensures a locally-identified semester exists in the remote
	// store, creating it on demand and merging the backend identifier and
	// position back into local state.
	Reconciler struct {
		store *Store
		gw    core.SemesterGateway
		log   core.Logger
	}

	ReconciledSemester struct {
		BackendID core.ID
		Year      int
		Name      string
		Position  int
	}
)

func NewReconciler(store *Store, gw core.SemesterGateway, log core.Logger) *Reconciler {
	return &Reconciler{store: store, gw: gw, log: log}
}

// EnsureBackendSemester resolves the backend record for a local semester id.
// Idempotent within a session: once a backend id is cached, no call is made.
// The remote lookup is best-effort (a failed read falls back to local position
// inference); a failed create propagates.
func (rec *Reconciler) EnsureBackendSemester(ctx context.Context, semesterID string) (ReconciledSemester, error) {
	year, name, err := ParseSemesterID(semesterID)
	if err != nil {
		return ReconciledSemester{}, err
	}

	// fast path: already resolved this session
	if sem, ok := rec.store.Semester(semesterID); ok && sem.BackendID != "" {
		return ReconciledSemester{
			BackendID: sem.BackendID,
			Year:      sem.Year,
			Name:      sem.Name,
			Position:  sem.Position,
		}, nil
	}

	localYearCount := rec.store.countYear(year)
	inferredPosition := localYearCount

	var found *core.BackendSemester
	remote, err := rec.gw.Semesters(ctx, year, false)
	if err != nil {
		// favor progress over position correctness; creation is still attempted
		rec.log.Warn(fmt.Sprintf("semester lookup failed, will create if needed: %v", err))
	} else {
		remoteMax := -1
		for i := range remote {
			if remote[i].Position > remoteMax {
				remoteMax = remote[i].Position
			}
			if remote[i].Year == year && remote[i].Name == name {
				found = &remote[i]
			}
		}
		if remoteMax+1 > inferredPosition {
			inferredPosition = remoteMax + 1
		}
	}

	if found == nil {
		created, err := rec.gw.CreateSemester(ctx, core.NewBackendSemester{
			Name:     name,
			Year:     year,
			Position: inferredPosition,
		})
		if err != nil {
			return ReconciledSemester{}, errors.Wrapf(err, "creating semester %q", semesterID)
		}
		found = &created
	}

	backendID := found.ID
	if backendID == "" {
		backendID = core.ID(fmt.Sprintf("%d-%s", year, strings.ToLower(name)))
	}

	res := ReconciledSemester{
		BackendID: backendID,
		Year:      year,
		Name:      name,
		Position:  found.Position,
	}
	rec.store.mergeBackendSemester(semesterID, res.BackendID, res.Name, res.Year, res.Position)
	return res, nil
}
